package live

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	chatservice "github.com/havenlabs/haven/backend/internal/service/chat"
	"github.com/havenlabs/haven/backend/internal/service/conversation"
	"github.com/havenlabs/haven/backend/internal/service/escalation"
)

// Handler drives a chat session over a websocket so the frontend can
// receive replies, expressions and escalation prompts without polling.
type Handler struct {
	chatSvc  *chatservice.Service
	turns    *conversation.Service
	flow     *escalation.Flow
	upgrader websocket.Upgrader
}

func New(chatSvc *chatservice.Service, turns *conversation.Service, flow *escalation.Flow) *Handler {
	return &Handler{
		chatSvc: chatSvc,
		turns:   turns,
		flow:    flow,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ws/{sessionID}", h.handleWebSocket)
}

type inboundFrame struct {
	Type      string          `json:"type"`
	SessionID string          `json:"sessionId"`
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
}

type outgoingFrame struct {
	Type      string      `json:"type"`
	SessionID string      `json:"sessionId,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// messageFrame carries a user chat message.
type messageFrame struct {
	Text string `json:"text"`
}

// resolveFrame carries an escalation outcome.
type resolveFrame struct {
	UserID  string `json:"userId"`
	Outcome string `json:"outcome"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
}

func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		http.Error(w, "sessionID is required", http.StatusBadRequest)
		return
	}

	session, err := h.chatSvc.GetSession(r.Context(), sessionID)
	if err != nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[live] websocket upgrade failed for session=%s: %v", sessionID, err)
		return
	}
	defer conn.Close()

	log.Printf("[live] connection opened for session=%s", sessionID)

	for {
		var frame inboundFrame
		if err := conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[live] connection error for session=%s: %v", sessionID, err)
			}
			return
		}

		switch frame.Type {
		case "message":
			h.handleMessageFrame(r.Context(), conn, sessionID, frame.Data)
		case "resolve":
			h.handleResolveFrame(r.Context(), conn, sessionID, session.UserID, frame.Data)
		default:
			h.sendError(conn, sessionID, "unknown frame type")
		}
	}
}

func (h *Handler) handleMessageFrame(ctx context.Context, conn *websocket.Conn, sessionID string, data json.RawMessage) {
	var payload messageFrame
	if err := json.Unmarshal(data, &payload); err != nil {
		h.sendError(conn, sessionID, "invalid message frame")
		return
	}

	result, err := h.turns.HandleTurn(ctx, sessionID, payload.Text)
	if err != nil {
		h.sendError(conn, sessionID, err.Error())
		return
	}

	if result.Escalation != nil {
		h.send(conn, outgoingFrame{
			Type:      "escalation",
			SessionID: sessionID,
			Data: map[string]any{
				"message": result.Escalation.Message,
				"reasons": result.Escalation.Reasons,
			},
		})
		return
	}

	reply := ""
	if result.Reply != nil {
		reply = result.Reply.Content
	}
	h.send(conn, outgoingFrame{
		Type:      "reply",
		SessionID: sessionID,
		Data: map[string]any{
			"content":    reply,
			"expression": result.Expression,
			"sentiment":  result.Sentiment,
		},
	})
}

func (h *Handler) handleResolveFrame(ctx context.Context, conn *websocket.Conn, sessionID, sessionUserID string, data json.RawMessage) {
	var payload resolveFrame
	if err := json.Unmarshal(data, &payload); err != nil {
		h.sendError(conn, sessionID, "invalid resolve frame")
		return
	}

	userID := payload.UserID
	if userID == "" {
		userID = sessionUserID
	}

	contact := escalation.Contact{Name: payload.Name, Email: payload.Email, Phone: payload.Phone}
	reply, err := h.flow.Resolve(ctx, sessionID, userID, payload.Outcome, contact)
	if err != nil {
		if errors.Is(err, escalation.ErrNotEscalated) || errors.Is(err, escalation.ErrContactRequired) || errors.Is(err, escalation.ErrUnknownOutcome) {
			h.sendError(conn, sessionID, err.Error())
			return
		}
		h.sendError(conn, sessionID, "failed to resolve escalation")
		return
	}

	h.send(conn, outgoingFrame{
		Type:      "resolved",
		SessionID: sessionID,
		Data: map[string]any{
			"outcome": payload.Outcome,
			"reply":   reply,
		},
	})
}

func (h *Handler) send(conn *websocket.Conn, frame outgoingFrame) {
	frame.Timestamp = time.Now().UnixMilli()
	if err := conn.WriteJSON(frame); err != nil {
		log.Printf("[live] failed to write frame: %v", err)
	}
}

func (h *Handler) sendError(conn *websocket.Conn, sessionID, message string) {
	h.send(conn, outgoingFrame{
		Type:      "error",
		SessionID: sessionID,
		Data:      map[string]string{"message": message},
	})
}
