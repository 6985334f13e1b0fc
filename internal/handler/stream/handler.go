package stream

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/havenlabs/haven/backend/internal/service/conversation"
	"github.com/havenlabs/haven/backend/pkg/utils"
)

// Handler runs a conversation turn over Server-Sent Events so the
// frontend can show the reply, expression and any escalation prompt as
// separate frames.
type Handler struct {
	turns *conversation.Service
}

func New(turns *conversation.Service) *Handler {
	return &Handler{turns: turns}
}

// StreamResponse is one SSE frame.
type StreamResponse struct {
	Event      string `json:"event"`
	Content    string `json:"content,omitempty"`
	SessionID  string `json:"sessionId,omitempty"`
	Expression string `json:"expression,omitempty"`
	Finished   bool   `json:"finished,omitempty"`
	Error      string `json:"error,omitempty"`
}

// HandleStreamRequest processes one user message and emits the turn
// outcome as a short SSE event sequence.
func (h *Handler) HandleStreamRequest(ctx context.Context, w http.ResponseWriter, sessionID, userMessage string) error {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return fmt.Errorf("streaming unsupported")
	}

	utils.SetupSSEHeaders(w)

	h.send(w, flusher, StreamResponse{
		Event:     "start",
		SessionID: sessionID,
	})

	result, err := h.turns.HandleTurn(ctx, sessionID, userMessage)
	if err != nil {
		h.send(w, flusher, StreamResponse{
			Event: "error",
			Error: err.Error(),
		})
		return err
	}

	if result.Escalation != nil {
		h.send(w, flusher, StreamResponse{
			Event:     "escalation",
			SessionID: sessionID,
			Content:   result.Escalation.Message,
		})
	} else if result.Reply != nil {
		h.send(w, flusher, StreamResponse{
			Event:     "message",
			SessionID: sessionID,
			Content:   result.Reply.Content,
		})
		h.send(w, flusher, StreamResponse{
			Event:      "expression",
			SessionID:  sessionID,
			Expression: string(result.Expression),
		})
	}

	h.send(w, flusher, StreamResponse{
		Event:     "end",
		SessionID: sessionID,
		Finished:  true,
	})

	log.Printf("[stream] completed turn for session=%s", sessionID)
	return nil
}

func (h *Handler) send(w http.ResponseWriter, flusher http.Flusher, response StreamResponse) {
	utils.SendSSEChunk(w, flusher, response)
}
