package wellness

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/havenlabs/haven/backend/internal/model/chat"
	"github.com/havenlabs/haven/backend/internal/model/wellness"
	"github.com/havenlabs/haven/backend/internal/service/ai"
	"github.com/havenlabs/haven/backend/internal/service/analytics"
	chatservice "github.com/havenlabs/haven/backend/internal/service/chat"
	"github.com/havenlabs/haven/backend/internal/store"
	"github.com/havenlabs/haven/backend/pkg/utils"
)

const (
	journalSavedReply = "Your journal entry has been saved. \U0001F4DD Writing can be a powerful way to process your thoughts and feelings. How are you feeling after writing that?"
	journalNotedReply = "I've noted your journal entry. \U0001F4DD Sometimes just writing things down can help us understand our feelings better."
)

// Generator produces a contextual reply for a mood check-in. Nil means
// the fixed per-mood replies are used.
type Generator interface {
	Generate(ctx context.Context, sessionID string, history []chat.Message, userMessage string) (string, error)
}

// Handler exposes mood check-ins, journaling and the analytics summary.
type Handler struct {
	sink      store.Store
	sessions  *chatservice.Service
	generator Generator
	responder *ai.Responder
	summaries *analytics.Service
}

func New(sink store.Store, sessions *chatservice.Service, generator Generator, responder *ai.Responder, summaries *analytics.Service) *Handler {
	return &Handler{
		sink:      sink,
		sessions:  sessions,
		generator: generator,
		responder: responder,
		summaries: summaries,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/mood", h.handleMood)
	r.Post("/journal", h.handleJournal)
	r.Get("/analytics", h.handleAnalytics)
}

func (h *Handler) handleMood(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		UserID    string `json:"userId"`
		SessionID string `json:"sessionId"`
		Mood      string `json:"mood"`
		Emoji     string `json:"emoji"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if !wellness.KnownMood(payload.Mood) {
		utils.RespondError(w, http.StatusBadRequest, "unrecognized mood value")
		return
	}

	entry := wellness.MoodEntry{
		UserID: userOrAnonymous(payload.UserID),
		Mood:   payload.Mood,
		Emoji:  payload.Emoji,
		Date:   time.Now().UTC().Format("2006-01-02"),
	}
	if err := h.sink.AppendMood(r.Context(), entry); err != nil {
		log.Printf("[wellness] failed to persist mood entry: %v", err)
	}

	utils.RespondJSON(w, http.StatusCreated, map[string]any{
		"entry": entry,
		"reply": h.moodReply(r.Context(), payload.SessionID, payload.Mood, payload.Emoji),
	})
}

// moodReply asks the generation provider for a contextual response when
// one is configured, falling back to the fixed per-mood replies.
func (h *Handler) moodReply(ctx context.Context, sessionID, mood, emoji string) string {
	if h.generator == nil {
		return h.responder.MoodReply(mood)
	}

	var history []chat.Message
	if sessionID != "" {
		if transcript, err := h.sessions.Transcript(ctx, sessionID); err == nil {
			history = transcript
		}
	}

	message := fmt.Sprintf("I'm feeling %s today. %s", mood, emoji)
	reply, err := h.generator.Generate(ctx, sessionID, history, message)
	if err != nil {
		log.Printf("[wellness] mood reply generation failed, using fallback: %v", err)
		return h.responder.MoodReply(mood)
	}
	return reply
}

func (h *Handler) handleJournal(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		UserID string `json:"userId"`
		Text   string `json:"text"`
		Mood   string `json:"mood"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	text := strings.TrimSpace(payload.Text)
	if text == "" {
		utils.RespondError(w, http.StatusBadRequest, "journal text must not be empty")
		return
	}

	entry := wellness.JournalEntry{
		UserID: userOrAnonymous(payload.UserID),
		Text:   text,
		Mood:   payload.Mood,
	}

	// A failed write still acknowledges the entry, with softer wording.
	reply := journalSavedReply
	if err := h.sink.AppendJournal(r.Context(), entry); err != nil {
		log.Printf("[wellness] failed to persist journal entry: %v", err)
		reply = journalNotedReply
	}

	utils.RespondJSON(w, http.StatusCreated, map[string]any{
		"entry": entry,
		"reply": reply,
	})
}

func (h *Handler) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	userID := userOrAnonymous(r.URL.Query().Get("userId"))

	// The profile and calendar views render from the raw collections; the
	// summary rides along so clients don't recompute the aggregates.
	data, err := h.sink.ReadAnalytics(r.Context(), userID)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to read analytics")
		return
	}

	summary, err := h.summaries.Summarize(r.Context(), userID)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to read analytics")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"summary":        summary,
		"conversations":  data.Conversations,
		"journalEntries": data.JournalEntries,
		"moodEntries":    data.MoodEntries,
	})
}

func userOrAnonymous(userID string) string {
	if userID == "" {
		return "anonymous"
	}
	return userID
}
