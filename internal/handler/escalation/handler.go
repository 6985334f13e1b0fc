package escalation

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/havenlabs/haven/backend/internal/service/escalation"
	"github.com/havenlabs/haven/backend/pkg/utils"
)

// Handler exposes the escalation resolution endpoint.
type Handler struct {
	flow *escalation.Flow
}

func New(flow *escalation.Flow) *Handler {
	return &Handler{flow: flow}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/escalation/resolve", h.handleResolve)
}

func (h *Handler) handleResolve(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		SessionID string `json:"sessionId"`
		UserID    string `json:"userId"`
		Outcome   string `json:"outcome"`
		Name      string `json:"name"`
		Email     string `json:"email"`
		Phone     string `json:"phone"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if payload.SessionID == "" {
		utils.RespondError(w, http.StatusBadRequest, "sessionId is required")
		return
	}

	contact := escalation.Contact{
		Name:  payload.Name,
		Email: payload.Email,
		Phone: payload.Phone,
	}

	reply, err := h.flow.Resolve(r.Context(), payload.SessionID, payload.UserID, payload.Outcome, contact)
	if err != nil {
		utils.RespondError(w, statusForResolveError(err), err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{
		"outcome": payload.Outcome,
		"reply":   reply,
	})
}

func statusForResolveError(err error) int {
	switch {
	case errors.Is(err, escalation.ErrNotEscalated):
		return http.StatusConflict
	case errors.Is(err, escalation.ErrContactRequired), errors.Is(err, escalation.ErrUnknownOutcome):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
