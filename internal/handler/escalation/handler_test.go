package escalation

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	chatservice "github.com/havenlabs/haven/backend/internal/service/chat"
	"github.com/havenlabs/haven/backend/internal/service/escalation"
	"github.com/havenlabs/haven/backend/internal/store"
)

func setupRouter(t *testing.T) (*chi.Mux, *chatservice.Service, *store.MemoryStore, string) {
	t.Helper()
	chatSvc := chatservice.NewService()
	sink := store.NewMemory()
	handler := New(escalation.NewFlow(chatSvc, sink))

	session, err := chatSvc.CreateSession(context.Background(), "u1")
	if err != nil {
		t.Fatalf("CreateSession err: %v", err)
	}

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r, chatSvc, sink, session.ID
}

func postResolve(t *testing.T, r http.Handler, body map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/escalation/resolve", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestResolveWithoutPendingEscalation(t *testing.T) {
	r, _, _, sessionID := setupRouter(t)

	resp := postResolve(t, r, map[string]string{
		"sessionId": sessionID,
		"outcome":   escalation.OutcomeDeclined,
	})
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.Code)
	}
}

func TestResolveDecline(t *testing.T) {
	r, chatSvc, _, sessionID := setupRouter(t)
	chatSvc.TriggerEscalation(sessionID)

	resp := postResolve(t, r, map[string]string{
		"sessionId": sessionID,
		"userId":    "u1",
		"outcome":   escalation.OutcomeDeclined,
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var payload struct {
		Reply string `json:"reply"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if payload.Reply == "" {
		t.Fatal("expected a decline reply")
	}
}

func TestResolveSubmitWithoutContact(t *testing.T) {
	r, chatSvc, _, sessionID := setupRouter(t)
	chatSvc.TriggerEscalation(sessionID)

	resp := postResolve(t, r, map[string]string{
		"sessionId": sessionID,
		"outcome":   escalation.OutcomeSubmitted,
	})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestResolveSubmitStoresRequest(t *testing.T) {
	r, chatSvc, sink, sessionID := setupRouter(t)
	chatSvc.TriggerEscalation(sessionID)

	resp := postResolve(t, r, map[string]string{
		"sessionId": sessionID,
		"userId":    "u1",
		"outcome":   escalation.OutcomeSubmitted,
		"email":     "someone@example.com",
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	requests := sink.CounselorRequests("u1")
	if len(requests) != 1 {
		t.Fatalf("expected 1 counselor request, got %d", len(requests))
	}
	if chatSvc.EscalationActive(sessionID) {
		t.Fatal("submit must clear the escalation latch")
	}
}
