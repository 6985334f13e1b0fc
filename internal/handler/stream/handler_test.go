package stream

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/havenlabs/haven/backend/internal/analysis/distress"
	analysis "github.com/havenlabs/haven/backend/internal/analysis/sentiment"
	"github.com/havenlabs/haven/backend/internal/service/ai"
	chatservice "github.com/havenlabs/haven/backend/internal/service/chat"
	"github.com/havenlabs/haven/backend/internal/service/conversation"
	"github.com/havenlabs/haven/backend/internal/service/escalation"
	"github.com/havenlabs/haven/backend/internal/store"
)

type heuristicEstimator struct{}

func (heuristicEstimator) Estimate(_ context.Context, text string) analysis.Signal {
	return analysis.Estimate(text)
}

func setupHandler(t *testing.T) (*Handler, string) {
	t.Helper()
	chatSvc := chatservice.NewService()
	sink := store.NewMemory()
	turns := conversation.NewService(
		chatSvc,
		heuristicEstimator{},
		distress.NewClassifier(distress.DefaultConfig()),
		nil,
		ai.NewResponder(rand.New(rand.NewSource(1))),
		escalation.NewFlow(chatSvc, sink),
		sink,
	)

	session, err := chatSvc.CreateSession(context.Background(), "u1")
	if err != nil {
		t.Fatalf("CreateSession err: %v", err)
	}

	return New(turns), session.ID
}

func parseEvents(t *testing.T, body string) []StreamResponse {
	t.Helper()
	var events []StreamResponse
	for _, line := range strings.Split(body, "\n") {
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var event StreamResponse
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &event); err != nil {
			t.Fatalf("unmarshal event %q: %v", line, err)
		}
		events = append(events, event)
	}
	return events
}

func TestStreamNormalTurn(t *testing.T) {
	handler, sessionID := setupHandler(t)
	resp := httptest.NewRecorder()

	if err := handler.HandleStreamRequest(context.Background(), resp, sessionID, "hello there"); err != nil {
		t.Fatalf("HandleStreamRequest err: %v", err)
	}

	if ct := resp.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("unexpected content type: %s", ct)
	}

	events := parseEvents(t, resp.Body.String())
	if len(events) != 4 {
		t.Fatalf("expected start/message/expression/end, got %d events", len(events))
	}
	if events[0].Event != "start" || events[1].Event != "message" || events[2].Event != "expression" || events[3].Event != "end" {
		t.Fatalf("unexpected event order: %+v", events)
	}
	if events[1].Content == "" {
		t.Fatal("message event must carry the reply")
	}
	if !events[3].Finished {
		t.Fatal("end event must be marked finished")
	}
}

func TestStreamEscalatedTurn(t *testing.T) {
	handler, sessionID := setupHandler(t)
	resp := httptest.NewRecorder()

	if err := handler.HandleStreamRequest(context.Background(), resp, sessionID, "I want to kill myself"); err != nil {
		t.Fatalf("HandleStreamRequest err: %v", err)
	}

	events := parseEvents(t, resp.Body.String())
	if len(events) != 3 {
		t.Fatalf("expected start/escalation/end, got %d events", len(events))
	}
	if events[1].Event != "escalation" || events[1].Content == "" {
		t.Fatalf("expected escalation event with a prompt, got %+v", events[1])
	}
}

func TestStreamUnknownSession(t *testing.T) {
	handler, _ := setupHandler(t)
	resp := httptest.NewRecorder()

	if err := handler.HandleStreamRequest(context.Background(), resp, "missing", "hello"); err == nil {
		t.Fatal("expected error for unknown session")
	}

	events := parseEvents(t, resp.Body.String())
	last := events[len(events)-1]
	if last.Event != "error" || last.Error == "" {
		t.Fatalf("expected trailing error event, got %+v", last)
	}
}
