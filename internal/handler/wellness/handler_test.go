package wellness

import (
	"bytes"
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	wellnessmodel "github.com/havenlabs/haven/backend/internal/model/wellness"
	"github.com/havenlabs/haven/backend/internal/service/ai"
	"github.com/havenlabs/haven/backend/internal/service/analytics"
	chatservice "github.com/havenlabs/haven/backend/internal/service/chat"
	"github.com/havenlabs/haven/backend/internal/store"
)

func setupRouter() (*chi.Mux, *store.MemoryStore) {
	sink := store.NewMemory()
	chatSvc := chatservice.NewService()
	handler := New(sink, chatSvc, nil, ai.NewResponder(rand.New(rand.NewSource(1))), analytics.NewService(sink))

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r, sink
}

func postJSON(t *testing.T, r http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal err: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestMoodCheckIn(t *testing.T) {
	r, sink := setupRouter()

	resp := postJSON(t, r, "/mood", map[string]string{
		"userId": "u1",
		"mood":   wellnessmodel.MoodStruggling,
		"emoji":  "\U0001F622",
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var payload struct {
		Reply string `json:"reply"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if payload.Reply == "" {
		t.Fatal("expected a mood reply")
	}

	data, err := sink.ReadAnalytics(context.Background(), "u1")
	if err != nil {
		t.Fatalf("ReadAnalytics err: %v", err)
	}
	if len(data.MoodEntries) != 1 || data.MoodEntries[0].Mood != wellnessmodel.MoodStruggling {
		t.Fatalf("mood entry not persisted: %+v", data.MoodEntries)
	}
}

func TestMoodCheckInUnknownMood(t *testing.T) {
	r, _ := setupRouter()

	resp := postJSON(t, r, "/mood", map[string]string{"mood": "ecstatic"})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestJournalEntry(t *testing.T) {
	r, sink := setupRouter()

	resp := postJSON(t, r, "/journal", map[string]string{
		"userId": "u1",
		"text":   "today was a lot, but I managed",
		"mood":   wellnessmodel.MoodOkay,
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.Code)
	}

	var payload struct {
		Reply string `json:"reply"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if payload.Reply != journalSavedReply {
		t.Fatalf("unexpected reply: %q", payload.Reply)
	}

	data, _ := sink.ReadAnalytics(context.Background(), "u1")
	if len(data.JournalEntries) != 1 {
		t.Fatalf("journal entry not persisted: %+v", data.JournalEntries)
	}
}

func TestJournalEntryEmptyText(t *testing.T) {
	r, sink := setupRouter()

	resp := postJSON(t, r, "/journal", map[string]string{"text": "   "})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}

	data, _ := sink.ReadAnalytics(context.Background(), "anonymous")
	if len(data.JournalEntries) != 0 {
		t.Fatal("empty journal entry must not be persisted")
	}
}

func TestAnalyticsSummary(t *testing.T) {
	r, _ := setupRouter()

	postJSON(t, r, "/mood", map[string]string{"userId": "u1", "mood": wellnessmodel.MoodGood})
	postJSON(t, r, "/mood", map[string]string{"userId": "u1", "mood": wellnessmodel.MoodGood})
	postJSON(t, r, "/journal", map[string]string{"userId": "u1", "text": "notes"})

	req := httptest.NewRequest(http.MethodGet, "/analytics?userId=u1", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var payload struct {
		Summary struct {
			TotalMoodEntries    int    `json:"totalMoodEntries"`
			TotalJournalEntries int    `json:"totalJournalEntries"`
			MostCommonMood      string `json:"mostCommonMood"`
		} `json:"summary"`
		Conversations  []json.RawMessage `json:"conversations"`
		JournalEntries []struct {
			Text string `json:"text"`
		} `json:"journalEntries"`
		MoodEntries []struct {
			Mood string `json:"mood"`
		} `json:"moodEntries"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if payload.Summary.TotalMoodEntries != 2 || payload.Summary.TotalJournalEntries != 1 {
		t.Fatalf("unexpected totals: %+v", payload.Summary)
	}
	if payload.Summary.MostCommonMood != wellnessmodel.MoodGood {
		t.Fatalf("expected most common mood %q, got %q", wellnessmodel.MoodGood, payload.Summary.MostCommonMood)
	}

	// The raw collections ship alongside the summary for the charts and
	// calendar.
	if payload.Conversations == nil {
		t.Fatal("expected conversations collection in response")
	}
	if len(payload.JournalEntries) != 1 || payload.JournalEntries[0].Text != "notes" {
		t.Fatalf("unexpected journal entries: %+v", payload.JournalEntries)
	}
	if len(payload.MoodEntries) != 2 || payload.MoodEntries[0].Mood != wellnessmodel.MoodGood {
		t.Fatalf("unexpected mood entries: %+v", payload.MoodEntries)
	}
}
