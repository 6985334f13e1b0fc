package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/havenlabs/haven/backend/internal/analysis/sentiment"
	"github.com/havenlabs/haven/backend/internal/model/wellness"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "haven.db"))
	if err != nil {
		t.Fatalf("NewSQLite err: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	err := s.AppendMessage(ctx, wellness.ConversationRecord{
		UserID:    "u1",
		Message:   "feeling stressed",
		Sentiment: &sentiment.Signal{Score: -0.5, Magnitude: 0.6},
	})
	if err != nil {
		t.Fatalf("AppendMessage err: %v", err)
	}

	if err := s.AppendMood(ctx, wellness.MoodEntry{UserID: "u1", Mood: wellness.MoodOkay, Emoji: "😐"}); err != nil {
		t.Fatalf("AppendMood err: %v", err)
	}
	if err := s.AppendJournal(ctx, wellness.JournalEntry{UserID: "u1", Text: "long day", Mood: wellness.MoodOkay}); err != nil {
		t.Fatalf("AppendJournal err: %v", err)
	}
	if err := s.AppendCounselorRequest(ctx, wellness.CounselorRequest{UserID: "u1", Email: "a@b.c"}); err != nil {
		t.Fatalf("AppendCounselorRequest err: %v", err)
	}

	analytics, err := s.ReadAnalytics(ctx, "u1")
	if err != nil {
		t.Fatalf("ReadAnalytics err: %v", err)
	}

	if len(analytics.Conversations) != 1 {
		t.Fatalf("expected 1 conversation, got %d", len(analytics.Conversations))
	}
	if analytics.Conversations[0].Sentiment == nil || analytics.Conversations[0].Sentiment.Score != -0.5 {
		t.Fatalf("sentiment did not round-trip: %+v", analytics.Conversations[0].Sentiment)
	}
	if len(analytics.JournalEntries) != 1 || len(analytics.MoodEntries) != 1 {
		t.Fatalf("expected 1 journal and 1 mood entry, got %d/%d", len(analytics.JournalEntries), len(analytics.MoodEntries))
	}
	if analytics.MoodEntries[0].Date == "" {
		t.Fatal("mood entry date should default to today")
	}
}

func TestSQLiteAnalyticsScopedToUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.AppendMessage(ctx, wellness.ConversationRecord{UserID: "u1", Message: "hi"}); err != nil {
		t.Fatalf("AppendMessage err: %v", err)
	}
	if err := s.AppendMessage(ctx, wellness.ConversationRecord{UserID: "u2", Message: "hello"}); err != nil {
		t.Fatalf("AppendMessage err: %v", err)
	}

	analytics, err := s.ReadAnalytics(ctx, "u1")
	if err != nil {
		t.Fatalf("ReadAnalytics err: %v", err)
	}
	if len(analytics.Conversations) != 1 || analytics.Conversations[0].UserID != "u1" {
		t.Fatalf("analytics leaked across users: %+v", analytics.Conversations)
	}
}

func TestSQLiteCounselorRequestDefaults(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.AppendCounselorRequest(ctx, wellness.CounselorRequest{UserID: "u1", Phone: "555-0100"}); err != nil {
		t.Fatalf("AppendCounselorRequest err: %v", err)
	}

	var status string
	row := s.db.QueryRow(`SELECT status FROM counselor_requests WHERE user_id = ?`, "u1")
	if err := row.Scan(&status); err != nil {
		t.Fatalf("scan status: %v", err)
	}
	if status != wellness.StatusPending {
		t.Fatalf("expected pending status, got %q", status)
	}
}
