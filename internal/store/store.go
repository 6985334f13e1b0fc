// Package store persists conversation and wellbeing records.
package store

import (
	"context"

	"github.com/havenlabs/haven/backend/internal/model/wellness"
)

// Store is the persistence collaborator. Writes are best-effort from the
// conversation's perspective: the orchestrator logs failures and moves on,
// it never blocks a turn on storage.
type Store interface {
	// AppendMessage records a raw user message, optionally with its
	// sentiment signal, for later analytics.
	AppendMessage(ctx context.Context, record wellness.ConversationRecord) error

	// AppendMood records a mood check-in.
	AppendMood(ctx context.Context, entry wellness.MoodEntry) error

	// AppendJournal records a journal entry.
	AppendJournal(ctx context.Context, entry wellness.JournalEntry) error

	// AppendCounselorRequest records an escalation hand-off.
	AppendCounselorRequest(ctx context.Context, request wellness.CounselorRequest) error

	// ReadAnalytics returns all stored collections for a user, newest
	// first.
	ReadAnalytics(ctx context.Context, userID string) (wellness.Analytics, error)

	// Close releases the underlying resources.
	Close() error
}
