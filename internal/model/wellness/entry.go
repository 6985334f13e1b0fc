package wellness

import (
	"time"

	"github.com/havenlabs/haven/backend/internal/analysis/sentiment"
)

// Recognized mood check-in values, best to worst.
const (
	MoodGreat      = "great"
	MoodGood       = "good"
	MoodOkay       = "okay"
	MoodNotGreat   = "not-great"
	MoodStruggling = "struggling"
)

// MoodScore maps a mood value onto the 1-5 scale used by the mood chart.
// Unknown moods land in the middle.
func MoodScore(mood string) int {
	switch mood {
	case MoodGreat:
		return 5
	case MoodGood:
		return 4
	case MoodOkay:
		return 3
	case MoodNotGreat:
		return 2
	case MoodStruggling:
		return 1
	default:
		return 3
	}
}

// KnownMood reports whether mood is one of the recognized check-in values.
func KnownMood(mood string) bool {
	switch mood {
	case MoodGreat, MoodGood, MoodOkay, MoodNotGreat, MoodStruggling:
		return true
	}
	return false
}

// MoodEntry is a single mood check-in.
type MoodEntry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Mood      string    `json:"mood"`
	Emoji     string    `json:"emoji,omitempty"`
	Date      string    `json:"date"` // YYYY-MM-DD, for the calendar view
	CreatedAt time.Time `json:"createdAt"`
}

// JournalEntry is a free-text journal record, optionally tagged with the
// mood active when it was written.
type JournalEntry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Text      string    `json:"text"`
	Mood      string    `json:"mood,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// ConversationRecord is the copy of a user message handed to storage for
// later analytics. It is written best-effort and never read back into the
// live session.
type ConversationRecord struct {
	ID        string            `json:"id"`
	UserID    string            `json:"userId"`
	Message   string            `json:"message"`
	Sentiment *sentiment.Signal `json:"sentiment,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
}

// CounselorRequest is the structured hand-off produced when a user accepts
// an escalation offer.
type CounselorRequest struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// StatusPending is the initial state of every counselor request.
const StatusPending = "pending"

// Analytics bundles the per-user collections read back for the profile and
// calendar views.
type Analytics struct {
	Conversations  []ConversationRecord `json:"conversations"`
	JournalEntries []JournalEntry       `json:"journalEntries"`
	MoodEntries    []MoodEntry          `json:"moodEntries"`
}
