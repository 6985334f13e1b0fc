package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/havenlabs/haven/backend/internal/model/wellness"
)

// MemoryStore keeps all records in process memory. It backs tests and the
// no-database deployment mode.
type MemoryStore struct {
	mu            sync.RWMutex
	conversations []wellness.ConversationRecord
	journals      []wellness.JournalEntry
	moods         []wellness.MoodEntry
	requests      []wellness.CounselorRequest
}

// NewMemory returns an empty in-memory store.
func NewMemory() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) AppendMessage(_ context.Context, record wellness.ConversationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	s.conversations = append(s.conversations, record)
	return nil
}

func (s *MemoryStore) AppendMood(_ context.Context, entry wellness.MoodEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if entry.Date == "" {
		entry.Date = entry.CreatedAt.Format("2006-01-02")
	}
	s.moods = append(s.moods, entry)
	return nil
}

func (s *MemoryStore) AppendJournal(_ context.Context, entry wellness.JournalEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	s.journals = append(s.journals, entry)
	return nil
}

func (s *MemoryStore) AppendCounselorRequest(_ context.Context, request wellness.CounselorRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if request.ID == "" {
		request.ID = uuid.NewString()
	}
	if request.CreatedAt.IsZero() {
		request.CreatedAt = time.Now().UTC()
	}
	if request.Status == "" {
		request.Status = wellness.StatusPending
	}
	s.requests = append(s.requests, request)
	return nil
}

// CounselorRequests returns stored hand-offs for a user, used by tests and
// operator tooling.
func (s *MemoryStore) CounselorRequests(userID string) []wellness.CounselorRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]wellness.CounselorRequest, 0, len(s.requests))
	for _, request := range s.requests {
		if request.UserID == userID {
			out = append(out, request)
		}
	}
	return out
}

func (s *MemoryStore) ReadAnalytics(_ context.Context, userID string) (wellness.Analytics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	analytics := wellness.Analytics{
		Conversations:  []wellness.ConversationRecord{},
		JournalEntries: []wellness.JournalEntry{},
		MoodEntries:    []wellness.MoodEntry{},
	}

	for _, record := range s.conversations {
		if record.UserID == userID {
			analytics.Conversations = append(analytics.Conversations, record)
		}
	}
	for _, entry := range s.journals {
		if entry.UserID == userID {
			analytics.JournalEntries = append(analytics.JournalEntries, entry)
		}
	}
	for _, entry := range s.moods {
		if entry.UserID == userID {
			analytics.MoodEntries = append(analytics.MoodEntries, entry)
		}
	}

	sort.SliceStable(analytics.Conversations, func(i, j int) bool {
		return analytics.Conversations[i].CreatedAt.After(analytics.Conversations[j].CreatedAt)
	})
	sort.SliceStable(analytics.JournalEntries, func(i, j int) bool {
		return analytics.JournalEntries[i].CreatedAt.After(analytics.JournalEntries[j].CreatedAt)
	})
	sort.SliceStable(analytics.MoodEntries, func(i, j int) bool {
		return analytics.MoodEntries[i].CreatedAt.After(analytics.MoodEntries[j].CreatedAt)
	})

	return analytics, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
