package chat

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/havenlabs/haven/backend/internal/model/chat"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrTurnInFlight    = errors.New("turn already in flight")
)

type sessionState struct {
	session  chat.Session
	messages []chat.Message

	// escalated is the per-session escalation latch. Once set it stays set
	// until a counselor request is submitted; further distress verdicts in
	// the same session fall through to normal responses.
	escalated bool

	// busy enforces one turn in flight per session, the service-side
	// counterpart of the UI disabling its input for the turn's duration.
	busy bool
}

// Service owns per-session conversation state: history, the escalation
// latch, and the single-turn guard. Callers only ever receive copies.
type Service struct {
	mu       sync.RWMutex
	sessions map[string]*sessionState
}

// NewService bootstraps the in-memory session service.
func NewService() *Service {
	return &Service{sessions: make(map[string]*sessionState)}
}

// CreateSession provisions a session for a user. An empty userID maps to
// the anonymous user.
func (s *Service) CreateSession(_ context.Context, userID string) (chat.Session, error) {
	if userID == "" {
		userID = "anonymous"
	}

	session := chat.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	s.sessions[session.ID] = &sessionState{
		session:  session,
		messages: make([]chat.Message, 0, 16),
	}
	s.mu.Unlock()

	return session, nil
}

// GetSession retrieves a session by identifier.
func (s *Service) GetSession(_ context.Context, sessionID string) (chat.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.sessions[sessionID]
	if !ok {
		return chat.Session{}, ErrSessionNotFound
	}
	return state.session, nil
}

// AppendMessage appends a message to the session history.
func (s *Service) AppendMessage(_ context.Context, message chat.Message) (chat.Message, error) {
	if message.SessionID == "" {
		return chat.Message{}, ErrSessionNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.sessions[message.SessionID]
	if !ok {
		return chat.Message{}, ErrSessionNotFound
	}

	message.ID = uuid.NewString()
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now().UTC()
	}

	state.messages = append(state.messages, message)
	return message, nil
}

// Transcript returns a copy of the stored messages for a session.
func (s *Service) Transcript(_ context.Context, sessionID string) ([]chat.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}

	copied := make([]chat.Message, len(state.messages))
	copy(copied, state.messages)
	return copied, nil
}

// BeginTurn marks the session busy for the duration of one turn. It fails
// when a turn is already running, preserving the one-turn-in-flight
// invariant the decision pipeline depends on.
func (s *Service) BeginTurn(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.sessions[sessionID]
	if !ok {
		return ErrSessionNotFound
	}
	if state.busy {
		return ErrTurnInFlight
	}
	state.busy = true
	return nil
}

// EndTurn releases the turn guard.
func (s *Service) EndTurn(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if state, ok := s.sessions[sessionID]; ok {
		state.busy = false
	}
}

// TriggerEscalation sets the escalation latch. It returns false when the
// latch was already set, in which case the caller must treat the turn as a
// normal one.
func (s *Service) TriggerEscalation(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.sessions[sessionID]
	if !ok || state.escalated {
		return false
	}
	state.escalated = true
	return true
}

// EscalationActive reports whether the session's escalation latch is set.
func (s *Service) EscalationActive(sessionID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.sessions[sessionID]
	return ok && state.escalated
}

// ClearEscalation resets the latch after a successful counselor hand-off.
func (s *Service) ClearEscalation(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if state, ok := s.sessions[sessionID]; ok {
		state.escalated = false
	}
}
