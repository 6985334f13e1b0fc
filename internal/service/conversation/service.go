package conversation

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/havenlabs/haven/backend/internal/analysis/distress"
	analysis "github.com/havenlabs/haven/backend/internal/analysis/sentiment"
	"github.com/havenlabs/haven/backend/internal/model/chat"
	"github.com/havenlabs/haven/backend/internal/model/wellness"
	chatservice "github.com/havenlabs/haven/backend/internal/service/chat"
	"github.com/havenlabs/haven/backend/internal/service/escalation"
	"github.com/havenlabs/haven/backend/internal/store"
)

var ErrEmptyMessage = errors.New("message must not be empty")

// Generator produces a companion reply from the rolling history window.
// Implemented by the AI service; nil means fallback-only mode.
type Generator interface {
	Generate(ctx context.Context, sessionID string, history []chat.Message, userMessage string) (string, error)
}

// Estimator turns message text into a sentiment signal. It never fails;
// the model-backed implementation degrades to the keyword heuristic.
type Estimator interface {
	Estimate(ctx context.Context, text string) analysis.Signal
}

// Responder is the deterministic reply source used when no generator is
// configured or a generation attempt fails.
type Responder interface {
	Reply(message string) string
}

// TurnResult is the outcome of one processed user turn. Exactly one of
// Reply and Escalation is meaningful: an escalated turn suppresses the
// automated reply entirely.
type TurnResult struct {
	UserMessage chat.Message       `json:"userMessage"`
	Reply       *chat.Message      `json:"reply,omitempty"`
	Expression  chat.Expression    `json:"expression,omitempty"`
	Sentiment   *analysis.Signal   `json:"sentiment,omitempty"`
	Verdict     distress.Verdict   `json:"verdict"`
	Escalation  *escalation.Prompt `json:"escalation,omitempty"`
}

// Service drives the per-turn pipeline: persist, estimate, classify, then
// either escalate or respond. One instance serves all sessions; all
// mutable state lives in the session service.
type Service struct {
	sessions   *chatservice.Service
	estimator  Estimator
	classifier *distress.Classifier
	generator  Generator
	responder  Responder
	flow       *escalation.Flow
	sink       store.Store
}

// NewService wires the orchestrator. generator may be nil.
func NewService(
	sessions *chatservice.Service,
	estimator Estimator,
	classifier *distress.Classifier,
	generator Generator,
	responder Responder,
	flow *escalation.Flow,
	sink store.Store,
) *Service {
	return &Service{
		sessions:   sessions,
		estimator:  estimator,
		classifier: classifier,
		generator:  generator,
		responder:  responder,
		flow:       flow,
		sink:       sink,
	}
}

// HandleTurn processes one user message through the fixed pipeline:
// save, sentiment, distress, then escalate or respond. The step order
// must not change; every decision downstream assumes it.
func (s *Service) HandleTurn(ctx context.Context, sessionID, text string) (TurnResult, error) {
	message := strings.TrimSpace(text)
	if message == "" {
		// No state change, no history append, nothing persisted.
		return TurnResult{}, ErrEmptyMessage
	}

	session, err := s.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return TurnResult{}, err
	}

	if err := s.sessions.BeginTurn(sessionID); err != nil {
		return TurnResult{}, err
	}
	defer s.sessions.EndTurn(sessionID)

	// Best-effort persistence of the raw message. Failures never block or
	// fail the turn.
	if err := s.sink.AppendMessage(ctx, wellness.ConversationRecord{
		UserID:  session.UserID,
		Message: message,
	}); err != nil {
		log.Printf("[conversation] failed to persist message for session=%s: %v", sessionID, err)
	}

	signal := s.estimator.Estimate(ctx, message)

	// A second record carries the sentiment for analytics. The store has no
	// dedup key, so analytics counts both writes; that matches the shipped
	// behavior and the at-most-once contract per write.
	if err := s.sink.AppendMessage(ctx, wellness.ConversationRecord{
		UserID:    session.UserID,
		Message:   message,
		Sentiment: &signal,
	}); err != nil {
		log.Printf("[conversation] failed to persist sentiment for session=%s: %v", sessionID, err)
	}

	verdict := s.classifier.Classify(message, &signal)

	if verdict.IsDistressed && s.sessions.TriggerEscalation(sessionID) {
		// Escalation suppresses the reply for this turn: no generation
		// call, no history append. If the latch was already set, the turn
		// falls through and is handled as a normal one.
		prompt := s.flow.Offer(sessionID, verdict)
		log.Printf("[conversation] escalating session=%s confidence=%.2f", sessionID, verdict.Confidence)
		return TurnResult{
			UserMessage: chat.Message{SessionID: sessionID, Sender: chat.SenderUser, Content: message},
			Sentiment:   &signal,
			Verdict:     verdict,
			Escalation:  &prompt,
		}, nil
	}

	reply := s.respond(ctx, sessionID, message)

	userMessage, err := s.sessions.AppendMessage(ctx, chat.Message{
		SessionID: sessionID,
		Sender:    chat.SenderUser,
		Content:   message,
		Sentiment: &signal,
	})
	if err != nil {
		return TurnResult{}, err
	}

	assistantMessage, err := s.sessions.AppendMessage(ctx, chat.Message{
		SessionID: sessionID,
		Sender:    chat.SenderAssistant,
		Content:   reply,
	})
	if err != nil {
		return TurnResult{}, err
	}

	return TurnResult{
		UserMessage: userMessage,
		Reply:       &assistantMessage,
		Expression:  ExpressionFor(&signal),
		Sentiment:   &signal,
		Verdict:     verdict,
	}, nil
}

// respond delegates to the generation provider with the rolling history
// window, substituting the fallback responder on any failure. The user
// never sees a raw provider error.
func (s *Service) respond(ctx context.Context, sessionID, message string) string {
	if s.generator == nil {
		return s.responder.Reply(message)
	}

	history, err := s.sessions.Transcript(ctx, sessionID)
	if err != nil {
		history = nil
	}

	reply, err := s.generator.Generate(ctx, sessionID, history, message)
	if err != nil {
		log.Printf("[conversation] generation failed for session=%s, using fallback: %v", sessionID, err)
		return s.responder.Reply(message)
	}
	return reply
}

// ExpressionFor maps a sentiment score onto the displayed emotional state
// using fixed breakpoints.
func ExpressionFor(signal *analysis.Signal) chat.Expression {
	if signal == nil {
		return chat.ExpressionNeutral
	}

	switch {
	case signal.Score > 0.3:
		return chat.ExpressionPositive
	case signal.Score > 0:
		return chat.ExpressionNeutral
	case signal.Score > -0.3:
		return chat.ExpressionConcerned
	default:
		return chat.ExpressionNegative
	}
}
