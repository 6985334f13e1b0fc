package escalation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/havenlabs/haven/backend/internal/analysis/distress"
	"github.com/havenlabs/haven/backend/internal/model/wellness"
	chatservice "github.com/havenlabs/haven/backend/internal/service/chat"
	"github.com/havenlabs/haven/backend/internal/store"
)

var (
	ErrContactRequired = errors.New("at least an email or phone number is required")
	ErrUnknownOutcome  = errors.New("unknown escalation outcome")
	ErrNotEscalated    = errors.New("no escalation pending for session")
)

// Resolution outcomes. A decline leaves the session latch set: the session
// continues without re-offering until a contact is submitted or the
// session ends.
const (
	OutcomeDeclined  = "declined"
	OutcomeSubmitted = "submitted"
)

const declinedReply = "That's completely okay. I'm still here whenever you need to talk. Remember, you can always reach out when you're ready."

const submittedReply = "Thank you for reaching out. 💚 Your request has been sent to our counseling team. Someone will reach out to you soon. In the meantime, I'm still here if you need to talk."

const submittedOfflineReply = "Thank you for your information. A counselor will review your request and reach out to you. Remember, you're not alone in this."

// Prompt is the hand-off offer surfaced to the user when distress is
// detected.
type Prompt struct {
	SessionID string   `json:"sessionId"`
	Message   string   `json:"message"`
	Reasons   []string `json:"reasons"`
}

// Contact is the information collected by the counselor form.
type Contact struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Flow gates escalation offers and turns accepted ones into stored
// counselor requests.
type Flow struct {
	sessions *chatservice.Service
	sink     store.Store
}

// NewFlow wires the escalation flow to session state and storage.
func NewFlow(sessions *chatservice.Service, sink store.Store) *Flow {
	return &Flow{sessions: sessions, sink: sink}
}

// Offer builds the escalation prompt for a distress verdict. The first
// reason is the most specific one, so it leads the message.
func (f *Flow) Offer(sessionID string, verdict distress.Verdict) Prompt {
	message := "We've noticed you might benefit from talking to someone. Would you like to connect with a counselor?"
	if len(verdict.Reasons) > 0 {
		message = fmt.Sprintf("We've noticed you might benefit from talking to someone. %s. Would you like to connect with a counselor?", verdict.Reasons[0])
	}

	return Prompt{
		SessionID: sessionID,
		Message:   message,
		Reasons:   verdict.Reasons,
	}
}

// Resolve closes an open escalation prompt. Submitting requires at least
// one contact channel and clears the session latch; declining leaves the
// latch set so the session is not re-prompted.
func (f *Flow) Resolve(ctx context.Context, sessionID, userID, outcome string, contact Contact) (string, error) {
	if !f.sessions.EscalationActive(sessionID) {
		return "", ErrNotEscalated
	}

	switch outcome {
	case OutcomeDeclined:
		return declinedReply, nil

	case OutcomeSubmitted:
		email := strings.TrimSpace(contact.Email)
		phone := strings.TrimSpace(contact.Phone)
		if email == "" && phone == "" {
			return "", ErrContactRequired
		}

		name := strings.TrimSpace(contact.Name)
		if name == "" {
			name = "Anonymous"
		}

		reply := submittedReply
		request := wellness.CounselorRequest{
			UserID: userID,
			Name:   name,
			Email:  email,
			Phone:  phone,
			Status: wellness.StatusPending,
		}
		if err := f.sink.AppendCounselorRequest(ctx, request); err != nil {
			// The hand-off still resolves; storage failure only changes the
			// acknowledgement wording.
			log.Printf("[escalation] failed to store counselor request for session=%s: %v", sessionID, err)
			reply = submittedOfflineReply
		}

		f.sessions.ClearEscalation(sessionID)
		return reply, nil

	default:
		return "", ErrUnknownOutcome
	}
}
