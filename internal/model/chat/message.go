package chat

import (
	"time"

	"github.com/havenlabs/haven/backend/internal/analysis/sentiment"
)

// Sender identifies which side of the conversation authored a message.
const (
	SenderUser      = "user"
	SenderAssistant = "assistant"
)

// Message is one immutable history entry. History is append-only; entries
// are never edited or removed within a session.
type Message struct {
	ID        string            `json:"id"`
	SessionID string            `json:"sessionId"`
	Sender    string            `json:"sender"`
	Content   string            `json:"content"`
	Sentiment *sentiment.Signal `json:"sentiment,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
}
