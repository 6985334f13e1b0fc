package chat

import "time"

// Session captures one user's live conversation with the companion.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

// Expression is the companion's displayed emotional state, recomputed from
// the latest sentiment score at the end of every answered turn.
type Expression string

const (
	ExpressionPositive  Expression = "positive"
	ExpressionNeutral   Expression = "neutral"
	ExpressionConcerned Expression = "concerned"
	ExpressionNegative  Expression = "negative"
)
