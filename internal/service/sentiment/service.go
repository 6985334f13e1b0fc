package sentiment

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	analysis "github.com/havenlabs/haven/backend/internal/analysis/sentiment"
)

// Config controls the model-backed estimator.
type Config struct {
	Enabled bool
}

// Service estimates sentiment with the chat model and falls back to the
// keyword heuristic on any failure. Estimate never returns an error: the
// worst case is a heuristic signal.
type Service struct {
	enabled    bool
	classifier compose.Runnable[map[string]any, *schema.Message]
	fallback   func(text string) analysis.Signal
}

// NewService creates the estimator. chatModel may reuse the generation
// service's model instance; a nil model leaves only the heuristic path.
func NewService(ctx context.Context, chatModel model.ChatModel, cfg Config) (*Service, error) {
	svc := &Service{
		enabled:  cfg.Enabled && chatModel != nil,
		fallback: analysis.Estimate,
	}

	if !svc.enabled {
		return svc, nil
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage(classifierSystemPrompt),
		schema.UserMessage(classifierUserPrompt),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile sentiment classifier chain: %w", err)
	}

	svc.classifier = runnable
	return svc, nil
}

// Enabled reports whether the model path is active.
func (s *Service) Enabled() bool {
	return s != nil && s.enabled && s.classifier != nil
}

// Estimate returns a sentiment signal for text. Model failures of any kind
// (call error, empty reply, malformed JSON) degrade to the heuristic.
func (s *Service) Estimate(ctx context.Context, text string) analysis.Signal {
	if !s.Enabled() {
		return s.fallback(text)
	}

	msg, err := s.classifier.Invoke(ctx, map[string]any{"text": text})
	if err != nil {
		log.Printf("[sentiment] classifier invoke failed, using heuristic: %v", err)
		return s.fallback(text)
	}
	if msg == nil || strings.TrimSpace(msg.Content) == "" {
		return s.fallback(text)
	}

	payload, err := parseClassifierOutput(msg.Content)
	if err != nil {
		log.Printf("[sentiment] classifier output parse failed, using heuristic: %v", err)
		return s.fallback(text)
	}

	return signalFromPayload(payload)
}

// parseClassifierOutput extracts the JSON object from the model's reply.
func parseClassifierOutput(content string) (*classifierPayload, error) {
	trimmed := strings.TrimSpace(content)
	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start == -1 || end == -1 || end <= start {
		return nil, fmt.Errorf("missing json object")
	}

	payload := &classifierPayload{}
	if err := json.Unmarshal([]byte(trimmed[start:end+1]), payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// signalFromPayload applies neutral defaults for absent fields and clamps
// the rest into range.
func signalFromPayload(payload *classifierPayload) analysis.Signal {
	signal := analysis.Signal{Emotion: "neutral"}

	if payload.Score != nil {
		signal.Score = clamp(*payload.Score, -1, 1)
	}
	if payload.Magnitude != nil {
		signal.Magnitude = clamp(*payload.Magnitude, 0, 2)
	}
	if emotion := strings.ToLower(strings.TrimSpace(payload.Emotion)); emotion != "" {
		signal.Emotion = emotion
	}

	return signal
}

func clamp(val, lo, hi float64) float64 {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}

type classifierPayload struct {
	Score     *float64 `json:"score"`
	Magnitude *float64 `json:"magnitude"`
	Emotion   string   `json:"emotion"`
}

const classifierSystemPrompt = "You are a sentiment analyst. Read the user's text and respond with ONLY a JSON object in this exact format: {\"score\": -1.0 to 1.0 (negative to positive), \"magnitude\": 0.0 to 2.0 (emotional intensity), \"emotion\": \"one word emotion\"}. Do not output anything besides the JSON object."

const classifierUserPrompt = "Text: \"{text}\""
