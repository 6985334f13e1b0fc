package distress

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/havenlabs/haven/backend/internal/analysis/sentiment"
)

// Verdict is the per-message risk decision surfaced to the orchestrator.
// Reasons are ordered by detection step so the UI can show the first and
// most specific one.
type Verdict struct {
	IsDistressed bool     `json:"isDistressed"`
	Confidence   float64  `json:"confidence"`
	Reasons      []string `json:"reasons"`
}

// Config tunes the rule thresholds. The defaults mirror the shipped
// product configuration; changing weights or rule order changes what
// counts as a crisis and is a compatibility break.
type Config struct {
	Enabled                    bool
	NegativeSentimentThreshold float64
	HighMagnitudeThreshold     float64
	Keywords                   []string
}

// DefaultKeywords is the stock concerning-language list.
func DefaultKeywords() []string {
	return []string{
		"suicide", "kill myself", "end it all", "want to die",
		"hopeless", "worthless", "no point", "give up",
		"self harm", "hurt myself", "can't go on",
	}
}

// DefaultConfig returns the production thresholds with detection enabled.
func DefaultConfig() Config {
	return Config{
		Enabled:                    true,
		NegativeSentimentThreshold: -0.3,
		HighMagnitudeThreshold:     0.5,
		Keywords:                   DefaultKeywords(),
	}
}

// crisisPatterns cover direct self-harm intent phrasing. A match overrides
// every other rule: confidence goes straight to 1.0.
var crisisPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(don'?t|do not) (want|wanna) (to )?(live|be here|exist)`),
	regexp.MustCompile(`(?i)(going to|gonna) (kill|hurt|harm) (myself|me)`),
	regexp.MustCompile(`(?i)(no point|nothing left|give up|end it)`),
}

// Classifier evaluates the fixed rule set against a message.
type Classifier struct {
	cfg Config
}

// NewClassifier builds a classifier, falling back to default thresholds
// and keywords for any zero-valued field.
func NewClassifier(cfg Config) *Classifier {
	if cfg.NegativeSentimentThreshold == 0 {
		cfg.NegativeSentimentThreshold = -0.3
	}
	if cfg.HighMagnitudeThreshold == 0 {
		cfg.HighMagnitudeThreshold = 0.5
	}
	if len(cfg.Keywords) == 0 {
		cfg.Keywords = DefaultKeywords()
	}
	return &Classifier{cfg: cfg}
}

// Classify runs all rules in order: keyword scan, sentiment score,
// magnitude, crisis patterns. Confidence accumulates additively except for
// the crisis override. The sentiment signal is optional.
func (c *Classifier) Classify(text string, signal *sentiment.Signal) Verdict {
	if !c.cfg.Enabled {
		return Verdict{IsDistressed: false, Confidence: 0, Reasons: []string{}}
	}

	lower := strings.ToLower(text)
	reasons := []string{}
	confidence := 0.0

	var found []string
	for _, keyword := range c.cfg.Keywords {
		if strings.Contains(lower, keyword) {
			found = append(found, keyword)
		}
	}
	if len(found) > 0 {
		reasons = append(reasons, fmt.Sprintf("Detected concerning language: %s", strings.Join(found, ", ")))
		confidence += 0.6
	}

	if signal != nil {
		if signal.Score < c.cfg.NegativeSentimentThreshold {
			reasons = append(reasons, "Very negative sentiment detected")
			confidence += 0.3
		}
		if signal.Magnitude > c.cfg.HighMagnitudeThreshold {
			reasons = append(reasons, "High emotional intensity detected")
			confidence += 0.2
		}
	}

	// Crisis patterns run against the original-case text; the patterns
	// themselves are case-insensitive.
	for _, pattern := range crisisPatterns {
		if pattern.MatchString(text) {
			reasons = append(reasons, "Crisis-level language detected")
			confidence = 1.0
			break
		}
	}

	if confidence > 1.0 {
		confidence = 1.0
	}

	return Verdict{
		IsDistressed: confidence >= 0.5,
		Confidence:   confidence,
		Reasons:      reasons,
	}
}
