package sentiment

import (
	"math"
	"strings"
)

// Signal is the normalized emotional reading for a single message.
// Score runs from -1 (distress-leaning) to 1, Magnitude from 0 to 2.
type Signal struct {
	Score     float64          `json:"score"`
	Magnitude float64          `json:"magnitude"`
	Emotion   string           `json:"emotion,omitempty"`
	Sentences []SentenceSignal `json:"sentences,omitempty"`
}

// SentenceSignal carries per-sentence readings when the upstream model
// provides them. The heuristic path never fills these in.
type SentenceSignal struct {
	Text      string  `json:"text"`
	Score     float64 `json:"score"`
	Magnitude float64 `json:"magnitude"`
}

var positiveWords = []string{
	"good", "great", "happy", "excited", "wonderful", "amazing", "love",
	"like", "enjoy", "pleased", "grateful", "thankful", "blessed", "lucky",
}

var negativeWords = []string{
	"bad", "sad", "angry", "frustrated", "worried", "anxious", "stressed",
	"depressed", "lonely", "scared", "afraid", "terrible", "awful", "hate",
	"disappointed", "hopeless",
}

var intenseWords = []string{
	"very", "extremely", "really", "so", "too", "incredibly", "absolutely",
}

// Estimate scores text with bag-of-words polarity matching. Matching is
// case-insensitive substring containment, not token-aware, so "good" also
// fires inside "goodbye". There is no negation handling either; the verdict
// for "not happy" leans positive. Both are accepted limitations of the
// heuristic path, and the distress thresholds downstream are tuned around
// them.
func Estimate(text string) Signal {
	lower := strings.ToLower(text)

	positiveCount := countMatches(lower, positiveWords)
	negativeCount := countMatches(lower, negativeWords)
	intenseCount := countMatches(lower, intenseWords)

	score := 0.0
	if total := positiveCount + negativeCount; total > 0 {
		score = float64(positiveCount-negativeCount) / float64(total)
	}

	magnitude := math.Min((float64(positiveCount+negativeCount)+0.5*float64(intenseCount))/10, 2)

	return Signal{Score: score, Magnitude: magnitude}
}

func countMatches(lower string, words []string) int {
	count := 0
	for _, word := range words {
		if strings.Contains(lower, word) {
			count++
		}
	}
	return count
}
