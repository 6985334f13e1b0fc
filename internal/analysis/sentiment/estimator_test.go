package sentiment

import (
	"reflect"
	"testing"
)

func TestEstimatePositiveMessage(t *testing.T) {
	signal := Estimate("I had a great day, feeling good")
	if signal.Score != 1.0 {
		t.Fatalf("expected score 1.0, got %f", signal.Score)
	}
	if signal.Magnitude != 0.2 {
		t.Fatalf("expected magnitude 0.2, got %f", signal.Magnitude)
	}
}

func TestEstimateNegativeMessage(t *testing.T) {
	signal := Estimate("I feel sad and lonely and hopeless")
	if signal.Score != -1.0 {
		t.Fatalf("expected score -1.0, got %f", signal.Score)
	}
}

func TestEstimateMixedMessage(t *testing.T) {
	signal := Estimate("work is terrible but my friends are wonderful")
	if signal.Score != 0 {
		t.Fatalf("expected balanced score 0, got %f", signal.Score)
	}
}

func TestEstimateNeutralMessage(t *testing.T) {
	signal := Estimate("the meeting is at three")
	if signal.Score != 0 || signal.Magnitude != 0 {
		t.Fatalf("expected zero signal, got score=%f magnitude=%f", signal.Score, signal.Magnitude)
	}
}

func TestEstimateIntensifiersRaiseMagnitudeOnly(t *testing.T) {
	plain := Estimate("I am sad")
	intense := Estimate("I am really very extremely sad")

	if plain.Score != intense.Score {
		t.Fatalf("intensifiers should not move the score: %f vs %f", plain.Score, intense.Score)
	}
	if intense.Magnitude <= plain.Magnitude {
		t.Fatalf("expected intensifiers to raise magnitude: %f vs %f", plain.Magnitude, intense.Magnitude)
	}
}

func TestEstimateBounds(t *testing.T) {
	inputs := []string{
		"",
		"good great happy excited wonderful amazing love like enjoy pleased grateful thankful blessed lucky",
		"bad sad angry frustrated worried anxious stressed depressed lonely scared afraid terrible awful hate disappointed hopeless very extremely really so too incredibly absolutely",
	}

	for _, input := range inputs {
		signal := Estimate(input)
		if signal.Score < -1 || signal.Score > 1 {
			t.Fatalf("score out of range for %q: %f", input, signal.Score)
		}
		if signal.Magnitude < 0 || signal.Magnitude > 2 {
			t.Fatalf("magnitude out of range for %q: %f", input, signal.Magnitude)
		}
	}
}

func TestEstimateDeterministic(t *testing.T) {
	first := Estimate("feeling anxious but grateful")
	second := Estimate("feeling anxious but grateful")
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("estimate is not deterministic: %+v vs %+v", first, second)
	}
}

// Substring matching is deliberate: distinct dictionary words count once
// each, even when they only occur inside larger words.
func TestEstimateSubstringContainment(t *testing.T) {
	signal := Estimate("goodbye")
	if signal.Score != 1.0 {
		t.Fatalf("expected 'good' to match inside 'goodbye', got score %f", signal.Score)
	}
}

func TestEstimateDistinctWordsCountOnce(t *testing.T) {
	signal := Estimate("good good good")
	if signal.Magnitude != 0.1 {
		t.Fatalf("repeated word should count once: magnitude %f", signal.Magnitude)
	}
}
