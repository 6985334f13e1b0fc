package analytics

import (
	"context"
	"math"

	"github.com/havenlabs/haven/backend/internal/model/wellness"
	"github.com/havenlabs/haven/backend/internal/store"
)

// moodSeriesLimit caps the mood-over-time series at the most recent
// check-ins, matching the profile chart.
const moodSeriesLimit = 30

// MoodPoint is one point on the mood-over-time series. Score is the 1-5
// mapping of the mood value.
type MoodPoint struct {
	Mood  string `json:"mood"`
	Score int    `json:"score"`
	Date  string `json:"date,omitempty"`
}

// Summary is the aggregated profile view over a user's stored activity.
type Summary struct {
	TotalConversations  int            `json:"totalConversations"`
	TotalJournalEntries int            `json:"totalJournalEntries"`
	TotalMoodEntries    int            `json:"totalMoodEntries"`
	AverageSentiment    float64        `json:"averageSentiment"`
	MostCommonMood      string         `json:"mostCommonMood"`
	MoodSeries          []MoodPoint    `json:"moodSeries"`
	MoodDistribution    map[string]int `json:"moodDistribution"`
}

// Service aggregates stored wellness activity into per-user summaries.
type Service struct {
	sink store.Store
}

func NewService(sink store.Store) *Service {
	return &Service{sink: sink}
}

// Summarize reads everything stored for userID and reduces it to the
// profile summary. Only conversation records that carry a sentiment
// signal contribute to the average.
func (s *Service) Summarize(ctx context.Context, userID string) (Summary, error) {
	data, err := s.sink.ReadAnalytics(ctx, userID)
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{
		TotalConversations:  len(data.Conversations),
		TotalJournalEntries: len(data.JournalEntries),
		TotalMoodEntries:    len(data.MoodEntries),
		AverageSentiment:    averageSentiment(data.Conversations),
		MoodDistribution:    make(map[string]int, len(data.MoodEntries)),
	}

	for _, entry := range data.MoodEntries {
		summary.MoodDistribution[entry.Mood]++
	}
	summary.MostCommonMood = mostCommonMood(summary.MoodDistribution)
	summary.MoodSeries = moodSeries(data.MoodEntries)

	return summary, nil
}

func averageSentiment(records []wellness.ConversationRecord) float64 {
	var sum float64
	var count int
	for _, record := range records {
		if record.Sentiment == nil {
			continue
		}
		sum += record.Sentiment.Score
		count++
	}
	if count == 0 {
		return 0
	}
	// Two decimal places, as displayed.
	return math.Round(sum/float64(count)*100) / 100
}

// mostCommonMood picks the mood with the highest count. Ties break toward
// the better mood so a dashboard never under-reports on equal evidence.
func mostCommonMood(distribution map[string]int) string {
	var best string
	var bestCount int
	for _, mood := range []string{
		wellness.MoodGreat,
		wellness.MoodGood,
		wellness.MoodOkay,
		wellness.MoodNotGreat,
		wellness.MoodStruggling,
	} {
		if distribution[mood] > bestCount {
			best = mood
			bestCount = distribution[mood]
		}
	}
	// Moods recorded outside the known set still count.
	for mood, count := range distribution {
		if count > bestCount {
			best = mood
			bestCount = count
		}
	}
	return best
}

// moodSeries returns the last check-ins in chronological order. entries
// arrive newest-first from the store.
func moodSeries(entries []wellness.MoodEntry) []MoodPoint {
	if len(entries) > moodSeriesLimit {
		entries = entries[:moodSeriesLimit]
	}
	series := make([]MoodPoint, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		series = append(series, MoodPoint{
			Mood:  entries[i].Mood,
			Score: wellness.MoodScore(entries[i].Mood),
			Date:  entries[i].Date,
		})
	}
	return series
}
