package domain

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoodScore(t *testing.T) {
	tests := []struct {
		mood string
		want float64
	}{
		{"terrible", 2},
		{"rough", 4},
		{"okay", 5},
		{"good", 7},
		{"great", 9},
		{"amazing", 10},
		{"Amazing ", 10},
		{"unknown-garbage", 5},
		{"", 5},
	}

	for _, tt := range tests {
		t.Run(tt.mood, func(t *testing.T) {
			assert.Equal(t, tt.want, MoodScore(tt.mood))
		})
	}
}

func TestRank(t *testing.T) {
	t.Run("returns top four in descending order", func(t *testing.T) {
		var in []Insight
		for i, c := range []int{70, 100, 75, 85, 80, 100} {
			in = append(in, Insight{ID: fmt.Sprintf("i%d", i), Confidence: c})
		}

		ranked := Rank(in)

		require.Len(t, ranked, MaxInsights)
		for i := 1; i < len(ranked); i++ {
			assert.GreaterOrEqual(t, ranked[i-1].Confidence, ranked[i].Confidence)
		}
		assert.Equal(t, []string{"i1", "i5", "i3", "i4"}, ids(ranked))
	})

	t.Run("does not reorder input", func(t *testing.T) {
		in := []Insight{{ID: "a", Confidence: 10}, {ID: "b", Confidence: 90}}
		Rank(in)
		assert.Equal(t, "a", in[0].ID)
	})

	t.Run("clamps confidence", func(t *testing.T) {
		ranked := Rank([]Insight{{ID: "a", Confidence: 140}, {ID: "b", Confidence: -3}})
		assert.Equal(t, 100, ranked[0].Confidence)
		assert.Equal(t, 0, ranked[1].Confidence)
	})

	t.Run("empty", func(t *testing.T) {
		assert.Empty(t, Rank(nil))
	})
}

func TestBucketOf(t *testing.T) {
	at := func(h int) time.Time { return time.Date(2025, 3, 4, h, 30, 0, 0, time.UTC) }

	tests := []struct {
		hour int
		want TimeOfDay
		ok   bool
	}{
		{3, "", false},
		{6, Morning, true},
		{11, Morning, true},
		{12, Afternoon, true},
		{17, Afternoon, true},
		{18, Evening, true},
		{23, Evening, true},
	}

	for _, tt := range tests {
		got, ok := BucketOf(at(tt.hour))
		assert.Equal(t, tt.ok, ok, "hour %d", tt.hour)
		assert.Equal(t, tt.want, got, "hour %d", tt.hour)
	}
}

func TestSleepRange(t *testing.T) {
	assert.Equal(t, "<6h", SleepRanges[SleepRange(4.5)])
	assert.Equal(t, "6-7h", SleepRanges[SleepRange(6)])
	assert.Equal(t, "7-8h", SleepRanges[SleepRange(7.9)])
	assert.Equal(t, "8-9h", SleepRanges[SleepRange(8)])
	assert.Equal(t, "9h+", SleepRanges[SleepRange(11)])
}

func TestFindingKinds(t *testing.T) {
	assert.Equal(t, KindPattern, BestDayFinding{}.Kind())
	assert.Equal(t, KindCorrelation, SleepCorrelationFinding{}.Kind())
	assert.Equal(t, KindAchievement, StreakFinding{}.Kind())
	assert.Equal(t, KindPattern, PeakTimeFinding{}.Kind())
	assert.Equal(t, KindSuggestion, MoodSuggestionFinding{}.Kind())
	assert.Equal(t, KindAchievement, FirstHabitFinding{}.Kind())
}

func TestNewReportGenerated(t *testing.T) {
	id := uuid.New()
	at := time.Date(2025, 3, 4, 21, 0, 0, 0, time.UTC)

	event := NewReportGenerated(id, []Insight{{ID: "streak"}, {ID: "best-day"}}, false, at)

	assert.Equal(t, RoutingKeyReportGenerated, event.RoutingKey())
	assert.Equal(t, id, event.AggregateID())
	assert.Equal(t, at, event.OccurredAt())
	assert.Equal(t, 2, event.InsightCount)
	assert.Equal(t, []string{"streak", "best-day"}, event.InsightIDs)
}

func ids(in []Insight) []string {
	out := make([]string, len(in))
	for i, x := range in {
		out[i] = x.ID
	}
	return out
}
