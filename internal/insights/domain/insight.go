// Package domain defines insights, the findings behind them and the fixed
// scoring tables the analysis relies on.
package domain

import (
	"sort"
	"strings"
)

// MaxInsights is the number of insights an analysis returns.
const MaxInsights = 4

// Kind classifies an insight.
type Kind string

const (
	KindPattern     Kind = "pattern"
	KindCorrelation Kind = "correlation"
	KindAchievement Kind = "achievement"
	KindSuggestion  Kind = "suggestion"
)

// Insight is a ranked, human-readable finding. Confidence is in [0, 100].
type Insight struct {
	ID          string  `json:"id"`
	Kind        Kind    `json:"type"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Confidence  int     `json:"confidence"`
	Icon        string  `json:"icon"`
	Color       string  `json:"color"`
	Finding     Finding `json:"-"`
}

// ClampConfidence bounds c to [0, 100].
func ClampConfidence(c int) int {
	switch {
	case c < 0:
		return 0
	case c > 100:
		return 100
	default:
		return c
	}
}

// Rank sorts insights by descending confidence, keeping generation order
// among ties, and returns at most MaxInsights.
func Rank(insights []Insight) []Insight {
	ranked := append([]Insight(nil), insights...)
	for i := range ranked {
		ranked[i].Confidence = ClampConfidence(ranked[i].Confidence)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Confidence > ranked[j].Confidence
	})
	if len(ranked) > MaxInsights {
		ranked = ranked[:MaxInsights]
	}
	return ranked
}

// DefaultMoodScore is used for unknown or missing moods.
const DefaultMoodScore = 5.0

var moodScores = map[string]float64{
	"terrible": 2,
	"rough":    4,
	"okay":     5,
	"good":     7,
	"great":    9,
	"amazing":  10,
}

// MoodScore maps a mood label onto a 10 point scale.
func MoodScore(mood string) float64 {
	if s, ok := moodScores[strings.ToLower(strings.TrimSpace(mood))]; ok {
		return s
	}
	return DefaultMoodScore
}
