package domain

import "time"

// Finding is the evidence behind an insight. Each insight carries exactly
// one finding type.
type Finding interface {
	Kind() Kind
}

// BestDayFinding names the weekday with the highest combined energy and mood.
type BestDayFinding struct {
	Weekday time.Weekday
	Score   float64
	Samples int
}

func (BestDayFinding) Kind() Kind { return KindPattern }

// SleepCorrelationFinding records the mean sleep on the most productive days.
type SleepCorrelationFinding struct {
	MeanSleep float64
	Days      int
}

func (SleepCorrelationFinding) Kind() Kind { return KindCorrelation }

// StreakFinding records a run of consecutive days with a completed habit.
type StreakFinding struct {
	Days int
}

func (StreakFinding) Kind() Kind { return KindAchievement }

// PeakTimeFinding names the time of day with the highest mean energy.
type PeakTimeFinding struct {
	Bucket     TimeOfDay
	MeanEnergy float64
}

func (PeakTimeFinding) Kind() Kind { return KindPattern }

// MoodAdvice is the direction of a mood-driven suggestion.
type MoodAdvice string

const (
	AdviceAddHabit MoodAdvice = "add_habit"
	AdviceSimplify MoodAdvice = "simplify"
)

// MoodSuggestionFinding records the mood average behind a suggestion.
type MoodSuggestionFinding struct {
	Advice       MoodAdvice
	MeanMood     float64
	ActiveHabits int
}

func (MoodSuggestionFinding) Kind() Kind { return KindSuggestion }

// FirstHabitFinding celebrates a first habit with a live streak.
type FirstHabitFinding struct {
	HabitName string
	Streak    int
}

func (FirstHabitFinding) Kind() Kind { return KindAchievement }

// TimeOfDay is a coarse bucket of the day.
type TimeOfDay string

const (
	Morning   TimeOfDay = "morning"
	Afternoon TimeOfDay = "afternoon"
	Evening   TimeOfDay = "evening"
)

// TimesOfDay returns the buckets in day order.
func TimesOfDay() []TimeOfDay {
	return []TimeOfDay{Morning, Afternoon, Evening}
}

// BucketOf places t in a time-of-day bucket. Hours before 06:00 belong to
// no bucket.
func BucketOf(t time.Time) (TimeOfDay, bool) {
	switch h := t.Hour(); {
	case h >= 6 && h < 12:
		return Morning, true
	case h >= 12 && h < 18:
		return Afternoon, true
	case h >= 18:
		return Evening, true
	default:
		return "", false
	}
}
