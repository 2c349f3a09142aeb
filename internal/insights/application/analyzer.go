// Package application computes insights and chart data from check-in and
// habit history.
package application

import (
	"fmt"
	"math"
	"sort"
	"time"

	activity "github.com/felixgeelhaar/flowstate/internal/activity/domain"
	"github.com/felixgeelhaar/flowstate/internal/insights/domain"
)

const (
	recentCheckIns    = 14
	streakSearchDays  = 30
	bestDayThreshold  = 6.0
	peakTimeThreshold = 6.0
	moodHighThreshold = 7.0
	moodLowThreshold  = 5.0
	sleepLow          = 7.0
	sleepHigh         = 9.0
	topSleepDays      = 3
)

// Analysis is the result of one pass over the history.
type Analysis struct {
	Insights []domain.Insight `json:"insights"`
	Charts   domain.ChartData `json:"chartData"`
}

// Empty reports whether no insight qualified.
func (a Analysis) Empty() bool {
	return len(a.Insights) == 0
}

// Analyze derives ranked insights and chart data as of now. Check-ins are
// ordered oldest first. Nil inputs are treated as empty.
func Analyze(now time.Time, checkIns []activity.CheckIn, habits []activity.Habit) Analysis {
	a := analysis{
		now:      now,
		loc:      now.Location(),
		checkIns: checkIns,
		habits:   habits,
	}
	for _, h := range habits {
		if h.IsActive {
			a.active = append(a.active, h)
		}
	}
	a.streak = a.currentStreak()

	var found []domain.Insight
	for _, gen := range []func() (domain.Insight, bool){
		a.bestDay,
		a.sleepCorrelation,
		a.streakAchievement,
		a.peakTime,
		a.moodSuggestion,
		a.firstHabit,
	} {
		if in, ok := gen(); ok {
			found = append(found, in)
		}
	}

	ranked := domain.Rank(found)
	if ranked == nil {
		ranked = []domain.Insight{}
	}
	return Analysis{
		Insights: ranked,
		Charts:   a.charts(),
	}
}

type analysis struct {
	now      time.Time
	loc      *time.Location
	checkIns []activity.CheckIn
	habits   []activity.Habit
	active   []activity.Habit
	streak   int
}

func (a *analysis) recent() []activity.CheckIn {
	if len(a.checkIns) <= recentCheckIns {
		return a.checkIns
	}
	return a.checkIns[len(a.checkIns)-recentCheckIns:]
}

func (a *analysis) local(c activity.CheckIn) (time.Time, bool) {
	if c.Timestamp.IsZero() {
		return time.Time{}, false
	}
	return c.Timestamp.In(a.loc), true
}

func (a *analysis) bestDay() (domain.Insight, bool) {
	var sums [7]float64
	var counts [7]int
	for _, c := range a.recent() {
		t, ok := a.local(c)
		if !ok {
			continue
		}
		d := t.Weekday()
		sums[d] += (c.Energy + domain.MoodScore(c.Mood)) / 2
		counts[d]++
	}

	best, bestScore := -1, 0.0
	for d := 0; d < 7; d++ {
		if counts[d] == 0 {
			continue
		}
		score := sums[d] / float64(counts[d])
		if best < 0 || score > bestScore {
			best, bestScore = d, score
		}
	}
	if best < 0 || bestScore <= bestDayThreshold {
		return domain.Insight{}, false
	}

	day := time.Weekday(best)
	return domain.Insight{
		ID:          "best-day",
		Kind:        domain.KindPattern,
		Title:       fmt.Sprintf("%ss are your best days", day),
		Description: fmt.Sprintf("Your energy and mood peak on %ss with an average score of %.1f. Schedule important work then.", day, bestScore),
		Confidence:  confidence(math.Min(95, 60+3*bestScore)),
		Icon:        "Calendar",
		Color:       "blue",
		Finding:     domain.BestDayFinding{Weekday: day, Score: bestScore, Samples: counts[best]},
	}, true
}

type sleepDay struct {
	sleep       float64
	completions int
}

func (a *analysis) sleepCorrelation() (domain.Insight, bool) {
	var days []sleepDay
	for _, c := range a.checkIns {
		t, ok := a.local(c)
		if !ok || !c.HasSleep() {
			continue
		}
		days = append(days, sleepDay{sleep: *c.Sleep, completions: a.completionsOn(t)})
	}
	if len(days) < topSleepDays {
		return domain.Insight{}, false
	}

	sort.SliceStable(days, func(i, j int) bool { return days[i].completions > days[j].completions })
	top := days[:topSleepDays]

	total := 0.0
	for _, d := range top {
		total += d.sleep
	}
	mean := total / float64(len(top))
	if mean < sleepLow || mean > sleepHigh {
		return domain.Insight{}, false
	}

	return domain.Insight{
		ID:          "sleep-correlation",
		Kind:        domain.KindCorrelation,
		Title:       "Sleep powers your productivity",
		Description: fmt.Sprintf("On your most productive days you slept %.1f hours on average. Around 8 hours seems to work best for you.", mean),
		Confidence:  85,
		Icon:        "Moon",
		Color:       "indigo",
		Finding:     domain.SleepCorrelationFinding{MeanSleep: mean, Days: len(top)},
	}, true
}

func (a *analysis) streakAchievement() (domain.Insight, bool) {
	if a.streak < 3 {
		return domain.Insight{}, false
	}
	return domain.Insight{
		ID:          "streak",
		Kind:        domain.KindAchievement,
		Title:       fmt.Sprintf("%d-day streak!", a.streak),
		Description: fmt.Sprintf("You've completed at least one habit for %d days in a row. Consistency is building.", a.streak),
		Confidence:  100,
		Icon:        "Flame",
		Color:       "orange",
		Finding:     domain.StreakFinding{Days: a.streak},
	}, true
}

func (a *analysis) peakTime() (domain.Insight, bool) {
	sums := make(map[domain.TimeOfDay]float64)
	counts := make(map[domain.TimeOfDay]int)
	for _, c := range a.checkIns {
		t, ok := a.local(c)
		if !ok {
			continue
		}
		bucket, ok := domain.BucketOf(t)
		if !ok {
			continue
		}
		sums[bucket] += c.Energy
		counts[bucket]++
	}

	var best domain.TimeOfDay
	bestMean := 0.0
	for _, b := range domain.TimesOfDay() {
		if counts[b] == 0 {
			continue
		}
		mean := sums[b] / float64(counts[b])
		if best == "" || mean > bestMean {
			best, bestMean = b, mean
		}
	}
	if best == "" || bestMean <= peakTimeThreshold {
		return domain.Insight{}, false
	}

	return domain.Insight{
		ID:          "peak-time",
		Kind:        domain.KindPattern,
		Title:       fmt.Sprintf("You shine in the %s", best),
		Description: fmt.Sprintf("Your energy averages %.1f in the %s, your strongest time of day.", bestMean, best),
		Confidence:  80,
		Icon:        "Sun",
		Color:       "amber",
		Finding:     domain.PeakTimeFinding{Bucket: best, MeanEnergy: bestMean},
	}, true
}

func (a *analysis) moodSuggestion() (domain.Insight, bool) {
	recent := a.recent()
	if len(recent) == 0 {
		return domain.Insight{}, false
	}
	total := 0.0
	for _, c := range recent {
		total += domain.MoodScore(c.Mood)
	}
	mean := total / float64(len(recent))
	active := len(a.active)

	switch {
	case mean >= moodHighThreshold && active < 5:
		return domain.Insight{
			ID:          "mood-add-habit",
			Kind:        domain.KindSuggestion,
			Title:       "Ready for a new habit?",
			Description: "Your mood has been consistently positive. This could be a great time to add a new habit.",
			Confidence:  75,
			Icon:        "Plus",
			Color:       "green",
			Finding:     domain.MoodSuggestionFinding{Advice: domain.AdviceAddHabit, MeanMood: mean, ActiveHabits: active},
		}, true
	case mean < moodLowThreshold && active > 5:
		return domain.Insight{
			ID:          "mood-simplify",
			Kind:        domain.KindSuggestion,
			Title:       "Consider simplifying",
			Description: fmt.Sprintf("You're tracking %d habits while your mood has dipped. Focusing on fewer may feel lighter.", active),
			Confidence:  70,
			Icon:        "Minimize",
			Color:       "purple",
			Finding:     domain.MoodSuggestionFinding{Advice: domain.AdviceSimplify, MeanMood: mean, ActiveHabits: active},
		}, true
	}
	return domain.Insight{}, false
}

func (a *analysis) firstHabit() (domain.Insight, bool) {
	if len(a.active) != 1 || a.streak < 1 {
		return domain.Insight{}, false
	}
	name := a.active[0].Name
	return domain.Insight{
		ID:          "first-habit",
		Kind:        domain.KindAchievement,
		Title:       "Your first habit is underway",
		Description: fmt.Sprintf("You're building momentum with %s. Every journey starts with a single step.", name),
		Confidence:  100,
		Icon:        "Trophy",
		Color:       "yellow",
		Finding:     domain.FirstHabitFinding{HabitName: name, Streak: a.streak},
	}, true
}

// currentStreak counts consecutive days, ending today, on which any active
// habit was completed. The search looks back at most streakSearchDays.
func (a *analysis) currentStreak() int {
	streak := 0
	for i := 0; i < streakSearchDays; i++ {
		day := a.now.AddDate(0, 0, -i)
		if !a.anyActiveCompletedOn(day) {
			break
		}
		streak++
	}
	return streak
}

func (a *analysis) anyActiveCompletedOn(day time.Time) bool {
	for _, h := range a.active {
		if h.CompletedOn(day) {
			return true
		}
	}
	return false
}

func (a *analysis) completionsOn(day time.Time) int {
	n := 0
	for _, h := range a.habits {
		n += h.CompletionsOn(day)
	}
	return n
}

func confidence(v float64) int {
	return domain.ClampConfidence(int(math.Round(v)))
}
