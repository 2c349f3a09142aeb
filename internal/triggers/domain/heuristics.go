package domain

import (
	"strings"
	"time"

	activity "github.com/felixgeelhaar/flowstate/internal/activity/domain"
	notifications "github.com/felixgeelhaar/flowstate/internal/notifications/domain"
)

// RecentTodoWindow is how recently a todo must have been completed to count
// as a micro-win.
const RecentTodoWindow = 5 * time.Minute

// Thresholds on the 1 to 5 check-in scales.
const (
	LowEnergyMax     = 2
	HighEnergyMin    = 4
	HighFocusMin     = 4
	planMorningStart = 7
	planMorningEnd   = 10
	peakStart        = 9
	peakEnd          = 11
	dipStart         = 14
	dipEnd           = 16
)

var stressMoods = map[string]bool{
	"anxious":     true,
	"overwhelmed": true,
	"stressed":    true,
}

// Signals is what a check sees: the current time plus the stored activity.
type Signals struct {
	Now        time.Time
	Latest     *activity.CheckIn
	Habits     []activity.Habit
	Todos      []activity.Todo
	TimeBlocks int
}

// MicroWin fires on a todo completed within RecentTodoWindow or a habit
// slot dated today. A recent todo wins over a habit.
func MicroWin(s Signals) (notifications.MicroWinDetail, bool) {
	for _, t := range s.Todos {
		if t.CompletedWithin(s.Now, RecentTodoWindow) {
			return notifications.MicroWinDetail{Source: notifications.MicroWinFromTodo, Name: t.Text}, true
		}
	}
	for _, h := range s.Habits {
		if h.CompletedOn(s.Now) {
			return notifications.MicroWinDetail{Source: notifications.MicroWinFromHabit, Name: h.Name}, true
		}
	}
	return notifications.MicroWinDetail{}, false
}

// Breathe fires in the mid-afternoon dip or when the latest mood signals stress.
func Breathe(s Signals) (notifications.BreatheDetail, bool) {
	if s.Latest != nil {
		mood := strings.ToLower(strings.TrimSpace(s.Latest.Mood))
		if stressMoods[mood] {
			return notifications.BreatheDetail{Reason: notifications.BreatheStressSignal, Mood: mood}, true
		}
	}
	if h := s.Now.Hour(); h >= dipStart && h < dipEnd {
		return notifications.BreatheDetail{Reason: notifications.BreatheAfternoonDip}, true
	}
	return notifications.BreatheDetail{}, false
}

// GentlePlan fires on low energy, or in the morning with nothing planned.
func GentlePlan(s Signals) (notifications.GentlePlanDetail, bool) {
	d := notifications.GentlePlanDetail{}
	if s.Latest != nil {
		d.Energy = int(s.Latest.Energy)
		d.LowEnergy = s.Latest.Energy <= LowEnergyMax
	}
	h := s.Now.Hour()
	d.NoTimeBlocks = h >= planMorningStart && h < planMorningEnd && s.TimeBlocks == 0
	return d, d.LowEnergy || d.NoTimeBlocks
}

// FocusWindow fires in the morning peak, or when energy and focus are both high.
func FocusWindow(s Signals) (notifications.FocusWindowDetail, bool) {
	d := notifications.FocusWindowDetail{}
	if h := s.Now.Hour(); h >= peakStart && h < peakEnd {
		d.MorningPeak = true
	}
	if s.Latest != nil {
		d.Energy = int(s.Latest.Energy)
		d.Focus = int(s.Latest.Focus)
		d.HighEnergyFocus = s.Latest.Energy >= HighEnergyMin && s.Latest.Focus >= HighFocusMin
	}
	return d, d.MorningPeak || d.HighEnergyFocus
}
