package application

import (
	"math"
	"time"

	activity "github.com/felixgeelhaar/flowstate/internal/activity/domain"
	"github.com/felixgeelhaar/flowstate/internal/insights/domain"
)

const chartDays = 7

type mean struct {
	sum float64
	n   int
}

func (m *mean) add(v float64) {
	m.sum += v
	m.n++
}

func (m mean) value() float64 {
	if m.n == 0 {
		return 0
	}
	return math.Round(m.sum/float64(m.n)*10) / 10
}

func (a *analysis) charts() domain.ChartData {
	return domain.ChartData{
		Trend:         a.trend(),
		SleepBars:     a.sleepBars(),
		TimeOfDay:     a.radar(),
		WeeklyPattern: a.weeklyPattern(),
	}
}

// lastDays returns the chartDays calendar days ending today, oldest first.
func (a *analysis) lastDays() []time.Time {
	today := a.now.In(a.loc)
	days := make([]time.Time, 0, chartDays)
	for i := chartDays - 1; i >= 0; i-- {
		days = append(days, today.AddDate(0, 0, -i))
	}
	return days
}

func (a *analysis) checkInsOn(day time.Time) []activity.CheckIn {
	var out []activity.CheckIn
	for _, c := range a.checkIns {
		if t, ok := a.local(c); ok && activity.SameDay(t, day) {
			out = append(out, c)
		}
	}
	return out
}

func (a *analysis) trend() []domain.TrendPoint {
	points := make([]domain.TrendPoint, 0, chartDays)
	for _, day := range a.lastDays() {
		var energy, mood mean
		for _, c := range a.checkInsOn(day) {
			energy.add(c.Energy)
			mood.add(domain.MoodScore(c.Mood))
		}
		points = append(points, domain.TrendPoint{
			Date:    day.Format("2006-01-02"),
			Label:   day.Format("Mon"),
			Energy:  energy.value(),
			Mood:    mood.value(),
			Samples: energy.n,
		})
	}
	return points
}

func (a *analysis) sleepBars() []domain.SleepBar {
	productivity := make([]mean, len(domain.SleepRanges))
	focus := make([]mean, len(domain.SleepRanges))
	for _, c := range a.checkIns {
		t, ok := a.local(c)
		if !ok || !c.HasSleep() {
			continue
		}
		i := domain.SleepRange(*c.Sleep)
		productivity[i].add(float64(a.completionsOn(t)))
		focus[i].add(c.Focus)
	}

	bars := make([]domain.SleepBar, len(domain.SleepRanges))
	for i, label := range domain.SleepRanges {
		bars[i] = domain.SleepBar{
			Range:        label,
			Productivity: productivity[i].value(),
			Focus:        focus[i].value(),
			Samples:      focus[i].n,
		}
	}
	return bars
}

func (a *analysis) radar() []domain.RadarPoint {
	focus := make(map[domain.TimeOfDay]*mean)
	energy := make(map[domain.TimeOfDay]*mean)
	for _, b := range domain.TimesOfDay() {
		focus[b], energy[b] = &mean{}, &mean{}
	}
	for _, c := range a.checkIns {
		t, ok := a.local(c)
		if !ok {
			continue
		}
		b, ok := domain.BucketOf(t)
		if !ok {
			continue
		}
		focus[b].add(c.Focus)
		energy[b].add(c.Energy)
	}

	points := make([]domain.RadarPoint, 0, len(focus))
	for _, b := range domain.TimesOfDay() {
		points = append(points, domain.RadarPoint{
			TimeOfDay:    b,
			Productivity: focus[b].value(),
			Energy:       energy[b].value(),
			Samples:      energy[b].n,
		})
	}
	return points
}

func (a *analysis) weeklyPattern() []domain.WeekdayPoint {
	points := make([]domain.WeekdayPoint, 0, chartDays)
	for _, day := range a.lastDays() {
		var energy, mood mean
		for _, c := range a.checkInsOn(day) {
			energy.add(c.Energy)
			mood.add(domain.MoodScore(c.Mood))
		}
		points = append(points, domain.WeekdayPoint{
			Day:    day.Format("Mon"),
			Habits: a.completionsOn(day),
			Mood:   mood.value(),
			Energy: energy.value(),
		})
	}
	return points
}
