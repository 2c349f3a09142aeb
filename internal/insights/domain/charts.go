package domain

// TrendPoint is one day of the 7-day energy and mood trend.
type TrendPoint struct {
	Date    string  `json:"date"`
	Label   string  `json:"label"`
	Energy  float64 `json:"energy"`
	Mood    float64 `json:"mood"`
	Samples int     `json:"samples"`
}

// SleepBar aggregates days by hours slept.
type SleepBar struct {
	Range        string  `json:"range"`
	Productivity float64 `json:"productivity"`
	Focus        float64 `json:"focus"`
	Samples      int     `json:"samples"`
}

// RadarPoint aggregates check-ins by time of day.
type RadarPoint struct {
	TimeOfDay    TimeOfDay `json:"timeOfDay"`
	Productivity float64   `json:"productivity"`
	Energy       float64   `json:"energy"`
	Samples      int       `json:"samples"`
}

// WeekdayPoint is one weekday of the weekly pattern.
type WeekdayPoint struct {
	Day    string  `json:"day"`
	Habits int     `json:"habits"`
	Mood   float64 `json:"mood"`
	Energy float64 `json:"energy"`
}

// ChartData holds the derived series for the insight charts. None of it
// feeds the ranking.
type ChartData struct {
	Trend         []TrendPoint   `json:"trend"`
	SleepBars     []SleepBar     `json:"sleepBars"`
	TimeOfDay     []RadarPoint   `json:"timeOfDay"`
	WeeklyPattern []WeekdayPoint `json:"weeklyPattern"`
}

// SleepRanges are the sleep bar labels in order.
var SleepRanges = []string{"<6h", "6-7h", "7-8h", "8-9h", "9h+"}

// SleepRange returns the index into SleepRanges for hours of sleep.
func SleepRange(hours float64) int {
	switch {
	case hours < 6:
		return 0
	case hours < 7:
		return 1
	case hours < 8:
		return 2
	case hours < 9:
		return 3
	default:
		return 4
	}
}
