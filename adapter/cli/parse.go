package cli

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DefaultBlockDuration is used when a time block description names no length.
const DefaultBlockDuration = time.Hour

// ParsedBlock is a time block extracted from natural language.
type ParsedBlock struct {
	Title    string
	Start    time.Time
	Duration time.Duration
}

var (
	hourPattern     = regexp.MustCompile(`(?i)\b(?:for\s+)?(\d+(?:\.\d+)?)\s*h(?:ours?|rs?)?\b`)
	minutePattern   = regexp.MustCompile(`(?i)\b(?:for\s+)?(\d+)\s*m(?:in(?:utes?)?)?\b`)
	clockPattern    = regexp.MustCompile(`(?i)\b(?:at\s+)?(\d{1,2}):(\d{2})\b`)
	meridiemPattern = regexp.MustCompile(`(?i)\b(?:at\s+)?(\d{1,2})\s*(am|pm)\b`)
	datePattern     = regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2})\b`)
	spacePattern    = regexp.MustCompile(`\s+`)
)

// ParseTimeBlock extracts a title, start and duration from input such as
// "Deep work tomorrow at 9:30 for 90min". Missing parts default to today,
// now and DefaultBlockDuration.
func ParseTimeBlock(input string, now time.Time) ParsedBlock {
	result := ParsedBlock{Title: input}

	result.Duration, result.Title = extractDuration(result.Title)
	if result.Duration <= 0 {
		result.Duration = DefaultBlockDuration
	}

	var day time.Time
	day, result.Title = extractDay(result.Title, now)

	var hour, minute int
	var hasClock bool
	hour, minute, hasClock, result.Title = extractClock(result.Title)

	if hasClock {
		result.Start = time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, now.Location())
	} else if sameDate(day, now) {
		result.Start = now.Truncate(time.Minute)
	} else {
		result.Start = time.Date(day.Year(), day.Month(), day.Day(), now.Hour(), now.Minute(), 0, 0, now.Location())
	}

	result.Title = cleanTitle(result.Title)
	return result
}

func extractDuration(input string) (time.Duration, string) {
	var total time.Duration
	if matches := hourPattern.FindStringSubmatch(input); len(matches) > 1 {
		if val, err := strconv.ParseFloat(matches[1], 64); err == nil {
			total += time.Duration(val * float64(time.Hour))
			input = hourPattern.ReplaceAllString(input, "")
		}
	}
	if matches := minutePattern.FindStringSubmatch(input); len(matches) > 1 {
		if val, err := strconv.Atoi(matches[1]); err == nil {
			total += time.Duration(val) * time.Minute
			input = minutePattern.ReplaceAllString(input, "")
		}
	}
	return total, input
}

func extractDay(input string, now time.Time) (time.Time, string) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	lower := strings.ToLower(input)

	relative := []struct {
		keyword string
		date    time.Time
	}{
		{"tomorrow", today.AddDate(0, 0, 1)},
		{"today", today},
		{"tonight", today},
	}
	for _, r := range relative {
		if strings.Contains(lower, r.keyword) {
			re := regexp.MustCompile(`(?i)\b(?:on\s+)?` + r.keyword + `\b`)
			return r.date, re.ReplaceAllString(input, "")
		}
	}

	days := []struct {
		name    string
		weekday time.Weekday
	}{
		{"monday", time.Monday},
		{"tuesday", time.Tuesday},
		{"wednesday", time.Wednesday},
		{"thursday", time.Thursday},
		{"friday", time.Friday},
		{"saturday", time.Saturday},
		{"sunday", time.Sunday},
	}
	for _, d := range days {
		re := regexp.MustCompile(`(?i)\b(?:on\s+|next\s+)?` + d.name + `\b`)
		if re.MatchString(input) {
			return nextWeekday(today, d.weekday), re.ReplaceAllString(input, "")
		}
	}

	if matches := datePattern.FindStringSubmatch(input); len(matches) > 1 {
		if date, err := time.ParseInLocation("2006-01-02", matches[1], now.Location()); err == nil {
			return date, datePattern.ReplaceAllString(input, "")
		}
	}

	return today, input
}

func extractClock(input string) (int, int, bool, string) {
	if matches := clockPattern.FindStringSubmatch(input); len(matches) > 2 {
		hour, _ := strconv.Atoi(matches[1])
		minute, _ := strconv.Atoi(matches[2])
		if hour < 24 && minute < 60 {
			return hour, minute, true, clockPattern.ReplaceAllString(input, "")
		}
	}
	if matches := meridiemPattern.FindStringSubmatch(input); len(matches) > 2 {
		hour, _ := strconv.Atoi(matches[1])
		if hour >= 1 && hour <= 12 {
			hour %= 12
			if strings.EqualFold(matches[2], "pm") {
				hour += 12
			}
			return hour, 0, true, meridiemPattern.ReplaceAllString(input, "")
		}
	}
	return 0, 0, false, input
}

func nextWeekday(from time.Time, target time.Weekday) time.Time {
	daysUntil := int(target) - int(from.Weekday())
	if daysUntil <= 0 {
		daysUntil += 7
	}
	return from.AddDate(0, 0, daysUntil)
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func cleanTitle(title string) string {
	title = spacePattern.ReplaceAllString(title, " ")

	fillers := []string{"by", "for", "at", "on"}
	for _, filler := range fillers {
		title = regexp.MustCompile(`(?i)^\s*` + filler + `\s+`).ReplaceAllString(title, "")
		title = regexp.MustCompile(`(?i)\s+` + filler + `\s*$`).ReplaceAllString(title, "")
	}

	return strings.TrimSpace(title)
}
