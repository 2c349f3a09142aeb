package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// CheckIn is a snapshot of mood, energy, focus and sleep.
type CheckIn struct {
	Mood      string    `json:"mood"`
	Energy    float64   `json:"energy"`
	Focus     float64   `json:"focus"`
	Sleep     *float64  `json:"sleep,omitempty"`
	Timestamp Timestamp `json:"timestamp"`
}

// HasSleep reports whether sleep hours were recorded.
func (c CheckIn) HasSleep() bool {
	return c.Sleep != nil
}

// Habit is a tracked habit and the slots in which it was completed.
type Habit struct {
	ID             FlexibleID `json:"id"`
	Name           string     `json:"name"`
	IsActive       bool       `json:"isActive"`
	CompletedSlots []Slot     `json:"completedSlots"`
}

// CompletedOn reports whether any slot falls on the same calendar day as day.
func (h Habit) CompletedOn(day time.Time) bool {
	for _, s := range h.CompletedSlots {
		if s.OnDay(day) {
			return true
		}
	}
	return false
}

// CompletionsOn counts the slots completed on the calendar day of day.
func (h Habit) CompletionsOn(day time.Time) int {
	n := 0
	for _, s := range h.CompletedSlots {
		if s.OnDay(day) {
			n++
		}
	}
	return n
}

// Slot records one habit completion.
type Slot struct {
	Date   string `json:"date"`
	SlotID string `json:"slotId,omitempty"`
}

var slotDateLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	"Mon Jan 02 2006",
	"Mon Jan 2 2006",
}

// Day parses the slot date in loc. Date-only values are taken as local dates.
func (s Slot) Day(loc *time.Location) (time.Time, bool) {
	raw := strings.TrimSpace(s.Date)
	for _, layout := range slotDateLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t.In(loc), true
		}
	}
	return time.Time{}, false
}

// OnDay reports whether the slot falls on the calendar day of day.
func (s Slot) OnDay(day time.Time) bool {
	t, ok := s.Day(day.Location())
	return ok && SameDay(t, day)
}

// Todo is a task; CompletedAt is set once it is done.
type Todo struct {
	ID          FlexibleID `json:"id"`
	Text        string     `json:"text,omitempty"`
	Completed   bool       `json:"completed,omitempty"`
	CompletedAt *Timestamp `json:"completedAt,omitempty"`
}

// CompletedWithin reports whether the todo was completed in (now-window, now].
func (t Todo) CompletedWithin(now time.Time, window time.Duration) bool {
	if t.CompletedAt == nil || t.CompletedAt.IsZero() {
		return false
	}
	at := t.CompletedAt.Time
	return !at.After(now) && now.Sub(at) <= window
}

// TimeBlock is a planned block of time.
type TimeBlock struct {
	ID    FlexibleID `json:"id"`
	Title string     `json:"title"`
	Start Timestamp  `json:"start"`
	End   Timestamp  `json:"end"`
}

// SameDay reports whether a and b share a calendar date in a's location.
func SameDay(a, b time.Time) bool {
	b = b.In(a.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// Timestamp accepts RFC 3339 strings or epoch milliseconds and always
// encodes as RFC 3339.
type Timestamp struct {
	time.Time
}

// NewTimestamp wraps t.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if ts.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(ts.Time.Format(time.RFC3339Nano))
}

func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		ts.Time = time.Time{}
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			ts.Time = time.Time{}
			return nil
		}
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			ts.Time = t
			return nil
		}
		if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
			ts.Time = time.UnixMilli(ms)
			return nil
		}
		return fmt.Errorf("%w: unparseable timestamp %q", ErrMalformedData, s)
	}

	var ms float64
	if err := json.Unmarshal(data, &ms); err != nil {
		return fmt.Errorf("%w: unparseable timestamp %s", ErrMalformedData, data)
	}
	ts.Time = time.UnixMilli(int64(ms))
	return nil
}

// FlexibleID accepts string or numeric ids and encodes them as strings.
type FlexibleID string

func (id *FlexibleID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = FlexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("%w: unsupported id %s", ErrMalformedData, data)
	}
	*id = FlexibleID(n.String())
	return nil
}

func (id FlexibleID) String() string {
	return string(id)
}
