package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestamp_UnmarshalFormats(t *testing.T) {
	tests := []struct {
		name string
		json string
		want time.Time
	}{
		{"rfc3339", `"2025-03-04T09:30:00Z"`, time.Date(2025, 3, 4, 9, 30, 0, 0, time.UTC)},
		{"rfc3339 millis", `"2025-03-04T09:30:00.250Z"`, time.Date(2025, 3, 4, 9, 30, 0, 250e6, time.UTC)},
		{"epoch millis", `1741080600000`, time.Date(2025, 3, 4, 9, 30, 0, 0, time.UTC)},
		{"epoch millis string", `"1741080600000"`, time.Date(2025, 3, 4, 9, 30, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ts Timestamp
			require.NoError(t, json.Unmarshal([]byte(tt.json), &ts))
			assert.True(t, tt.want.Equal(ts.Time), "got %s", ts.Time)
		})
	}
}

func TestTimestamp_NullAndGarbage(t *testing.T) {
	var ts Timestamp
	require.NoError(t, json.Unmarshal([]byte(`null`), &ts))
	assert.True(t, ts.IsZero())

	err := json.Unmarshal([]byte(`"yesterday"`), &ts)
	assert.ErrorIs(t, err, ErrMalformedData)
}

func TestFlexibleID(t *testing.T) {
	var h Habit
	require.NoError(t, json.Unmarshal([]byte(`{"id": 1741080600000, "name": "Walk", "isActive": true}`), &h))
	assert.Equal(t, FlexibleID("1741080600000"), h.ID)

	require.NoError(t, json.Unmarshal([]byte(`{"id": "h-1"}`), &h))
	assert.Equal(t, "h-1", h.ID.String())
}

func TestSlot_OnDay(t *testing.T) {
	day := time.Date(2025, 3, 4, 18, 0, 0, 0, time.UTC)

	assert.True(t, Slot{Date: "2025-03-04"}.OnDay(day))
	assert.True(t, Slot{Date: "Tue Mar 04 2025"}.OnDay(day))
	assert.True(t, Slot{Date: "2025-03-04T07:15:00Z"}.OnDay(day))
	assert.False(t, Slot{Date: "2025-03-03"}.OnDay(day))
	assert.False(t, Slot{Date: "not a date"}.OnDay(day))
}

func TestHabit_Completions(t *testing.T) {
	day := time.Date(2025, 3, 4, 12, 0, 0, 0, time.UTC)
	h := Habit{CompletedSlots: []Slot{
		{Date: "2025-03-04", SlotID: "morning"},
		{Date: "2025-03-04", SlotID: "evening"},
		{Date: "2025-03-02"},
	}}

	assert.True(t, h.CompletedOn(day))
	assert.Equal(t, 2, h.CompletionsOn(day))
	assert.False(t, h.CompletedOn(day.AddDate(0, 0, -1)))
}

func TestTodo_CompletedWithin(t *testing.T) {
	now := time.Date(2025, 3, 4, 12, 0, 0, 0, time.UTC)
	at := func(d time.Duration) *Timestamp {
		ts := NewTimestamp(now.Add(-d))
		return &ts
	}

	assert.True(t, Todo{CompletedAt: at(2 * time.Minute)}.CompletedWithin(now, 5*time.Minute))
	assert.True(t, Todo{CompletedAt: at(5 * time.Minute)}.CompletedWithin(now, 5*time.Minute))
	assert.False(t, Todo{CompletedAt: at(6 * time.Minute)}.CompletedWithin(now, 5*time.Minute))
	assert.False(t, Todo{CompletedAt: at(-time.Minute)}.CompletedWithin(now, 5*time.Minute))
	assert.False(t, Todo{}.CompletedWithin(now, 5*time.Minute))
}

func TestDecodeList_SkipsBadElements(t *testing.T) {
	habits, skipped, err := DecodeList[Habit]([]byte(`[{"id":"a","name":"Read"}, 42, {"id":"b","completedSlots":"nope"}]`))
	require.NoError(t, err)
	assert.Equal(t, 2, skipped)
	require.Len(t, habits, 1)
	assert.Equal(t, "Read", habits[0].Name)
}

func TestDecodeList_RejectsNonArray(t *testing.T) {
	_, _, err := DecodeList[Habit]([]byte(`{"id":"a"}`))
	assert.ErrorIs(t, err, ErrMalformedData)

	_, _, err = DecodeList[Habit]([]byte(`not json`))
	assert.ErrorIs(t, err, ErrMalformedData)

	items, _, err := DecodeList[Habit]([]byte(`null`))
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestDecodeCheckIns_Shapes(t *testing.T) {
	single, _, err := DecodeCheckIns([]byte(`{"mood":"good","energy":4,"focus":3,"timestamp":"2025-03-04T09:00:00Z"}`))
	require.NoError(t, err)
	require.Len(t, single, 1)
	assert.Equal(t, "good", single[0].Mood)

	many, _, err := DecodeCheckIns([]byte(`[{"mood":"okay","energy":2,"focus":2},{"mood":"great","energy":5,"focus":4,"sleep":7.5}]`))
	require.NoError(t, err)
	require.Len(t, many, 2)
	assert.Equal(t, "great", many[1].Mood)
	require.True(t, many[1].HasSleep())
	assert.Equal(t, 7.5, *many[1].Sleep)
}

func TestEncodeList_NeverNull(t *testing.T) {
	body, err := EncodeList[Todo](nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(body))
}
