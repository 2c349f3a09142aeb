package clock

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
)

func TestManual_AdvanceFiresDueTimersInOrder(t *testing.T) {
	start := time.Date(2025, 3, 4, 9, 0, 0, 0, time.UTC)
	m := NewManual(start)

	var order []string
	m.AfterFunc(2*time.Second, func() { order = append(order, "b") })
	m.AfterFunc(1*time.Second, func() { order = append(order, "a") })
	m.AfterFunc(5*time.Second, func() { order = append(order, "c") })

	m.Advance(3 * time.Second)

	assert.Equal(t, []string{"a", "b"}, order)
	assert.Equal(t, start.Add(3*time.Second), m.Now())
	assert.Equal(t, 1, m.Pending())
}

func TestManual_CallbackSeesDeadlineTime(t *testing.T) {
	start := time.Date(2025, 3, 4, 9, 0, 0, 0, time.UTC)
	m := NewManual(start)

	var seen time.Time
	m.AfterFunc(time.Minute, func() { seen = m.Now() })
	m.Advance(time.Hour)

	assert.Equal(t, start.Add(time.Minute), seen)
}

func TestManual_RescheduleFromCallback(t *testing.T) {
	m := NewManual(time.Date(2025, 3, 4, 9, 0, 0, 0, time.UTC))

	runs := 0
	var tick func()
	tick = func() {
		runs++
		m.AfterFunc(time.Minute, tick)
	}
	m.AfterFunc(time.Minute, tick)

	m.Advance(5 * time.Minute)
	assert.Equal(t, 5, runs)
}

func TestManual_StopIsIdempotent(t *testing.T) {
	m := NewManual(time.Now())

	fired := false
	timer := m.AfterFunc(time.Second, func() { fired = true })

	assert.True(t, timer.Stop())
	assert.False(t, timer.Stop())

	m.Advance(time.Minute)
	assert.False(t, fired)
	assert.Equal(t, 0, m.Pending())
}

func TestManual_StopAfterFire(t *testing.T) {
	m := NewManual(time.Now())
	timer := m.AfterFunc(time.Second, func() {})

	m.Advance(time.Second)
	assert.False(t, timer.Stop())
}

func TestManual_Reset(t *testing.T) {
	start := time.Date(2025, 3, 4, 9, 0, 0, 0, time.UTC)
	m := NewManual(start)

	fired := 0
	timer := m.AfterFunc(time.Minute, func() { fired++ })

	m.Advance(30 * time.Second)
	assert.True(t, timer.Reset(time.Minute), "pending timers report active")

	m.Advance(45 * time.Second)
	assert.Zero(t, fired, "deadline moved to 09:01:30")
	m.Advance(15 * time.Second)
	assert.Equal(t, 1, fired)

	assert.False(t, timer.Reset(time.Second), "fired timers report inactive")
	m.Advance(time.Second)
	assert.Equal(t, 2, fired)
}

func TestClockworkClocksSatisfyClock(t *testing.T) {
	var _ Clock = clockwork.NewRealClock()
	fake := clockwork.NewFakeClockAt(time.Date(2025, 3, 4, 9, 0, 0, 0, time.UTC))
	var c Clock = fake

	fake.Advance(time.Minute)
	assert.Equal(t, time.Date(2025, 3, 4, 9, 1, 0, 0, time.UTC), c.Now())
	assert.Nil(t, NewManual(time.Now()).AfterFunc(time.Second, func() {}).Chan())
}
