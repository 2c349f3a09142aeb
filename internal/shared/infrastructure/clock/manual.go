package clock

import (
	"sync"
	"time"
)

// Manual is a Clock whose time only moves when Advance is called.
// Due callbacks run synchronously on the goroutine calling Advance,
// in deadline order (ties broken by scheduling order), and a timer armed
// by a firing callback fires within the same Advance when it falls inside
// the window. clockwork.FakeClock runs AfterFunc callbacks on their own
// goroutine and measures re-armed timers from the end of the Advance, so
// periodic schedules collapse to one tick per call there.
type Manual struct {
	mu     sync.Mutex
	now    time.Time
	seq    uint64
	timers []*manualTimer
}

type manualTimer struct {
	clock *Manual
	at    time.Time
	seq   uint64
	fn    func()
	done  bool
}

// NewManual creates a manual clock starting at the given instant.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

// Now returns the clock's current time.
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// AfterFunc schedules f to run once the clock has advanced by d.
func (m *Manual) AfterFunc(d time.Duration, f func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()

	if d < 0 {
		d = 0
	}
	m.seq++
	t := &manualTimer{
		clock: m,
		at:    m.now.Add(d),
		seq:   m.seq,
		fn:    f,
	}
	m.timers = append(m.timers, t)
	return t
}

// Advance moves the clock forward by d, firing every timer that comes due.
// Timers scheduled by a firing callback also fire if they fall inside the window.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now.Add(d)
	m.mu.Unlock()

	for {
		m.mu.Lock()
		next := m.nextDueLocked(target)
		if next == nil {
			m.now = target
			m.mu.Unlock()
			return
		}
		m.now = next.at
		next.done = true
		m.removeLocked(next)
		m.mu.Unlock()

		next.fn()
	}
}

// Pending returns the number of timers that have not fired or been stopped.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.timers)
}

func (m *Manual) nextDueLocked(target time.Time) *manualTimer {
	var next *manualTimer
	for _, t := range m.timers {
		if t.at.After(target) {
			continue
		}
		if next == nil || t.at.Before(next.at) || (t.at.Equal(next.at) && t.seq < next.seq) {
			next = t
		}
	}
	return next
}

func (m *Manual) removeLocked(target *manualTimer) {
	for i, t := range m.timers {
		if t == target {
			m.timers = append(m.timers[:i], m.timers[i+1:]...)
			return
		}
	}
}

// Chan returns nil; manual timers only deliver through their callback.
func (t *manualTimer) Chan() <-chan time.Time {
	return nil
}

// Reset re-arms the timer to fire d after the clock's current time. It
// reports whether the timer was still pending.
func (t *manualTimer) Reset(d time.Duration) bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()

	if d < 0 {
		d = 0
	}
	wasActive := !t.done
	if wasActive {
		t.clock.removeLocked(t)
	}
	t.clock.seq++
	t.at = t.clock.now.Add(d)
	t.seq = t.clock.seq
	t.done = false
	t.clock.timers = append(t.clock.timers, t)
	return wasActive
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()

	if t.done {
		return false
	}
	t.done = true
	t.clock.removeLocked(t)
	return true
}
