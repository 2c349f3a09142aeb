// Package clock abstracts wall-clock time and one-shot timers so that
// time-driven components can be exercised deterministically in tests.
//
// Clock is the subset of clockwork.Clock the services depend on, so a
// clockwork real or fake clock can be passed wherever a Clock is expected.
package clock

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// Timer is a cancellable one-shot timer.
type Timer = clockwork.Timer

// Clock provides the current time and schedules deferred callbacks.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// Real returns a Clock backed by the time package.
func Real() Clock {
	return clockwork.NewRealClock()
}
