package domain

import (
	"time"

	notifications "github.com/felixgeelhaar/flowstate/internal/notifications/domain"
)

// State is the two-state cycle of a trigger.
type State string

const (
	StateArmed       State = "armed"
	StateCoolingDown State = "cooling_down"
)

// CooldownRecord remembers when each trigger last fired. It is owned by a
// single detector and is not safe for concurrent use on its own.
type CooldownRecord struct {
	lastFired map[notifications.Kind]time.Time
}

// NewCooldownRecord creates an empty record; every trigger starts armed.
func NewCooldownRecord() *CooldownRecord {
	return &CooldownRecord{lastFired: make(map[notifications.Kind]time.Time)}
}

// Ready reports whether kind may fire at now.
func (r *CooldownRecord) Ready(kind notifications.Kind, now time.Time, cooldown time.Duration) bool {
	last, ok := r.lastFired[kind]
	return !ok || now.Sub(last) >= cooldown
}

// MarkFired records a fire. Call it only when a notification was shown.
func (r *CooldownRecord) MarkFired(kind notifications.Kind, now time.Time) {
	r.lastFired[kind] = now
}

// LastFired returns when kind last fired.
func (r *CooldownRecord) LastFired(kind notifications.Kind) (time.Time, bool) {
	t, ok := r.lastFired[kind]
	return t, ok
}

// State returns the trigger state at now and, when cooling down, the time
// remaining until it re-arms.
func (r *CooldownRecord) State(kind notifications.Kind, now time.Time, cooldown time.Duration) (State, time.Duration) {
	last, ok := r.lastFired[kind]
	if !ok {
		return StateArmed, 0
	}
	remaining := cooldown - now.Sub(last)
	if remaining <= 0 {
		return StateArmed, 0
	}
	return StateCoolingDown, remaining
}
