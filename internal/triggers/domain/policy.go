// Package domain holds the trigger policies, the cooldown record and the
// heuristics that decide whether a trigger should fire.
package domain

import (
	"fmt"
	"time"

	notifications "github.com/felixgeelhaar/flowstate/internal/notifications/domain"
)

// Policy controls how often a trigger is checked and how long it rests
// after firing.
type Policy struct {
	Kind     notifications.Kind
	Interval time.Duration
	Cooldown time.Duration
	Enabled  bool
}

// Validate checks the policy timings.
func (p Policy) Validate() error {
	if !p.Kind.IsValid() {
		return fmt.Errorf("%w: %q", notifications.ErrUnknownKind, p.Kind)
	}
	if p.Interval <= 0 {
		return fmt.Errorf("trigger %s: interval must be positive", p.Kind)
	}
	if p.Cooldown < 0 {
		return fmt.Errorf("trigger %s: cooldown cannot be negative", p.Kind)
	}
	return nil
}

// DefaultPolicies returns the standard polling intervals and cooldowns.
// Breathe is disabled: there is no live source for its stress signal.
func DefaultPolicies() map[notifications.Kind]Policy {
	return map[notifications.Kind]Policy{
		notifications.KindMicroWin: {
			Kind: notifications.KindMicroWin, Interval: 60 * time.Second, Cooldown: 10 * time.Minute, Enabled: true,
		},
		notifications.KindBreathe: {
			Kind: notifications.KindBreathe, Interval: 120 * time.Second, Cooldown: 30 * time.Minute, Enabled: false,
		},
		notifications.KindGentlePlan: {
			Kind: notifications.KindGentlePlan, Interval: 180 * time.Second, Cooldown: 60 * time.Minute, Enabled: true,
		},
		notifications.KindFocusWindow: {
			Kind: notifications.KindFocusWindow, Interval: 300 * time.Second, Cooldown: 120 * time.Minute, Enabled: true,
		},
	}
}

// Presentation is the fixed look of each trigger's notifications.
type Presentation struct {
	Icon     string
	Duration time.Duration
}

var presentations = map[notifications.Kind]Presentation{
	notifications.KindMicroWin:    {Icon: "Sparkles", Duration: 15 * time.Second},
	notifications.KindBreathe:     {Icon: "Wind", Duration: 18 * time.Second},
	notifications.KindGentlePlan:  {Icon: "Calendar", Duration: 16 * time.Second},
	notifications.KindFocusWindow: {Icon: "Target", Duration: 17 * time.Second},
}

// PresentationFor returns the icon and display duration for kind.
func PresentationFor(kind notifications.Kind) Presentation {
	return presentations[kind]
}
