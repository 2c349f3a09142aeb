package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrUnknownKind     = errors.New("unknown notification kind")
	ErrEmptyTitle      = errors.New("notification title cannot be empty")
	ErrEmptyMessage    = errors.New("notification message cannot be empty")
	ErrInvalidDuration = errors.New("notification duration cannot be negative")
	ErrInvalidAction   = errors.New("notification action requires an id and a label")
	ErrDetailMismatch  = errors.New("notification detail does not match its kind")
)

// DefaultDuration is how long a notification stays visible when its spec
// does not say otherwise.
const DefaultDuration = 12 * time.Second

// Kind is the closed set of notification kinds.
type Kind string

const (
	KindMicroWin    Kind = "micro-win"
	KindBreathe     Kind = "breathe"
	KindGentlePlan  Kind = "gentle-plan"
	KindFocusWindow Kind = "focus-window"
)

// Kinds returns every notification kind.
func Kinds() []Kind {
	return []Kind{KindMicroWin, KindBreathe, KindGentlePlan, KindFocusWindow}
}

// IsValid checks if the kind is one of the known kinds.
func (k Kind) IsValid() bool {
	switch k {
	case KindMicroWin, KindBreathe, KindGentlePlan, KindFocusWindow:
		return true
	default:
		return false
	}
}

// Variant controls how an action button is emphasised.
type Variant string

const (
	VariantPrimary   Variant = "primary"
	VariantSecondary Variant = "secondary"
	VariantGhost     Variant = "ghost"
)

// Reserved action ids. The engine snoozes or dismisses the notification
// when one of these is invoked, after running any handler.
const (
	ActionSnooze  = "snooze"
	ActionDismiss = "dismiss"
)

// Action is a button rendered on a notification. Handler is opaque to the
// engine and may be nil, notably on the reserved snooze and dismiss ids.
// Renderers trigger actions through Engine.Invoke, which runs a non-nil
// handler and then applies the snooze or dismissal; they never call
// Handler directly.
type Action struct {
	ID      string
	Label   string
	Variant Variant
	Handler func()
}

// Spec describes a notification to show.
type Spec struct {
	Kind     Kind
	Title    string
	Message  string
	Icon     string
	Actions  []Action
	Duration time.Duration // zero means DefaultDuration
	Detail   Detail        // optional; must match Kind when set
}

// Validate checks that the spec can be shown.
func (s Spec) Validate() error {
	if !s.Kind.IsValid() {
		return fmt.Errorf("%w: %q", ErrUnknownKind, s.Kind)
	}
	if strings.TrimSpace(s.Title) == "" {
		return ErrEmptyTitle
	}
	if strings.TrimSpace(s.Message) == "" {
		return ErrEmptyMessage
	}
	if s.Duration < 0 {
		return ErrInvalidDuration
	}
	for _, a := range s.Actions {
		if a.ID == "" || a.Label == "" {
			return ErrInvalidAction
		}
	}
	if s.Detail != nil && s.Detail.Kind() != s.Kind {
		return fmt.Errorf("%w: %s detail on %s notification", ErrDetailMismatch, s.Detail.Kind(), s.Kind)
	}
	return nil
}

// Notification is a shown, timed notification. It lives only in memory.
type Notification struct {
	ID        string
	Kind      Kind
	Title     string
	Message   string
	Icon      string
	CreatedAt time.Time
	Actions   []Action
	Duration  time.Duration
	Detail    Detail
}

// NewNotification validates spec and builds a notification created at now.
func NewNotification(spec Spec, now time.Time) (*Notification, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	duration := spec.Duration
	if duration == 0 {
		duration = DefaultDuration
	}

	return &Notification{
		ID:        NewID(spec.Kind, now),
		Kind:      spec.Kind,
		Title:     spec.Title,
		Message:   spec.Message,
		Icon:      spec.Icon,
		CreatedAt: now,
		Actions:   append([]Action(nil), spec.Actions...),
		Duration:  duration,
		Detail:    spec.Detail,
	}, nil
}

// Spec returns a spec that recreates an equivalent notification.
func (n *Notification) Spec() Spec {
	return Spec{
		Kind:     n.Kind,
		Title:    n.Title,
		Message:  n.Message,
		Icon:     n.Icon,
		Actions:  append([]Action(nil), n.Actions...),
		Duration: n.Duration,
		Detail:   n.Detail,
	}
}

// ExpiresAt returns when the notification auto-dismisses.
func (n *Notification) ExpiresAt() time.Time {
	return n.CreatedAt.Add(n.Duration)
}

// Action returns the action with the given id.
func (n *Notification) Action(id string) (Action, bool) {
	for _, a := range n.Actions {
		if a.ID == id {
			return a, true
		}
	}
	return Action{}, false
}

// NewID builds an id from the kind and creation time. A random suffix keeps
// ids unique when two notifications of one kind share a millisecond.
func NewID(kind Kind, createdAt time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s-%d-%s", kind, createdAt.UnixMilli(), suffix)
}
