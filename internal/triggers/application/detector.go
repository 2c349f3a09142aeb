// Package application runs the smart trigger checks against stored activity
// and shows a notification whenever one qualifies and is off cooldown.
package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	activity "github.com/felixgeelhaar/flowstate/internal/activity/domain"
	notifications "github.com/felixgeelhaar/flowstate/internal/notifications/domain"
	"github.com/felixgeelhaar/flowstate/internal/shared/infrastructure/clock"
	"github.com/felixgeelhaar/flowstate/internal/shared/infrastructure/scheduler"
	"github.com/felixgeelhaar/flowstate/internal/triggers/domain"
	"github.com/felixgeelhaar/flowstate/pkg/observability"
)

var (
	ErrAlreadyRunning  = errors.New("trigger detector is already running")
	ErrTriggerDisabled = errors.New("trigger is disabled")
)

// Outcome is the result of one check.
type Outcome string

const (
	OutcomeFired       Outcome = "fired"
	OutcomeNoSignal    Outcome = "no_signal"
	OutcomeCoolingDown Outcome = "cooling_down"
	OutcomeFailed      Outcome = "failed"
)

// TriggerState describes one trigger for status reporting.
type TriggerState struct {
	Kind      notifications.Kind `json:"kind"`
	Enabled   bool               `json:"enabled"`
	State     domain.State       `json:"state"`
	Remaining time.Duration      `json:"remaining"`
	LastFired *time.Time         `json:"last_fired,omitempty"`
	Interval  time.Duration      `json:"interval"`
	Cooldown  time.Duration      `json:"cooldown"`
}

// Detector owns the four trigger checks, their cooldowns and the periodic
// tasks that run them. Checks are serialized, so each read-decide-update
// sequence is atomic relative to the others.
type Detector struct {
	reader    ActivityReader
	notifier  Notifier
	navigator Navigator
	clock     clock.Clock
	metrics   observability.Metrics
	logger    *slog.Logger
	policies  map[notifications.Kind]domain.Policy

	checkMu   sync.Mutex
	cooldowns *domain.CooldownRecord

	runMu     sync.Mutex
	scheduler *scheduler.Scheduler
}

// NewDetector creates a detector. Policies missing from the map fall back to
// the defaults.
func NewDetector(
	reader ActivityReader,
	notifier Notifier,
	navigator Navigator,
	clk clock.Clock,
	metrics observability.Metrics,
	logger *slog.Logger,
	policies map[notifications.Kind]domain.Policy,
) (*Detector, error) {
	if clk == nil {
		clk = clock.Real()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	if navigator == nil {
		navigator = LogNavigator{Logger: logger}
	}

	merged := domain.DefaultPolicies()
	for kind, p := range policies {
		p.Kind = kind
		if err := p.Validate(); err != nil {
			return nil, err
		}
		merged[kind] = p
	}

	return &Detector{
		reader:    reader,
		notifier:  notifier,
		navigator: navigator,
		clock:     clk,
		metrics:   metrics,
		logger:    logger,
		policies:  merged,
		cooldowns: domain.NewCooldownRecord(),
	}, nil
}

// Start runs every enabled check immediately and then on its own interval
// until Stop is called or ctx is cancelled.
func (d *Detector) Start(ctx context.Context) error {
	d.runMu.Lock()
	defer d.runMu.Unlock()

	if d.scheduler != nil && d.scheduler.IsRunning() {
		return ErrAlreadyRunning
	}

	s := scheduler.New(d.clock, d.logger)
	for _, kind := range notifications.Kinds() {
		p := d.policies[kind]
		if !p.Enabled {
			continue
		}
		kind := kind
		if err := s.Every(string(kind), p.Interval, func(ctx context.Context) {
			_, _ = d.RunOnce(ctx, kind)
		}); err != nil {
			return fmt.Errorf("failed to schedule %s: %w", kind, err)
		}
	}

	d.scheduler = s
	d.logger.Info("trigger detector started", "triggers", len(s.Stats()))
	return s.Start(ctx)
}

// Stop cancels every pending check. It is safe to call more than once.
func (d *Detector) Stop() {
	d.runMu.Lock()
	s := d.scheduler
	d.runMu.Unlock()

	if s != nil && s.IsRunning() {
		s.Stop()
		d.logger.Info("trigger detector stopped")
	}
}

// IsRunning reports whether the periodic checks are active.
func (d *Detector) IsRunning() bool {
	d.runMu.Lock()
	defer d.runMu.Unlock()
	return d.scheduler != nil && d.scheduler.IsRunning()
}

// RunOnce evaluates one trigger now. The cooldown is updated only when a
// notification is actually shown.
func (d *Detector) RunOnce(ctx context.Context, kind notifications.Kind) (Outcome, error) {
	policy, ok := d.policies[kind]
	if !ok {
		return OutcomeFailed, fmt.Errorf("%w: %q", notifications.ErrUnknownKind, kind)
	}
	if !policy.Enabled {
		return OutcomeNoSignal, ErrTriggerDisabled
	}

	d.checkMu.Lock()
	defer d.checkMu.Unlock()

	now := d.clock.Now()
	spec, qualifies := d.evaluate(ctx, kind, now)
	if !qualifies {
		d.logger.Debug("trigger condition not met", "trigger", string(kind))
		return d.record(kind, OutcomeNoSignal), nil
	}

	if !d.cooldowns.Ready(kind, now, policy.Cooldown) {
		d.logger.Debug("trigger cooling down", "trigger", string(kind))
		return d.record(kind, OutcomeCoolingDown), nil
	}

	n, err := d.notifier.Show(ctx, spec)
	if err != nil {
		d.logger.Warn("trigger could not show notification", "trigger", string(kind), "error", err)
		return d.record(kind, OutcomeFailed), err
	}

	d.cooldowns.MarkFired(kind, now)
	d.logger.Info("trigger fired", "trigger", string(kind), "notification_id", n.ID)
	return d.record(kind, OutcomeFired), nil
}

// RunAll evaluates every enabled trigger once, in kind order.
func (d *Detector) RunAll(ctx context.Context) map[notifications.Kind]Outcome {
	out := make(map[notifications.Kind]Outcome)
	for _, kind := range notifications.Kinds() {
		if !d.policies[kind].Enabled {
			continue
		}
		outcome, _ := d.RunOnce(ctx, kind)
		out[kind] = outcome
	}
	return out
}

// States reports every trigger's cooldown state at now.
func (d *Detector) States(now time.Time) []TriggerState {
	d.checkMu.Lock()
	defer d.checkMu.Unlock()

	states := make([]TriggerState, 0, len(d.policies))
	for kind, p := range d.policies {
		state, remaining := d.cooldowns.State(kind, now, p.Cooldown)
		ts := TriggerState{
			Kind:      kind,
			Enabled:   p.Enabled,
			State:     state,
			Remaining: remaining,
			Interval:  p.Interval,
			Cooldown:  p.Cooldown,
		}
		if last, ok := d.cooldowns.LastFired(kind); ok {
			ts.LastFired = &last
		}
		states = append(states, ts)
	}
	sort.Slice(states, func(i, j int) bool { return states[i].Kind < states[j].Kind })
	return states
}

// Policy returns the effective policy for kind.
func (d *Detector) Policy(kind notifications.Kind) (domain.Policy, bool) {
	p, ok := d.policies[kind]
	return p, ok
}

// evaluate reads only what the trigger needs and builds its notification.
func (d *Detector) evaluate(ctx context.Context, kind notifications.Kind, now time.Time) (notifications.Spec, bool) {
	signals := domain.Signals{Now: now}
	switch kind {
	case notifications.KindMicroWin:
		signals.Todos = d.reader.Todos(ctx)
		signals.Habits = d.reader.Habits(ctx)
		detail, ok := domain.MicroWin(signals)
		return d.microWinSpec(detail), ok
	case notifications.KindBreathe:
		signals.Latest = d.latest(ctx)
		detail, ok := domain.Breathe(signals)
		return d.breatheSpec(detail), ok
	case notifications.KindGentlePlan:
		signals.Latest = d.latest(ctx)
		signals.TimeBlocks = d.reader.TimeBlockCount(ctx)
		detail, ok := domain.GentlePlan(signals)
		return d.gentlePlanSpec(detail), ok
	case notifications.KindFocusWindow:
		signals.Latest = d.latest(ctx)
		detail, ok := domain.FocusWindow(signals)
		return d.focusWindowSpec(detail), ok
	default:
		return notifications.Spec{}, false
	}
}

func (d *Detector) latest(ctx context.Context) *activity.CheckIn {
	c, ok := d.reader.LatestCheckIn(ctx)
	if !ok {
		return nil
	}
	return &c
}

func (d *Detector) record(kind notifications.Kind, outcome Outcome) Outcome {
	d.metrics.Counter(observability.MetricTriggerEvaluations, 1,
		observability.T("trigger", string(kind)),
		observability.T("outcome", string(outcome)),
	)
	return outcome
}
