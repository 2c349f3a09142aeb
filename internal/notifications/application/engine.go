// Package application contains the notification engine, which owns the set
// of active notifications and every timer attached to them.
package application

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/felixgeelhaar/flowstate/internal/notifications/domain"
	sharedApp "github.com/felixgeelhaar/flowstate/internal/shared/application"
	sharedDomain "github.com/felixgeelhaar/flowstate/internal/shared/domain"
	"github.com/felixgeelhaar/flowstate/internal/shared/infrastructure/clock"
	"github.com/felixgeelhaar/flowstate/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/flowstate/pkg/observability"
)

// DefaultSnoozeDuration is used when Snooze is called with a zero duration.
const DefaultSnoozeDuration = 20 * time.Minute

// ErrEngineClosed is returned by Show after Close.
var ErrEngineClosed = errors.New("notification engine is closed")

// Config configures the engine.
type Config struct {
	// DefaultDuration replaces a zero spec duration.
	DefaultDuration time.Duration
	// SnoozeDuration replaces a zero snooze duration.
	SnoozeDuration time.Duration
}

// DefaultConfig returns the standard engine timings.
func DefaultConfig() Config {
	return Config{
		DefaultDuration: domain.DefaultDuration,
		SnoozeDuration:  DefaultSnoozeDuration,
	}
}

// Engine tracks active notifications and their auto-dismiss and snooze timers.
// It is safe for concurrent use.
type Engine struct {
	clock     clock.Clock
	publisher eventbus.Publisher
	metrics   observability.Metrics
	logger    *slog.Logger
	config    Config

	mu        sync.Mutex
	active    []*domain.Notification
	timers    map[string]clock.Timer
	snoozes   map[uint64]clock.Timer
	snoozeSeq uint64
	closed    bool
}

// NewEngine creates a notification engine. A nil publisher, metrics or
// logger is replaced with a no-op implementation.
func NewEngine(clk clock.Clock, publisher eventbus.Publisher, metrics observability.Metrics, logger *slog.Logger, cfg Config) *Engine {
	if clk == nil {
		clk = clock.Real()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if publisher == nil {
		publisher = eventbus.NewNoopPublisher(logger)
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	if cfg.DefaultDuration <= 0 {
		cfg.DefaultDuration = domain.DefaultDuration
	}
	if cfg.SnoozeDuration <= 0 {
		cfg.SnoozeDuration = DefaultSnoozeDuration
	}

	return &Engine{
		clock:     clk,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
		config:    cfg,
		timers:    make(map[string]clock.Timer),
		snoozes:   make(map[uint64]clock.Timer),
	}
}

// Show validates spec, adds a notification to the active set and arms its
// auto-dismiss timer. Invalid specs are rejected before any timer exists.
func (e *Engine) Show(ctx context.Context, spec domain.Spec) (domain.Notification, error) {
	if spec.Duration == 0 {
		spec.Duration = e.config.DefaultDuration
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return domain.Notification{}, ErrEngineClosed
	}

	n, err := domain.NewNotification(spec, e.clock.Now())
	if err != nil {
		e.mu.Unlock()
		return domain.Notification{}, err
	}

	id := n.ID
	e.active = append(e.active, n)
	e.timers[id] = e.clock.AfterFunc(n.Duration, func() {
		e.remove(context.Background(), id, domain.DismissExpired)
	})
	count := len(e.active)
	shown := *n
	e.mu.Unlock()

	e.logger.Info("notification shown",
		"notification_id", id,
		"kind", string(n.Kind),
		"duration_ms", n.Duration.Milliseconds(),
	)
	e.metrics.Counter(observability.MetricNotificationsShown, 1, observability.T("kind", string(n.Kind)))
	e.metrics.Gauge(observability.MetricNotificationsActive, float64(count))
	e.publish(ctx, domain.NewNotificationShown(n))

	return shown, nil
}

// Dismiss removes the notification with the given id and cancels its timer.
// It reports whether a notification was removed; unknown ids are a no-op.
func (e *Engine) Dismiss(ctx context.Context, id string) bool {
	return e.remove(ctx, id, domain.DismissExplicit)
}

// Snooze dismisses the notification and schedules an equivalent one, with a
// new id, after d. A non-positive d uses the configured snooze duration.
func (e *Engine) Snooze(ctx context.Context, id string, d time.Duration) bool {
	if d <= 0 {
		d = e.config.SnoozeDuration
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return false
	}
	n, ok := e.detachLocked(id)
	if !ok {
		e.mu.Unlock()
		return false
	}

	now := e.clock.Now()
	spec := n.Spec()
	e.snoozeSeq++
	seq := e.snoozeSeq
	e.snoozes[seq] = e.clock.AfterFunc(d, func() {
		e.refire(seq, spec)
	})
	count := len(e.active)
	e.mu.Unlock()

	e.logger.Info("notification snoozed",
		"notification_id", id,
		"kind", string(n.Kind),
		"duration_ms", d.Milliseconds(),
	)
	e.metrics.Counter(observability.MetricNotificationsSnoozed, 1, observability.T("kind", string(n.Kind)))
	e.metrics.Gauge(observability.MetricNotificationsActive, float64(count))
	e.publish(ctx,
		domain.NewNotificationDismissed(n, domain.DismissSnoozed, now),
		domain.NewNotificationSnoozed(n, now, now.Add(d)),
	)
	return true
}

// Invoke runs an action of an active notification. Reserved action ids
// snooze or dismiss it; any other action dismisses it after its handler
// runs. It reports false when the notification or action is unknown.
func (e *Engine) Invoke(ctx context.Context, id, actionID string) bool {
	n, ok := e.Get(id)
	if !ok {
		return false
	}
	action, ok := n.Action(actionID)
	if !ok {
		return false
	}

	if action.Handler != nil {
		action.Handler()
	}
	if actionID == domain.ActionSnooze {
		return e.Snooze(ctx, id, 0)
	}
	e.Dismiss(ctx, id)
	return true
}

// ClearAll dismisses every active notification and cancels pending snooze
// re-fires. It returns the number of notifications removed.
func (e *Engine) ClearAll(ctx context.Context) int {
	return e.drain(ctx, domain.DismissCleared, false)
}

// Notifications returns a snapshot of the active set in creation order.
func (e *Engine) Notifications() []domain.Notification {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]domain.Notification, len(e.active))
	for i, n := range e.active {
		out[i] = *n
	}
	return out
}

// Get returns the active notification with the given id.
func (e *Engine) Get(id string) (domain.Notification, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, n := range e.active {
		if n.ID == id {
			return *n, true
		}
	}
	return domain.Notification{}, false
}

// PendingSnoozes returns the number of snoozed notifications waiting to re-fire.
func (e *Engine) PendingSnoozes() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.snoozes)
}

// Close cancels every timer and empties the active set. Show fails afterwards.
// Calling Close more than once is safe.
func (e *Engine) Close() error {
	e.drain(context.Background(), domain.DismissShutdown, true)
	return nil
}

func (e *Engine) remove(ctx context.Context, id string, reason domain.DismissReason) bool {
	e.mu.Lock()
	n, ok := e.detachLocked(id)
	count := len(e.active)
	e.mu.Unlock()
	if !ok {
		return false
	}

	e.logger.Info("notification dismissed",
		"notification_id", id,
		"kind", string(n.Kind),
		"reason", string(reason),
	)
	e.metrics.Counter(observability.MetricNotificationsDismissed, 1, observability.T("reason", string(reason)))
	e.metrics.Gauge(observability.MetricNotificationsActive, float64(count))
	e.publish(ctx, domain.NewNotificationDismissed(n, reason, e.clock.Now()))
	return true
}

// detachLocked removes the notification from the active set and stops its
// timer. The caller must hold e.mu.
func (e *Engine) detachLocked(id string) (*domain.Notification, bool) {
	for i, n := range e.active {
		if n.ID != id {
			continue
		}
		if t, ok := e.timers[id]; ok {
			t.Stop()
			delete(e.timers, id)
		}
		e.active = append(e.active[:i:i], e.active[i+1:]...)
		return n, true
	}
	return nil, false
}

func (e *Engine) drain(ctx context.Context, reason domain.DismissReason, closing bool) int {
	e.mu.Lock()
	if closing {
		if e.closed {
			e.mu.Unlock()
			return 0
		}
		e.closed = true
	}

	snapshot := append([]*domain.Notification(nil), e.active...)
	for _, n := range snapshot {
		e.detachLocked(n.ID)
	}
	for seq, t := range e.snoozes {
		t.Stop()
		delete(e.snoozes, seq)
	}
	e.mu.Unlock()

	if len(snapshot) == 0 {
		return 0
	}

	now := e.clock.Now()
	events := make([]sharedDomain.DomainEvent, 0, len(snapshot))
	for _, n := range snapshot {
		events = append(events, domain.NewNotificationDismissed(n, reason, now))
	}
	e.logger.Info("notifications cleared", "count", len(snapshot), "reason", string(reason))
	e.metrics.Counter(observability.MetricNotificationsDismissed, int64(len(snapshot)), observability.T("reason", string(reason)))
	e.metrics.Gauge(observability.MetricNotificationsActive, 0)
	e.publish(ctx, events...)
	return len(snapshot)
}

func (e *Engine) refire(seq uint64, spec domain.Spec) {
	e.mu.Lock()
	if _, ok := e.snoozes[seq]; !ok || e.closed {
		e.mu.Unlock()
		return
	}
	delete(e.snoozes, seq)
	e.mu.Unlock()

	if _, err := e.Show(context.Background(), spec); err != nil {
		e.logger.Warn("snoozed notification could not be shown", "kind", string(spec.Kind), "error", err)
		return
	}
	e.metrics.Counter(observability.MetricNotificationsRefired, 1, observability.T("kind", string(spec.Kind)))
}

func (e *Engine) publish(ctx context.Context, events ...sharedDomain.DomainEvent) {
	sharedApp.ApplyEventMetadata(events, sharedApp.NewEventMetadata(ctx))
	if err := eventbus.PublishEvents(ctx, e.publisher, events...); err != nil {
		e.logger.Warn("failed to publish notification event", "error", err)
	}
}
