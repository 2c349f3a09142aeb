package application

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/felixgeelhaar/flowstate/internal/notifications/domain"
	"github.com/felixgeelhaar/flowstate/internal/shared/infrastructure/clock"
	"github.com/felixgeelhaar/flowstate/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/flowstate/pkg/observability"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

type recordingPublisher struct {
	mu        sync.Mutex
	envelopes []eventbus.Envelope
	err       error
}

func (p *recordingPublisher) Publish(_ context.Context, _ string, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	var env eventbus.Envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return err
	}
	p.envelopes = append(p.envelopes, env)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) routingKeys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	keys := make([]string, len(p.envelopes))
	for i, env := range p.envelopes {
		keys[i] = env.RoutingKey
	}
	return keys
}

func (p *recordingPublisher) reasons() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var reasons []string
	for _, env := range p.envelopes {
		if env.RoutingKey != domain.RoutingKeyDismissed {
			continue
		}
		var payload struct {
			Reason string `json:"reason"`
		}
		if err := json.Unmarshal(env.Payload, &payload); err == nil {
			reasons = append(reasons, payload.Reason)
		}
	}
	return reasons
}

type fixture struct {
	clock     *clock.Manual
	publisher *recordingPublisher
	metrics   *observability.InMemoryMetrics
	engine    *Engine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clk := clock.NewManual(time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC))
	pub := &recordingPublisher{}
	metrics := observability.NewInMemoryMetrics()
	engine := NewEngine(clk, pub, metrics, testLogger(), DefaultConfig())
	t.Cleanup(func() { _ = engine.Close() })
	return &fixture{clock: clk, publisher: pub, metrics: metrics, engine: engine}
}

func focusSpec() domain.Spec {
	return domain.Spec{
		Kind:    domain.KindFocusWindow,
		Title:   "Focus window open",
		Message: "Energy and focus are both high.",
		Icon:    "Target",
		Actions: []domain.Action{
			{ID: "focus", Label: "Start focus", Variant: domain.VariantPrimary},
		},
	}
}

func TestEngine_ShowDefaultsDurationAndSchedulesOneTimer(t *testing.T) {
	f := newFixture(t)

	n, err := f.engine.Show(context.Background(), focusSpec())
	require.NoError(t, err)

	assert.Equal(t, 12*time.Second, n.Duration)
	assert.Equal(t, f.clock.Now(), n.CreatedAt)
	assert.Equal(t, 1, f.clock.Pending())
	require.Len(t, f.engine.Notifications(), 1)

	f.clock.Advance(12*time.Second - time.Millisecond)
	assert.Len(t, f.engine.Notifications(), 1)

	f.clock.Advance(time.Millisecond)
	assert.Empty(t, f.engine.Notifications())
	assert.Equal(t, 0, f.clock.Pending())
	assert.Equal(t, []string{string(domain.DismissExpired)}, f.publisher.reasons())
}

func TestEngine_ExpiresWithAsyncTimerCallbacks(t *testing.T) {
	clk := clockwork.NewFakeClockAt(time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC))
	pub := &recordingPublisher{}
	engine := NewEngine(clk, pub, nil, testLogger(), DefaultConfig())
	t.Cleanup(func() { _ = engine.Close() })

	_, err := engine.Show(context.Background(), focusSpec())
	require.NoError(t, err)

	clk.Advance(11 * time.Second)
	assert.Len(t, engine.Notifications(), 1)

	clk.Advance(time.Second)
	require.Eventually(t, func() bool { return len(engine.Notifications()) == 0 }, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool { return len(pub.reasons()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{string(domain.DismissExpired)}, pub.reasons())
}

func TestEngine_ShowHonoursExplicitDuration(t *testing.T) {
	f := newFixture(t)

	spec := focusSpec()
	spec.Duration = 17 * time.Second
	n, err := f.engine.Show(context.Background(), spec)
	require.NoError(t, err)
	assert.Equal(t, 17*time.Second, n.Duration)

	f.clock.Advance(12 * time.Second)
	assert.Len(t, f.engine.Notifications(), 1)
	f.clock.Advance(5 * time.Second)
	assert.Empty(t, f.engine.Notifications())
}

func TestEngine_ShowGeneratesUniqueIDs(t *testing.T) {
	f := newFixture(t)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		n, err := f.engine.Show(context.Background(), focusSpec())
		require.NoError(t, err)
		assert.False(t, seen[n.ID], "duplicate id %s", n.ID)
		seen[n.ID] = true
	}
	assert.Equal(t, 50, f.clock.Pending())
}

func TestEngine_ShowRejectsInvalidSpecWithoutScheduling(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name    string
		mutate  func(*domain.Spec)
		wantErr error
	}{
		{"unknown kind", func(s *domain.Spec) { s.Kind = "party" }, domain.ErrUnknownKind},
		{"empty title", func(s *domain.Spec) { s.Title = "  " }, domain.ErrEmptyTitle},
		{"empty message", func(s *domain.Spec) { s.Message = "" }, domain.ErrEmptyMessage},
		{"negative duration", func(s *domain.Spec) { s.Duration = -time.Second }, domain.ErrInvalidDuration},
		{"action without id", func(s *domain.Spec) { s.Actions = []domain.Action{{Label: "Go"}} }, domain.ErrInvalidAction},
		{"mismatched detail", func(s *domain.Spec) { s.Detail = domain.BreatheDetail{} }, domain.ErrDetailMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := focusSpec()
			tt.mutate(&spec)
			_, err := f.engine.Show(context.Background(), spec)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	assert.Empty(t, f.engine.Notifications())
	assert.Equal(t, 0, f.clock.Pending())
	assert.Empty(t, f.publisher.routingKeys())
}

func TestEngine_DismissIsIdempotentAndCancelsTimer(t *testing.T) {
	f := newFixture(t)

	n, err := f.engine.Show(context.Background(), focusSpec())
	require.NoError(t, err)

	assert.True(t, f.engine.Dismiss(context.Background(), n.ID))
	assert.False(t, f.engine.Dismiss(context.Background(), n.ID))
	assert.False(t, f.engine.Dismiss(context.Background(), "missing"))

	assert.Empty(t, f.engine.Notifications())
	assert.Equal(t, 0, f.clock.Pending())

	f.clock.Advance(time.Minute)
	assert.Equal(t, []string{string(domain.DismissExplicit)}, f.publisher.reasons())
}

func TestEngine_DismissLeavesOthersUntouched(t *testing.T) {
	f := newFixture(t)

	first, err := f.engine.Show(context.Background(), focusSpec())
	require.NoError(t, err)
	second, err := f.engine.Show(context.Background(), focusSpec())
	require.NoError(t, err)

	f.engine.Dismiss(context.Background(), first.ID)

	active := f.engine.Notifications()
	require.Len(t, active, 1)
	assert.Equal(t, second.ID, active[0].ID)

	f.clock.Advance(12 * time.Second)
	assert.Empty(t, f.engine.Notifications())
}

func TestEngine_SnoozeRefiresEquivalentNotification(t *testing.T) {
	f := newFixture(t)

	original, err := f.engine.Show(context.Background(), focusSpec())
	require.NoError(t, err)

	require.True(t, f.engine.Snooze(context.Background(), original.ID, 5*time.Minute))
	_, found := f.engine.Get(original.ID)
	assert.False(t, found)
	assert.Empty(t, f.engine.Notifications())
	assert.Equal(t, 1, f.engine.PendingSnoozes())

	f.clock.Advance(5*time.Minute - time.Second)
	assert.Empty(t, f.engine.Notifications())

	f.clock.Advance(time.Second)
	active := f.engine.Notifications()
	require.Len(t, active, 1)

	refired := active[0]
	assert.NotEqual(t, original.ID, refired.ID)
	assert.Equal(t, original.Kind, refired.Kind)
	assert.Equal(t, original.Title, refired.Title)
	assert.Equal(t, original.Message, refired.Message)
	assert.Equal(t, original.Actions[0].ID, refired.Actions[0].ID)
	assert.Equal(t, f.clock.Now(), refired.CreatedAt)
	assert.Equal(t, 0, f.engine.PendingSnoozes())

	assert.Equal(t, []string{
		domain.RoutingKeyShown,
		domain.RoutingKeyDismissed,
		domain.RoutingKeySnoozed,
		domain.RoutingKeyShown,
	}, f.publisher.routingKeys())
}

func TestEngine_SnoozeDefaultsToTwentyMinutes(t *testing.T) {
	f := newFixture(t)

	n, err := f.engine.Show(context.Background(), focusSpec())
	require.NoError(t, err)
	require.True(t, f.engine.Snooze(context.Background(), n.ID, 0))

	f.clock.Advance(20*time.Minute - time.Millisecond)
	assert.Empty(t, f.engine.Notifications())
	f.clock.Advance(time.Millisecond)
	assert.Len(t, f.engine.Notifications(), 1)
}

func TestEngine_SnoozeUnknownIDIsNoop(t *testing.T) {
	f := newFixture(t)

	assert.False(t, f.engine.Snooze(context.Background(), "missing", time.Minute))
	assert.Equal(t, 0, f.clock.Pending())
	assert.Empty(t, f.publisher.routingKeys())
}

func TestEngine_ClearAllEmptiesSetAndCancelsTimers(t *testing.T) {
	f := newFixture(t)

	for i := 0; i < 3; i++ {
		_, err := f.engine.Show(context.Background(), focusSpec())
		require.NoError(t, err)
	}
	snoozed, err := f.engine.Show(context.Background(), focusSpec())
	require.NoError(t, err)
	require.True(t, f.engine.Snooze(context.Background(), snoozed.ID, time.Minute))

	assert.Equal(t, 3, f.engine.ClearAll(context.Background()))
	assert.Empty(t, f.engine.Notifications())
	assert.Equal(t, 0, f.clock.Pending())
	assert.Equal(t, 0, f.engine.PendingSnoozes())

	f.clock.Advance(time.Hour)
	assert.Empty(t, f.engine.Notifications())

	// The engine stays usable after a clear.
	_, err = f.engine.Show(context.Background(), focusSpec())
	assert.NoError(t, err)
}

func TestEngine_CloseCancelsEverythingAndRejectsShow(t *testing.T) {
	f := newFixture(t)

	n, err := f.engine.Show(context.Background(), focusSpec())
	require.NoError(t, err)
	_, err = f.engine.Show(context.Background(), focusSpec())
	require.NoError(t, err)
	require.True(t, f.engine.Snooze(context.Background(), n.ID, time.Minute))

	require.NoError(t, f.engine.Close())
	require.NoError(t, f.engine.Close())

	assert.Empty(t, f.engine.Notifications())
	assert.Equal(t, 0, f.clock.Pending())

	_, err = f.engine.Show(context.Background(), focusSpec())
	assert.ErrorIs(t, err, ErrEngineClosed)
	assert.False(t, f.engine.Snooze(context.Background(), "anything", time.Minute))

	f.clock.Advance(time.Hour)
	assert.Empty(t, f.engine.Notifications())
	assert.Contains(t, f.publisher.reasons(), string(domain.DismissShutdown))
}

func TestEngine_PublishFailureDoesNotFailShow(t *testing.T) {
	f := newFixture(t)
	f.publisher.err = errors.New("broker down")

	_, err := f.engine.Show(context.Background(), focusSpec())
	require.NoError(t, err)
	assert.Len(t, f.engine.Notifications(), 1)
}

func TestEngine_RecordsMetrics(t *testing.T) {
	f := newFixture(t)

	n, err := f.engine.Show(context.Background(), focusSpec())
	require.NoError(t, err)
	f.engine.Dismiss(context.Background(), n.ID)

	assert.Equal(t, int64(1), f.metrics.GetCounter(observability.MetricNotificationsShown, observability.T("kind", "focus-window")))
	assert.Equal(t, int64(1), f.metrics.GetCounter(observability.MetricNotificationsDismissed, observability.T("reason", "explicit")))
}

func TestEngine_ActionHandlersSurviveSnapshot(t *testing.T) {
	f := newFixture(t)

	called := false
	spec := focusSpec()
	spec.Actions = []domain.Action{{ID: "go", Label: "Go", Variant: domain.VariantPrimary, Handler: func() { called = true }}}
	_, err := f.engine.Show(context.Background(), spec)
	require.NoError(t, err)

	action, ok := f.engine.Notifications()[0].Action("go")
	require.True(t, ok)
	action.Handler()
	assert.True(t, called)
}

func TestEngine_InvokeRunsHandlerThenDismisses(t *testing.T) {
	f := newFixture(t)

	ran := 0
	spec := focusSpec()
	spec.Actions = []domain.Action{
		{ID: "focus", Label: "Start focus", Variant: domain.VariantPrimary, Handler: func() { ran++ }},
		{ID: domain.ActionSnooze, Label: "Later", Variant: domain.VariantGhost},
	}

	n, err := f.engine.Show(context.Background(), spec)
	require.NoError(t, err)
	assert.True(t, f.engine.Invoke(context.Background(), n.ID, "focus"))
	assert.Equal(t, 1, ran)
	assert.Empty(t, f.engine.Notifications())

	assert.False(t, f.engine.Invoke(context.Background(), n.ID, "focus"))
	assert.Equal(t, 1, ran)
}

func TestEngine_InvokeReservedActionsWithoutHandlers(t *testing.T) {
	f := newFixture(t)

	spec := focusSpec()
	spec.Actions = []domain.Action{
		{ID: domain.ActionDismiss, Label: "Not now", Variant: domain.VariantSecondary},
	}
	n, err := f.engine.Show(context.Background(), spec)
	require.NoError(t, err)

	assert.True(t, f.engine.Invoke(context.Background(), n.ID, domain.ActionDismiss))
	assert.Empty(t, f.engine.Notifications())
	assert.Zero(t, f.engine.PendingSnoozes())
	assert.Equal(t, []string{string(domain.DismissExplicit)}, f.publisher.reasons())
}

func TestEngine_InvokeSnoozeAction(t *testing.T) {
	f := newFixture(t)

	spec := focusSpec()
	spec.Actions = append(spec.Actions, domain.Action{ID: domain.ActionSnooze, Label: "Later", Variant: domain.VariantGhost})
	n, err := f.engine.Show(context.Background(), spec)
	require.NoError(t, err)

	assert.False(t, f.engine.Invoke(context.Background(), n.ID, "unknown-action"))
	assert.True(t, f.engine.Invoke(context.Background(), n.ID, domain.ActionSnooze))
	assert.Equal(t, 1, f.engine.PendingSnoozes())

	f.clock.Advance(DefaultSnoozeDuration)
	require.Len(t, f.engine.Notifications(), 1)

	// The recurrence keeps its actions, so it can be snoozed again.
	refired := f.engine.Notifications()[0]
	assert.True(t, f.engine.Invoke(context.Background(), refired.ID, domain.ActionSnooze))
}
