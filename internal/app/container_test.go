package app

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	activityApp "github.com/felixgeelhaar/flowstate/internal/activity/application"
	"github.com/felixgeelhaar/flowstate/internal/activity/infrastructure/persistence"
	notifications "github.com/felixgeelhaar/flowstate/internal/notifications/domain"
	"github.com/felixgeelhaar/flowstate/internal/shared/infrastructure/clock"
	triggersApp "github.com/felixgeelhaar/flowstate/internal/triggers/application"
	"github.com/felixgeelhaar/flowstate/pkg/config"
	"github.com/felixgeelhaar/flowstate/pkg/observability"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

func testConfig(store string) *config.Config {
	return &config.Config{
		AppEnv:                "test",
		UserID:                "tester",
		Store:                 store,
		NotifyDefaultDuration: 12 * time.Second,
		NotifySnoozeDuration:  20 * time.Minute,
		StoreBreakerFailures:  5,
		StoreBreakerTimeout:   30 * time.Second,
	}
}

func TestNewContainer_MemoryStore(t *testing.T) {
	clk := clockwork.NewFakeClockAt(time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC))
	c, err := NewContainer(context.Background(), testConfig(config.StoreMemory), testLogger(), WithClock(clk))
	require.NoError(t, err)
	defer c.Close()

	assert.NotNil(t, c.Store)
	assert.Nil(t, c.DBConn)
	assert.Nil(t, c.RedisClient)
	assert.NotNil(t, c.Reader)
	assert.NotNil(t, c.Recorder)
	assert.NotNil(t, c.Notifications)
	assert.NotNil(t, c.Detector)
	assert.NotNil(t, c.Insights)
	assert.Same(t, c.Bus, c.EventPublisher)
}

func TestNewContainer_MicroWinEndToEnd(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewManual(time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC))
	c, err := NewContainer(ctx, testConfig(config.StoreMemory), testLogger(), WithClock(clk))
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Recorder.AddHabit(ctx, "Stretch")
	require.NoError(t, err)
	_, err = c.Recorder.CompleteHabit(ctx, "stretch", "")
	require.NoError(t, err)

	outcome, err := c.Detector.RunOnce(ctx, notifications.KindMicroWin)
	require.NoError(t, err)
	assert.Equal(t, triggersApp.OutcomeFired, outcome)

	active := c.Notifications.Notifications()
	require.Len(t, active, 1)
	assert.Equal(t, "Sparkles", active[0].Icon)
	assert.Equal(t, int64(1), c.Metrics.GetCounter(observability.MetricEventsConsumed,
		observability.T("routing_key", notifications.RoutingKeyShown)))

	clk.Advance(15 * time.Second)
	assert.Empty(t, c.Notifications.Notifications())
}

func TestNewContainer_InsightsFromRecordedActivity(t *testing.T) {
	ctx := context.Background()
	clk := clockwork.NewFakeClockAt(time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC))
	c, err := NewContainer(ctx, testConfig(config.StoreMemory), testLogger(), WithClock(clk))
	require.NoError(t, err)
	defer c.Close()

	empty, err := c.Insights.Refresh(ctx)
	require.NoError(t, err)
	assert.True(t, empty.Placeholder)

	_, err = c.Recorder.AddHabit(ctx, "Meditate")
	require.NoError(t, err)
	_, err = c.Recorder.CompleteHabit(ctx, "Meditate", "morning")
	require.NoError(t, err)

	report, err := c.Insights.Refresh(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, report.Insights)
	assert.Equal(t, "first-habit", report.Insights[0].ID)
}

func TestNewContainer_SQLiteStore(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(config.StoreSQL)
	cfg.DatabaseURL = ":memory:"

	c, err := NewContainer(ctx, cfg, testLogger())
	require.NoError(t, err)
	defer c.Close()

	require.NotNil(t, c.DBConn)
	assert.Nil(t, c.Outbox, "the outbox needs a broker to relay to")
	assert.Same(t, c.Bus, c.EventPublisher)
	_, err = c.Recorder.LogCheckIn(ctx, activityApp.CheckInInput{Mood: "good", Energy: 4, Focus: 3})
	require.NoError(t, err)
	assert.Len(t, c.Reader.CheckIns(ctx), 1)

	health := c.Health.GetOverallHealth(ctx)
	assert.Equal(t, observability.HealthStatusHealthy, health.Status)
	assert.Contains(t, health.Checks, "store")
}

func TestNewContainer_InjectedStore(t *testing.T) {
	store := persistence.NewMemoryStore()
	c, err := NewContainer(context.Background(), testConfig(config.StoreSQL), testLogger(), WithStore(store))
	require.NoError(t, err)
	defer c.Close()

	assert.Same(t, store, c.Store)
	assert.Nil(t, c.DBConn)
}

func TestNewContainer_InvalidTriggerConfig(t *testing.T) {
	cfg := testConfig(config.StoreMemory)
	zero := time.Duration(0)
	cfg.Triggers = map[string]config.TriggerOverride{"micro-win": {Interval: &zero}}

	_, err := NewContainer(context.Background(), cfg, testLogger())
	assert.Error(t, err)
}

func TestContainer_CloseIsSafeTwice(t *testing.T) {
	c, err := NewContainer(context.Background(), testConfig(config.StoreMemory), testLogger())
	require.NoError(t, err)

	c.Close()
	c.Close()
}
