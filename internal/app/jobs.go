package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	insightsApp "github.com/felixgeelhaar/flowstate/internal/insights/application"
	"github.com/felixgeelhaar/flowstate/internal/shared/infrastructure/clock"
	"github.com/felixgeelhaar/flowstate/internal/shared/infrastructure/outbox"
	"github.com/robfig/cron/v3"
)

// Jobs runs the calendar-scheduled background work of the worker: the
// insights refresh and outbox cleanup. Trigger checks run on the
// detector's own intervals.
type Jobs struct {
	cron     *cron.Cron
	insights *insightsApp.Service
	logger   *slog.Logger

	refreshEntry cron.EntryID

	mu      sync.Mutex
	running bool
}

// NewJobs parses schedule (standard five-field cron syntax or a descriptor
// such as @daily) and prepares the insights refresh.
func NewJobs(insights *insightsApp.Service, schedule string, logger *slog.Logger) (*Jobs, error) {
	if insights == nil {
		return nil, errors.New("insights service is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	cl := cronLogger{logger: logger}
	c := cron.New(
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)

	j := &Jobs{cron: c, insights: insights, logger: logger}
	id, err := c.AddFunc(schedule, func() { j.refreshInsights(context.Background()) })
	if err != nil {
		return nil, fmt.Errorf("invalid insights refresh schedule %q: %w", schedule, err)
	}
	j.refreshEntry = id
	return j, nil
}

// AddOutboxCleanup deletes relayed and dead outbox messages older than
// retention once an hour.
func (j *Jobs) AddOutboxCleanup(repo outbox.Repository, retention time.Duration, clk clock.Clock) error {
	if repo == nil {
		return errors.New("outbox repository is required")
	}
	if retention <= 0 {
		return fmt.Errorf("outbox retention must be positive, got %s", retention)
	}
	if clk == nil {
		clk = clock.Real()
	}
	_, err := j.cron.AddFunc("@hourly", func() {
		j.cleanOutbox(context.Background(), repo, clk.Now().Add(-retention))
	})
	return err
}

// Start begins running jobs until Stop is called or ctx is cancelled.
func (j *Jobs) Start(ctx context.Context) {
	j.mu.Lock()
	if j.running {
		j.mu.Unlock()
		return
	}
	j.running = true
	j.mu.Unlock()

	j.cron.Start()
	j.logger.Info("jobs started", "next_insights_refresh", j.NextInsightsRefresh())
	context.AfterFunc(ctx, j.Stop)
}

// Stop waits for running jobs to finish. It is safe to call more than once.
func (j *Jobs) Stop() {
	j.mu.Lock()
	if !j.running {
		j.mu.Unlock()
		return
	}
	j.running = false
	j.mu.Unlock()

	<-j.cron.Stop().Done()
	j.logger.Info("jobs stopped")
}

// IsRunning reports whether the cron loop is active.
func (j *Jobs) IsRunning() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.running
}

// NextInsightsRefresh is zero until Start has been called.
func (j *Jobs) NextInsightsRefresh() time.Time {
	return j.cron.Entry(j.refreshEntry).Next
}

func (j *Jobs) refreshInsights(ctx context.Context) {
	report, err := j.insights.Refresh(ctx)
	if err != nil {
		j.logger.Warn("scheduled insights refresh failed", "error", err)
		return
	}
	j.logger.Debug("scheduled insights refresh done",
		"report_id", report.ID,
		"placeholder", report.Placeholder,
	)
}

func (j *Jobs) cleanOutbox(ctx context.Context, repo outbox.Repository, cutoff time.Time) {
	deleted, err := repo.DeleteOld(ctx, cutoff)
	if err != nil {
		j.logger.Warn("outbox cleanup failed", "error", err)
		return
	}
	if deleted > 0 {
		j.logger.Info("outbox cleanup done", "deleted", deleted, "cutoff", cutoff)
	}
}

// cronLogger adapts slog to cron's logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append([]any{"error", err}, keysAndValues...)...)
}
