// Package scheduler runs named periodic tasks on a clock, with explicit
// start and stop so that no timer outlives its owner.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/felixgeelhaar/flowstate/internal/shared/infrastructure/clock"
)

var (
	ErrInvalidInterval = errors.New("task interval must be positive")
	ErrDuplicateTask   = errors.New("task already registered")
	ErrRunning         = errors.New("scheduler is running")
)

// TaskFunc is the body of a periodic task.
type TaskFunc func(ctx context.Context)

// TaskStats reports the run history of a task.
type TaskStats struct {
	Name      string
	Interval  time.Duration
	Runs      uint64
	LastRunAt *time.Time
}

type task struct {
	name      string
	interval  time.Duration
	fn        TaskFunc
	timer     clock.Timer
	runs      uint64
	lastRunAt *time.Time
}

// Scheduler owns a set of periodic tasks. Each task runs once when the
// scheduler starts and then every interval until Stop is called.
type Scheduler struct {
	clock  clock.Clock
	logger *slog.Logger

	mu         sync.Mutex
	tasks      []*task
	running    bool
	generation uint64
	ctx        context.Context
	stopCtx    func() bool
}

// New creates a scheduler.
func New(clk clock.Clock, logger *slog.Logger) *Scheduler {
	if clk == nil {
		clk = clock.Real()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		clock:  clk,
		logger: logger,
	}
}

// Every registers a task. Tasks must be registered before Start.
func (s *Scheduler) Every(name string, interval time.Duration, fn TaskFunc) error {
	if interval <= 0 {
		return fmt.Errorf("%s: %w", name, ErrInvalidInterval)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return ErrRunning
	}
	for _, t := range s.tasks {
		if t.name == name {
			return fmt.Errorf("%s: %w", name, ErrDuplicateTask)
		}
	}
	s.tasks = append(s.tasks, &task{name: name, interval: interval, fn: fn})
	return nil
}

// Start runs every task once and arms its periodic timer.
// Cancelling ctx has the same effect as calling Stop.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.generation++
	gen := s.generation
	s.ctx = ctx
	tasks := append([]*task(nil), s.tasks...)
	s.mu.Unlock()

	s.logger.Info("scheduler started", "tasks", len(tasks))

	for _, t := range tasks {
		s.fire(t, gen)
	}

	s.mu.Lock()
	if s.running && s.generation == gen {
		s.stopCtx = context.AfterFunc(ctx, s.Stop)
	}
	s.mu.Unlock()

	return nil
}

// Stop cancels every pending task timer. It is safe to call more than once.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	for _, t := range s.tasks {
		if t.timer != nil {
			t.timer.Stop()
			t.timer = nil
		}
	}
	stopCtx := s.stopCtx
	s.stopCtx = nil
	s.mu.Unlock()

	if stopCtx != nil {
		stopCtx()
	}
	s.logger.Info("scheduler stopped")
}

// IsRunning reports whether the scheduler has been started and not stopped.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Stats returns a snapshot of per-task run counts.
func (s *Scheduler) Stats() []TaskStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := make([]TaskStats, 0, len(s.tasks))
	for _, t := range s.tasks {
		stats = append(stats, TaskStats{
			Name:      t.name,
			Interval:  t.interval,
			Runs:      t.runs,
			LastRunAt: t.lastRunAt,
		})
	}
	return stats
}

// fire runs t and re-arms it unless the scheduler stopped in the meantime.
func (s *Scheduler) fire(t *task, gen uint64) {
	s.mu.Lock()
	if !s.running || s.generation != gen {
		s.mu.Unlock()
		return
	}
	ctx := s.ctx
	now := s.clock.Now()
	t.runs++
	t.lastRunAt = &now
	s.mu.Unlock()

	s.run(ctx, t)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running || s.generation != gen {
		return
	}
	t.timer = s.clock.AfterFunc(t.interval, func() { s.fire(t, gen) })
}

func (s *Scheduler) run(ctx context.Context, t *task) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("scheduled task panicked", "task", t.name, "panic", r)
		}
	}()
	t.fn(ctx)
}
