package application

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	activity "github.com/felixgeelhaar/flowstate/internal/activity/domain"
	"github.com/felixgeelhaar/flowstate/internal/insights/domain"
	sharedApp "github.com/felixgeelhaar/flowstate/internal/shared/application"
	"github.com/felixgeelhaar/flowstate/internal/shared/infrastructure/clock"
	"github.com/felixgeelhaar/flowstate/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/flowstate/pkg/observability"
)

// PlaceholderMessage is shown while there is not enough history for any
// insight.
const PlaceholderMessage = "Still building your insights. Keep checking in and completing habits."

// HistoryReader supplies the raw history. The activity Reader satisfies it.
type HistoryReader interface {
	CheckIns(ctx context.Context) []activity.CheckIn
	Habits(ctx context.Context) []activity.Habit
}

// Report is one analysis run over the stored history.
type Report struct {
	ID          uuid.UUID        `json:"id"`
	GeneratedAt time.Time        `json:"generatedAt"`
	Insights    []domain.Insight `json:"insights"`
	Charts      domain.ChartData `json:"chartData"`
	Placeholder bool             `json:"placeholder"`
	Message     string           `json:"message,omitempty"`
	CheckIns    int              `json:"checkIns"`
	Habits      int              `json:"habits"`
}

// Service runs the analysis against the store and keeps the latest report.
type Service struct {
	reader    HistoryReader
	clock     clock.Clock
	publisher eventbus.Publisher
	metrics   observability.Metrics
	logger    *slog.Logger

	mu     sync.RWMutex
	latest *Report
}

// NewService creates an insights service.
func NewService(reader HistoryReader, clk clock.Clock, publisher eventbus.Publisher, metrics observability.Metrics, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if clk == nil {
		clk = clock.Real()
	}
	if publisher == nil {
		publisher = eventbus.NewNoopPublisher(logger)
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &Service{
		reader:    reader,
		clock:     clk,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
	}
}

// Refresh reads the history, analyzes it and caches the result. It only
// fails when ctx is done; missing or malformed data yields a placeholder
// report.
func (s *Service) Refresh(ctx context.Context) (Report, error) {
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}

	timer := observability.StartTimer(ctx, s.metrics, "insights.refresh")
	checkIns := s.reader.CheckIns(ctx)
	habits := s.reader.Habits(ctx)
	now := s.clock.Now()
	analysis := Analyze(now, checkIns, habits)

	report := Report{
		ID:          uuid.New(),
		GeneratedAt: now,
		Insights:    analysis.Insights,
		Charts:      analysis.Charts,
		Placeholder: analysis.Empty(),
		CheckIns:    len(checkIns),
		Habits:      len(habits),
	}
	if report.Placeholder {
		report.Message = PlaceholderMessage
	}

	s.mu.Lock()
	s.latest = &report
	s.mu.Unlock()

	elapsed := timer.Stop(nil)
	s.metrics.Gauge(observability.MetricInsightsCount, float64(len(report.Insights)))
	s.logger.Info("insights refreshed",
		"report_id", report.ID,
		"insights", len(report.Insights),
		"placeholder", report.Placeholder,
		"check_ins", report.CheckIns,
		"habits", report.Habits,
		"duration_ms", elapsed.Milliseconds(),
	)

	event := domain.NewReportGenerated(report.ID, report.Insights, report.Placeholder, now)
	event.SetMetadata(sharedApp.NewEventMetadata(ctx))
	if err := eventbus.PublishEvents(ctx, s.publisher, event); err != nil {
		s.logger.Warn("failed to publish insights report", "report_id", report.ID, "error", err)
	}

	return report, nil
}

// Latest returns the last report produced by Refresh.
func (s *Service) Latest() (Report, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil {
		return Report{}, false
	}
	return *s.latest, true
}
