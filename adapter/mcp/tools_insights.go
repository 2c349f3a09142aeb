package mcp

import (
	"context"
	"errors"
	"time"

	insightsApp "github.com/felixgeelhaar/flowstate/internal/insights/application"
	insightsDomain "github.com/felixgeelhaar/flowstate/internal/insights/domain"
	"github.com/felixgeelhaar/mcp-go"
)

// InsightsDTO is an insights report. Chart data is included on request.
type InsightsDTO struct {
	GeneratedAt time.Time                 `json:"generated_at"`
	Insights    []insightsDomain.Insight  `json:"insights"`
	Placeholder bool                      `json:"placeholder"`
	Message     string                    `json:"message,omitempty"`
	CheckIns    int                       `json:"check_ins"`
	Habits      int                       `json:"habits"`
	Charts      *insightsDomain.ChartData `json:"chart_data,omitempty"`
}

type insightsInput struct {
	IncludeCharts bool `json:"include_charts,omitempty"`
}

func registerInsightsTools(srv *mcp.Server, t *toolset) error {
	srv.Tool("insights.analyze").
		Description("Analyze check-ins and habit completions and return up to four ranked insights").
		Handler(traced(t.analyzeInsights))

	srv.Tool("insights.latest").
		Description("Return the most recent insights report without re-running the analysis").
		Handler(traced(t.latestInsights))

	return nil
}

func (t *toolset) analyzeInsights(ctx context.Context, input insightsInput) (*InsightsDTO, error) {
	if t.app.Insights == nil {
		return nil, errors.New("insights service not available")
	}
	report, err := t.app.Insights.Refresh(ctx)
	if err != nil {
		return nil, err
	}
	return toInsightsDTO(report, input.IncludeCharts), nil
}

func (t *toolset) latestInsights(ctx context.Context, input insightsInput) (*InsightsDTO, error) {
	if t.app.Insights == nil {
		return nil, errors.New("insights service not available")
	}
	if report, ok := t.app.Insights.Latest(); ok {
		return toInsightsDTO(report, input.IncludeCharts), nil
	}
	return t.analyzeInsights(ctx, input)
}

func toInsightsDTO(report insightsApp.Report, includeCharts bool) *InsightsDTO {
	dto := &InsightsDTO{
		GeneratedAt: report.GeneratedAt,
		Insights:    report.Insights,
		Placeholder: report.Placeholder,
		Message:     report.Message,
		CheckIns:    report.CheckIns,
		Habits:      report.Habits,
	}
	if includeCharts {
		charts := report.Charts
		dto.Charts = &charts
	}
	return dto
}
