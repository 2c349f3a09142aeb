package domain

import (
	"time"

	sharedDomain "github.com/felixgeelhaar/flowstate/internal/shared/domain"
	"github.com/google/uuid"
)

const RoutingKeyReportGenerated = "insights.report.generated"

// ReportGenerated is emitted after each insight refresh.
type ReportGenerated struct {
	sharedDomain.BaseEvent
	InsightCount int      `json:"insight_count"`
	InsightIDs   []string `json:"insight_ids"`
	Placeholder  bool     `json:"placeholder"`
}

// NewReportGenerated creates a ReportGenerated event for report id.
func NewReportGenerated(reportID uuid.UUID, insights []Insight, placeholder bool, at time.Time) *ReportGenerated {
	ids := make([]string, len(insights))
	for i, in := range insights {
		ids[i] = in.ID
	}
	return &ReportGenerated{
		BaseEvent:    sharedDomain.NewBaseEventAt(reportID, "InsightReport", RoutingKeyReportGenerated, at),
		InsightCount: len(insights),
		InsightIDs:   ids,
		Placeholder:  placeholder,
	}
}
