package observability

import (
	"context"
	"time"
)

// Timer measures one operation and records it under the operation metrics,
// tagged with the operation name and the surface that started it.
type Timer struct {
	start   time.Time
	metrics Metrics
	tags    []Tag
}

// StartTimer starts timing operation. A nil metrics records nothing.
func StartTimer(ctx context.Context, metrics Metrics, operation string) *Timer {
	if metrics == nil {
		metrics = NoopMetrics{}
	}
	tags := []Tag{T("operation", operation)}
	if surface := SurfaceFromContext(ctx); surface != "" {
		tags = append(tags, T(SurfaceKey, surface))
	}
	return &Timer{start: time.Now(), metrics: metrics, tags: tags}
}

// Stop records the duration and, when err is not nil, an error count.
func (t *Timer) Stop(err error) time.Duration {
	d := time.Since(t.start)
	t.metrics.Timing(MetricOperationDuration, d, t.tags...)
	t.metrics.Counter(MetricOperationTotal, 1, t.tags...)
	if err != nil {
		t.metrics.Counter(MetricOperationErrors, 1, t.tags...)
	}
	return d
}
