package eventbus

import (
	"context"

	"github.com/felixgeelhaar/flowstate/pkg/observability"
)

// MetricsConsumer counts delivered events per routing key.
type MetricsConsumer struct {
	metrics     observability.Metrics
	routingKeys []string
}

// NewMetricsConsumer creates a consumer counting the given routing keys.
func NewMetricsConsumer(metrics observability.Metrics, routingKeys ...string) *MetricsConsumer {
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &MetricsConsumer{metrics: metrics, routingKeys: routingKeys}
}

func (c *MetricsConsumer) EventTypes() []string {
	return c.routingKeys
}

func (c *MetricsConsumer) Handle(_ context.Context, event *Envelope) error {
	c.metrics.Counter(observability.MetricEventsConsumed, 1, observability.T("routing_key", event.RoutingKey))
	return nil
}

// ConsumerFunc adapts a function to Consumer for a fixed set of routing keys.
type ConsumerFunc struct {
	Keys []string
	Fn   func(ctx context.Context, event *Envelope) error
}

func (c ConsumerFunc) EventTypes() []string { return c.Keys }

func (c ConsumerFunc) Handle(ctx context.Context, event *Envelope) error {
	return c.Fn(ctx, event)
}
