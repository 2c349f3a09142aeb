package eventbus

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"
)

// Consumer handles the events published under its routing keys.
type Consumer interface {
	// EventTypes returns the routing keys this consumer handles,
	// e.g. ["notifications.notification.shown"].
	EventTypes() []string

	// Handle processes the event.
	Handle(ctx context.Context, event *Envelope) error
}

// InProcessBus delivers events synchronously to registered consumers.
// It is the default publisher when no broker is configured.
type InProcessBus struct {
	logger *slog.Logger

	mu        sync.RWMutex
	consumers map[string][]Consumer
}

// NewInProcessBus creates a new in-process event bus.
func NewInProcessBus(logger *slog.Logger) *InProcessBus {
	if logger == nil {
		logger = slog.Default()
	}
	return &InProcessBus{
		logger:    logger,
		consumers: make(map[string][]Consumer),
	}
}

// Register adds a consumer for its declared event types.
func (b *InProcessBus) Register(consumer Consumer) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, eventType := range consumer.EventTypes() {
		b.consumers[eventType] = append(b.consumers[eventType], consumer)
		b.logger.Debug("registered consumer for event type", "event_type", eventType)
	}
}

// ConsumerCount returns the total number of registered consumer instances.
func (b *InProcessBus) ConsumerCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	count := 0
	for _, consumers := range b.consumers {
		count += len(consumers)
	}
	return count
}

// Publish decodes the envelope and dispatches it to every consumer of the
// routing key. Consumer failures are logged, never returned, so a broken
// consumer cannot fail the publishing operation.
func (b *InProcessBus) Publish(ctx context.Context, routingKey string, payload []byte) error {
	event := &Envelope{}
	if err := json.Unmarshal(payload, event); err != nil {
		b.logger.Error("failed to unmarshal event payload",
			"routing_key", routingKey,
			"error", err,
		)
		return nil
	}
	if event.RoutingKey == "" {
		event.RoutingKey = routingKey
	}

	b.mu.RLock()
	consumers := append([]Consumer(nil), b.consumers[event.RoutingKey]...)
	b.mu.RUnlock()

	if len(consumers) == 0 {
		b.logger.Debug("no consumers for event type", "routing_key", event.RoutingKey)
		return nil
	}

	start := time.Now()
	for _, consumer := range consumers {
		if err := consumer.Handle(ctx, event); err != nil {
			b.logger.Error("consumer failed to handle event",
				"routing_key", event.RoutingKey,
				"event_id", event.EventID,
				"error", err,
			)
		}
	}

	b.logger.Debug("event dispatched",
		"routing_key", event.RoutingKey,
		"event_id", event.EventID,
		"consumers", len(consumers),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// Close is a no-op for the in-process bus.
func (b *InProcessBus) Close() error {
	return nil
}

// FanoutPublisher publishes every message to all of its publishers, so the
// local bus keeps working while a broker is attached.
type FanoutPublisher struct {
	publishers []Publisher
}

// NewFanoutPublisher creates a publisher writing to every given publisher.
func NewFanoutPublisher(publishers ...Publisher) *FanoutPublisher {
	return &FanoutPublisher{publishers: publishers}
}

// Publish sends to all publishers and returns the last error encountered.
func (f *FanoutPublisher) Publish(ctx context.Context, routingKey string, payload []byte) error {
	var lastErr error
	for _, p := range f.publishers {
		if err := p.Publish(ctx, routingKey, payload); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

// Close closes all publishers and returns the last error encountered.
func (f *FanoutPublisher) Close() error {
	var lastErr error
	for _, p := range f.publishers {
		if err := p.Close(); err != nil {
			lastErr = err
		}
	}
	return lastErr
}
