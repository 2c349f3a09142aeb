package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/flowstate/internal/shared/domain"
	"github.com/google/uuid"
)

// Publisher defines the interface for publishing events to a message broker.
type Publisher interface {
	// Publish sends a message to the event bus.
	Publish(ctx context.Context, routingKey string, payload []byte) error

	// Close closes the publisher connection.
	Close() error
}

// Envelope is the wire format of every event on the bus.
type Envelope struct {
	EventID       uuid.UUID       `json:"event_id"`
	AggregateID   uuid.UUID       `json:"aggregate_id"`
	AggregateType string          `json:"aggregate_type"`
	RoutingKey    string          `json:"routing_key"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Payload       json.RawMessage `json:"payload"`
	Metadata      EnvelopeMeta    `json:"metadata,omitempty"`
}

// EnvelopeMeta carries tracing identifiers alongside the payload.
type EnvelopeMeta struct {
	UserID        string `json:"user_id,omitempty"`
	CorrelationID string `json:"correlation_id,omitempty"`
	CausationID   string `json:"causation_id,omitempty"`
}

// NewEnvelope wraps a domain event for publication.
func NewEnvelope(event domain.DomainEvent) (*Envelope, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", event.RoutingKey(), err)
	}

	meta := event.Metadata()
	env := &Envelope{
		EventID:       event.EventID(),
		AggregateID:   event.AggregateID(),
		AggregateType: event.AggregateType(),
		RoutingKey:    event.RoutingKey(),
		OccurredAt:    event.OccurredAt(),
		Payload:       payload,
	}
	if meta.UserID != uuid.Nil {
		env.Metadata.UserID = meta.UserID.String()
	}
	if meta.CorrelationID != uuid.Nil {
		env.Metadata.CorrelationID = meta.CorrelationID.String()
	}
	if meta.CausationID != uuid.Nil {
		env.Metadata.CausationID = meta.CausationID.String()
	}
	return env, nil
}

// PublishEvents wraps and publishes each event in order. It stops at the
// first failure and returns it.
func PublishEvents(ctx context.Context, p Publisher, events ...domain.DomainEvent) error {
	for _, event := range events {
		env, err := NewEnvelope(event)
		if err != nil {
			return err
		}
		body, err := json.Marshal(env)
		if err != nil {
			return fmt.Errorf("failed to marshal envelope: %w", err)
		}
		if err := p.Publish(ctx, env.RoutingKey, body); err != nil {
			return fmt.Errorf("failed to publish %s: %w", env.RoutingKey, err)
		}
	}
	return nil
}

// NoopPublisher is a no-op publisher for testing/development.
type NoopPublisher struct {
	logger *slog.Logger
}

// NewNoopPublisher creates a publisher that does nothing.
func NewNoopPublisher(logger *slog.Logger) *NoopPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &NoopPublisher{logger: logger}
}

// Publish logs the message but doesn't actually publish.
func (p *NoopPublisher) Publish(ctx context.Context, routingKey string, payload []byte) error {
	p.logger.Debug("noop publish",
		"routing_key", routingKey,
		"size", len(payload),
	)
	return nil
}

// Close is a no-op.
func (p *NoopPublisher) Close() error {
	return nil
}
