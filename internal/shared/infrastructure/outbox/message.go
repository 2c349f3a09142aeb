// Package outbox stores outgoing events in the database and relays them to
// the broker, so a process that exits right after publishing loses nothing.
package outbox

import (
	"encoding/json"
	"time"

	"github.com/felixgeelhaar/flowstate/internal/shared/infrastructure/eventbus"
	"github.com/google/uuid"
)

// Message is one stored event awaiting relay.
type Message struct {
	ID             int64
	EventID        uuid.UUID
	RoutingKey     string
	Body           []byte
	CorrelationID  string
	CreatedAt      time.Time
	PublishedAt    *time.Time
	NextRetryAt    *time.Time
	RetryCount     int
	LastError      *string
	DeadLetteredAt *time.Time
}

// NewMessage wraps a published body. Bodies that decode as an
// eventbus.Envelope keep its event id, correlation id and occurrence time;
// anything else gets a fresh id and now.
func NewMessage(routingKey string, body []byte, now time.Time) *Message {
	msg := &Message{
		EventID:    uuid.New(),
		RoutingKey: routingKey,
		Body:       body,
		CreatedAt:  now,
	}

	var env eventbus.Envelope
	if err := json.Unmarshal(body, &env); err == nil {
		if env.EventID != uuid.Nil {
			msg.EventID = env.EventID
		}
		if !env.OccurredAt.IsZero() {
			msg.CreatedAt = env.OccurredAt
		}
		msg.CorrelationID = env.Metadata.CorrelationID
	}
	return msg
}

// IsPublished reports whether the message reached the broker.
func (m *Message) IsPublished() bool {
	return m.PublishedAt != nil
}

// IsDead reports whether the message was given up on.
func (m *Message) IsDead() bool {
	return m.DeadLetteredAt != nil
}
