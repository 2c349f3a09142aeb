package outbox

import (
	"context"
	"time"
)

// Repository persists outbox messages.
type Repository interface {
	// Save stores a new message and sets its ID. Saving an event id twice
	// is a no-op.
	Save(ctx context.Context, msg *Message) error

	// GetPending returns unpublished, live messages whose retry time has
	// come, oldest first.
	GetPending(ctx context.Context, now time.Time, limit int) ([]*Message, error)

	// MarkPublished records a successful relay.
	MarkPublished(ctx context.Context, id int64, at time.Time) error

	// MarkFailed records a failed attempt and when to try again.
	MarkFailed(ctx context.Context, id int64, reason string, nextRetryAt time.Time) error

	// MarkDead stops further attempts.
	MarkDead(ctx context.Context, id int64, reason string, at time.Time) error

	// DeleteOld removes published and dead messages created before cutoff.
	DeleteOld(ctx context.Context, cutoff time.Time) (int64, error)
}
