package outbox

import (
	"context"
	"fmt"
	"time"

	"github.com/felixgeelhaar/flowstate/internal/shared/infrastructure/database"
	"github.com/google/uuid"
)

// SQLRepository stores messages in the outbox table of SQLite or
// PostgreSQL. Times are unix milliseconds.
type SQLRepository struct {
	conn database.Connection
}

// NewSQLRepository creates a repository on an open, migrated connection.
func NewSQLRepository(conn database.Connection) *SQLRepository {
	return &SQLRepository{conn: conn}
}

func (r *SQLRepository) Save(ctx context.Context, msg *Message) error {
	err := r.conn.QueryRow(ctx, `
		INSERT INTO outbox (event_id, routing_key, body, correlation_id, created_at, retry_count)
		VALUES (?, ?, ?, ?, ?, 0)
		ON CONFLICT (event_id) DO NOTHING
		RETURNING id`,
		msg.EventID.String(), msg.RoutingKey, string(msg.Body), msg.CorrelationID, msg.CreatedAt.UnixMilli(),
	).Scan(&msg.ID)
	if database.IsNoRows(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("save outbox message %s: %w", msg.EventID, err)
	}
	return nil
}

func (r *SQLRepository) GetPending(ctx context.Context, now time.Time, limit int) ([]*Message, error) {
	rows, err := r.conn.Query(ctx, `
		SELECT id, event_id, routing_key, body, correlation_id, created_at,
		       published_at, next_retry_at, retry_count, last_error, dead_lettered_at
		FROM outbox
		WHERE published_at IS NULL
		  AND dead_lettered_at IS NULL
		  AND (next_retry_at IS NULL OR next_retry_at <= ?)
		ORDER BY created_at, id
		LIMIT ?`,
		now.UnixMilli(), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query pending outbox messages: %w", err)
	}
	defer rows.Close()

	var messages []*Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

func (r *SQLRepository) MarkPublished(ctx context.Context, id int64, at time.Time) error {
	_, err := r.conn.Exec(ctx,
		`UPDATE outbox SET published_at = ?, next_retry_at = NULL WHERE id = ?`,
		at.UnixMilli(), id,
	)
	if err != nil {
		return fmt.Errorf("mark outbox message %d published: %w", id, err)
	}
	return nil
}

func (r *SQLRepository) MarkFailed(ctx context.Context, id int64, reason string, nextRetryAt time.Time) error {
	_, err := r.conn.Exec(ctx,
		`UPDATE outbox SET retry_count = retry_count + 1, last_error = ?, next_retry_at = ? WHERE id = ?`,
		reason, nextRetryAt.UnixMilli(), id,
	)
	if err != nil {
		return fmt.Errorf("mark outbox message %d failed: %w", id, err)
	}
	return nil
}

func (r *SQLRepository) MarkDead(ctx context.Context, id int64, reason string, at time.Time) error {
	_, err := r.conn.Exec(ctx,
		`UPDATE outbox SET retry_count = retry_count + 1, last_error = ?, dead_lettered_at = ?, next_retry_at = NULL WHERE id = ?`,
		reason, at.UnixMilli(), id,
	)
	if err != nil {
		return fmt.Errorf("mark outbox message %d dead: %w", id, err)
	}
	return nil
}

func (r *SQLRepository) DeleteOld(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.conn.Exec(ctx, `
		DELETE FROM outbox
		WHERE created_at < ?
		  AND (published_at IS NOT NULL OR dead_lettered_at IS NOT NULL)`,
		cutoff.UnixMilli(),
	)
	if err != nil {
		return 0, fmt.Errorf("delete old outbox messages: %w", err)
	}
	return res.RowsAffected()
}

func scanMessage(row database.Row) (*Message, error) {
	var (
		msg          Message
		eventID      string
		body         string
		createdAt    int64
		publishedAt  *int64
		nextRetryAt  *int64
		deadLettered *int64
	)
	err := row.Scan(
		&msg.ID, &eventID, &msg.RoutingKey, &body, &msg.CorrelationID, &createdAt,
		&publishedAt, &nextRetryAt, &msg.RetryCount, &msg.LastError, &deadLettered,
	)
	if err != nil {
		return nil, fmt.Errorf("scan outbox message: %w", err)
	}

	id, err := uuid.Parse(eventID)
	if err != nil {
		return nil, fmt.Errorf("outbox message %d: invalid event id: %w", msg.ID, err)
	}
	msg.EventID = id
	msg.Body = []byte(body)
	msg.CreatedAt = time.UnixMilli(createdAt).UTC()
	msg.PublishedAt = fromMillis(publishedAt)
	msg.NextRetryAt = fromMillis(nextRetryAt)
	msg.DeadLetteredAt = fromMillis(deadLettered)
	return &msg, nil
}

func fromMillis(ms *int64) *time.Time {
	if ms == nil {
		return nil
	}
	t := time.UnixMilli(*ms).UTC()
	return &t
}
