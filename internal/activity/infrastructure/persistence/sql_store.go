package persistence

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/flowstate/internal/activity/domain"
	"github.com/felixgeelhaar/flowstate/internal/shared/infrastructure/clock"
	"github.com/felixgeelhaar/flowstate/internal/shared/infrastructure/database"
)

// SQLStore keeps values in the kv_store table of SQLite or PostgreSQL.
// The schema comes from the migrations package.
type SQLStore struct {
	conn      database.Connection
	namespace string
	clock     clock.Clock
}

// NewSQLStore creates a store scoped to namespace.
func NewSQLStore(conn database.Connection, namespace string, clk clock.Clock) *SQLStore {
	if namespace == "" {
		namespace = "default"
	}
	if clk == nil {
		clk = clock.Real()
	}
	return &SQLStore{conn: conn, namespace: namespace, clock: clk}
}

func (s *SQLStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value string
	err := s.conn.QueryRow(ctx,
		`SELECT payload FROM kv_store WHERE namespace = ? AND item_key = ?`,
		s.namespace, key,
	).Scan(&value)
	if database.IsNoRows(err) {
		return nil, domain.ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sql get %s: %w", key, err)
	}
	return []byte(value), nil
}

func (s *SQLStore) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.conn.Exec(ctx, `
		INSERT INTO kv_store (namespace, item_key, payload, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (namespace, item_key) DO UPDATE
		SET payload = excluded.payload, updated_at = excluded.updated_at`,
		s.namespace, key, string(value), s.clock.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("sql set %s: %w", key, err)
	}
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, key string) error {
	if _, err := s.conn.Exec(ctx, `DELETE FROM kv_store WHERE namespace = ? AND item_key = ?`, s.namespace, key); err != nil {
		return fmt.Errorf("sql delete %s: %w", key, err)
	}
	return nil
}

// Keys lists the keys stored in this namespace.
func (s *SQLStore) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.conn.Query(ctx, `SELECT item_key FROM kv_store WHERE namespace = ? ORDER BY item_key`, s.namespace)
	if err != nil {
		return nil, fmt.Errorf("sql list keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// Ping checks the database connection.
func (s *SQLStore) Ping(ctx context.Context) error {
	return s.conn.Ping(ctx)
}
