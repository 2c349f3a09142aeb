package outbox_test

import (
	"context"
	"testing"
	"time"

	"github.com/felixgeelhaar/flowstate/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/flowstate/internal/shared/infrastructure/database/sqlite"
	"github.com/felixgeelhaar/flowstate/internal/shared/infrastructure/migrations"
	"github.com/felixgeelhaar/flowstate/internal/shared/infrastructure/outbox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLRepository(t *testing.T) *outbox.SQLRepository {
	t.Helper()
	ctx := context.Background()

	conn, err := sqlite.Open(ctx, database.Config{SQLitePath: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, migrations.Run(ctx, conn))

	return outbox.NewSQLRepository(conn)
}

func TestSQLRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	repo := newSQLRepository(t)

	first := outbox.NewMessage("notifications.shown", []byte(`{"a":1}`), start)
	second := outbox.NewMessage("insights.generated", []byte(`{"b":2}`), start.Add(time.Minute))
	require.NoError(t, repo.Save(ctx, first))
	require.NoError(t, repo.Save(ctx, second))
	assert.NotZero(t, first.ID)
	assert.NotEqual(t, first.ID, second.ID)

	dup := *first
	dup.ID = 0
	require.NoError(t, repo.Save(ctx, &dup))
	assert.Zero(t, dup.ID, "duplicate event ids are ignored")

	pending, err := repo.GetPending(ctx, start.Add(time.Hour), 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, first.EventID, pending[0].EventID)
	assert.Equal(t, `{"a":1}`, string(pending[0].Body))
	assert.True(t, pending[0].CreatedAt.Equal(start))

	retryAt := start.Add(2 * time.Hour)
	require.NoError(t, repo.MarkFailed(ctx, first.ID, "broker unavailable", retryAt))
	require.NoError(t, repo.MarkPublished(ctx, second.ID, start.Add(time.Hour)))

	pending, err = repo.GetPending(ctx, start.Add(time.Hour), 10)
	require.NoError(t, err)
	assert.Empty(t, pending, "failed message waits for its retry time")

	pending, err = repo.GetPending(ctx, retryAt, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, 1, pending[0].RetryCount)
	require.NotNil(t, pending[0].LastError)
	assert.Equal(t, "broker unavailable", *pending[0].LastError)
	require.NotNil(t, pending[0].NextRetryAt)
	assert.True(t, pending[0].NextRetryAt.Equal(retryAt))

	require.NoError(t, repo.MarkDead(ctx, first.ID, "gave up", retryAt))
	pending, err = repo.GetPending(ctx, retryAt.Add(time.Hour), 10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	deleted, err := repo.DeleteOld(ctx, start.Add(30*time.Second))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	deleted, err = repo.DeleteOld(ctx, start.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
}

func TestSQLRepository_WithProcessor(t *testing.T) {
	ctx := context.Background()
	repo := newSQLRepository(t)
	pub := &recordingPublisher{}

	writer := outbox.NewWriter(repo, nil)
	require.NoError(t, writer.Publish(ctx, "todos.completed", []byte(`{}`)))

	p := outbox.NewProcessor(repo, pub, outbox.DefaultProcessorConfig(), nil, nil)
	require.NoError(t, p.ProcessOnce(ctx))
	assert.Equal(t, []string{"todos.completed"}, pub.published)

	pending, err := repo.GetPending(ctx, time.Now().Add(time.Hour), 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}
