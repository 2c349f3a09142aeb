package outbox_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/felixgeelhaar/flowstate/internal/shared/infrastructure/outbox"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2025, 3, 4, 9, 0, 0, 0, time.UTC)

// memoryRepository is an in-memory outbox.Repository.
type memoryRepository struct {
	mu       sync.Mutex
	messages []*outbox.Message
	pendErr  error
}

func (r *memoryRepository) Save(ctx context.Context, msg *outbox.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.messages {
		if m.EventID == msg.EventID {
			return nil
		}
	}
	msg.ID = int64(len(r.messages) + 1)
	r.messages = append(r.messages, msg)
	return nil
}

func (r *memoryRepository) GetPending(ctx context.Context, now time.Time, limit int) ([]*outbox.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pendErr != nil {
		return nil, r.pendErr
	}

	var result []*outbox.Message
	for _, m := range r.messages {
		if m.IsPublished() || m.IsDead() {
			continue
		}
		if m.NextRetryAt != nil && m.NextRetryAt.After(now) {
			continue
		}
		result = append(result, m)
		if len(result) == limit {
			break
		}
	}
	return result, nil
}

func (r *memoryRepository) find(id int64) *outbox.Message {
	for _, m := range r.messages {
		if m.ID == id {
			return m
		}
	}
	return nil
}

func (r *memoryRepository) MarkPublished(ctx context.Context, id int64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.find(id).PublishedAt = &at
	return nil
}

func (r *memoryRepository) MarkFailed(ctx context.Context, id int64, reason string, nextRetryAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m := r.find(id)
	m.RetryCount++
	m.LastError = &reason
	m.NextRetryAt = &nextRetryAt
	return nil
}

func (r *memoryRepository) MarkDead(ctx context.Context, id int64, reason string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m := r.find(id)
	m.RetryCount++
	m.LastError = &reason
	m.DeadLetteredAt = &at
	return nil
}

func (r *memoryRepository) DeleteOld(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

// recordingPublisher fails the first failures calls.
type recordingPublisher struct {
	mu        sync.Mutex
	failures  int
	published []string
}

func (p *recordingPublisher) Publish(ctx context.Context, routingKey string, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failures > 0 {
		p.failures--
		return errors.New("broker unavailable")
	}
	p.published = append(p.published, routingKey)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.published)
}

func TestProcessor_RelaysPendingMessages(t *testing.T) {
	ctx := context.Background()
	clk := clockwork.NewFakeClockAt(start)
	repo := &memoryRepository{}
	pub := &recordingPublisher{}

	writer := outbox.NewWriter(repo, clk)
	require.NoError(t, writer.Publish(ctx, "notifications.shown", []byte(`{}`)))
	require.NoError(t, writer.Publish(ctx, "insights.generated", []byte(`{}`)))

	p := outbox.NewProcessor(repo, pub, outbox.DefaultProcessorConfig(), clk, nil)
	require.NoError(t, p.ProcessOnce(ctx))

	assert.Equal(t, []string{"notifications.shown", "insights.generated"}, pub.published)
	for _, m := range repo.messages {
		assert.True(t, m.IsPublished())
	}

	stats := p.GetStats()
	assert.Equal(t, uint64(2), stats.PublishedCount)
	assert.False(t, stats.IsRunning)

	require.NoError(t, p.ProcessOnce(ctx))
	assert.Len(t, pub.published, 2, "published messages are not relayed twice")
}

func TestProcessor_BacksOffThenDeadLetters(t *testing.T) {
	ctx := context.Background()
	clk := clockwork.NewFakeClockAt(start)
	repo := &memoryRepository{}
	pub := &recordingPublisher{failures: 10}

	require.NoError(t, outbox.NewWriter(repo, clk).Publish(ctx, "notifications.shown", []byte(`{}`)))

	cfg := outbox.ProcessorConfig{
		PollInterval:     time.Second,
		BatchSize:        10,
		MaxRetries:       3,
		RetryBackoffBase: time.Second,
		RetryBackoffMax:  time.Minute,
	}
	p := outbox.NewProcessor(repo, pub, cfg, clk, nil)
	msg := repo.messages[0]

	require.NoError(t, p.ProcessOnce(ctx))
	assert.Equal(t, 1, msg.RetryCount)
	require.NotNil(t, msg.NextRetryAt)
	assert.Equal(t, start.Add(time.Second), *msg.NextRetryAt)

	// Not due yet.
	require.NoError(t, p.ProcessOnce(ctx))
	assert.Equal(t, 1, msg.RetryCount)

	clk.Advance(time.Second)
	require.NoError(t, p.ProcessOnce(ctx))
	assert.Equal(t, 2, msg.RetryCount)
	assert.Equal(t, clk.Now().Add(2*time.Second), *msg.NextRetryAt)

	clk.Advance(2 * time.Second)
	require.NoError(t, p.ProcessOnce(ctx))
	assert.True(t, msg.IsDead())
	require.NotNil(t, msg.LastError)
	assert.Equal(t, "broker unavailable", *msg.LastError)

	stats := p.GetStats()
	assert.Equal(t, uint64(2), stats.FailedCount)
	assert.Equal(t, uint64(1), stats.DeadCount)
	assert.Equal(t, "broker unavailable", stats.LastError)
	assert.Zero(t, pub.count())
}

func TestProcessor_RecordsRepositoryErrors(t *testing.T) {
	repo := &memoryRepository{pendErr: errors.New("db down")}
	p := outbox.NewProcessor(repo, &recordingPublisher{}, outbox.DefaultProcessorConfig(), clockwork.NewFakeClockAt(start), nil)

	err := p.ProcessOnce(context.Background())
	assert.EqualError(t, err, "db down")
	assert.Equal(t, "db down", p.GetStats().LastError)
}

func TestProcessor_StartStop(t *testing.T) {
	ctx := context.Background()
	repo := &memoryRepository{}
	pub := &recordingPublisher{}
	require.NoError(t, outbox.NewWriter(repo, nil).Publish(ctx, "habits.completed", []byte(`{}`)))

	cfg := outbox.DefaultProcessorConfig()
	cfg.PollInterval = 10 * time.Millisecond
	p := outbox.NewProcessor(repo, pub, cfg, nil, nil)

	p.Start(ctx)
	p.Start(ctx)
	assert.True(t, p.IsRunning())

	require.Eventually(t, func() bool { return pub.count() == 1 }, time.Second, 10*time.Millisecond)

	p.Stop()
	p.Stop()
	assert.False(t, p.IsRunning())
}

func TestProcessor_StopsWhenContextIsCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := outbox.DefaultProcessorConfig()
	cfg.PollInterval = 10 * time.Millisecond
	p := outbox.NewProcessor(&memoryRepository{}, &recordingPublisher{}, cfg, nil, nil)

	p.Start(ctx)
	cancel()
	require.Eventually(t, func() bool { return !p.IsRunning() }, time.Second, 10*time.Millisecond)
	p.Stop()
}
