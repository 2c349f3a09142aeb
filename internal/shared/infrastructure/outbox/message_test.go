package outbox_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/felixgeelhaar/flowstate/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/flowstate/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMessage_KeepsEnvelopeIdentity(t *testing.T) {
	occurred := time.Date(2025, 3, 4, 8, 59, 0, 0, time.UTC)
	env := eventbus.Envelope{
		EventID:    uuid.New(),
		RoutingKey: "notifications.shown",
		OccurredAt: occurred,
		Payload:    json.RawMessage(`{"kind":"micro-win"}`),
		Metadata:   eventbus.EnvelopeMeta{CorrelationID: "corr-1"},
	}
	body, err := json.Marshal(env)
	require.NoError(t, err)

	msg := outbox.NewMessage("notifications.shown", body, start)
	assert.Equal(t, env.EventID, msg.EventID)
	assert.True(t, msg.CreatedAt.Equal(occurred))
	assert.Equal(t, "corr-1", msg.CorrelationID)
	assert.False(t, msg.IsPublished())
	assert.False(t, msg.IsDead())
}

func TestNewMessage_OpaqueBody(t *testing.T) {
	msg := outbox.NewMessage("raw", []byte("not json"), start)
	assert.NotEqual(t, uuid.Nil, msg.EventID)
	assert.Equal(t, start, msg.CreatedAt)
	assert.Empty(t, msg.CorrelationID)
}
