package outbox

import (
	"context"

	"github.com/felixgeelhaar/flowstate/internal/shared/infrastructure/clock"
)

// Writer is an eventbus.Publisher that stores events in the outbox instead
// of sending them. A Processor relays them later.
type Writer struct {
	repo  Repository
	clock clock.Clock
}

// NewWriter creates a writer over repo.
func NewWriter(repo Repository, clk clock.Clock) *Writer {
	if clk == nil {
		clk = clock.Real()
	}
	return &Writer{repo: repo, clock: clk}
}

func (w *Writer) Publish(ctx context.Context, routingKey string, payload []byte) error {
	return w.repo.Save(ctx, NewMessage(routingKey, payload, w.clock.Now()))
}

func (w *Writer) Close() error {
	return nil
}
