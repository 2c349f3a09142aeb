// Package application reads and writes activity records through the
// key-value store.
package application

import (
	"context"
	"errors"
	"log/slog"

	"github.com/felixgeelhaar/flowstate/internal/activity/domain"
)

// Snapshot is every activity record read in one pass.
type Snapshot struct {
	CheckIns   []domain.CheckIn
	Habits     []domain.Habit
	Todos      []domain.Todo
	TimeBlocks int
}

// LatestCheckIn returns the most recent check-in.
func (s Snapshot) LatestCheckIn() (domain.CheckIn, bool) {
	if len(s.CheckIns) == 0 {
		return domain.CheckIn{}, false
	}
	return s.CheckIns[len(s.CheckIns)-1], true
}

// ActiveHabits returns the habits marked active.
func (s Snapshot) ActiveHabits() []domain.Habit {
	var active []domain.Habit
	for _, h := range s.Habits {
		if h.IsActive {
			active = append(active, h)
		}
	}
	return active
}

// Reader decodes activity records. It never fails: missing keys, store
// errors and malformed documents all read as empty, with a warning logged
// for anything other than a missing key.
type Reader struct {
	store  domain.KeyValueStore
	logger *slog.Logger
}

// NewReader creates a Reader over store.
func NewReader(store domain.KeyValueStore, logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{store: store, logger: logger}
}

// CheckIns returns the check-in history, most recent last.
func (r *Reader) CheckIns(ctx context.Context) []domain.CheckIn {
	raw, ok := r.load(ctx, domain.KeyCoachingData)
	if !ok {
		return nil
	}
	items, skipped, err := domain.DecodeCheckIns(raw)
	return decoded(r, domain.KeyCoachingData, items, skipped, err)
}

// LatestCheckIn returns the last check-in in the history.
func (r *Reader) LatestCheckIn(ctx context.Context) (domain.CheckIn, bool) {
	return Snapshot{CheckIns: r.CheckIns(ctx)}.LatestCheckIn()
}

// Habits returns every stored habit.
func (r *Reader) Habits(ctx context.Context) []domain.Habit {
	raw, ok := r.load(ctx, domain.KeyHabits)
	if !ok {
		return nil
	}
	items, skipped, err := domain.DecodeList[domain.Habit](raw)
	return decoded(r, domain.KeyHabits, items, skipped, err)
}

// Todos returns every stored todo.
func (r *Reader) Todos(ctx context.Context) []domain.Todo {
	raw, ok := r.load(ctx, domain.KeyTodos)
	if !ok {
		return nil
	}
	items, skipped, err := domain.DecodeList[domain.Todo](raw)
	return decoded(r, domain.KeyTodos, items, skipped, err)
}

// TimeBlockCount returns how many time blocks are planned. Only the length
// of the stored array matters, so elements are not decoded.
func (r *Reader) TimeBlockCount(ctx context.Context) int {
	raw, ok := r.load(ctx, domain.KeyTimeBlocks)
	if !ok {
		return 0
	}
	items, _, err := domain.DecodeList[any](raw)
	return len(decoded(r, domain.KeyTimeBlocks, items, 0, err))
}

// Snapshot reads all keys.
func (r *Reader) Snapshot(ctx context.Context) Snapshot {
	return Snapshot{
		CheckIns:   r.CheckIns(ctx),
		Habits:     r.Habits(ctx),
		Todos:      r.Todos(ctx),
		TimeBlocks: r.TimeBlockCount(ctx),
	}
}

func (r *Reader) load(ctx context.Context, key string) ([]byte, bool) {
	raw, err := r.store.Get(ctx, key)
	if errors.Is(err, domain.ErrKeyNotFound) {
		return nil, false
	}
	if err != nil {
		r.logger.Warn("activity read failed, using empty data", "key", key, "error", err)
		return nil, false
	}
	return raw, true
}

func decoded[T any](r *Reader, key string, items []T, skipped int, err error) []T {
	if err != nil {
		r.logger.Warn("malformed activity data, using empty data", "key", key, "error", err)
		return nil
	}
	if skipped > 0 {
		r.logger.Warn("skipped malformed activity records", "key", key, "skipped", skipped)
	}
	return items
}
