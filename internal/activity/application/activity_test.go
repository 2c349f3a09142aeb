package application

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/flowstate/internal/activity/domain"
	"github.com/felixgeelhaar/flowstate/internal/activity/infrastructure/persistence"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

type failingStore struct{}

func (failingStore) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("disk on fire")
}
func (failingStore) Set(context.Context, string, []byte) error { return errors.New("disk on fire") }
func (failingStore) Delete(context.Context, string) error      { return errors.New("disk on fire") }

func TestReader_EmptyStore(t *testing.T) {
	r := NewReader(persistence.NewMemoryStore(), testLogger())
	ctx := context.Background()

	snap := r.Snapshot(ctx)
	assert.Empty(t, snap.CheckIns)
	assert.Empty(t, snap.Habits)
	assert.Empty(t, snap.Todos)
	assert.Zero(t, snap.TimeBlocks)

	_, ok := r.LatestCheckIn(ctx)
	assert.False(t, ok)
}

func TestReader_StoreErrorsReadAsEmpty(t *testing.T) {
	r := NewReader(failingStore{}, testLogger())

	snap := r.Snapshot(context.Background())
	assert.Empty(t, snap.CheckIns)
	assert.Empty(t, snap.Habits)
	assert.Zero(t, snap.TimeBlocks)
}

func TestReader_MalformedDocumentsReadAsEmpty(t *testing.T) {
	store := persistence.NewMemoryStore()
	store.SetString(domain.KeyHabits, `{"not":"an array"}`)
	store.SetString(domain.KeyTodos, `oops`)
	store.SetString(domain.KeyCoachingData, `"just a string"`)
	store.SetString(domain.KeyTimeBlocks, `42`)

	snap := NewReader(store, testLogger()).Snapshot(context.Background())
	assert.Empty(t, snap.Habits)
	assert.Empty(t, snap.Todos)
	assert.Empty(t, snap.CheckIns)
	assert.Zero(t, snap.TimeBlocks)
}

func TestReader_CheckInShapes(t *testing.T) {
	ctx := context.Background()
	store := persistence.NewMemoryStore()
	r := NewReader(store, testLogger())

	store.SetString(domain.KeyCoachingData, `{"mood":"rough","energy":2,"focus":1,"timestamp":"2025-03-04T08:00:00Z"}`)
	latest, ok := r.LatestCheckIn(ctx)
	require.True(t, ok)
	assert.Equal(t, "rough", latest.Mood)

	store.SetString(domain.KeyCoachingData, `[
		{"mood":"rough","energy":2,"focus":1,"timestamp":"2025-03-03T08:00:00Z"},
		{"mood":"great","energy":5,"focus":5,"timestamp":1741075200000}
	]`)
	latest, ok = r.LatestCheckIn(ctx)
	require.True(t, ok)
	assert.Equal(t, "great", latest.Mood)
	assert.Len(t, r.CheckIns(ctx), 2)
}

func TestReader_TimeBlockCountIgnoresElementShape(t *testing.T) {
	store := persistence.NewMemoryStore()
	store.SetString(domain.KeyTimeBlocks, `[{"title":"Deep work"}, "lunch", 3]`)

	assert.Equal(t, 3, NewReader(store, testLogger()).TimeBlockCount(context.Background()))
}

func TestSnapshot_ActiveHabits(t *testing.T) {
	snap := Snapshot{Habits: []domain.Habit{
		{ID: "a", IsActive: true},
		{ID: "b"},
		{ID: "c", IsActive: true},
	}}
	active := snap.ActiveHabits()
	require.Len(t, active, 2)
	assert.Equal(t, domain.FlexibleID("c"), active[1].ID)
}

func newRecorder(t *testing.T) (*Recorder, *Reader, *clockwork.FakeClock) {
	t.Helper()
	store := persistence.NewMemoryStore()
	clk := clockwork.NewFakeClockAt(time.Date(2025, 3, 4, 9, 15, 0, 0, time.UTC))
	return NewRecorder(store, clk, testLogger()), NewReader(store, testLogger()), clk
}

func TestRecorder_LogCheckInAppendsToHistory(t *testing.T) {
	ctx := context.Background()
	rec, reader, clk := newRecorder(t)

	sleep := 7.5
	_, err := rec.LogCheckIn(ctx, CheckInInput{Mood: "Good", Energy: 3, Focus: 4, Sleep: &sleep})
	require.NoError(t, err)
	clk.Advance(time.Hour)
	second, err := rec.LogCheckIn(ctx, CheckInInput{Mood: "great", Energy: 5, Focus: 5})
	require.NoError(t, err)

	history := reader.CheckIns(ctx)
	require.Len(t, history, 2)
	assert.Equal(t, "good", history[0].Mood)
	require.True(t, history[0].HasSleep())
	assert.Equal(t, 7.5, *history[0].Sleep)
	assert.True(t, second.Timestamp.Equal(history[1].Timestamp.Time))
}

func TestRecorder_LogCheckInUpgradesSingleObject(t *testing.T) {
	ctx := context.Background()
	store := persistence.NewMemoryStore()
	store.SetString(domain.KeyCoachingData, `{"mood":"okay","energy":3,"focus":3}`)
	rec := NewRecorder(store, clockwork.NewFakeClockAt(time.Now()), testLogger())

	_, err := rec.LogCheckIn(ctx, CheckInInput{Mood: "good", Energy: 4, Focus: 4})
	require.NoError(t, err)

	raw, err := store.Get(ctx, domain.KeyCoachingData)
	require.NoError(t, err)
	assert.Equal(t, byte('['), raw[0])
	assert.Len(t, NewReader(store, testLogger()).CheckIns(ctx), 2)
}

func TestRecorder_LogCheckInValidates(t *testing.T) {
	rec, _, _ := newRecorder(t)
	bad := 30.0

	inputs := []CheckInInput{
		{Mood: "", Energy: 3, Focus: 3},
		{Mood: "good", Energy: 0, Focus: 3},
		{Mood: "good", Energy: 3, Focus: 6},
		{Mood: "good", Energy: 3, Focus: 3, Sleep: &bad},
	}
	for _, in := range inputs {
		_, err := rec.LogCheckIn(context.Background(), in)
		assert.ErrorIs(t, err, ErrInvalidCheckIn)
	}
}

func TestRecorder_HabitLifecycle(t *testing.T) {
	ctx := context.Background()
	rec, reader, clk := newRecorder(t)

	habit, err := rec.AddHabit(ctx, "  Stretch ")
	require.NoError(t, err)
	assert.Equal(t, "Stretch", habit.Name)
	assert.True(t, habit.IsActive)

	_, err = rec.CompleteHabit(ctx, habit.ID.String(), "morning")
	require.NoError(t, err)
	completed, err := rec.CompleteHabit(ctx, "stretch", "")
	require.NoError(t, err)
	require.Len(t, completed.CompletedSlots, 2)
	assert.Equal(t, "2025-03-04", completed.CompletedSlots[0].Date)
	assert.Equal(t, "morning", completed.CompletedSlots[0].SlotID)

	habits := reader.Habits(ctx)
	require.Len(t, habits, 1)
	assert.True(t, habits[0].CompletedOn(clk.Now()))

	_, err = rec.CompleteHabit(ctx, "unknown", "")
	assert.ErrorIs(t, err, ErrHabitNotFound)
	_, err = rec.AddHabit(ctx, " ")
	assert.ErrorIs(t, err, ErrEmptyName)
}

func TestRecorder_TodoLifecycle(t *testing.T) {
	ctx := context.Background()
	rec, reader, clk := newRecorder(t)

	todo, err := rec.AddTodo(ctx, "Email Sam")
	require.NoError(t, err)
	assert.Nil(t, todo.CompletedAt)

	clk.Advance(time.Minute)
	done, err := rec.CompleteTodo(ctx, todo.ID.String())
	require.NoError(t, err)
	assert.True(t, done.Completed)

	todos := reader.Todos(ctx)
	require.Len(t, todos, 1)
	assert.True(t, todos[0].CompletedWithin(clk.Now(), 5*time.Minute))

	_, err = rec.CompleteTodo(ctx, "missing")
	assert.ErrorIs(t, err, ErrTodoNotFound)
}

func TestRecorder_AddTimeBlock(t *testing.T) {
	ctx := context.Background()
	rec, reader, clk := newRecorder(t)

	block, err := rec.AddTimeBlock(ctx, "Deep work", clk.Now(), 90*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, clk.Now().Add(90*time.Minute), block.End.Time)
	assert.Equal(t, 1, reader.TimeBlockCount(ctx))

	_, err = rec.AddTimeBlock(ctx, "Nothing", clk.Now(), 0)
	assert.ErrorIs(t, err, ErrInvalidTimeBlock)
}

func TestRecorder_RefusesToOverwriteMalformedDocument(t *testing.T) {
	ctx := context.Background()
	store := persistence.NewMemoryStore()
	store.SetString(domain.KeyHabits, `{"broken": true}`)
	rec := NewRecorder(store, clockwork.NewFakeClockAt(time.Now()), testLogger())

	_, err := rec.AddHabit(ctx, "Read")
	assert.ErrorIs(t, err, domain.ErrMalformedData)

	raw, _ := store.Get(ctx, domain.KeyHabits)
	assert.Equal(t, `{"broken": true}`, string(raw))
}

func TestRecorder_PropagatesStoreErrors(t *testing.T) {
	rec := NewRecorder(failingStore{}, clockwork.NewFakeClockAt(time.Now()), testLogger())
	_, err := rec.AddTodo(context.Background(), "anything")
	assert.Error(t, err)
}
