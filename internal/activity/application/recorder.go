package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/felixgeelhaar/flowstate/internal/activity/domain"
	"github.com/felixgeelhaar/flowstate/internal/shared/infrastructure/clock"
	"github.com/google/uuid"
)

// SlotDateLayout is the date format written into habit completion slots.
const SlotDateLayout = "2006-01-02"

var (
	ErrInvalidCheckIn   = errors.New("invalid check-in")
	ErrEmptyName        = errors.New("name cannot be empty")
	ErrHabitNotFound    = errors.New("habit not found")
	ErrTodoNotFound     = errors.New("todo not found")
	ErrInvalidTimeBlock = errors.New("time block must end after it starts")
)

// CheckInInput is a new check-in. Energy and focus are on a 1 to 5 scale.
type CheckInInput struct {
	Mood   string
	Energy float64
	Focus  float64
	Sleep  *float64
}

// Recorder writes activity records in their canonical shapes. Unlike the
// Reader it refuses to overwrite a document it cannot decode.
type Recorder struct {
	store  domain.KeyValueStore
	clock  clock.Clock
	logger *slog.Logger
}

// NewRecorder creates a Recorder.
func NewRecorder(store domain.KeyValueStore, clk clock.Clock, logger *slog.Logger) *Recorder {
	if clk == nil {
		clk = clock.Real()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{store: store, clock: clk, logger: logger}
}

// LogCheckIn appends a check-in to the coaching history.
func (r *Recorder) LogCheckIn(ctx context.Context, in CheckInInput) (domain.CheckIn, error) {
	mood := strings.ToLower(strings.TrimSpace(in.Mood))
	if mood == "" {
		return domain.CheckIn{}, fmt.Errorf("%w: mood is required", ErrInvalidCheckIn)
	}
	if in.Energy < 1 || in.Energy > 5 {
		return domain.CheckIn{}, fmt.Errorf("%w: energy must be between 1 and 5", ErrInvalidCheckIn)
	}
	if in.Focus < 1 || in.Focus > 5 {
		return domain.CheckIn{}, fmt.Errorf("%w: focus must be between 1 and 5", ErrInvalidCheckIn)
	}
	if in.Sleep != nil && (*in.Sleep < 0 || *in.Sleep > 24) {
		return domain.CheckIn{}, fmt.Errorf("%w: sleep must be between 0 and 24 hours", ErrInvalidCheckIn)
	}

	history, err := r.loadCheckIns(ctx)
	if err != nil {
		return domain.CheckIn{}, err
	}

	checkIn := domain.CheckIn{
		Mood:      mood,
		Energy:    in.Energy,
		Focus:     in.Focus,
		Sleep:     in.Sleep,
		Timestamp: domain.NewTimestamp(r.clock.Now()),
	}
	history = append(history, checkIn)
	if err := save(ctx, r.store, domain.KeyCoachingData, history); err != nil {
		return domain.CheckIn{}, err
	}

	r.logger.Info("check-in logged", "mood", mood, "energy", in.Energy, "focus", in.Focus)
	return checkIn, nil
}

// AddHabit creates an active habit.
func (r *Recorder) AddHabit(ctx context.Context, name string) (domain.Habit, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Habit{}, ErrEmptyName
	}

	habits, err := load[domain.Habit](ctx, r.store, domain.KeyHabits)
	if err != nil {
		return domain.Habit{}, err
	}

	habit := domain.Habit{
		ID:             domain.FlexibleID(uuid.NewString()),
		Name:           name,
		IsActive:       true,
		CompletedSlots: []domain.Slot{},
	}
	habits = append(habits, habit)
	if err := save(ctx, r.store, domain.KeyHabits, habits); err != nil {
		return domain.Habit{}, err
	}

	r.logger.Info("habit added", "habit_id", habit.ID.String(), "name", name)
	return habit, nil
}

// CompleteHabit records a completion slot dated today. The habit is matched
// by id, or by name when no id matches.
func (r *Recorder) CompleteHabit(ctx context.Context, ref, slotID string) (domain.Habit, error) {
	habits, err := load[domain.Habit](ctx, r.store, domain.KeyHabits)
	if err != nil {
		return domain.Habit{}, err
	}

	idx := findHabit(habits, ref)
	if idx < 0 {
		return domain.Habit{}, fmt.Errorf("%w: %s", ErrHabitNotFound, ref)
	}

	now := r.clock.Now()
	habits[idx].CompletedSlots = append(habits[idx].CompletedSlots, domain.Slot{
		Date:   now.Format(SlotDateLayout),
		SlotID: slotID,
	})
	if err := save(ctx, r.store, domain.KeyHabits, habits); err != nil {
		return domain.Habit{}, err
	}

	r.logger.Info("habit completed", "habit_id", habits[idx].ID.String())
	return habits[idx], nil
}

// AddTodo creates an open todo.
func (r *Recorder) AddTodo(ctx context.Context, text string) (domain.Todo, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.Todo{}, ErrEmptyName
	}

	todos, err := load[domain.Todo](ctx, r.store, domain.KeyTodos)
	if err != nil {
		return domain.Todo{}, err
	}

	todo := domain.Todo{ID: domain.FlexibleID(uuid.NewString()), Text: text}
	todos = append(todos, todo)
	if err := save(ctx, r.store, domain.KeyTodos, todos); err != nil {
		return domain.Todo{}, err
	}
	return todo, nil
}

// CompleteTodo marks a todo done now.
func (r *Recorder) CompleteTodo(ctx context.Context, id string) (domain.Todo, error) {
	todos, err := load[domain.Todo](ctx, r.store, domain.KeyTodos)
	if err != nil {
		return domain.Todo{}, err
	}

	for i := range todos {
		if todos[i].ID.String() != id {
			continue
		}
		at := domain.NewTimestamp(r.clock.Now())
		todos[i].Completed = true
		todos[i].CompletedAt = &at
		if err := save(ctx, r.store, domain.KeyTodos, todos); err != nil {
			return domain.Todo{}, err
		}
		r.logger.Info("todo completed", "todo_id", id)
		return todos[i], nil
	}
	return domain.Todo{}, fmt.Errorf("%w: %s", ErrTodoNotFound, id)
}

// AddTimeBlock plans a block of time.
func (r *Recorder) AddTimeBlock(ctx context.Context, title string, start time.Time, d time.Duration) (domain.TimeBlock, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return domain.TimeBlock{}, ErrEmptyName
	}
	if d <= 0 {
		return domain.TimeBlock{}, ErrInvalidTimeBlock
	}

	blocks, err := load[domain.TimeBlock](ctx, r.store, domain.KeyTimeBlocks)
	if err != nil {
		return domain.TimeBlock{}, err
	}

	block := domain.TimeBlock{
		ID:    domain.FlexibleID(uuid.NewString()),
		Title: title,
		Start: domain.NewTimestamp(start),
		End:   domain.NewTimestamp(start.Add(d)),
	}
	blocks = append(blocks, block)
	if err := save(ctx, r.store, domain.KeyTimeBlocks, blocks); err != nil {
		return domain.TimeBlock{}, err
	}
	return block, nil
}

func (r *Recorder) loadCheckIns(ctx context.Context) ([]domain.CheckIn, error) {
	raw, err := r.store.Get(ctx, domain.KeyCoachingData)
	if errors.Is(err, domain.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", domain.KeyCoachingData, err)
	}
	items, _, err := domain.DecodeCheckIns(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", domain.KeyCoachingData, err)
	}
	return items, nil
}

func findHabit(habits []domain.Habit, ref string) int {
	for i, h := range habits {
		if h.ID.String() == ref {
			return i
		}
	}
	for i, h := range habits {
		if strings.EqualFold(h.Name, ref) {
			return i
		}
	}
	return -1
}

func load[T any](ctx context.Context, store domain.KeyValueStore, key string) ([]T, error) {
	raw, err := store.Get(ctx, key)
	if errors.Is(err, domain.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	items, _, err := domain.DecodeList[T](raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return items, nil
}

func save[T any](ctx context.Context, store domain.KeyValueStore, key string, items []T) error {
	body, err := domain.EncodeList(items)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := store.Set(ctx, key, body); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}
