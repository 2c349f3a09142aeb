package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/felixgeelhaar/flowstate/adapter/cli"
	activityApp "github.com/felixgeelhaar/flowstate/internal/activity/application"
	"github.com/felixgeelhaar/flowstate/internal/activity/domain"
	"github.com/felixgeelhaar/mcp-go"
)

type checkInInput struct {
	Mood   string   `json:"mood" jsonschema:"required"`
	Energy float64  `json:"energy" jsonschema:"required"`
	Focus  float64  `json:"focus" jsonschema:"required"`
	Sleep  *float64 `json:"sleep,omitempty"`
}

type habitAddInput struct {
	Name string `json:"name" jsonschema:"required"`
}

type habitCompleteInput struct {
	Habit  string `json:"habit" jsonschema:"required"`
	SlotID string `json:"slot_id,omitempty"`
}

type habitListInput struct {
	IncludeInactive bool `json:"include_inactive,omitempty"`
}

type todoAddInput struct {
	Text string `json:"text" jsonschema:"required"`
}

type todoCompleteInput struct {
	TodoID string `json:"todo_id" jsonschema:"required"`
}

type todoListInput struct {
	IncludeCompleted bool `json:"include_completed,omitempty"`
}

type blockAddInput struct {
	Description     string `json:"description,omitempty"`
	Title           string `json:"title,omitempty"`
	Date            string `json:"date,omitempty"`
	StartTime       string `json:"start_time,omitempty"`
	DurationMinutes int    `json:"duration_minutes,omitempty"`
}

// HabitDTO is a habit with today's progress.
type HabitDTO struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Active     bool   `json:"active"`
	DoneToday  bool   `json:"done_today"`
	Today      int    `json:"today"`
	TotalSlots int    `json:"total"`
}

// TodoDTO is a todo item.
type TodoDTO struct {
	ID          string     `json:"id"`
	Text        string     `json:"text"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// TimeBlockDTO is a planned block.
type TimeBlockDTO struct {
	ID    string    `json:"id"`
	Title string    `json:"title"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func registerActivityTools(srv *mcp.Server, t *toolset) error {
	srv.Tool("checkin.log").
		Description("Log a check-in: mood, energy and focus on a 1-5 scale, optional sleep hours").
		Handler(traced(t.logCheckIn))

	srv.Tool("habit.add").
		Description("Start tracking a habit").
		Handler(traced(t.addHabit))

	srv.Tool("habit.complete").
		Description("Mark a habit done for today, by id or name").
		Handler(traced(t.completeHabit))

	srv.Tool("habit.list").
		Description("List habits with today's completion count").
		Handler(traced(t.listHabits))

	srv.Tool("todo.add").
		Description("Add a todo").
		Handler(traced(t.addTodo))

	srv.Tool("todo.complete").
		Description("Complete a todo").
		Handler(traced(t.completeTodo))

	srv.Tool("todo.list").
		Description("List open todos").
		Handler(traced(t.listTodos))

	srv.Tool("block.add").
		Description("Plan a time block from a natural language description, or from title, date, start_time and duration_minutes").
		Handler(traced(t.addBlock))

	return nil
}

func (t *toolset) activityReady() error {
	if t.app.Recorder == nil || t.app.Reader == nil {
		return errors.New("activity store not available")
	}
	return nil
}

func (t *toolset) logCheckIn(ctx context.Context, input checkInInput) (domain.CheckIn, error) {
	if err := t.activityReady(); err != nil {
		return domain.CheckIn{}, err
	}
	return t.app.Recorder.LogCheckIn(ctx, activityApp.CheckInInput{
		Mood:   input.Mood,
		Energy: input.Energy,
		Focus:  input.Focus,
		Sleep:  input.Sleep,
	})
}

func (t *toolset) addHabit(ctx context.Context, input habitAddInput) (*HabitDTO, error) {
	if err := t.activityReady(); err != nil {
		return nil, err
	}
	habit, err := t.app.Recorder.AddHabit(ctx, input.Name)
	if err != nil {
		return nil, err
	}
	dto := t.toHabitDTO(habit)
	return &dto, nil
}

func (t *toolset) completeHabit(ctx context.Context, input habitCompleteInput) (*HabitDTO, error) {
	if err := t.activityReady(); err != nil {
		return nil, err
	}
	ref, err := requireID(input.Habit, "habit")
	if err != nil {
		return nil, err
	}
	habit, err := t.app.Recorder.CompleteHabit(ctx, ref, input.SlotID)
	if err != nil {
		return nil, err
	}
	dto := t.toHabitDTO(habit)
	return &dto, nil
}

func (t *toolset) listHabits(ctx context.Context, input habitListInput) ([]HabitDTO, error) {
	if err := t.activityReady(); err != nil {
		return nil, err
	}
	habits := t.app.Reader.Habits(ctx)
	out := make([]HabitDTO, 0, len(habits))
	for _, h := range habits {
		if !h.IsActive && !input.IncludeInactive {
			continue
		}
		out = append(out, t.toHabitDTO(h))
	}
	return out, nil
}

func (t *toolset) toHabitDTO(h domain.Habit) HabitDTO {
	now := t.app.Clock.Now()
	return HabitDTO{
		ID:         h.ID.String(),
		Name:       h.Name,
		Active:     h.IsActive,
		DoneToday:  h.CompletedOn(now),
		Today:      h.CompletionsOn(now),
		TotalSlots: len(h.CompletedSlots),
	}
}

func (t *toolset) addTodo(ctx context.Context, input todoAddInput) (*TodoDTO, error) {
	if err := t.activityReady(); err != nil {
		return nil, err
	}
	todo, err := t.app.Recorder.AddTodo(ctx, input.Text)
	if err != nil {
		return nil, err
	}
	dto := toTodoDTO(todo)
	return &dto, nil
}

func (t *toolset) completeTodo(ctx context.Context, input todoCompleteInput) (*TodoDTO, error) {
	if err := t.activityReady(); err != nil {
		return nil, err
	}
	id, err := requireID(input.TodoID, "todo_id")
	if err != nil {
		return nil, err
	}
	todo, err := t.app.Recorder.CompleteTodo(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := toTodoDTO(todo)
	return &dto, nil
}

func (t *toolset) listTodos(ctx context.Context, input todoListInput) ([]TodoDTO, error) {
	if err := t.activityReady(); err != nil {
		return nil, err
	}
	todos := t.app.Reader.Todos(ctx)
	out := make([]TodoDTO, 0, len(todos))
	for _, todo := range todos {
		if todo.Completed && !input.IncludeCompleted {
			continue
		}
		out = append(out, toTodoDTO(todo))
	}
	return out, nil
}

func toTodoDTO(todo domain.Todo) TodoDTO {
	dto := TodoDTO{ID: todo.ID.String(), Text: todo.Text, Completed: todo.Completed}
	if todo.CompletedAt != nil && !todo.CompletedAt.IsZero() {
		at := todo.CompletedAt.Time
		dto.CompletedAt = &at
	}
	return dto
}

func (t *toolset) addBlock(ctx context.Context, input blockAddInput) (*TimeBlockDTO, error) {
	if err := t.activityReady(); err != nil {
		return nil, err
	}

	now := t.app.Clock.Now()
	var (
		title    string
		start    time.Time
		duration time.Duration
	)

	if desc := strings.TrimSpace(input.Description); desc != "" {
		parsed := cli.ParseTimeBlock(desc, now)
		title, start, duration = parsed.Title, parsed.Start, parsed.Duration
	} else {
		title = strings.TrimSpace(input.Title)
		if title == "" {
			return nil, errors.New("description or title is required")
		}
		date, err := parseDate(input.Date, now)
		if err != nil {
			return nil, err
		}
		start, err = parseTimeOnDate(date, input.StartTime)
		if err != nil {
			return nil, err
		}
		duration = cli.DefaultBlockDuration
	}

	if input.DurationMinutes < 0 {
		return nil, fmt.Errorf("duration_minutes must not be negative")
	}
	if input.DurationMinutes > 0 {
		duration = time.Duration(input.DurationMinutes) * time.Minute
	}

	block, err := t.app.Recorder.AddTimeBlock(ctx, title, start, duration)
	if err != nil {
		return nil, err
	}
	return &TimeBlockDTO{
		ID:    block.ID.String(),
		Title: block.Title,
		Start: block.Start.Time,
		End:   block.End.Time,
	}, nil
}
