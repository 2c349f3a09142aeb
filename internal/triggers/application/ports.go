package application

import (
	"context"
	"log/slog"

	activity "github.com/felixgeelhaar/flowstate/internal/activity/domain"
	notifications "github.com/felixgeelhaar/flowstate/internal/notifications/domain"
)

// ActivityReader is the read side of the activity store.
type ActivityReader interface {
	Habits(ctx context.Context) []activity.Habit
	Todos(ctx context.Context) []activity.Todo
	LatestCheckIn(ctx context.Context) (activity.CheckIn, bool)
	TimeBlockCount(ctx context.Context) int
}

// Notifier shows notifications.
type Notifier interface {
	Show(ctx context.Context, spec notifications.Spec) (notifications.Notification, error)
}

// Screen is a destination that a notification action can open.
type Screen string

const (
	ScreenHabits   Screen = "habits"
	ScreenTodos    Screen = "todos"
	ScreenInsights Screen = "insights"
	ScreenPlanner  Screen = "planner"
	ScreenFocus    Screen = "focus"
	ScreenBreathe  Screen = "breathe"
	ScreenCheckIn  Screen = "checkin"
)

// Navigator opens a screen in whatever front end is attached.
type Navigator interface {
	Navigate(screen Screen)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(Screen)

func (f NavigatorFunc) Navigate(s Screen) { f(s) }

// LogNavigator records navigation requests in the log. It is used when no
// front end is attached.
type LogNavigator struct {
	Logger *slog.Logger
}

func (n LogNavigator) Navigate(s Screen) {
	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("navigation requested", "screen", string(s))
}
