package cli

import (
	activityApp "github.com/felixgeelhaar/flowstate/internal/activity/application"
	internalApp "github.com/felixgeelhaar/flowstate/internal/app"
	insightsApp "github.com/felixgeelhaar/flowstate/internal/insights/application"
	notificationsApp "github.com/felixgeelhaar/flowstate/internal/notifications/application"
	"github.com/felixgeelhaar/flowstate/internal/shared/infrastructure/clock"
	"github.com/felixgeelhaar/flowstate/internal/shared/infrastructure/eventbus"
	triggersApp "github.com/felixgeelhaar/flowstate/internal/triggers/application"
	"github.com/felixgeelhaar/flowstate/pkg/config"
	"github.com/felixgeelhaar/flowstate/pkg/observability"
)

// App holds the CLI application dependencies.
type App struct {
	Config *config.Config
	Clock  clock.Clock

	// Activity
	Reader   *activityApp.Reader
	Recorder *activityApp.Recorder

	// Notifications and triggers
	Notifications *notificationsApp.Engine
	Detector      *triggersApp.Detector
	Bus           *eventbus.InProcessBus

	// Insights
	Insights *insightsApp.Service

	Health *observability.HealthRegistry
}

// NewApp creates a new CLI application with the provided services.
func NewApp(
	clk clock.Clock,
	reader *activityApp.Reader,
	recorder *activityApp.Recorder,
	notifications *notificationsApp.Engine,
	detector *triggersApp.Detector,
	bus *eventbus.InProcessBus,
	insights *insightsApp.Service,
	health *observability.HealthRegistry,
) *App {
	if clk == nil {
		clk = clock.Real()
	}
	return &App{
		Clock:         clk,
		Reader:        reader,
		Recorder:      recorder,
		Notifications: notifications,
		Detector:      detector,
		Bus:           bus,
		Insights:      insights,
		Health:        health,
	}
}

// FromContainer creates a CLI application backed by the container's services.
func FromContainer(c *internalApp.Container) *App {
	a := NewApp(c.Clock, c.Reader, c.Recorder, c.Notifications, c.Detector, c.Bus, c.Insights, c.Health)
	a.Config = c.Config
	return a
}

// app is the global CLI application instance
var app *App

// SetApp sets the global CLI application instance.
func SetApp(a *App) {
	app = a
}

// GetApp returns the global CLI application instance.
func GetApp() *App {
	return app
}
