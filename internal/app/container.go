// Package app wires configuration, storage and the FlowState services into
// a single container shared by the binaries.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	activityApp "github.com/felixgeelhaar/flowstate/internal/activity/application"
	activityDomain "github.com/felixgeelhaar/flowstate/internal/activity/domain"
	insightsApp "github.com/felixgeelhaar/flowstate/internal/insights/application"
	insightsDomain "github.com/felixgeelhaar/flowstate/internal/insights/domain"
	notificationsApp "github.com/felixgeelhaar/flowstate/internal/notifications/application"
	notificationsDomain "github.com/felixgeelhaar/flowstate/internal/notifications/domain"
	"github.com/felixgeelhaar/flowstate/internal/shared/infrastructure/clock"
	"github.com/felixgeelhaar/flowstate/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/flowstate/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/flowstate/internal/shared/infrastructure/outbox"
	triggersApp "github.com/felixgeelhaar/flowstate/internal/triggers/application"
	"github.com/felixgeelhaar/flowstate/pkg/config"
	"github.com/felixgeelhaar/flowstate/pkg/observability"
	"github.com/redis/go-redis/v9"
)

// Container holds all application dependencies.
type Container struct {
	Config  *config.Config
	Logger  *slog.Logger
	Clock   clock.Clock
	Metrics *observability.InMemoryMetrics
	Health  *observability.HealthRegistry

	// Storage
	Store       activityDomain.KeyValueStore
	DBConn      database.Connection
	RedisClient *redis.Client

	// Events
	Bus            *eventbus.InProcessBus
	EventPublisher eventbus.Publisher
	rabbit         *eventbus.RabbitMQPublisher

	// Outbox relays stored events to RabbitMQ. It is nil unless both
	// RabbitMQ and a SQL store are configured, and only the worker starts it.
	Outbox     *outbox.Processor
	OutboxRepo outbox.Repository

	// Activity
	Reader   *activityApp.Reader
	Recorder *activityApp.Recorder

	// Notifications and triggers
	Notifications *notificationsApp.Engine
	Detector      *triggersApp.Detector

	// Insights
	Insights *insightsApp.Service
}

// Option customises container construction.
type Option func(*options)

type options struct {
	clock     clock.Clock
	store     activityDomain.KeyValueStore
	navigator triggersApp.Navigator
}

// WithClock replaces the wall clock.
func WithClock(clk clock.Clock) Option {
	return func(o *options) { o.clock = clk }
}

// WithStore uses store instead of the configured backend.
func WithStore(store activityDomain.KeyValueStore) Option {
	return func(o *options) { o.store = store }
}

// WithNavigator routes notification actions to a front end.
func WithNavigator(n triggersApp.Navigator) Option {
	return func(o *options) { o.navigator = n }
}

// NewContainer creates and wires all dependencies.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...Option) (*Container, error) {
	if logger == nil {
		logger = slog.Default()
	}
	o := options{clock: clock.Real()}
	for _, opt := range opts {
		opt(&o)
	}

	c := &Container{
		Config:  cfg,
		Logger:  logger,
		Clock:   o.clock,
		Metrics: observability.NewInMemoryMetrics(),
		Health:  observability.NewHealthRegistry(),
	}

	// Storage
	if o.store != nil {
		c.Store = o.store
	} else if err := c.openStore(ctx); err != nil {
		c.Close()
		return nil, err
	}
	if p, ok := c.Store.(pinger); ok {
		c.Health.Register("store", observability.StoreHealthChecker(p.Ping))
	}

	// Events
	if err := c.initEvents(); err != nil {
		c.Close()
		return nil, err
	}

	// Activity
	c.Reader = activityApp.NewReader(c.Store, logger)
	c.Recorder = activityApp.NewRecorder(c.Store, c.Clock, logger)

	// Notifications
	c.Notifications = notificationsApp.NewEngine(c.Clock, c.EventPublisher, c.Metrics, logger, notificationsApp.Config{
		DefaultDuration: cfg.NotifyDefaultDuration,
		SnoozeDuration:  cfg.NotifySnoozeDuration,
	})

	// Triggers
	policies, err := TriggerPolicies(cfg)
	if err != nil {
		c.Close()
		return nil, err
	}
	navigator := o.navigator
	if navigator == nil {
		navigator = triggersApp.LogNavigator{Logger: logger}
	}
	c.Detector, err = triggersApp.NewDetector(c.Reader, c.Notifications, navigator, c.Clock, c.Metrics, logger, policies)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to create trigger detector: %w", err)
	}

	// Insights
	c.Insights = insightsApp.NewService(c.Reader, c.Clock, c.EventPublisher, c.Metrics, logger)

	logger.Info("container initialized",
		"store", cfg.ResolvedStore(),
		"rabbitmq", c.rabbit != nil,
		"outbox", c.Outbox != nil,
	)
	return c, nil
}

func (c *Container) initEvents() error {
	c.Bus = eventbus.NewInProcessBus(c.Logger)
	c.Bus.Register(eventbus.NewMetricsConsumer(c.Metrics,
		notificationsDomain.RoutingKeyShown,
		notificationsDomain.RoutingKeyDismissed,
		notificationsDomain.RoutingKeySnoozed,
		insightsDomain.RoutingKeyReportGenerated,
	))
	c.EventPublisher = c.Bus

	if c.Config.RabbitMQURL == "" {
		return nil
	}
	rabbit, err := eventbus.NewRabbitMQPublisher(c.Config.RabbitMQURL, c.Logger)
	if err != nil {
		// Fall back to the local bus in development
		if c.Config.IsDevelopment() {
			c.Logger.Warn("RabbitMQ not available, publishing events locally only", "error", err)
			return nil
		}
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	c.rabbit = rabbit
	c.Health.Register("rabbitmq", observability.RabbitMQHealthChecker(rabbit.Ping))

	if c.DBConn == nil {
		c.EventPublisher = eventbus.NewFanoutPublisher(c.Bus, rabbit)
		return nil
	}

	// Events go through the outbox table so short-lived processes do not
	// lose them when the broker is slow or down.
	c.OutboxRepo = outbox.NewSQLRepository(c.DBConn)
	c.EventPublisher = eventbus.NewFanoutPublisher(c.Bus, outbox.NewWriter(c.OutboxRepo, c.Clock))
	c.Outbox = outbox.NewProcessor(c.OutboxRepo, rabbit, outbox.ProcessorConfig{
		PollInterval:     c.Config.OutboxPollInterval,
		BatchSize:        c.Config.OutboxBatchSize,
		MaxRetries:       c.Config.OutboxMaxRetries,
		RetryBackoffBase: time.Second,
		RetryBackoffMax:  time.Minute,
	}, c.Clock, c.Logger)
	return nil
}

// Close stops background work and releases connections. It is safe to call
// on a partially built container.
func (c *Container) Close() {
	if c.Detector != nil {
		c.Detector.Stop()
	}

	if c.Outbox != nil {
		c.Outbox.Stop()
	}

	if c.Notifications != nil {
		if err := c.Notifications.Close(); err != nil {
			c.Logger.Warn("error closing notification engine", "error", err)
		}
	}

	if c.EventPublisher != nil {
		if err := c.EventPublisher.Close(); err != nil {
			c.Logger.Warn("error closing event publisher", "error", err)
		}
	}

	// With the outbox in place the fanout holds the writer, not the broker.
	if c.Outbox != nil && c.rabbit != nil {
		if err := c.rabbit.Close(); err != nil {
			c.Logger.Warn("error closing RabbitMQ publisher", "error", err)
		}
	}

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			c.Logger.Warn("error closing Redis connection", "error", err)
		} else {
			c.Logger.Info("Redis connection closed")
		}
	}

	if c.DBConn != nil {
		if err := c.DBConn.Close(); err != nil {
			c.Logger.Warn("error closing database connection", "error", err)
		} else {
			c.Logger.Info("database connection closed")
		}
	}
}
