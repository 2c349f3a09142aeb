package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store backends accepted in FLOWSTATE_STORE.
const (
	StoreAuto   = "auto"
	StoreMemory = "memory"
	StoreRedis  = "redis"
	StoreSQL    = "sql"
)

// ErrInvalidStore is returned when FLOWSTATE_STORE names an unknown backend.
var ErrInvalidStore = errors.New("invalid store backend")

// Config holds application configuration.
type Config struct {
	// Application
	AppEnv   string
	LogLevel string
	UserID   string

	// Storage
	Store       string
	DatabaseURL string
	RedisURL    string

	// Store circuit breaker
	StoreBreakerFailures int
	StoreBreakerTimeout  time.Duration

	// RabbitMQ
	RabbitMQURL string

	// Outbox relay, used when both RabbitMQ and a SQL store are configured
	OutboxPollInterval time.Duration
	OutboxBatchSize    int
	OutboxMaxRetries   int
	OutboxRetention    time.Duration

	// Notifications
	NotifyDefaultDuration time.Duration
	NotifySnoozeDuration  time.Duration

	// Triggers
	BreatheEnabled    bool
	TriggerConfigFile string
	Triggers          map[string]TriggerOverride

	// Insights
	InsightsRefreshSchedule string

	// Worker
	WorkerHealthAddr string

	// MCP
	MCPAddr      string
	MCPAuthToken string
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:   getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		UserID:   getEnv("FLOWSTATE_USER", "default"),

		Store:       strings.ToLower(getEnv("FLOWSTATE_STORE", StoreAuto)),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		RedisURL:    getEnv("REDIS_URL", ""),

		StoreBreakerFailures: getIntEnv("STORE_BREAKER_FAILURES", 5),
		StoreBreakerTimeout:  getDurationEnv("STORE_BREAKER_TIMEOUT", 30*time.Second),

		RabbitMQURL: getEnv("RABBITMQ_URL", ""),

		OutboxPollInterval: getDurationEnv("OUTBOX_POLL_INTERVAL", time.Second),
		OutboxBatchSize:    getIntEnv("OUTBOX_BATCH_SIZE", 100),
		OutboxMaxRetries:   getIntEnv("OUTBOX_MAX_RETRIES", 5),
		OutboxRetention:    getDurationEnv("OUTBOX_RETENTION", 7*24*time.Hour),

		NotifyDefaultDuration: getDurationEnv("NOTIFY_DEFAULT_DURATION", 12*time.Second),
		NotifySnoozeDuration:  getDurationEnv("NOTIFY_SNOOZE_DURATION", 20*time.Minute),

		BreatheEnabled:    getBoolEnv("TRIGGER_BREATHE_ENABLED", false),
		TriggerConfigFile: getEnv("TRIGGER_CONFIG_FILE", ""),

		InsightsRefreshSchedule: getEnv("INSIGHTS_REFRESH_SCHEDULE", "0 21 * * *"),

		WorkerHealthAddr: getEnv("WORKER_HEALTH_ADDR", "0.0.0.0:8081"),

		MCPAddr:      getEnv("MCP_ADDR", "0.0.0.0:8082"),
		MCPAuthToken: getEnv("MCP_AUTH_TOKEN", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.TriggerConfigFile != "" {
		triggers, err := LoadTriggerFile(cfg.TriggerConfigFile)
		if err != nil {
			return nil, err
		}
		cfg.Triggers = triggers
	}

	return cfg, nil
}

// Validate checks values that cannot fall back to a default.
func (c *Config) Validate() error {
	switch c.Store {
	case StoreAuto, StoreMemory, StoreRedis, StoreSQL:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidStore, c.Store)
	}
	if c.Store == StoreRedis && c.RedisURL == "" {
		return fmt.Errorf("%w: redis store requires REDIS_URL", ErrInvalidStore)
	}
	if c.NotifyDefaultDuration <= 0 {
		return fmt.Errorf("NOTIFY_DEFAULT_DURATION must be positive, got %s", c.NotifyDefaultDuration)
	}
	if c.NotifySnoozeDuration <= 0 {
		return fmt.Errorf("NOTIFY_SNOOZE_DURATION must be positive, got %s", c.NotifySnoozeDuration)
	}
	if c.OutboxBatchSize <= 0 {
		return fmt.Errorf("OUTBOX_BATCH_SIZE must be positive, got %d", c.OutboxBatchSize)
	}
	return nil
}

// ResolvedStore returns the concrete backend for StoreAuto: redis when
// REDIS_URL is set, otherwise sql.
func (c *Config) ResolvedStore() string {
	if c.Store != StoreAuto {
		return c.Store
	}
	if c.RedisURL != "" {
		return StoreRedis
	}
	return StoreSQL
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
