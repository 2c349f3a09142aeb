package app

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/flowstate/internal/activity/infrastructure/persistence"
	"github.com/felixgeelhaar/flowstate/internal/shared/infrastructure/database"
	_ "github.com/felixgeelhaar/flowstate/internal/shared/infrastructure/database/postgres" // Register PostgreSQL driver
	_ "github.com/felixgeelhaar/flowstate/internal/shared/infrastructure/database/sqlite"   // Register SQLite driver
	"github.com/felixgeelhaar/flowstate/internal/shared/infrastructure/migrations"
	"github.com/felixgeelhaar/flowstate/pkg/config"
)

type pinger interface {
	Ping(ctx context.Context) error
}

// openStore connects the configured backend. Remote backends are wrapped in
// a circuit breaker.
func (c *Container) openStore(ctx context.Context) error {
	cfg := c.Config
	breaker := persistence.BreakerConfig{
		Failures: uint32(max(cfg.StoreBreakerFailures, 1)),
		Timeout:  cfg.StoreBreakerTimeout,
	}

	switch backend := cfg.ResolvedStore(); backend {
	case config.StoreMemory:
		c.Store = persistence.NewMemoryStore()
		c.Logger.Warn("using in-memory store, activity will not persist")

	case config.StoreRedis:
		client, err := persistence.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		c.RedisClient = client
		c.Store = persistence.NewBreakerStore("redis-store", persistence.NewRedisStore(client, cfg.UserID), breaker, c.Logger)
		c.Logger.Info("connected to Redis")

	case config.StoreSQL:
		conn, err := database.Open(ctx, database.Config{URL: cfg.DatabaseURL})
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		c.DBConn = conn
		if err := migrations.Run(ctx, conn); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		c.Store = persistence.NewBreakerStore("sql-store", persistence.NewSQLStore(conn, cfg.UserID, c.Clock), breaker, c.Logger)
		c.Logger.Info("connected to database", "driver", conn.Driver())

	default:
		return fmt.Errorf("%w: %q", config.ErrInvalidStore, backend)
	}
	return nil
}
