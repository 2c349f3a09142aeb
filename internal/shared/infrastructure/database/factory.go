package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Config selects and configures a backend.
type Config struct {
	// Driver is detected from URL when empty or "auto".
	Driver Driver
	// URL is a PostgreSQL URL or an SQLite path.
	URL string
	// SQLitePath overrides URL for SQLite. Defaults to ~/.flowstate/data.db.
	SQLitePath string
	// MaxConns caps the PostgreSQL pool.
	MaxConns int
}

// Opener creates a connection for one driver.
type Opener func(ctx context.Context, cfg Config) (Connection, error)

var openers = map[Driver]Opener{}

// Register makes a driver available to Open. Driver packages call it from init.
func Register(d Driver, open Opener) {
	openers[d] = open
}

// Open creates a connection for the configured or detected driver. The
// driver package must be imported for its side effect.
func Open(ctx context.Context, cfg Config) (Connection, error) {
	driver := cfg.Driver
	if driver == "" || driver == "auto" {
		driver = DetectDriver(cfg.URL)
	}
	if driver == DriverSQLite && cfg.SQLitePath == "" && cfg.URL != "" {
		cfg.SQLitePath = strings.TrimPrefix(cfg.URL, "sqlite://")
	}

	open, ok := openers[driver]
	if !ok {
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}
	return open(ctx, cfg)
}

// DefaultSQLitePath returns ~/.flowstate/data.db.
func DefaultSQLitePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return filepath.Join(homeDir, ".flowstate", "data.db")
}

// IsInMemory reports whether an SQLite path refers to a private in-memory database.
func IsInMemory(path string) bool {
	return path == ":memory:" || strings.Contains(path, ":memory:") || strings.Contains(path, "mode=memory")
}

// EnsureDirectory creates the parent directory of path.
func EnsureDirectory(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o750)
}
