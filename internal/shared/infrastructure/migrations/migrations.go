// Package migrations applies the embedded schema for each database driver.
package migrations

import (
	"context"
	"embed"
	"fmt"
	"sort"
	"strings"

	"github.com/felixgeelhaar/flowstate/internal/shared/infrastructure/database"
)

//go:embed sqlite/*.sql postgres/*.sql
var files embed.FS

// Run executes every .up.sql file for the connection's driver in name order.
// Statements are idempotent, so Run is safe on every start.
func Run(ctx context.Context, conn database.Connection) error {
	dir := conn.Driver().String()

	names, err := List(conn.Driver())
	if err != nil {
		return err
	}

	for _, name := range names {
		body, err := files.ReadFile(dir + "/" + name)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", name, err)
		}
		if _, err := conn.Exec(ctx, string(body)); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", name, err)
		}
	}
	return nil
}

// List returns the migration file names for a driver in execution order.
func List(driver database.Driver) ([]string, error) {
	entries, err := files.ReadDir(driver.String())
	if err != nil {
		return nil, fmt.Errorf("no migrations for driver %s: %w", driver, err)
	}

	var names []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
