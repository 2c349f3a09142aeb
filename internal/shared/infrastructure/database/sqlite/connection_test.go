package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/flowstate/internal/shared/infrastructure/database"
)

func TestOpen_File(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "flowstate.db")

	conn, err := Open(ctx, database.Config{SQLitePath: path})
	require.NoError(t, err)
	defer conn.Close()

	assert.NoError(t, conn.Ping(ctx))
	assert.Equal(t, database.DriverSQLite, conn.Driver())
	assert.FileExists(t, path)
}

func TestOpen_RejectsUnsafePath(t *testing.T) {
	_, err := Open(context.Background(), database.Config{SQLitePath: "/tmp/flowstate;rm.db"})
	assert.ErrorContains(t, err, "invalid SQLite path")
}

func TestOpen_RegisteredWithFactory(t *testing.T) {
	conn, err := database.Open(context.Background(), database.Config{URL: ":memory:"})
	require.NoError(t, err)
	defer conn.Close()

	assert.Equal(t, database.DriverSQLite, conn.Driver())
}

func TestConnection_ExecAndQuery(t *testing.T) {
	ctx := context.Background()

	conn, err := Open(ctx, database.Config{SQLitePath: ":memory:"})
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Exec(ctx, `CREATE TABLE habits (id TEXT PRIMARY KEY, name TEXT)`)
	require.NoError(t, err)

	result, err := conn.Exec(ctx, `INSERT INTO habits (id, name) VALUES (?, ?)`, "1", "Stretch")
	require.NoError(t, err)
	affected, err := result.RowsAffected()
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	_, err = conn.Exec(ctx, `INSERT INTO habits (id, name) VALUES (?, ?)`, "2", "Read")
	require.NoError(t, err)

	var name string
	require.NoError(t, conn.QueryRow(ctx, `SELECT name FROM habits WHERE id = ?`, "1").Scan(&name))
	assert.Equal(t, "Stretch", name)

	rows, err := conn.Query(ctx, `SELECT name FROM habits ORDER BY id`)
	require.NoError(t, err)
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		require.NoError(t, rows.Scan(&n))
		names = append(names, n)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []string{"Stretch", "Read"}, names)

	err = conn.QueryRow(ctx, `SELECT name FROM habits WHERE id = ?`, "missing").Scan(&name)
	assert.True(t, database.IsNoRows(err))
}
