package migrations

import (
	"context"
	"database/sql"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func TestPostgresMigrationsEmbedded(t *testing.T) {
	entries, err := fs.ReadDir(postgresFiles, "postgres")
	require.NoError(t, err)

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Contains(t, names, "000001_create_flights.up.sql")
	assert.Contains(t, names, "000001_create_flights.down.sql")
}

func TestApplySQLiteSchema(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	defer db.Close()

	ctx := context.Background()
	require.NoError(t, ApplySQLiteSchema(ctx, db))
	require.NoError(t, ApplySQLiteSchema(ctx, db), "schema must be idempotent")

	var indexes int
	err = db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sqlite_master WHERE type = 'index' AND tbl_name = 'flights' AND name LIKE 'idx_flights_%'`).Scan(&indexes)
	require.NoError(t, err)
	assert.Equal(t, 3, indexes)
}
