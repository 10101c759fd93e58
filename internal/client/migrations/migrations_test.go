package migrations

import (
	"context"
	"database/sql"
	"io/fs"
	"testing"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func TestSource(t *testing.T) {
	for _, driver := range []string{"sqlite", "postgres"} {
		fsys, _, err := Source(driver)
		require.NoError(t, err, driver)

		files, err := fs.Glob(fsys, "*.sql")
		require.NoError(t, err)
		assert.Len(t, files, 3, driver)
	}

	_, dialect, _ := Source("postgres")
	assert.Equal(t, goose.DialectPostgres, dialect)

	_, _, err := Source("mysql")
	assert.Error(t, err)
}

func TestUp_SQLite(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	require.NoError(t, Up(ctx, db, "sqlite"))
	require.NoError(t, Up(ctx, db, "sqlite"), "second run is a no-op")

	for _, table := range []string{"metadata", "runs", "approvals"} {
		var n int
		require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&n))
		assert.Equal(t, 1, n, table)
	}
}
