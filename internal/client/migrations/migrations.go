// Package migrations embeds the journal schema for every supported driver.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
)

//go:embed sqlite/*.sql
var sqliteFS embed.FS

//go:embed postgres/*.sql
var postgresFS embed.FS

// Source returns the migration files and goose dialect for a journal
// driver ("sqlite" or "postgres").
func Source(driver string) (fs.FS, goose.Dialect, error) {
	switch driver {
	case "sqlite":
		sub, err := fs.Sub(sqliteFS, "sqlite")
		return sub, goose.DialectSQLite3, err
	case "postgres":
		sub, err := fs.Sub(postgresFS, "postgres")
		return sub, goose.DialectPostgres, err
	}
	return nil, "", fmt.Errorf("no migrations for driver %q", driver)
}

// Up applies all pending migrations of driver to db.
func Up(ctx context.Context, db *sql.DB, driver string) error {
	fsys, dialect, err := Source(driver)
	if err != nil {
		return err
	}

	p, err := goose.NewProvider(dialect, db, fsys)
	if err != nil {
		return fmt.Errorf("goose provider: %w", err)
	}
	if _, err := p.Up(ctx); err != nil {
		return fmt.Errorf("migrate %s journal: %w", driver, err)
	}
	return nil
}
