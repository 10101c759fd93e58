// Package repomanager vends the journal repositories for the configured
// driver and owns schema migrations.
package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/akashi/internal/client/migrations"
	"github.com/dmitrijs2005/akashi/internal/client/repositories/approvals"
	"github.com/dmitrijs2005/akashi/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/akashi/internal/client/repositories/runs"
	"github.com/dmitrijs2005/akashi/internal/dbx"
)

type RepositoryManager interface {
	// Driver is the journal driver name ("sqlite" or "postgres").
	Driver() string
	// SQLDriver is the database/sql driver name to open DSNs with.
	SQLDriver() string
	RunMigrations(context.Context, *sql.DB) error
	Runs(db dbx.DBTX) runs.Repository
	Approvals(db dbx.DBTX) approvals.Repository
	Metadata(db dbx.DBTX) metadata.Repository
}

// New returns the manager for driver.
func New(driver string) (RepositoryManager, error) {
	switch driver {
	case "sqlite":
		return &SQLiteRepositoryManager{}, nil
	case "postgres":
		return &PostgresRepositoryManager{}, nil
	}
	return nil, fmt.Errorf("unsupported journal driver %q", driver)
}

// migrateUp is a seam for testing migrations.Up.
var migrateUp = migrations.Up
