// Package journal opens the local database that records pipeline runs,
// approvals and client metadata.
package journal

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/akashi/internal/client/repositories/approvals"
	"github.com/dmitrijs2005/akashi/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/akashi/internal/client/repositories/repomanager"
	"github.com/dmitrijs2005/akashi/internal/client/repositories/runs"
	"github.com/dmitrijs2005/akashi/internal/dbx"
)

// Journal is an open, migrated database with its repositories.
type Journal struct {
	DB      *sql.DB
	manager repomanager.RepositoryManager

	Runs      runs.Repository
	Approvals approvals.Repository
	Metadata  metadata.Repository
}

// Open connects to dsn with the given driver ("sqlite" or "postgres") and
// applies pending migrations.
func Open(ctx context.Context, driver, dsn string) (*Journal, error) {
	m, err := repomanager.New(driver)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(m.SQLDriver(), dsn)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	if driver == "sqlite" {
		// one writer; avoids SQLITE_BUSY and keeps :memory: databases shared
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open journal: %w", err)
	}

	if err := m.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Journal{
		DB:        db,
		manager:   m,
		Runs:      m.Runs(db),
		Approvals: m.Approvals(db),
		Metadata:  m.Metadata(db),
	}, nil
}

// Driver reports the journal driver name.
func (j *Journal) Driver() string {
	return j.manager.Driver()
}

// Tx is the set of repositories bound to one transaction.
type Tx struct {
	Runs      runs.Repository
	Approvals approvals.Repository
	Metadata  metadata.Repository
}

// WithTx runs fn with repositories bound to a single transaction.
func (j *Journal) WithTx(ctx context.Context, fn func(ctx context.Context, tx *Tx) error) error {
	return dbx.WithTx(ctx, j.DB, func(ctx context.Context, q dbx.DBTX) error {
		return fn(ctx, &Tx{
			Runs:      j.manager.Runs(q),
			Approvals: j.manager.Approvals(q),
			Metadata:  j.manager.Metadata(q),
		})
	})
}

func (j *Journal) Close() error {
	return j.DB.Close()
}
