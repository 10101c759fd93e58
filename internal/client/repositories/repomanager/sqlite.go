package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/akashi/internal/client/repositories/approvals"
	"github.com/dmitrijs2005/akashi/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/akashi/internal/client/repositories/runs"
	"github.com/dmitrijs2005/akashi/internal/dbx"
	_ "modernc.org/sqlite"
)

// SQLiteRepositoryManager vends repositories backed by a local SQLite file.
type SQLiteRepositoryManager struct{}

func (m *SQLiteRepositoryManager) Driver() string    { return "sqlite" }
func (m *SQLiteRepositoryManager) SQLDriver() string { return "sqlite" }

func (m *SQLiteRepositoryManager) Runs(db dbx.DBTX) runs.Repository {
	return runs.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) Approvals(db dbx.DBTX) approvals.Repository {
	return approvals.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) Metadata(db dbx.DBTX) metadata.Repository {
	return metadata.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	return migrateUp(ctx, db, m.Driver())
}
