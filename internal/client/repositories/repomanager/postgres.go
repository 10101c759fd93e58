package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/akashi/internal/client/repositories/approvals"
	"github.com/dmitrijs2005/akashi/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/akashi/internal/client/repositories/runs"
	"github.com/dmitrijs2005/akashi/internal/dbx"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgresRepositoryManager vends PostgreSQL-backed repositories, for a
// journal shared by several operators.
type PostgresRepositoryManager struct{}

func (m *PostgresRepositoryManager) Driver() string    { return "postgres" }
func (m *PostgresRepositoryManager) SQLDriver() string { return "pgx" }

func (m *PostgresRepositoryManager) Runs(db dbx.DBTX) runs.Repository {
	return runs.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Approvals(db dbx.DBTX) approvals.Repository {
	return approvals.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Metadata(db dbx.DBTX) metadata.Repository {
	return metadata.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	return migrateUp(ctx, db, m.Driver())
}
