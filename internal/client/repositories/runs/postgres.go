package runs

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/akashi/internal/client/models"
	"github.com/dmitrijs2005/akashi/internal/dbx"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, run *models.Run) error {
	query := `INSERT INTO runs (` + columns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := r.db.ExecContext(ctx, query, run.ID, run.Account, run.FileName, run.Title, run.Recipient,
		string(run.Stage), run.BlobID, run.ContentAddress, run.ObjectID, run.TxDigest, run.Error,
		run.CreatedAt, run.UpdatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Update(ctx context.Context, run *models.Run) error {
	query := `UPDATE runs SET stage = $1, blob_id = $2, content_address = $3, object_id = $4,
		tx_digest = $5, error = $6, updated_at = $7
		WHERE id = $8`

	res, err := r.db.ExecContext(ctx, query, string(run.Stage), run.BlobID, run.ContentAddress,
		run.ObjectID, run.TxDigest, run.Error, run.UpdatedAt, run.ID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return checkAffected(res, run.ID)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Run, error) {
	query := `SELECT ` + columns + ` FROM runs WHERE id = $1`

	run, err := scanRun(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound(err, id)
	}
	return run, nil
}

func (r *PostgresRepository) ListByAccount(ctx context.Context, account string, limit int) ([]models.Run, error) {
	query := `SELECT ` + columns + ` FROM runs WHERE account = $1
		ORDER BY created_at DESC, id DESC LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, account, limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return collect(rows)
}

func (r *PostgresRepository) ListByObjectID(ctx context.Context, objectID string) ([]models.Run, error) {
	query := `SELECT ` + columns + ` FROM runs WHERE object_id = $1 ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query, objectID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return collect(rows)
}
