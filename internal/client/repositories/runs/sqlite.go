package runs

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/akashi/internal/client/models"
	"github.com/dmitrijs2005/akashi/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Create(ctx context.Context, run *models.Run) error {
	query := `INSERT INTO runs (` + columns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query, run.ID, run.Account, run.FileName, run.Title, run.Recipient,
		string(run.Stage), run.BlobID, run.ContentAddress, run.ObjectID, run.TxDigest, run.Error,
		run.CreatedAt, run.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Update(ctx context.Context, run *models.Run) error {
	query := `UPDATE runs SET stage = ?, blob_id = ?, content_address = ?, object_id = ?,
		tx_digest = ?, error = ?, updated_at = ?
		WHERE id = ?`

	res, err := r.db.ExecContext(ctx, query, string(run.Stage), run.BlobID, run.ContentAddress,
		run.ObjectID, run.TxDigest, run.Error, run.UpdatedAt, run.ID)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}
	return checkAffected(res, run.ID)
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Run, error) {
	query := `SELECT ` + columns + ` FROM runs WHERE id = ?`

	run, err := scanRun(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound(err, id)
	}
	return run, nil
}

func (r *SQLiteRepository) ListByAccount(ctx context.Context, account string, limit int) ([]models.Run, error) {
	query := `SELECT ` + columns + ` FROM runs WHERE account = ?
		ORDER BY created_at DESC, id DESC LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, account, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to select runs: %w", err)
	}
	return collect(rows)
}

func (r *SQLiteRepository) ListByObjectID(ctx context.Context, objectID string) ([]models.Run, error) {
	query := `SELECT ` + columns + ` FROM runs WHERE object_id = ? ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query, objectID)
	if err != nil {
		return nil, fmt.Errorf("failed to select runs: %w", err)
	}
	return collect(rows)
}
