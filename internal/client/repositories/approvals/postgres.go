package approvals

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

func (r *PostgresRepository) Create(ctx context.Context, a *models.Approval) error {
	query :=
		`INSERT INTO approvals (id, object_id, approver, tx_digest, approved_at)
		 VALUES ($1, $2, $3, $4, $5)`

	if _, err := r.db.ExecContext(ctx, query, a.ID, a.ObjectID, a.Approver, a.TxDigest, a.ApprovedAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListByApprover(ctx context.Context, approver string) ([]models.Approval, error) {
	query :=
		`SELECT id, object_id, approver, tx_digest, approved_at FROM approvals
		 WHERE approver = $1 ORDER BY approved_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, approver)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return collect(rows)
}
