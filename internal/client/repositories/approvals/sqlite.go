package approvals

import (
	"context"
	"database/sql"
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

func (r *SQLiteRepository) Create(ctx context.Context, a *models.Approval) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO approvals (id, object_id, approver, tx_digest, approved_at)
		VALUES (?, ?, ?, ?, ?)
	`, a.ID, a.ObjectID, a.Approver, a.TxDigest, a.ApprovedAt)
	if err != nil {
		return fmt.Errorf("failed to insert approval: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListByApprover(ctx context.Context, approver string) ([]models.Approval, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, object_id, approver, tx_digest, approved_at FROM approvals
		WHERE approver = ? ORDER BY approved_at DESC, id DESC
	`, approver)
	if err != nil {
		return nil, fmt.Errorf("failed to select approvals: %w", err)
	}
	return collect(rows)
}

func collect(rows *sql.Rows) ([]models.Approval, error) {
	defer rows.Close()

	result := []models.Approval{}
	for rows.Next() {
		var a models.Approval
		if err := rows.Scan(&a.ID, &a.ObjectID, &a.Approver, &a.TxDigest, &a.ApprovedAt); err != nil {
			return nil, fmt.Errorf("failed to scan approval: %w", err)
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate approvals: %w", err)
	}
	return result, nil
}
