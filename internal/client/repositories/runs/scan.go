package runs

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/akashi/internal/client/models"
	"github.com/dmitrijs2005/akashi/internal/common"
)

const columns = `id, account, file_name, title, recipient, stage, blob_id, content_address,
		object_id, tx_digest, error, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*models.Run, error) {
	var r models.Run
	var stage string
	err := s.Scan(&r.ID, &r.Account, &r.FileName, &r.Title, &r.Recipient, &stage, &r.BlobID,
		&r.ContentAddress, &r.ObjectID, &r.TxDigest, &r.Error, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	r.Stage = models.Stage(stage)
	return &r, nil
}

func collect(rows *sql.Rows) ([]models.Run, error) {
	defer rows.Close()

	result := []models.Run{}
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		result = append(result, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}
	return result, nil
}

func checkAffected(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("run %s: %w", id, common.ErrorNotFound)
	}
	return nil
}

func notFound(err error, id string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("run %s: %w", id, common.ErrorNotFound)
	}
	return fmt.Errorf("failed to get run %s: %w", id, err)
}
