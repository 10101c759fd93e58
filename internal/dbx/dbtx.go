// Package dbx holds the database handle shared by the journal repositories.
package dbx

import (
	"context"
	"database/sql"
	"fmt"
)

// DBTX is what a journal repository needs to run its statements. *sql.DB and
// *sql.Tx both satisfy it, so one repository type serves both the plain
// journal and a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithTx runs fn inside one transaction on db. The transaction commits when
// fn returns nil and rolls back on an error or a panic; the panic is
// re-raised after the rollback.
func WithTx(ctx context.Context, db *sql.DB, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin journal transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		if cerr := tx.Commit(); cerr != nil {
			err = fmt.Errorf("commit journal transaction: %w", cerr)
		}
	}()

	return fn(ctx, tx)
}
