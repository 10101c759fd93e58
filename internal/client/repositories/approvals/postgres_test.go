package approvals

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/akashi/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresRepository(db)
	now := time.Now().UTC()

	mock.ExpectExec(`^INSERT INTO approvals \(id, object_id, approver, tx_digest, approved_at\) VALUES \(\$1, \$2, \$3, \$4, \$5\)$`).
		WithArgs("a1", "0xO1", "0xB", "D1", now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Create(context.Background(), &models.Approval{ID: "a1", ObjectID: "0xO1", Approver: "0xB", TxDigest: "D1", ApprovedAt: now}))

	mock.ExpectExec(`INSERT INTO approvals`).WillReturnError(errors.New("unique violation"))
	err = repo.Create(context.Background(), &models.Approval{ID: "a2"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db error: unique violation")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_ListByApprover(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresRepository(db)
	now := time.Now().UTC()

	mock.ExpectQuery(`WHERE approver = \$1 ORDER BY approved_at DESC, id DESC$`).
		WithArgs("0xB").
		WillReturnRows(sqlmock.NewRows([]string{"id", "object_id", "approver", "tx_digest", "approved_at"}).
			AddRow("a1", "0xO1", "0xB", "D1", now))

	list, err := repo.ListByApprover(context.Background(), "0xB")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "D1", list[0].TxDigest)

	mock.ExpectQuery(`FROM approvals`).WillReturnError(errors.New("down"))
	_, err = repo.ListByApprover(context.Background(), "0xB")
	require.Error(t, err)

	require.NoError(t, mock.ExpectationsWereMet())
}
