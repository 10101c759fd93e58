package runs

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/akashi/internal/client/models"
	"github.com/dmitrijs2005/akashi/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

var runColumns = []string{"id", "account", "file_name", "title", "recipient", "stage", "blob_id",
	"content_address", "object_id", "tx_digest", "error", "created_at", "updated_at"}

func TestPostgres_Create(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now().UTC()
	run := newRun("r1", "0xA", now)

	mock.ExpectExec(`(?s)^INSERT INTO runs \(.*\)\s+VALUES \(\$1, .*\$13\)$`).
		WithArgs("r1", "0xA", "diploma.pdf", "diploma", "0xB", "draft", "", "", "", "", "", now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), run))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_Create_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO runs`).WillReturnError(errors.New("db down"))

	err := repo.Create(context.Background(), newRun("r1", "0xA", time.Now()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db error: db down")
}

func TestPostgres_Update(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now().UTC()
	run := newRun("r1", "0xA", now)
	run.Stage = models.StageFailed
	run.Error = "upload failed"

	mock.ExpectExec(`(?s)^UPDATE runs SET stage = \$1.*WHERE id = \$8$`).
		WithArgs("failed", "", "", "", "", "upload failed", now, "r1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Update(context.Background(), run))

	mock.ExpectExec(`UPDATE runs`).WillReturnResult(sqlmock.NewResult(0, 0))
	require.ErrorIs(t, repo.Update(context.Background(), run), common.ErrorNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_GetByID(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectQuery(`(?s)^SELECT id, account.*FROM runs WHERE id = \$1$`).
		WithArgs("r1").
		WillReturnRows(sqlmock.NewRows(runColumns).
			AddRow("r1", "0xA", "f.pdf", "f", "0xB", "stored", "b1", "https://agg/v1/blobs/b1", "", "", "", now, now))

	got, err := repo.GetByID(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, models.StageStored, got.Stage)
	assert.Equal(t, "b1", got.BlobID)

	mock.ExpectQuery(`FROM runs WHERE id`).WithArgs("nope").WillReturnError(sql.ErrNoRows)
	_, err = repo.GetByID(context.Background(), "nope")
	require.ErrorIs(t, err, common.ErrorNotFound)

	mock.ExpectQuery(`FROM runs WHERE id`).WithArgs("boom").WillReturnError(errors.New("conn reset"))
	_, err = repo.GetByID(context.Background(), "boom")
	require.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrorNotFound)
}

func TestPostgres_ListByAccount(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectQuery(`(?s)FROM runs WHERE account = \$1\s+ORDER BY created_at DESC, id DESC LIMIT \$2$`).
		WithArgs("0xA", 5).
		WillReturnRows(sqlmock.NewRows(runColumns).
			AddRow("r2", "0xA", "b.pdf", "b", "0xB", "minted", "", "", "0xO", "D", "", now, now).
			AddRow("r1", "0xA", "a.pdf", "a", "0xB", "failed", "", "", "", "", "x", now, now))

	list, err := repo.ListByAccount(context.Background(), "0xA", 5)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "r2", list[0].ID)
	assert.Equal(t, models.StageFailed, list[1].Stage)

	mock.ExpectQuery(`FROM runs WHERE account`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("bad"))
	_, err = repo.ListByAccount(context.Background(), "0xA", 5)
	require.Error(t, err)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_ListByObjectID(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectQuery(`FROM runs WHERE object_id = \$1 ORDER BY created_at, id$`).
		WithArgs("0xO").
		WillReturnRows(sqlmock.NewRows(runColumns).
			AddRow("r1", "0xA", "a.pdf", "a", "0xB", "minted", "", "", "0xO", "D", "", now, now))

	list, err := repo.ListByObjectID(context.Background(), "0xO")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.StageMinted, list[0].Stage)

	mock.ExpectQuery(`FROM runs WHERE object_id`).WillReturnError(errors.New("boom"))
	_, err = repo.ListByObjectID(context.Background(), "0xO")
	require.Error(t, err)

	require.NoError(t, mock.ExpectationsWereMet())
}
