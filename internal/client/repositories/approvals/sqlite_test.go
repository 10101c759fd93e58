package approvals

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/dmitrijs2005/akashi/internal/client/migrations"
	"github.com/dmitrijs2005/akashi/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, migrations.Up(context.Background(), db, "sqlite"))
	return db
}

func TestSQLite_CreateAndList(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()
	base := time.Date(2026, 10, 2, 9, 0, 0, 0, time.UTC)

	require.NoError(t, r.Create(ctx, &models.Approval{ID: "a1", ObjectID: "0xO1", Approver: "0xB", TxDigest: "D1", ApprovedAt: base}))
	require.NoError(t, r.Create(ctx, &models.Approval{ID: "a2", ObjectID: "0xO2", Approver: "0xB", TxDigest: "D2", ApprovedAt: base.Add(time.Hour)}))
	require.NoError(t, r.Create(ctx, &models.Approval{ID: "a3", ObjectID: "0xO3", Approver: "0xC", TxDigest: "D3", ApprovedAt: base}))

	list, err := r.ListByApprover(ctx, "0xB")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a2", list[0].ID)
	assert.Equal(t, "0xO1", list[1].ObjectID)
	assert.True(t, base.Equal(list[1].ApprovedAt))

	empty, err := r.ListByApprover(ctx, "0xZ")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestSQLite_DigestIsUnique(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Create(ctx, &models.Approval{ID: "a1", ObjectID: "0xO1", Approver: "0xB", TxDigest: "D1", ApprovedAt: time.Now().UTC()}))
	assert.Error(t, r.Create(ctx, &models.Approval{ID: "a2", ObjectID: "0xO1", Approver: "0xB", TxDigest: "D1", ApprovedAt: time.Now().UTC()}))
}
