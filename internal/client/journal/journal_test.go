package journal

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/akashi/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_SQLiteFile(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "journal.db")

	j, err := Open(ctx, "sqlite", dsn)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", j.Driver())

	require.NoError(t, j.Metadata.Set(ctx, "account", []byte("0xaaa")))
	require.NoError(t, j.Close())

	// reopening is idempotent and keeps data
	j, err = Open(ctx, "sqlite", dsn)
	require.NoError(t, err)
	defer j.Close()

	v, err := j.Metadata.Get(ctx, "account")
	require.NoError(t, err)
	assert.Equal(t, "0xaaa", string(v))
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), "mysql", "whatever")
	require.Error(t, err)
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	j, err := Open(ctx, "sqlite", ":memory:")
	require.NoError(t, err)
	defer j.Close()

	now := time.Now().UTC().Truncate(time.Second)
	boom := errors.New("boom")

	err = j.WithTx(ctx, func(ctx context.Context, tx *Tx) error {
		require.NoError(t, tx.Runs.Create(ctx, &models.Run{
			ID: "r1", Account: "0xaaa", Stage: models.StageDraft, CreatedAt: now, UpdatedAt: now,
		}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	list, err := j.Runs.ListByAccount(ctx, "0xaaa", 10)
	require.NoError(t, err)
	assert.Empty(t, list)

	err = j.WithTx(ctx, func(ctx context.Context, tx *Tx) error {
		if err := tx.Runs.Create(ctx, &models.Run{
			ID: "r2", Account: "0xaaa", Stage: models.StageMinted, CreatedAt: now, UpdatedAt: now,
		}); err != nil {
			return err
		}
		return tx.Approvals.Create(ctx, &models.Approval{
			ID: "a1", ObjectID: "0x1", Approver: "0xbbb", TxDigest: "D1", ApprovedAt: now,
		})
	})
	require.NoError(t, err)

	list, err = j.Runs.ListByAccount(ctx, "0xaaa", 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "r2", list[0].ID)

	approved, err := j.Approvals.ListByApprover(ctx, "0xbbb")
	require.NoError(t, err)
	require.Len(t, approved, 1)
}
