package services

import (
	"context"
	"encoding/hex"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/akashi/internal/client/journal"
	"github.com/dmitrijs2005/akashi/internal/client/models"
	"github.com/dmitrijs2005/akashi/internal/client/wallet"
	"github.com/dmitrijs2005/akashi/internal/common"
	"github.com/dmitrijs2005/akashi/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWalletService(t *testing.T) (WalletService, *journal.Journal, *testutil.Chain) {
	t.Helper()
	j, err := journal.Open(context.Background(), "sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })

	chain := testutil.NewChain(testPackage)
	ks := wallet.NewKeystore(filepath.Join(t.TempDir(), "keystore.json"))
	return NewWalletService(ks, chain, j.Metadata, nil), j, chain
}

func TestWalletService_CreateUnlockDisconnect(t *testing.T) {
	ctx := context.Background()
	ws, j, _ := newWalletService(t)

	assert.False(t, ws.KeystoreExists())
	_, err := ws.Unlock(ctx, []byte("pw"))
	require.ErrorIs(t, err, common.ErrKeystoreNotPresent)

	s, err := ws.Create(ctx, []byte("pw"))
	require.NoError(t, err)
	assert.True(t, s.Connected())
	assert.True(t, ws.KeystoreExists())

	last, err := ws.LastAccount(ctx)
	require.NoError(t, err)
	assert.Equal(t, s.Account(), last)

	path, err := j.Metadata.Get(ctx, common.MetadataKeyKeystore)
	require.NoError(t, err)
	assert.NotEmpty(t, path)

	again, err := ws.Unlock(ctx, []byte("pw"))
	require.NoError(t, err)
	assert.Equal(t, s.Account(), again.Account())

	_, err = ws.Unlock(ctx, []byte("bad"))
	require.ErrorIs(t, err, common.ErrInvalidPassphrase)

	require.NoError(t, ws.Disconnect(ctx))
	last, err = ws.LastAccount(ctx)
	require.NoError(t, err)
	assert.Empty(t, last)
}

func TestWalletService_ImportSignsOnChain(t *testing.T) {
	ctx := context.Background()
	ws, j, chain := newWalletService(t)

	seed := make([]byte, 32)
	seed[31] = 1
	s, err := ws.Import(ctx, hex.EncodeToString(seed), []byte("pw"))
	require.NoError(t, err)

	svc := NewCertificateService(nil, chain, j, WithPackageID(testPackage))
	cert, err := svc.Mint(ctx, s, models.MintRequest{Title: "T", Description: "D", ContentAddress: "a", Recipient: s.Account()})
	require.NoError(t, err)
	assert.Equal(t, s.Account(), cert.Sender)
	assert.Equal(t, 1, chain.Certificates())
}
