package wallet

import (
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/dmitrijs2005/akashi/internal/client/client"
	"github.com/dmitrijs2005/akashi/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubChain records the calls a signer makes.
type stubChain struct {
	built     []client.MoveCallRequest
	executed  []string
	buildErr  error
	execErr   error
	status    string
	statusErr string
}

func (s *stubChain) Ping(context.Context) error { return nil }

func (s *stubChain) QueryTransactionBlocks(context.Context, client.MoveFunction, string, int) (*client.Page[client.TransactionBlock], error) {
	return nil, errors.New("not implemented")
}

func (s *stubChain) GetObject(context.Context, string) (*client.ObjectData, error) {
	return nil, errors.New("not implemented")
}

func (s *stubChain) GetOwnedObjects(context.Context, string, string, string, int) (*client.Page[client.ObjectResponse], error) {
	return nil, errors.New("not implemented")
}

func (s *stubChain) MoveCall(_ context.Context, req client.MoveCallRequest) (*client.TransactionBytes, error) {
	if s.buildErr != nil {
		return nil, s.buildErr
	}
	s.built = append(s.built, req)
	return &client.TransactionBytes{TxBytes: base64.StdEncoding.EncodeToString([]byte(req.Function))}, nil
}

func (s *stubChain) ExecuteTransactionBlock(_ context.Context, txBytes string, sigs []string) (*client.TransactionBlock, error) {
	if s.execErr != nil {
		return nil, s.execErr
	}
	if _, err := VerifyTransaction(txBytes, sigs[0]); err != nil {
		return nil, err
	}
	s.executed = append(s.executed, txBytes)
	status := s.status
	if status == "" {
		status = "success"
	}
	return &client.TransactionBlock{
		Digest:  "DIGEST",
		Effects: &client.TransactionEffects{Status: client.ExecutionStatus{Status: status, Error: s.statusErr}},
	}, nil
}

var mintCall = MoveCall{
	Package:   "0xpkg",
	Module:    "certificate_nft",
	Function:  "mint_certificate",
	Arguments: []any{"T", "D", "addr", "0xbbb"},
}

func TestKeySigner_SignAndSubmit(t *testing.T) {
	chain := &stubChain{}
	key := testKey(3)
	s := NewKeySigner(key, chain, WithGasBudget(5000))

	assert.Equal(t, AddressFromPublicKey(key.Public().(ed25519.PublicKey)), s.Address())

	res, err := s.SignAndSubmit(context.Background(), mintCall)
	require.NoError(t, err)
	assert.Equal(t, "DIGEST", res.Digest)

	require.Len(t, chain.built, 1)
	assert.Equal(t, s.Address(), chain.built[0].Signer)
	assert.Equal(t, uint64(5000), chain.built[0].GasBudget)
	assert.Equal(t, mintCall.Arguments, chain.built[0].Arguments)
	assert.Len(t, chain.executed, 1)
}

func TestKeySigner_GateDenied(t *testing.T) {
	chain := &stubChain{}
	deny := GateFunc(func(context.Context, TxSummary) (bool, error) { return false, nil })
	s := NewKeySigner(testKey(3), chain, WithGate(deny))

	_, err := s.SignAndSubmit(context.Background(), mintCall)
	require.ErrorIs(t, err, common.ErrSignatureRejected)
	assert.Empty(t, chain.built, "nothing may be built after a denial")

	failing := GateFunc(func(context.Context, TxSummary) (bool, error) { return false, errors.New("tty gone") })
	s = NewKeySigner(testKey(3), chain, WithGate(failing))
	_, err = s.SignAndSubmit(context.Background(), mintCall)
	require.ErrorIs(t, err, common.ErrSignatureRejected)
}

func TestKeySigner_ChainFailures(t *testing.T) {
	ctx := context.Background()

	s := NewKeySigner(testKey(3), &stubChain{buildErr: client.ErrRPC})
	_, err := s.SignAndSubmit(ctx, mintCall)
	require.ErrorIs(t, err, common.ErrTransactionFailed)
	require.ErrorIs(t, err, client.ErrRPC)

	s = NewKeySigner(testKey(3), &stubChain{execErr: errors.Join(common.ErrTimeout, client.ErrUnavailable)})
	_, err = s.SignAndSubmit(ctx, mintCall)
	require.ErrorIs(t, err, common.ErrTransactionFailed)
	require.ErrorIs(t, err, common.ErrTimeout)

	s = NewKeySigner(testKey(3), &stubChain{status: "failure", statusErr: "MoveAbort"})
	_, err = s.SignAndSubmit(ctx, mintCall)
	require.ErrorIs(t, err, common.ErrTransactionFailed)
	assert.Contains(t, err.Error(), "MoveAbort")
}

func TestSession(t *testing.T) {
	var zero Session
	assert.False(t, zero.Connected())
	assert.Equal(t, "", zero.Account())

	_, err := zero.SignAndSubmit(context.Background(), mintCall)
	require.ErrorIs(t, err, common.ErrNotConnected)

	s := NewSession(NewKeySigner(testKey(4), &stubChain{}))
	assert.True(t, s.Connected())

	res, err := s.SignAndSubmit(context.Background(), mintCall)
	require.NoError(t, err)
	assert.Equal(t, "DIGEST", res.Digest)
}
