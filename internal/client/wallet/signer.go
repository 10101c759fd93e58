package wallet

import (
	"context"
	"crypto/ed25519"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/akashi/internal/client/client"
	"github.com/dmitrijs2005/akashi/internal/common"
)

// MoveCall is one entry function invocation to sign and submit.
type MoveCall struct {
	Package       string
	Module        string
	Function      string
	TypeArguments []string
	Arguments     []any
}

func (c MoveCall) Target() string {
	return c.Package + "::" + c.Module + "::" + c.Function
}

// SubmitResult is a finalized transaction.
type SubmitResult struct {
	Digest string
	Block  *client.TransactionBlock
}

// Signer can sign and submit transactions for one account.
type Signer interface {
	Address() string
	SignAndSubmit(ctx context.Context, call MoveCall) (*SubmitResult, error)
}

// DefaultGasBudget is used when no budget is configured.
const DefaultGasBudget uint64 = 10_000_000

// KeySigner signs with a local ed25519 key and executes through a full node.
type KeySigner struct {
	key       ed25519.PrivateKey
	address   string
	chain     client.Client
	gate      PermissionGate
	gasBudget uint64
}

type SignerOption func(*KeySigner)

func WithGate(g PermissionGate) SignerOption {
	return func(s *KeySigner) { s.gate = g }
}

func WithGasBudget(b uint64) SignerOption {
	return func(s *KeySigner) {
		if b > 0 {
			s.gasBudget = b
		}
	}
}

// NewKeySigner returns a signer for key. Without WithGate every transaction
// is confirmed automatically.
func NewKeySigner(key ed25519.PrivateKey, chain client.Client, opts ...SignerOption) *KeySigner {
	s := &KeySigner{
		key:       key,
		address:   AddressFromPublicKey(key.Public().(ed25519.PublicKey)),
		chain:     chain,
		gate:      AutoConfirm{},
		gasBudget: DefaultGasBudget,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *KeySigner) Address() string {
	return s.address
}

// SignAndSubmit builds the transaction on the node, asks the gate, signs and
// executes it. A denial is common.ErrSignatureRejected; build or execution
// failures and failed effects are common.ErrTransactionFailed.
func (s *KeySigner) SignAndSubmit(ctx context.Context, call MoveCall) (*SubmitResult, error) {
	ok, err := s.gate.Confirm(ctx, TxSummary{Signer: s.address, Call: call, GasBudget: s.gasBudget})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrSignatureRejected, err)
	}
	if !ok {
		return nil, common.ErrSignatureRejected
	}

	built, err := s.chain.MoveCall(ctx, client.MoveCallRequest{
		Signer:        s.address,
		Package:       call.Package,
		Module:        call.Module,
		Function:      call.Function,
		TypeArguments: call.TypeArguments,
		Arguments:     call.Arguments,
		GasBudget:     s.gasBudget,
	})
	if err != nil {
		return nil, txError("build transaction", err)
	}

	sig, err := SignTransaction(s.key, built.TxBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrSignatureRejected, err)
	}

	block, err := s.chain.ExecuteTransactionBlock(ctx, built.TxBytes, []string{sig})
	if err != nil {
		return nil, txError("execute transaction", err)
	}
	if !block.Succeeded() {
		reason := "no effects"
		if block.Effects != nil {
			reason = block.Effects.Status.Error
		}
		return nil, fmt.Errorf("%w: %s: %s", common.ErrTransactionFailed, block.Digest, reason)
	}

	return &SubmitResult{Digest: block.Digest, Block: block}, nil
}

func txError(stage string, err error) error {
	wrapped := fmt.Errorf("%w: %s: %w", common.ErrTransactionFailed, stage, err)
	if errors.Is(err, common.ErrTimeout) {
		return errors.Join(common.ErrTimeout, wrapped)
	}
	return wrapped
}
