package services

import (
	"context"
	"crypto/ed25519"

	"github.com/dmitrijs2005/akashi/internal/client/client"
	"github.com/dmitrijs2005/akashi/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/akashi/internal/client/wallet"
	"github.com/dmitrijs2005/akashi/internal/common"
	"github.com/dmitrijs2005/akashi/internal/logging"
)

// WalletService connects the CLI to a keystore-backed signer.
//
// Contract:
//   - Create: generate a new key, store it encrypted and connect.
//   - Import: store a hex seed encrypted (replacing the keystore) and connect.
//   - Unlock: decrypt the existing keystore and connect.
//   - Disconnect: forget the remembered account.
//   - LastAccount: the account connected most recently, if any.
type WalletService interface {
	Create(ctx context.Context, passphrase []byte) (wallet.Session, error)
	Import(ctx context.Context, seedHex string, passphrase []byte) (wallet.Session, error)
	Unlock(ctx context.Context, passphrase []byte) (wallet.Session, error)
	Disconnect(ctx context.Context) error
	LastAccount(ctx context.Context) (string, error)
	KeystoreExists() bool
}

type walletService struct {
	keystore *wallet.Keystore
	chain    client.Client
	meta     metadata.Repository
	opts     []wallet.SignerOption
	logger   logging.Logger
}

// NewWalletService builds signers for keystore against chain. opts are
// passed to every wallet.KeySigner it creates.
func NewWalletService(ks *wallet.Keystore, chain client.Client, meta metadata.Repository, logger logging.Logger, opts ...wallet.SignerOption) WalletService {
	if logger == nil {
		logger = logging.Discard()
	}
	return &walletService{keystore: ks, chain: chain, meta: meta, opts: opts, logger: logger}
}

func (w *walletService) KeystoreExists() bool {
	return w.keystore.Exists()
}

func (w *walletService) Create(ctx context.Context, passphrase []byte) (wallet.Session, error) {
	key, err := w.keystore.Create(passphrase)
	if err != nil {
		return wallet.Session{}, err
	}
	return w.connect(ctx, key)
}

func (w *walletService) Import(ctx context.Context, seedHex string, passphrase []byte) (wallet.Session, error) {
	key, err := w.keystore.Import(seedHex, passphrase)
	if err != nil {
		return wallet.Session{}, err
	}
	return w.connect(ctx, key)
}

func (w *walletService) Unlock(ctx context.Context, passphrase []byte) (wallet.Session, error) {
	key, err := w.keystore.Unlock(passphrase)
	if err != nil {
		return wallet.Session{}, err
	}
	return w.connect(ctx, key)
}

func (w *walletService) connect(ctx context.Context, key ed25519.PrivateKey) (wallet.Session, error) {
	signer := wallet.NewKeySigner(key, w.chain, w.opts...)

	if err := w.meta.Set(ctx, common.MetadataKeyAccount, []byte(signer.Address())); err != nil {
		return wallet.Session{}, err
	}
	if err := w.meta.Set(ctx, common.MetadataKeyKeystore, []byte(w.keystore.Path)); err != nil {
		return wallet.Session{}, err
	}

	w.logger.Info(ctx, "wallet connected", "account", signer.Address())
	return wallet.NewSession(signer), nil
}

func (w *walletService) Disconnect(ctx context.Context) error {
	return w.meta.Delete(ctx, common.MetadataKeyAccount)
}

// LastAccount returns "" when no account was remembered.
func (w *walletService) LastAccount(ctx context.Context) (string, error) {
	v, err := w.meta.Get(ctx, common.MetadataKeyAccount)
	if err != nil {
		return "", err
	}
	return string(v), nil
}
