package services

import (
	"context"
	"crypto/ed25519"
	"testing"

	"github.com/dmitrijs2005/akashi/internal/client/journal"
	"github.com/dmitrijs2005/akashi/internal/client/walrus"
	"github.com/dmitrijs2005/akashi/internal/client/wallet"
	"github.com/dmitrijs2005/akashi/internal/metrics"
	"github.com/dmitrijs2005/akashi/internal/testutil"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

const testPackage = "0x57ef8f2cfa12b3f5fcff0c2ac99cd40de3d81038b0758f13f4dde3804e7d7333"

type env struct {
	chain    *testutil.Chain
	walrus   *testutil.Walrus
	journal  *journal.Journal
	registry *prometheus.Registry
	svc      CertificateService
}

func newEnv(t *testing.T, opts ...Option) *env {
	t.Helper()

	e := &env{
		chain:    testutil.NewChain(testPackage),
		walrus:   testutil.NewWalrus(),
		registry: prometheus.NewRegistry(),
	}
	t.Cleanup(e.walrus.Close)

	j, err := journal.Open(context.Background(), "sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })
	e.journal = j

	store := walrus.New(e.walrus.URL, e.walrus.URL, walrus.WithEpochs(5))
	base := []Option{WithPackageID(testPackage), WithMetrics(metrics.New(e.registry))}
	e.svc = NewCertificateService(store, e.chain, j, append(base, opts...)...)
	return e
}

func key(b byte) ed25519.PrivateKey {
	seed := make([]byte, ed25519.SeedSize)
	for i := range seed {
		seed[i] = b
	}
	return ed25519.NewKeyFromSeed(seed)
}

func (e *env) session(b byte, opts ...wallet.SignerOption) wallet.Session {
	return wallet.NewSession(wallet.NewKeySigner(key(b), e.chain, opts...))
}
