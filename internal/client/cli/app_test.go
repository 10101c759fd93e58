package cli

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/akashi/internal/client/client"
	"github.com/dmitrijs2005/akashi/internal/client/config"
	"github.com/dmitrijs2005/akashi/internal/client/journal"
	"github.com/dmitrijs2005/akashi/internal/client/models"
	"github.com/dmitrijs2005/akashi/internal/client/services"
	"github.com/dmitrijs2005/akashi/internal/client/walrus"
	"github.com/dmitrijs2005/akashi/internal/client/wallet"
	"github.com/dmitrijs2005/akashi/internal/testutil"
	"github.com/dmitrijs2005/akashi/internal/timex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPackage = "0x57ef8f2cfa12b3f5fcff0c2ac99cd40de3d81038b0758f13f4dde3804e7d7333"

type appEnv struct {
	chain   *testutil.Chain
	walrus  *testutil.Walrus
	dir     string
	cfg     *config.Config
	certs   services.CertificateService
	wallets services.WalletService
}

func newAppEnv(t *testing.T) *appEnv {
	t.Helper()
	stubTerminal(t, false, nil, nil)

	e := &appEnv{
		chain:  testutil.NewChain(testPackage),
		walrus: testutil.NewWalrus(),
		dir:    t.TempDir(),
	}
	t.Cleanup(e.walrus.Close)

	j, err := journal.Open(context.Background(), "sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })

	e.cfg = &config.Config{}
	e.cfg.LoadDefaults()
	e.cfg.DataDir = e.dir

	store := walrus.New(e.walrus.URL, e.walrus.URL)
	e.certs = services.NewCertificateService(store, e.chain, j, services.WithPackageID(testPackage))
	ks := wallet.NewKeystore(filepath.Join(e.dir, "keystore.json"))
	e.wallets = services.NewWalletService(ks, e.chain, j.Metadata, nil)
	return e
}

func (e *appEnv) app(script ...string) (*App, *bytes.Buffer) {
	out := &bytes.Buffer{}
	a := New(Deps{Config: e.cfg, Certs: e.certs, Wallets: e.wallets}, rdr(strings.Join(script, "\n")+"\n"), out)
	return a, out
}

func seedHex(b byte) string {
	return hex.EncodeToString(bytes.Repeat([]byte{b}, ed25519.SeedSize))
}

func address(b byte) string {
	key := ed25519.NewKeyFromSeed(bytes.Repeat([]byte{b}, ed25519.SeedSize))
	return wallet.AddressFromPublicKey(key.Public().(ed25519.PublicKey))
}

func TestSetMode_PrintsOnlyOnChange(t *testing.T) {
	e := newAppEnv(t)
	a, out := e.app()

	a.setMode(ModeOnline)
	assert.Equal(t, ModeOnline, a.Mode())
	assert.Contains(t, out.String(), "online")

	out.Reset()
	a.setMode(ModeOnline)
	assert.Empty(t, out.String())

	a.setMode(ModeOffline)
	assert.Equal(t, ModeOffline, a.Mode())
	assert.Contains(t, out.String(), "offline")
}

func TestCheckOnline_FollowsNode(t *testing.T) {
	e := newAppEnv(t)
	a, _ := e.app()

	a.checkOnline(context.Background())
	assert.True(t, a.isOnline())

	e.chain.SetOffline(true)
	a.checkOnline(context.Background())
	assert.False(t, a.isOnline())
}

func TestStartOnlineStatusWatcher_StopsWithContext(t *testing.T) {
	e := newAppEnv(t)
	a, _ := e.app()
	e.chain.SetOffline(true)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		a.StartOnlineStatusWatcher(ctx, 5*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool { return a.Mode() == ModeOffline }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestImportKey_IssueAndApprove(t *testing.T) {
	e := newAppEnv(t)
	ctx := context.Background()

	file := filepath.Join(e.dir, "diploma.pdf")
	require.NoError(t, os.WriteFile(file, []byte("%PDF-1.7 diploma"), 0o600))

	issuer, out := e.app(
		seedHex(1), "pw", "pw",
		"",
		"Bachelor of Science",
		address(2),
	)
	require.NoError(t, issuer.ImportKey(ctx))
	assert.Contains(t, out.String(), "Connected as "+address(1))

	require.NoError(t, issuer.Issue(ctx, []string{file}))
	assert.Contains(t, out.String(), "Issued certificate 0x")
	assert.Equal(t, 1, e.chain.Certificates())

	out.Reset()
	require.NoError(t, issuer.Activity(ctx, nil))
	assert.Contains(t, out.String(), "diploma")
	assert.Contains(t, out.String(), "pending")

	out.Reset()
	require.NoError(t, issuer.Runs(ctx, nil))
	assert.Contains(t, out.String(), "minted")

	recipient, rout := e.app(seedHex(2), "pw2", "pw2")
	require.NoError(t, recipient.ImportKey(ctx))
	require.NoError(t, recipient.Activity(ctx, []string{"approver"}))
	assert.Contains(t, rout.String(), "approvable")

	views, err := e.certs.ListActivity(ctx, address(2), models.ModeApprover)
	require.NoError(t, err)
	require.Len(t, views, 1)

	rout.Reset()
	require.NoError(t, recipient.Approve(ctx, []string{views[0].ObjectID}))
	assert.Contains(t, rout.String(), "Approved "+views[0].ObjectID)
	assert.True(t, e.chain.Approved(views[0].ObjectID))

	rout.Reset()
	require.NoError(t, recipient.Approvals(ctx))
	assert.Contains(t, rout.String(), views[0].ObjectID)

	out.Reset()
	target := filepath.Join(e.dir, "copy.pdf")
	require.NoError(t, issuer.Fetch(ctx, []string{views[0].ContentAddress, target}))
	got, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7 diploma", string(got))
}

func TestCommands_RequireConnection(t *testing.T) {
	e := newAppEnv(t)
	ctx := context.Background()
	a, out := e.app()

	file := filepath.Join(e.dir, "c.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o600))

	assert.Error(t, a.Upload(ctx, []string{file}))
	assert.Error(t, a.Approve(ctx, []string{"0x1"}))
	assert.Contains(t, out.String(), "No wallet connected")
	assert.Zero(t, e.walrus.Puts())
}

func TestActivity_DisconnectedListsNothing(t *testing.T) {
	e := newAppEnv(t)
	ctx := context.Background()
	a, out := e.app()

	require.NoError(t, a.Activity(ctx, nil))
	require.NoError(t, a.Activity(ctx, []string{"approver"}))

	assert.Equal(t, "No certificates (sender).\nNo certificates (approver).\n", out.String())
	assert.Zero(t, e.chain.Calls("QueryTransactionBlocks"))
	assert.Zero(t, e.chain.Calls("GetOwnedObjects"))
}

func TestConnect_WrongPassphrase(t *testing.T) {
	e := newAppEnv(t)
	ctx := context.Background()

	a, _ := e.app("good", "good")
	require.NoError(t, a.NewKey(ctx))
	require.NoError(t, a.Disconnect(ctx))
	assert.False(t, a.isConnected())

	b, out := e.app("bad")
	require.Error(t, b.Connect(ctx))
	assert.Contains(t, out.String(), "Wrong passphrase")
	assert.False(t, b.isConnected())

	c, _ := e.app("good")
	require.NoError(t, c.Connect(ctx))
	assert.True(t, c.isConnected())
}

func TestNewKey_MismatchedPassphrase(t *testing.T) {
	e := newAppEnv(t)
	a, out := e.app("one", "two")

	require.Error(t, a.NewKey(context.Background()))
	assert.Contains(t, out.String(), "do not match")
	assert.False(t, e.wallets.KeystoreExists())
}

func TestActivity_UnavailableShowsEmptyList(t *testing.T) {
	e := newAppEnv(t)
	ctx := context.Background()
	a, out := e.app(seedHex(3), "pw", "pw")
	require.NoError(t, a.ImportKey(ctx))

	e.chain.Fail("QueryTransactionBlocks", client.ErrUnavailable)
	out.Reset()
	assert.Error(t, a.Activity(ctx, nil))
	assert.Contains(t, out.String(), "unavailable")
	assert.Contains(t, out.String(), "No certificates")
}

func TestUsageMessages(t *testing.T) {
	e := newAppEnv(t)
	ctx := context.Background()
	a, out := e.app()

	require.NoError(t, a.Upload(ctx, nil))
	require.NoError(t, a.Issue(ctx, nil))
	require.NoError(t, a.Mint(ctx, []string{"only-one"}))
	require.NoError(t, a.Activity(ctx, []string{"bogus"}))
	require.NoError(t, a.Approve(ctx, nil))
	require.NoError(t, a.Fetch(ctx, []string{"x"}))
	require.NoError(t, a.Runs(ctx, []string{"-1"}))

	assert.Equal(t, 7, strings.Count(out.String(), "Usage:"))
}

func TestNewApp_WiresEverything(t *testing.T) {
	w := testutil.NewWalrus()
	defer w.Close()

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.DataDir = t.TempDir()
	cfg.PublisherURL = w.URL
	cfg.AggregatorURL = w.URL
	cfg.AutoConfirm = true
	cfg.MetricsAddr = "127.0.0.1:0"
	cfg.RequestTimeout = timex.Duration{Duration: time.Second}

	a, err := newApp(context.Background(), cfg, nil, rdr(""), &bytes.Buffer{})
	require.NoError(t, err)
	require.NotNil(t, a.metricsServer)
	assert.FileExists(t, filepath.Join(cfg.DataDir, "journal.db"))
	require.NoError(t, a.Close())
}

func TestNewApp_InvalidConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.StorageBackend = "ftp"

	_, err := newApp(context.Background(), cfg, nil, rdr(""), &bytes.Buffer{})
	require.Error(t, err)
}
