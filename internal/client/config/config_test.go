package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/akashi/internal/timex"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaults() *Config {
	var c Config
	c.LoadDefaults()
	return &c
}

func TestLoadDefaults(t *testing.T) {
	c := defaults()

	assert.Equal(t, BackendWalrus, c.StorageBackend)
	assert.Equal(t, 100, c.StorageEpochs)
	assert.Equal(t, DefaultPackageID, c.PackageID)
	assert.Equal(t, uint64(10_000_000), c.GasBudget)
	assert.Equal(t, 30*time.Second, c.RequestTimeout.Duration)
	assert.Equal(t, 5*time.Second, c.OnlineCheckInterval.Duration)
	assert.Equal(t, DriverSQLite, c.JournalDriver)
	assert.NoError(t, c.Validate())
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin"}

	cfg := LoadConfig()

	require.NotNil(t, cfg, "LoadConfig must not return nil")
	assert.Empty(t, cmp.Diff(defaults(), cfg))
}

func TestLoadConfig_Precedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	path := filepath.Join(t.TempDir(), "akashi.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"rpc_url: https://file-rpc\n"+
			"publisher_url: https://file-pub\n"+
			"request_timeout: 7s\n"+
			"page_limit: 10\n"), 0o600))

	t.Setenv("AKASHI_RPC_URL", "https://env-rpc")
	t.Setenv("AKASHI_PAGE_LIMIT", "20")
	t.Setenv("AKASHI_AUTO_CONFIRM", "true")

	os.Args = []string{"testbin", "-c", path, "-r", "https://flag-rpc"}

	cfg := LoadConfig()

	assert.Equal(t, "https://flag-rpc", cfg.RPCURL, "flag beats env and file")
	assert.Equal(t, 20, cfg.PageLimit, "env beats file")
	assert.Equal(t, "https://file-pub", cfg.PublisherURL, "file beats defaults")
	assert.Equal(t, 7*time.Second, cfg.RequestTimeout.Duration)
	assert.True(t, cfg.AutoConfirm)
	assert.Equal(t, defaults().AggregatorURL, cfg.AggregatorURL, "untouched keys keep defaults")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "defaults ok", mutate: func(c *Config) {}},
		{name: "unknown backend", mutate: func(c *Config) { c.StorageBackend = "ipfs" }, wantErr: "unknown storage_backend"},
		{name: "s3 needs bucket", mutate: func(c *Config) { c.StorageBackend = BackendS3 }, wantErr: "s3_bucket"},
		{name: "s3 with bucket", mutate: func(c *Config) { c.StorageBackend = BackendS3; c.S3Bucket = "certs" }},
		{name: "postgres needs dsn", mutate: func(c *Config) { c.JournalDriver = DriverPostgres }, wantErr: "journal_dsn"},
		{name: "bad package", mutate: func(c *Config) { c.PackageID = "certs" }, wantErr: "package_id"},
		{name: "zero timeout", mutate: func(c *Config) { c.RequestTimeout = timex.Duration{} }, wantErr: "request_timeout"},
		{name: "zero epochs", mutate: func(c *Config) { c.StorageEpochs = 0 }, wantErr: "storage_epochs"},
		{name: "negative retries", mutate: func(c *Config) { c.UploadRetries = -1 }, wantErr: "upload_retries"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := defaults()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestJournalPathAndKeystoreFile(t *testing.T) {
	c := defaults()
	assert.Equal(t, filepath.Join("/data", "journal.db"), c.JournalPath("/data"))
	assert.Equal(t, filepath.Join("/data", "keystore.json"), c.KeystoreFile("/data"))

	c.JournalDSN = "file::memory:"
	c.KeystorePath = "/keys/me.json"
	assert.Equal(t, "file::memory:", c.JournalPath("/data"))
	assert.Equal(t, "/keys/me.json", c.KeystoreFile("/data"))

	c.JournalDriver = DriverPostgres
	c.JournalDSN = "postgres://u:p@localhost/akashi"
	assert.Equal(t, "postgres://u:p@localhost/akashi", c.JournalPath("/data"))
}
