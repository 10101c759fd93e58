package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnv(t *testing.T) {
	t.Setenv("AKASHI_STORAGE_EPOCHS", "5")
	t.Setenv("AKASHI_REQUEST_TIMEOUT", "1500ms")
	t.Setenv("AKASHI_JOURNAL_DRIVER", "postgres")
	t.Setenv("AKASHI_GAS_BUDGET", "42")

	cfg := defaults()
	parseEnv(cfg)

	assert.Equal(t, 5, cfg.StorageEpochs)
	assert.Equal(t, 1500*time.Millisecond, cfg.RequestTimeout.Duration)
	assert.Equal(t, DriverPostgres, cfg.JournalDriver)
	assert.Equal(t, uint64(42), cfg.GasBudget)
	assert.Equal(t, defaults().RPCURL, cfg.RPCURL)
}

func TestParseEnv_BadValuePanics(t *testing.T) {
	t.Setenv("AKASHI_PAGE_LIMIT", "many")
	require.Panics(t, func() { parseEnv(defaults()) })
}
