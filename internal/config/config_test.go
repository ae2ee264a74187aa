package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nftwatch/sales-indexer/internal/config"
)

func TestLoadIndexerConfigDefaults(t *testing.T) {
	cfg, err := config.LoadIndexerConfig("", t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "db.db", cfg.Database.Path)
	assert.Equal(t, uint64(100), cfg.Scanner.ChunkSize)
	assert.Equal(t, "20s", cfg.Scanner.CaughtUpWait.String())
	assert.Equal(t, "5s", cfg.Scanner.RetryDelay.String())
	assert.Equal(t, 10, cfg.Enrichment.SubBatchSize)
	assert.Equal(t, "500ms", cfg.Enrichment.Pacing.String())
}

func TestLoadIndexerConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := `
debug: true
database:
  path: /tmp/ledger.db
ethereum:
  rpc_url: http://localhost:8545
  contract_address: "0xf07468ead8cf26c752c676e43c814fee9c8cf402"
  start_block: 13000000
scanner:
  chunk_size: 50
`
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0o600))

	cfg, err := config.LoadIndexerConfig(configPath, dir)
	require.NoError(t, err)

	assert.True(t, cfg.Debug)
	assert.Equal(t, "/tmp/ledger.db", cfg.Database.Path)
	assert.Equal(t, uint64(13000000), cfg.Ethereum.StartBlock)
	assert.Equal(t, uint64(50), cfg.Scanner.ChunkSize)
	// Untouched keys keep their defaults
	assert.Equal(t, "5s", cfg.Scanner.RetryDelay.String())

	assert.NoError(t, cfg.Validate())
}

func TestIndexerConfigValidate(t *testing.T) {
	cfg, err := config.LoadIndexerConfig("", t.TempDir())
	require.NoError(t, err)

	assert.Error(t, cfg.Validate())

	cfg.Ethereum.RPCURL = "http://localhost:8545"
	assert.Error(t, cfg.Validate())

	cfg.Ethereum.ContractAddress = "0xabc"
	assert.NoError(t, cfg.Validate())
}

func TestLoadAPIConfigDefaults(t *testing.T) {
	cfg, err := config.LoadAPIConfig("", t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 250, cfg.MaxChartBars)
	assert.Equal(t, "usd", cfg.Fiat.Currency)
	assert.True(t, cfg.Fiat.Enabled)
}
