package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// BaseConfig holds base configuration
type BaseConfig struct {
	Debug     bool   `mapstructure:"debug"`
	SentryDSN string `mapstructure:"sentry_dsn"`
}

// DatabaseConfig holds the embedded database configuration
type DatabaseConfig struct {
	// Path is the SQLite database file; it is the sole durable state
	Path string `mapstructure:"path"`
}

// EthereumConfig holds chain access configuration
type EthereumConfig struct {
	RPCURL string `mapstructure:"rpc_url"`
	// ContractAddress is the single ERC-721 contract being watched
	ContractAddress string `mapstructure:"contract_address"`
	// StartBlock seeds the checkpoint on a fresh database
	StartBlock           uint64        `mapstructure:"start_block"`
	BlockHeadTTL         time.Duration `mapstructure:"block_head_ttl"`
	BlockHeadStaleWindow time.Duration `mapstructure:"block_head_stale_window"`
}

// ScannerConfig holds the checkpointed scan loop configuration
type ScannerConfig struct {
	// ChunkSize is the block window scanned per iteration
	ChunkSize uint64 `mapstructure:"chunk_size"`
	// CaughtUpWait is the pause when the checkpoint reaches the chain head
	CaughtUpWait time.Duration `mapstructure:"caught_up_wait"`
	// RetryDelay is the fixed pause before re-attempting a failed window
	RetryDelay time.Duration `mapstructure:"retry_delay"`
}

// EnrichmentConfig holds the resolver pacing configuration
type EnrichmentConfig struct {
	// SubBatchSize bounds concurrent resolver calls
	SubBatchSize int `mapstructure:"sub_batch_size"`
	// Pacing is the fixed delay between sub-batches
	Pacing time.Duration `mapstructure:"pacing"`
}

// FiatConfig holds the ETH-to-fiat rate poller configuration
type FiatConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Currency     string        `mapstructure:"currency"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// IndexerConfig holds configuration for the ingestion process
type IndexerConfig struct {
	BaseConfig `mapstructure:",squash"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Ethereum   EthereumConfig   `mapstructure:"ethereum"`
	Scanner    ScannerConfig    `mapstructure:"scanner"`
	Enrichment EnrichmentConfig `mapstructure:"enrichment"`
}

// APIConfig holds configuration for the query surface server
type APIConfig struct {
	BaseConfig `mapstructure:",squash"`
	Database   DatabaseConfig `mapstructure:"database"`
	Server     ServerConfig   `mapstructure:"server"`
	Fiat       FiatConfig     `mapstructure:"fiat"`
	// MaxChartBars bounds the downsampled chart series length
	MaxChartBars int `mapstructure:"max_chart_bars"`
}

// Validate checks the fields without usable defaults.
func (c *IndexerConfig) Validate() error {
	if c.Ethereum.RPCURL == "" {
		return errors.New("ethereum.rpc_url is required")
	}
	if c.Ethereum.ContractAddress == "" {
		return errors.New("ethereum.contract_address is required")
	}
	return nil
}

// LoadIndexerConfig loads configuration for the indexer process
func LoadIndexerConfig(configFile string, envPath string) (*IndexerConfig, error) {
	v := configureViper("indexer", configFile, envPath)

	// Set defaults
	v.SetDefault("database.path", "db.db")
	v.SetDefault("ethereum.start_block", 0)
	v.SetDefault("ethereum.block_head_ttl", "12s")
	v.SetDefault("ethereum.block_head_stale_window", "60s")
	v.SetDefault("scanner.chunk_size", 100)
	v.SetDefault("scanner.caught_up_wait", "20s")
	v.SetDefault("scanner.retry_delay", "5s")
	v.SetDefault("enrichment.sub_batch_size", 10)
	v.SetDefault("enrichment.pacing", "500ms")

	if err := readInConfig(v); err != nil {
		return nil, err
	}

	var config IndexerConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

// LoadAPIConfig loads configuration for the query surface server
func LoadAPIConfig(configFile string, envPath string) (*APIConfig, error) {
	v := configureViper("api", configFile, envPath)

	// Set defaults
	v.SetDefault("database.path", "db.db")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "10s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("fiat.enabled", true)
	v.SetDefault("fiat.currency", "usd")
	v.SetDefault("fiat.poll_interval", "5m")
	v.SetDefault("max_chart_bars", 250)

	if err := readInConfig(v); err != nil {
		return nil, err
	}

	var config APIConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func readInConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			// Config file not found, use environment variables
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}
	return nil
}

func configureViper(service string, configFile string, envPath string) *viper.Viper {
	v := viper.New()

	// Load environment variables
	loadEnv(envPath, service)

	// Set config file
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(fmt.Sprintf("cmd/%s/", service))
		v.AddConfigPath("config/")
	}

	v.SetEnvPrefix("SALES_INDEXER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

func loadEnv(envPath string, service string) {
	// Shared base first, then local, then optional per-service local.
	envFiles := []string{".env", ".env.local"}
	if service != "" {
		envFiles = append(envFiles, ".env."+service+".local")
	}

	if envPath == "" {
		envPath = "config/"
	}

	for _, envFile := range envFiles {
		candidate := filepath.Join(envPath, envFile)
		_ = godotenv.Overload(candidate) // Overload lets later files override earlier ones
	}
}
