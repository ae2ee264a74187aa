package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/nftwatch/sales-indexer/internal/adapter"
	"github.com/nftwatch/sales-indexer/internal/block"
	"github.com/nftwatch/sales-indexer/internal/config"
	"github.com/nftwatch/sales-indexer/internal/enrich"
	"github.com/nftwatch/sales-indexer/internal/logger"
	"github.com/nftwatch/sales-indexer/internal/providers/ethereum"
	"github.com/nftwatch/sales-indexer/internal/scanner"
	"github.com/nftwatch/sales-indexer/internal/store"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadIndexerConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}
	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("Invalid config: %v", err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:     cfg.Debug,
		SentryDSN: cfg.SentryDSN,
		Tags: map[string]string{
			"service": "indexer",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.Info("Starting sales indexer",
		zap.String("contract", cfg.Ethereum.ContractAddress))

	// Open the ledger database; the checkpoint is seeded from start_block
	// on a fresh file
	dataStore, err := store.Open(cfg.Database.Path, cfg.Ethereum.StartBlock)
	if err != nil {
		logger.Fatal("Failed to open database", zap.Error(err), zap.String("path", cfg.Database.Path))
	}
	defer func() {
		if err := dataStore.Close(); err != nil {
			logger.Warn("failed to close database", zap.Error(err))
		}
	}()
	logger.Info("Opened database", zap.String("path", cfg.Database.Path))

	// Connect to the Ethereum node
	dialer := adapter.NewEthClientDialer()
	client, err := dialer.Dial(ctx, cfg.Ethereum.RPCURL)
	if err != nil {
		logger.Fatal("Failed to connect to Ethereum node", zap.Error(err))
	}
	defer client.Close()

	clock := adapter.NewClock()

	// Chain access: scoped log queries plus a cached head/timestamp provider
	logSource := ethereum.NewLogSource(client, cfg.Ethereum.ContractAddress)
	blocks := block.NewBlockProvider(
		ethereum.NewBlockFetcher(client),
		block.Config{
			TTL:         cfg.Ethereum.BlockHeadTTL,
			StaleWindow: cfg.Ethereum.BlockHeadStaleWindow,
		},
		clock,
	)

	head, err := logSource.BlockNumber(ctx)
	if err != nil {
		logger.Fatal("Failed to query chain head", zap.Error(err))
	}
	logger.Info("Connected to Ethereum node", zap.Uint64("head", head))

	// Enrichment pipeline paced for the provider's rate limits
	pipeline := enrich.NewPipeline(
		ethereum.NewSalesResolver(client, blocks),
		enrich.Config{
			SubBatchSize: cfg.Enrichment.SubBatchSize,
			Pacing:       cfg.Enrichment.Pacing,
		},
		clock,
	)
	defer pipeline.Stop()

	scan := scanner.NewScanner(
		logSource,
		blocks,
		pipeline,
		dataStore,
		nil,
		scanner.Config{
			ChunkSize:    cfg.Scanner.ChunkSize,
			CaughtUpWait: cfg.Scanner.CaughtUpWait,
			RetryDelay:   cfg.Scanner.RetryDelay,
		},
		clock,
	)

	// Run the scan loop in a goroutine
	errCh := make(chan error, 1)
	go func() {
		if err := scan.Run(ctx); err != nil {
			errCh <- err
		}
	}()

	// Wait for interrupt signal to gracefully shut down
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.Info("Received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	case err := <-errCh:
		logger.Error(err, zap.String("component", "scanner"))
		cancel()
	}

	logger.Info("Indexer stopped")
}
