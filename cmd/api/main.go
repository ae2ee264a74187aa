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
	"github.com/nftwatch/sales-indexer/internal/api"
	"github.com/nftwatch/sales-indexer/internal/config"
	"github.com/nftwatch/sales-indexer/internal/fiat"
	"github.com/nftwatch/sales-indexer/internal/logger"
	"github.com/nftwatch/sales-indexer/internal/stats"
	"github.com/nftwatch/sales-indexer/internal/store"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadAPIConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:     cfg.Debug,
		SentryDSN: cfg.SentryDSN,
		Tags: map[string]string{
			"service": "api-server",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.Info("Starting sales indexer API")

	// Open the ledger database written by the indexer process. The reader
	// path never seeds the checkpoint; that row belongs to the indexer.
	dataStore, err := store.OpenReader(cfg.Database.Path)
	if err != nil {
		logger.Fatal("Failed to open database", zap.Error(err), zap.String("path", cfg.Database.Path))
	}
	defer func() {
		if err := dataStore.Close(); err != nil {
			logger.Warn("failed to close database", zap.Error(err))
		}
	}()
	logger.Info("Opened database", zap.String("path", cfg.Database.Path))

	clock := adapter.NewClock()
	statsService := stats.NewService(dataStore, clock)

	// Optional ETH price poller
	var fiatService *fiat.Service
	if cfg.Fiat.Enabled {
		fiatService = fiat.NewService(
			adapter.NewHTTPClient(10*time.Second),
			clock,
			cfg.Fiat.Currency,
			cfg.Fiat.PollInterval,
		)
		go func() {
			if err := fiatService.Run(ctx); err != nil {
				logger.Warn("price poller stopped", zap.Error(err))
			}
		}()
		logger.Info("Started price poller",
			zap.String("currency", cfg.Fiat.Currency),
			zap.Duration("interval", cfg.Fiat.PollInterval))
	}

	// Create and start server
	srv := api.New(api.Config{
		Debug:        cfg.Debug,
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}, api.NewHandler(statsService, fiatService, cfg.MaxChartBars, cfg.Fiat.Currency))

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			errCh <- err
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.Info("Received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	case err := <-errCh:
		logger.Error(err, zap.String("component", "server"))
		cancel()
	}

	// Create shutdown context with timeout (don't use canceled ctx)
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("API server stopped")
}
