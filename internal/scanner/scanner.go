package scanner

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"github.com/nftwatch/sales-indexer/internal/adapter"
	"github.com/nftwatch/sales-indexer/internal/block"
	"github.com/nftwatch/sales-indexer/internal/domain"
	"github.com/nftwatch/sales-indexer/internal/logger"
	"github.com/nftwatch/sales-indexer/internal/store"
)

// Enricher converts a raw log batch into normalized domain events
//
//go:generate mockgen -source=scanner.go -destination=../mocks/scanner.go -package=mocks -mock_names=Enricher=MockEnricher,LogSource=MockScanLogSource,Notifier=MockNotifier
type Enricher interface {
	Enrich(ctx context.Context, rawLogs []types.Log) []*domain.SaleEvent
}

// LogSource provides the Transfer logs of the watched contract for one
// block window
type LogSource interface {
	TransferLogs(ctx context.Context, fromBlock, toBlock uint64) ([]types.Log, error)
}

// Notifier receives every event of a fully persisted window. Delivery
// failures are the notifier's own concern; the scanner does not retry them.
type Notifier interface {
	Notify(ctx context.Context, event *domain.SaleEvent)
}

// Config holds the scan loop policy
type Config struct {
	// ChunkSize is the width of one scan window in blocks
	ChunkSize uint64

	// CaughtUpWait is how long to wait when the head of the chain is reached
	CaughtUpWait time.Duration

	// RetryDelay is the fixed delay after a provider or persistence failure
	// before retrying the same window
	RetryDelay time.Duration
}

// Scanner is the ingestion control loop. It queries the chain in fixed-size
// block windows and advances the checkpoint only after a window is fully
// enriched and persisted, so a crash at any point replays at most one window.
type Scanner struct {
	source   LogSource
	blocks   block.BlockProvider
	enricher Enricher
	store    store.Store
	notifier Notifier
	config   Config
	clock    adapter.Clock
}

// NewScanner creates a scanner. The notifier may be nil.
func NewScanner(
	source LogSource,
	blocks block.BlockProvider,
	enricher Enricher,
	st store.Store,
	notifier Notifier,
	config Config,
	clock adapter.Clock,
) *Scanner {
	return &Scanner{
		source:   source,
		blocks:   blocks,
		enricher: enricher,
		store:    st,
		notifier: notifier,
		config:   config,
		clock:    clock,
	}
}

// Run executes the scan loop until the context is canceled. It resumes from
// the persisted checkpoint, so restarts never lose progress.
func (s *Scanner) Run(ctx context.Context) error {
	current, err := s.store.GetCheckpoint(ctx)
	if err != nil {
		return fmt.Errorf("failed to load checkpoint: %w", err)
	}

	logger.Info("Scanner starting",
		zap.Uint64("checkpoint", current),
		zap.Uint64("chunk_size", s.config.ChunkSize))

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		head, err := s.blocks.GetLatestBlock(ctx)
		if err != nil {
			logger.Warn("Failed to fetch chain head, retrying",
				zap.Error(err),
				zap.Uint64("current_block", current))
			if err := s.wait(ctx, s.config.RetryDelay); err != nil {
				return err
			}
			continue
		}

		// Caught up with the chain, wait for new blocks
		if head == 0 || current > head-1 {
			logger.Info("Latest block reached, waiting for the next available block",
				zap.Uint64("head", head),
				zap.Uint64("current_block", current))
			if err := s.wait(ctx, s.config.CaughtUpWait); err != nil {
				return err
			}
			continue
		}

		if err := s.scanWindow(ctx, current); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Warn("Window scan failed, retrying",
				zap.Error(err),
				zap.Uint64("current_block", current))
			if err := s.wait(ctx, s.config.RetryDelay); err != nil {
				return err
			}
			continue
		}

		current += s.config.ChunkSize
	}
}

// scanWindow enriches and persists one block window, then commits the
// advanced checkpoint. Any failure leaves the checkpoint untouched so the
// whole window is replayed; the upsert policy makes the replay harmless.
func (s *Scanner) scanWindow(ctx context.Context, fromBlock uint64) error {
	toBlock := fromBlock + s.config.ChunkSize

	logger.Debug("Querying block window",
		zap.Uint64("from_block", fromBlock),
		zap.Uint64("to_block", toBlock))

	rawLogs, err := s.source.TransferLogs(ctx, fromBlock, toBlock)
	if err != nil {
		return fmt.Errorf("failed to query logs: %w", err)
	}

	events := s.enricher.Enrich(ctx, rawLogs)
	if err := ctx.Err(); err != nil {
		return err
	}

	for _, event := range events {
		if err := s.store.UpsertEvent(ctx, event); err != nil {
			return fmt.Errorf("failed to persist event %s:%d: %w", event.TxHash, event.LogIndex, err)
		}
	}

	if err := s.store.SetCheckpoint(ctx, toBlock); err != nil {
		return fmt.Errorf("failed to commit checkpoint: %w", err)
	}

	if s.notifier != nil {
		for _, event := range events {
			s.notifier.Notify(ctx, event)
		}
	}

	if len(events) > 0 {
		logger.Info("Window persisted",
			zap.Uint64("from_block", fromBlock),
			zap.Uint64("to_block", toBlock),
			zap.Int("events", len(events)))
	}

	return nil
}

// wait suspends for the given duration, honoring cancellation
func (s *Scanner) wait(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-s.clock.After(d):
		return nil
	}
}
