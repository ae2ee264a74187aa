package block

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nftwatch/sales-indexer/internal/adapter"
	"github.com/nftwatch/sales-indexer/internal/logger"
)

// headSample is the last head height observed and when it was observed
type headSample struct {
	number     uint64
	observedAt time.Time
}

// timestampSample caches one block's timestamp
type timestampSample struct {
	timestamp time.Time
	cachedAt  time.Time
}

// BlockProvider is the chain-height and block-time oracle shared by the
// scanner and the sales resolver. Both answers come from a cache so a
// 100-block window never costs more than one head query, and the per-event
// timestamp lookups collapse to one RPC call per block.
//
//go:generate mockgen -source=block.go -destination=../mocks/block_provider.go -package=mocks -mock_names=BlockProvider=MockBlockProvider
type BlockProvider interface {
	// GetLatestBlock returns the chain head height, cached up to Config.TTL
	GetLatestBlock(ctx context.Context) (uint64, error)

	// GetBlockTimestamp returns the timestamp of one block, cached per block
	GetBlockTimestamp(ctx context.Context, blockNumber uint64) (time.Time, error)
}

// BlockFetcher is the uncached chain access the provider delegates to
//
//go:generate mockgen -source=block.go -destination=../mocks/block_provider.go -package=mocks -mock_names=BlockFetcher=MockBlockFetcher
type BlockFetcher interface {
	FetchLatestBlock(ctx context.Context) (uint64, error)
	FetchBlockTimestamp(ctx context.Context, blockNumber uint64) (time.Time, error)
}

// Config holds the caching policy
type Config struct {
	// TTL bounds how long a head sample is served without refetching
	TTL time.Duration

	// StaleWindow is how long an expired sample may still be served when a
	// refetch fails. Past it, the failure is surfaced instead.
	StaleWindow time.Duration

	// BlockTimestampTTL bounds the timestamp cache. Confirmed block
	// timestamps never change, so 0 (cache forever) is the usual setting.
	BlockTimestampTTL time.Duration
}

type blockProvider struct {
	fetcher BlockFetcher
	config  Config
	clock   adapter.Clock

	mu              sync.RWMutex
	head            *headSample
	blockTimestamps map[uint64]*timestampSample
}

// NewBlockProvider creates a caching provider over the given fetcher
func NewBlockProvider(fetcher BlockFetcher, config Config, clock adapter.Clock) BlockProvider {
	return &blockProvider{
		fetcher:         fetcher,
		config:          config,
		clock:           clock,
		blockTimestamps: make(map[uint64]*timestampSample),
	}
}

// GetLatestBlock returns the chain head, refetching once the cached sample
// ages past the TTL. A failed refetch falls back to the stale sample inside
// the stale window.
func (p *blockProvider) GetLatestBlock(ctx context.Context) (uint64, error) {
	p.mu.RLock()
	cached := p.head
	p.mu.RUnlock()

	now := p.clock.Now()

	if cached != nil && now.Sub(cached.observedAt) < p.config.TTL {
		logger.Debug("Serving cached chain head", zap.Uint64("block_number", cached.number))
		return cached.number, nil
	}

	logger.Debug("Refreshing chain head")
	blockNumber, err := p.fetcher.FetchLatestBlock(ctx)
	if err != nil {
		if cached != nil && now.Sub(cached.observedAt) < p.config.StaleWindow {
			logger.Debug("Head refresh failed, serving stale sample",
				zap.Uint64("block_number", cached.number),
				zap.Error(err))
			return cached.number, nil
		}
		return 0, fmt.Errorf("failed to fetch chain head and no usable sample cached: %w", err)
	}

	p.mu.Lock()
	p.head = &headSample{
		number:     blockNumber,
		observedAt: now,
	}
	p.mu.Unlock()

	return blockNumber, nil
}

// GetBlockTimestamp returns the timestamp of the given block. Entries live
// forever when BlockTimestampTTL is zero; a failed refetch falls back to the
// stale entry inside the stale window.
func (p *blockProvider) GetBlockTimestamp(ctx context.Context, blockNumber uint64) (time.Time, error) {
	p.mu.RLock()
	cached := p.blockTimestamps[blockNumber]
	p.mu.RUnlock()

	now := p.clock.Now()

	if cached != nil && (p.config.BlockTimestampTTL == 0 || now.Sub(cached.cachedAt) < p.config.BlockTimestampTTL) {
		return cached.timestamp, nil
	}

	logger.Debug("Fetching block timestamp", zap.Uint64("block_number", blockNumber))
	timestamp, err := p.fetcher.FetchBlockTimestamp(ctx, blockNumber)
	if err != nil {
		if cached != nil && now.Sub(cached.cachedAt) < p.config.StaleWindow {
			logger.Debug("Timestamp fetch failed, serving stale entry",
				zap.Uint64("block_number", blockNumber),
				zap.Error(err))
			return cached.timestamp, nil
		}
		return time.Time{}, fmt.Errorf("failed to fetch timestamp for block %d and no usable entry cached: %w", blockNumber, err)
	}

	p.mu.Lock()
	p.blockTimestamps[blockNumber] = &timestampSample{
		timestamp: timestamp,
		cachedAt:  now,
	}
	p.mu.Unlock()

	return timestamp, nil
}
