package enrich

import (
	"context"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"github.com/nftwatch/sales-indexer/internal/adapter"
	"github.com/nftwatch/sales-indexer/internal/domain"
	"github.com/nftwatch/sales-indexer/internal/logger"
)

// Resolver resolves a raw Transfer log into a normalized sale event
//
//go:generate mockgen -source=enrich.go -destination=../mocks/resolver.go -package=mocks -mock_names=Resolver=MockResolver
type Resolver interface {
	Resolve(ctx context.Context, eventLog types.Log) (*domain.SaleEvent, error)
}

// Config holds the pacing policy of the enrichment pipeline
type Config struct {
	// SubBatchSize is how many resolver calls run concurrently
	SubBatchSize int

	// Pacing is the fixed delay inserted before each sub-batch to respect
	// the provider's rate limits
	Pacing time.Duration
}

// resolveResult carries one resolver outcome through the worker pool
type resolveResult struct {
	event *domain.SaleEvent
	err   error
}

// Pipeline converts raw log batches into normalized domain events.
// Resolver calls within one sub-batch run concurrently; the pipeline waits
// for the whole sub-batch before moving on, so ordering across sub-batches
// is preserved.
type Pipeline struct {
	resolver Resolver
	config   Config
	clock    adapter.Clock
	pool     pond.ResultPool[*resolveResult]
}

// NewPipeline creates an enrichment pipeline with a worker pool bounded by
// the sub-batch size
func NewPipeline(resolver Resolver, config Config, clock adapter.Clock) *Pipeline {
	return &Pipeline{
		resolver: resolver,
		config:   config,
		clock:    clock,
		pool:     pond.NewResultPool[*resolveResult](config.SubBatchSize),
	}
}

// Enrich resolves every usable raw log into a domain event. Individual
// resolver failures are logged and skipped; they never abort the batch.
// Returns early with the events collected so far if the context is canceled.
func (p *Pipeline) Enrich(ctx context.Context, rawLogs []types.Log) []*domain.SaleEvent {
	// Defensive filter of malformed entries before resolution
	usable := make([]types.Log, 0, len(rawLogs))
	for _, rawLog := range rawLogs {
		if rawLog.Removed || len(rawLog.Topics) == 0 {
			continue
		}
		usable = append(usable, rawLog)
	}

	events := make([]*domain.SaleEvent, 0, len(usable))

	for start := 0; start < len(usable); start += p.config.SubBatchSize {
		end := min(start+p.config.SubBatchSize, len(usable))
		subBatch := usable[start:end]

		// Fixed pacing delay before each sub-batch
		select {
		case <-ctx.Done():
			return events
		case <-p.clock.After(p.config.Pacing):
		}

		tasks := make([]pond.Result[*resolveResult], 0, len(subBatch))
		for _, rawLog := range subBatch {
			tasks = append(tasks, p.pool.Submit(func() *resolveResult {
				event, err := p.resolver.Resolve(ctx, rawLog)
				return &resolveResult{event: event, err: err}
			}))
		}

		for i, task := range tasks {
			result, err := task.Wait()
			if err == nil && result != nil {
				err = result.err
			}
			if err != nil {
				logger.Warn("Failed to resolve log entry, skipping",
					zap.Error(err),
					zap.String("tx", subBatch[i].TxHash.Hex()),
					zap.Uint("log_index", subBatch[i].Index))
				continue
			}

			event := result.event

			// Fall back to the native value when the marketplace reported none
			if event.AlternateValue == 0 && event.Ether > 0 {
				event.AlternateValue = event.Ether
			}

			if !event.Valid() {
				logger.Warn("Dropping incomplete event",
					zap.String("tx", subBatch[i].TxHash.Hex()),
					zap.Uint("log_index", subBatch[i].Index))
				continue
			}

			events = append(events, event)
		}
	}

	return events
}

// Stop shuts down the worker pool, waiting for in-flight tasks
func (p *Pipeline) Stop() {
	p.pool.StopAndWait()
}
