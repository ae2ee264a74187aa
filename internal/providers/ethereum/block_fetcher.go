package ethereum

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/nftwatch/sales-indexer/internal/adapter"
	"github.com/nftwatch/sales-indexer/internal/block"
)

// blockFetcher implements block.BlockFetcher on top of an Ethereum RPC client
type blockFetcher struct {
	client adapter.EthClient
}

// NewBlockFetcher creates a block fetcher backed by the given RPC client
func NewBlockFetcher(client adapter.EthClient) block.BlockFetcher {
	return &blockFetcher{client: client}
}

// FetchLatestBlock fetches the latest block number from the chain
func (f *blockFetcher) FetchLatestBlock(ctx context.Context) (uint64, error) {
	head, err := f.client.BlockNumber(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch latest block: %w", err)
	}
	return head, nil
}

// FetchBlockTimestamp fetches the timestamp of the given block
func (f *blockFetcher) FetchBlockTimestamp(ctx context.Context, blockNumber uint64) (time.Time, error) {
	header, err := f.client.HeaderByNumber(ctx, new(big.Int).SetUint64(blockNumber))
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to fetch header for block %d: %w", blockNumber, err)
	}
	return time.Unix(int64(header.Time), 0).UTC(), nil
}
