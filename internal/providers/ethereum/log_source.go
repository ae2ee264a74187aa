package ethereum

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/nftwatch/sales-indexer/internal/adapter"
)

var (
	// ERC721: Transfer(address indexed from, address indexed to, uint256 indexed tokenId) - 4 topics
	transferEventSignature = crypto.Keccak256Hash([]byte("Transfer(address,address,uint256)"))
)

// LogSource provides the chain height and the Transfer logs of the single
// watched contract. The scanner depends only on this interface.
//
//go:generate mockgen -source=log_source.go -destination=../../mocks/log_source.go -package=mocks -mock_names=LogSource=MockLogSource
type LogSource interface {
	// BlockNumber returns the current chain head height
	BlockNumber(ctx context.Context) (uint64, error)

	// TransferLogs returns all Transfer logs of the watched contract in the
	// inclusive block range [fromBlock, toBlock]
	TransferLogs(ctx context.Context, fromBlock, toBlock uint64) ([]types.Log, error)
}

type logSource struct {
	client   adapter.EthClient
	contract common.Address
}

// NewLogSource creates a log source scoped to one contract address and the
// ERC-721 Transfer event signature.
func NewLogSource(client adapter.EthClient, contractAddress string) LogSource {
	return &logSource{
		client:   client,
		contract: common.HexToAddress(contractAddress),
	}
}

// BlockNumber returns the current chain head height
func (s *logSource) BlockNumber(ctx context.Context) (uint64, error) {
	head, err := s.client.BlockNumber(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get chain head: %w", err)
	}
	return head, nil
}

// TransferLogs returns the filtered logs for the inclusive block range
func (s *logSource) TransferLogs(ctx context.Context, fromBlock, toBlock uint64) ([]types.Log, error) {
	query := ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(fromBlock),
		ToBlock:   new(big.Int).SetUint64(toBlock),
		Addresses: []common.Address{s.contract},
		Topics: [][]common.Hash{
			{transferEventSignature},
		},
	}

	logs, err := s.client.FilterLogs(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to filter logs for blocks %d-%d: %w", fromBlock, toBlock, err)
	}

	return logs, nil
}
