package ethereum_test

import (
	"context"
	"errors"
	"math/big"
	"os"
	"testing"
	"time"

	goethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nftwatch/sales-indexer/internal/domain"
	"github.com/nftwatch/sales-indexer/internal/logger"
	"github.com/nftwatch/sales-indexer/internal/mocks"
	"github.com/nftwatch/sales-indexer/internal/providers/ethereum"
)

func TestMain(m *testing.M) {
	// Initialize logger for tests
	err := logger.Initialize(logger.Config{
		Debug: false,
	})
	if err != nil {
		panic(err)
	}

	code := m.Run()
	os.Exit(code)
}

var (
	transferSignature       = crypto.Keccak256Hash([]byte("Transfer(address,address,uint256)"))
	wyvernMatchedSignature  = crypto.Keccak256Hash([]byte("OrdersMatched(bytes32,bytes32,address,address,uint256,bytes32)"))
	takerBidSignature       = crypto.Keccak256Hash([]byte("TakerBid(bytes32,uint256,address,address,address,address,address,uint256,uint256,uint256)"))
	testFromAddress         = common.HexToAddress("0xAAAA567890123456789012345678901234567890")
	testToAddress           = common.HexToAddress("0xBBBB567890123456789012345678901234567890")
	testContractAddress     = "0x1234567890123456789012345678901234567890"
	testTxHash              = common.HexToHash("0xdeadbeef00000000000000000000000000000000000000000000000000000001")
	testBlockTime           = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
)

// testResolverMocks contains all the mocks needed for testing the sales resolver
type testResolverMocks struct {
	ctrl     *gomock.Controller
	client   *mocks.MockEthClient
	blocks   *mocks.MockBlockProvider
	resolver *ethereum.SalesResolver
}

// setupResolverTest creates all the mocks and resolver for testing
func setupResolverTest(t *testing.T) *testResolverMocks {
	ctrl := gomock.NewController(t)

	mockClient := mocks.NewMockEthClient(ctrl)
	mockBlocks := mocks.NewMockBlockProvider(ctrl)

	return &testResolverMocks{
		ctrl:     ctrl,
		client:   mockClient,
		blocks:   mockBlocks,
		resolver: ethereum.NewSalesResolver(mockClient, mockBlocks),
	}
}

// tearDownResolverTest cleans up the test mocks
func tearDownResolverTest(tm *testResolverMocks) {
	tm.ctrl.Finish()
}

func transferLog(tokenID int64) types.Log {
	return types.Log{
		Topics: []common.Hash{
			transferSignature,
			common.BytesToHash(testFromAddress.Bytes()),
			common.BytesToHash(testToAddress.Bytes()),
			common.BigToHash(big.NewInt(tokenID)),
		},
		TxHash:      testTxHash,
		Index:       3,
		BlockNumber: 100,
	}
}

func legacyTx(valueWei *big.Int) *types.Transaction {
	to := common.HexToAddress("0xCCCC567890123456789012345678901234567890")
	return types.NewTx(&types.LegacyTx{
		Nonce:    1,
		To:       &to,
		Value:    valueWei,
		Gas:      21000,
		GasPrice: big.NewInt(1),
	})
}

func TestSalesResolver_Resolve_PlainTransfer(t *testing.T) {
	tm := setupResolverTest(t)
	defer tearDownResolverTest(tm)

	ctx := context.Background()
	eventLog := transferLog(42)
	tx := legacyTx(big.NewInt(0))
	receipt := &types.Receipt{Logs: []*types.Log{}}

	tm.blocks.EXPECT().GetBlockTimestamp(ctx, uint64(100)).Return(testBlockTime, nil)
	tm.client.EXPECT().TransactionByHash(ctx, testTxHash).Return(tx, false, nil)
	tm.client.EXPECT().TransactionReceipt(ctx, testTxHash).Return(receipt, nil)

	// Act
	event, err := tm.resolver.Resolve(ctx, eventLog)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, domain.EventTypeTransfer, event.EventType)
	assert.Equal(t, domain.PlatformUnknown, event.Platform)
	assert.Equal(t, "0xaaaa567890123456789012345678901234567890", event.FromWallet)
	assert.Equal(t, "0xbbbb567890123456789012345678901234567890", event.ToWallet)
	assert.Equal(t, int64(42), event.TokenID)
	assert.Equal(t, float64(0), event.Ether)
	assert.Equal(t, float64(0), event.AlternateValue)
	assert.Equal(t, testBlockTime, event.TxDate)
	assert.Equal(t, uint(3), event.LogIndex)
	assert.True(t, event.Valid())
}

func TestSalesResolver_Resolve_DirectSale_NoMarketplaceEvent(t *testing.T) {
	tm := setupResolverTest(t)
	defer tearDownResolverTest(tm)

	ctx := context.Background()
	eventLog := transferLog(7)
	tx := legacyTx(big.NewInt(2e18)) // 2 ETH
	receipt := &types.Receipt{Logs: []*types.Log{}}

	tm.blocks.EXPECT().GetBlockTimestamp(ctx, uint64(100)).Return(testBlockTime, nil)
	tm.client.EXPECT().TransactionByHash(ctx, testTxHash).Return(tx, false, nil)
	tm.client.EXPECT().TransactionReceipt(ctx, testTxHash).Return(receipt, nil)

	// Act
	event, err := tm.resolver.Resolve(ctx, eventLog)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, domain.EventTypeSale, event.EventType)
	assert.Equal(t, domain.PlatformUnknown, event.Platform)
	assert.Equal(t, 2.0, event.Ether)
	assert.Equal(t, float64(0), event.AlternateValue) // fallback happens in enrichment
}

func TestSalesResolver_Resolve_WyvernSale(t *testing.T) {
	tm := setupResolverTest(t)
	defer tearDownResolverTest(tm)

	ctx := context.Background()
	eventLog := transferLog(7)
	tx := legacyTx(big.NewInt(0))

	// Wyvern OrdersMatched payload: buyHash, sellHash, price
	priceWei := big.NewInt(1500000000000000000) // 1.5 ETH
	data := make([]byte, 64)
	data = append(data, common.BigToHash(priceWei).Bytes()...)
	receipt := &types.Receipt{Logs: []*types.Log{
		{Topics: []common.Hash{wyvernMatchedSignature}, Data: data},
	}}

	tm.blocks.EXPECT().GetBlockTimestamp(ctx, uint64(100)).Return(testBlockTime, nil)
	tm.client.EXPECT().TransactionByHash(ctx, testTxHash).Return(tx, false, nil)
	tm.client.EXPECT().TransactionReceipt(ctx, testTxHash).Return(receipt, nil)

	// Act
	event, err := tm.resolver.Resolve(ctx, eventLog)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, domain.EventTypeSale, event.EventType)
	assert.Equal(t, domain.PlatformOpenSea, event.Platform)
	assert.Equal(t, 1.5, event.AlternateValue)
}

func TestSalesResolver_Resolve_LooksRareSale(t *testing.T) {
	tm := setupResolverTest(t)
	defer tearDownResolverTest(tm)

	ctx := context.Background()
	eventLog := transferLog(7)
	tx := legacyTx(big.NewInt(0))

	// TakerBid payload ends with the matched price
	priceWei := big.NewInt(3000000000000000000) // 3 ETH
	data := make([]byte, 6*32)
	data = append(data, common.BigToHash(priceWei).Bytes()...)
	receipt := &types.Receipt{Logs: []*types.Log{
		{Topics: []common.Hash{takerBidSignature}, Data: data},
	}}

	tm.blocks.EXPECT().GetBlockTimestamp(ctx, uint64(100)).Return(testBlockTime, nil)
	tm.client.EXPECT().TransactionByHash(ctx, testTxHash).Return(tx, false, nil)
	tm.client.EXPECT().TransactionReceipt(ctx, testTxHash).Return(receipt, nil)

	// Act
	event, err := tm.resolver.Resolve(ctx, eventLog)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, domain.EventTypeSale, event.EventType)
	assert.Equal(t, domain.PlatformLooksRare, event.Platform)
	assert.Equal(t, 3.0, event.AlternateValue)
}

func TestSalesResolver_Resolve_RejectsMalformedLog(t *testing.T) {
	tm := setupResolverTest(t)
	defer tearDownResolverTest(tm)

	ctx := context.Background()

	// ERC-20 style Transfer has only 3 topics
	eventLog := types.Log{
		Topics: []common.Hash{
			transferSignature,
			common.BytesToHash(testFromAddress.Bytes()),
			common.BytesToHash(testToAddress.Bytes()),
		},
		TxHash: testTxHash,
	}

	// Act
	event, err := tm.resolver.Resolve(ctx, eventLog)

	// Assert
	assert.Error(t, err)
	assert.Nil(t, event)
	assert.Contains(t, err.Error(), "unexpected topic count")
}

func TestSalesResolver_Resolve_RejectsWrongSignature(t *testing.T) {
	tm := setupResolverTest(t)
	defer tearDownResolverTest(tm)

	ctx := context.Background()
	eventLog := transferLog(1)
	eventLog.Topics[0] = takerBidSignature

	// Act
	event, err := tm.resolver.Resolve(ctx, eventLog)

	// Assert
	assert.Error(t, err)
	assert.Nil(t, event)
	assert.Contains(t, err.Error(), "unexpected event signature")
}

func TestSalesResolver_Resolve_BlockTimestampFailure(t *testing.T) {
	tm := setupResolverTest(t)
	defer tearDownResolverTest(tm)

	ctx := context.Background()
	eventLog := transferLog(1)

	tm.blocks.EXPECT().GetBlockTimestamp(ctx, uint64(100)).Return(time.Time{}, errors.New("provider down"))

	// Act
	event, err := tm.resolver.Resolve(ctx, eventLog)

	// Assert
	assert.Error(t, err)
	assert.Nil(t, event)
	assert.Contains(t, err.Error(), "failed to resolve block timestamp")
}

func TestSalesResolver_Resolve_RetriesReceiptFetch(t *testing.T) {
	tm := setupResolverTest(t)
	defer tearDownResolverTest(tm)

	ctx := context.Background()
	eventLog := transferLog(9)
	tx := legacyTx(big.NewInt(0))
	receipt := &types.Receipt{Logs: []*types.Log{}}

	tm.blocks.EXPECT().GetBlockTimestamp(ctx, uint64(100)).Return(testBlockTime, nil)

	// First attempt fails, second succeeds
	tm.client.EXPECT().TransactionByHash(ctx, testTxHash).Return(nil, false, errors.New("rate limited"))
	tm.client.EXPECT().TransactionByHash(ctx, testTxHash).Return(tx, false, nil)
	tm.client.EXPECT().TransactionReceipt(ctx, testTxHash).Return(receipt, nil)

	// Act
	event, err := tm.resolver.Resolve(ctx, eventLog)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, int64(9), event.TokenID)
}

// Tests for the log source

func TestLogSource_TransferLogs_ScopesQuery(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockClient := mocks.NewMockEthClient(ctrl)
	source := ethereum.NewLogSource(mockClient, testContractAddress)

	ctx := context.Background()
	expected := []types.Log{transferLog(1), transferLog(2)}

	mockClient.EXPECT().
		FilterLogs(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, query goethereum.FilterQuery) ([]types.Log, error) {
			assert.Equal(t, uint64(1000), query.FromBlock.Uint64())
			assert.Equal(t, uint64(1100), query.ToBlock.Uint64())
			require.Len(t, query.Addresses, 1)
			assert.Equal(t, common.HexToAddress(testContractAddress), query.Addresses[0])
			require.Len(t, query.Topics, 1)
			require.Len(t, query.Topics[0], 1)
			assert.Equal(t, transferSignature, query.Topics[0][0])
			return expected, nil
		})

	// Act
	logs, err := source.TransferLogs(ctx, 1000, 1100)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, expected, logs)
}

func TestLogSource_BlockNumber(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockClient := mocks.NewMockEthClient(ctrl)
	source := ethereum.NewLogSource(mockClient, testContractAddress)

	ctx := context.Background()
	mockClient.EXPECT().BlockNumber(ctx).Return(uint64(1234), nil)

	// Act
	head, err := source.BlockNumber(ctx)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, uint64(1234), head)
}

// Tests for the block fetcher

func TestBlockFetcher_FetchBlockTimestamp(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockClient := mocks.NewMockEthClient(ctrl)
	fetcher := ethereum.NewBlockFetcher(mockClient)

	ctx := context.Background()
	header := &types.Header{Time: uint64(testBlockTime.Unix())}
	mockClient.EXPECT().
		HeaderByNumber(ctx, big.NewInt(100)).
		Return(header, nil)

	// Act
	timestamp, err := fetcher.FetchBlockTimestamp(ctx, 100)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, testBlockTime, timestamp)
}

func TestBlockFetcher_FetchLatestBlock(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockClient := mocks.NewMockEthClient(ctrl)
	fetcher := ethereum.NewBlockFetcher(mockClient)

	ctx := context.Background()
	mockClient.EXPECT().BlockNumber(ctx).Return(uint64(9999), nil)

	// Act
	head, err := fetcher.FetchLatestBlock(ctx)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, uint64(9999), head)
}
