package block_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/nftwatch/sales-indexer/internal/block"
	"github.com/nftwatch/sales-indexer/internal/logger"
	"github.com/nftwatch/sales-indexer/internal/mocks"
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

// providerFixture bundles the mocked collaborators of one provider under test
type providerFixture struct {
	ctrl     *gomock.Controller
	fetcher  *mocks.MockBlockFetcher
	clock    *mocks.MockClock
	provider block.BlockProvider
	config   block.Config
}

// setupTest builds a provider over mocked fetcher and clock. Overrides lets a
// test adjust the caching policy before the provider is constructed.
func setupTest(t *testing.T, overrides ...func(*block.Config)) *providerFixture {
	ctrl := gomock.NewController(t)

	mockFetcher := mocks.NewMockBlockFetcher(ctrl)
	mockClock := mocks.NewMockClock(ctrl)

	config := block.Config{
		TTL:               10 * time.Second,
		StaleWindow:       2 * time.Minute,
		BlockTimestampTTL: 0, // timestamps cached forever unless a test says otherwise
	}
	for _, override := range overrides {
		override(&config)
	}

	return &providerFixture{
		ctrl:     ctrl,
		fetcher:  mockFetcher,
		clock:    mockClock,
		provider: block.NewBlockProvider(mockFetcher, config, mockClock),
		config:   config,
	}
}

func tearDownTest(f *providerFixture) {
	f.ctrl.Finish()
}

func TestBlockProvider_GetLatestBlock_FirstFetch(t *testing.T) {
	f := setupTest(t)
	defer tearDownTest(f)

	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	f.clock.EXPECT().Now().Return(now)
	f.fetcher.EXPECT().FetchLatestBlock(ctx).Return(uint64(1000), nil)

	// Act
	head, err := f.provider.GetLatestBlock(ctx)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, uint64(1000), head)
}

func TestBlockProvider_GetLatestBlock_ServesSampleWithinTTL(t *testing.T) {
	f := setupTest(t)
	defer tearDownTest(f)

	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	f.clock.EXPECT().Now().Return(now)
	f.fetcher.EXPECT().FetchLatestBlock(ctx).Return(uint64(1000), nil)

	head1, err1 := f.provider.GetLatestBlock(ctx)
	assert.NoError(t, err1)
	assert.Equal(t, uint64(1000), head1)

	// 5s later, inside the 10s TTL; the single fetcher expectation above
	// proves no second RPC happens
	f.clock.EXPECT().Now().Return(now.Add(5 * time.Second))

	// Act
	head2, err2 := f.provider.GetLatestBlock(ctx)

	// Assert
	assert.NoError(t, err2)
	assert.Equal(t, uint64(1000), head2)
}

func TestBlockProvider_GetLatestBlock_RefreshesPastTTL(t *testing.T) {
	f := setupTest(t)
	defer tearDownTest(f)

	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	f.clock.EXPECT().Now().Return(now)
	f.fetcher.EXPECT().FetchLatestBlock(ctx).Return(uint64(1000), nil)

	head1, err1 := f.provider.GetLatestBlock(ctx)
	assert.NoError(t, err1)
	assert.Equal(t, uint64(1000), head1)

	// 15s later the sample has aged out
	f.clock.EXPECT().Now().Return(now.Add(15 * time.Second))
	f.fetcher.EXPECT().FetchLatestBlock(ctx).Return(uint64(1100), nil)

	// Act
	head2, err2 := f.provider.GetLatestBlock(ctx)

	// Assert
	assert.NoError(t, err2)
	assert.Equal(t, uint64(1100), head2)
}

func TestBlockProvider_GetLatestBlock_FallsBackToStaleSampleOnError(t *testing.T) {
	f := setupTest(t)
	defer tearDownTest(f)

	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	f.clock.EXPECT().Now().Return(now)
	f.fetcher.EXPECT().FetchLatestBlock(ctx).Return(uint64(1000), nil)

	head1, err1 := f.provider.GetLatestBlock(ctx)
	assert.NoError(t, err1)
	assert.Equal(t, uint64(1000), head1)

	// 30s later: past the TTL, inside the 2m stale window, refetch fails
	f.clock.EXPECT().Now().Return(now.Add(30 * time.Second))
	f.fetcher.EXPECT().FetchLatestBlock(ctx).Return(uint64(0), errors.New("network error"))

	// Act
	head2, err2 := f.provider.GetLatestBlock(ctx)

	// Assert - the stale sample still answers
	assert.NoError(t, err2)
	assert.Equal(t, uint64(1000), head2)
}

func TestBlockProvider_GetLatestBlock_ErrorWithoutSample(t *testing.T) {
	f := setupTest(t)
	defer tearDownTest(f)

	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	f.clock.EXPECT().Now().Return(now)
	f.fetcher.EXPECT().FetchLatestBlock(ctx).Return(uint64(0), errors.New("network error"))

	// Act
	head, err := f.provider.GetLatestBlock(ctx)

	// Assert
	assert.Error(t, err)
	assert.Equal(t, uint64(0), head)
	assert.Contains(t, err.Error(), "failed to fetch chain head and no usable sample cached")
}

func TestBlockProvider_GetLatestBlock_ErrorPastStaleWindow(t *testing.T) {
	f := setupTest(t)
	defer tearDownTest(f)

	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	f.clock.EXPECT().Now().Return(now)
	f.fetcher.EXPECT().FetchLatestBlock(ctx).Return(uint64(1000), nil)

	head1, err1 := f.provider.GetLatestBlock(ctx)
	assert.NoError(t, err1)
	assert.Equal(t, uint64(1000), head1)

	// 5m later the sample is past the 2m stale window; the failure surfaces
	f.clock.EXPECT().Now().Return(now.Add(5 * time.Minute))
	f.fetcher.EXPECT().FetchLatestBlock(ctx).Return(uint64(0), errors.New("network error"))

	// Act
	head2, err2 := f.provider.GetLatestBlock(ctx)

	// Assert
	assert.Error(t, err2)
	assert.Equal(t, uint64(0), head2)
	assert.Contains(t, err2.Error(), "failed to fetch chain head and no usable sample cached")
}

func TestBlockProvider_GetLatestBlock_ConcurrentAccess(t *testing.T) {
	f := setupTest(t)
	defer tearDownTest(f)

	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	f.fetcher.EXPECT().FetchLatestBlock(ctx).Return(uint64(1000), nil).AnyTimes()
	f.clock.EXPECT().Now().Return(now).AnyTimes()

	// Act
	done := make(chan bool, 10)
	for range 10 {
		go func() {
			head, err := f.provider.GetLatestBlock(ctx)
			assert.NoError(t, err)
			assert.Equal(t, uint64(1000), head)
			done <- true
		}()
	}

	for range 10 {
		<-done
	}
}

func TestBlockProvider_GetBlockTimestamp_FirstFetch(t *testing.T) {
	f := setupTest(t)
	defer tearDownTest(f)

	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	blockTime := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	f.clock.EXPECT().Now().Return(now)
	f.fetcher.EXPECT().FetchBlockTimestamp(ctx, uint64(1000)).Return(blockTime, nil)

	// Act
	timestamp, err := f.provider.GetBlockTimestamp(ctx, 1000)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, blockTime, timestamp)
}

func TestBlockProvider_GetBlockTimestamp_ZeroTTLCachesForever(t *testing.T) {
	f := setupTest(t)
	defer tearDownTest(f)

	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	blockTime := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	f.clock.EXPECT().Now().Return(now)
	f.fetcher.EXPECT().FetchBlockTimestamp(ctx, uint64(1000)).Return(blockTime, nil)

	timestamp1, err1 := f.provider.GetBlockTimestamp(ctx, 1000)
	assert.NoError(t, err1)
	assert.Equal(t, blockTime, timestamp1)

	// A day later the entry still answers without a second RPC
	f.clock.EXPECT().Now().Return(now.Add(24 * time.Hour))

	// Act
	timestamp2, err2 := f.provider.GetBlockTimestamp(ctx, 1000)

	// Assert
	assert.NoError(t, err2)
	assert.Equal(t, blockTime, timestamp2)
}

func TestBlockProvider_GetBlockTimestamp_RefreshesPastTTL(t *testing.T) {
	f := setupTest(t, func(c *block.Config) {
		c.BlockTimestampTTL = 30 * time.Second
	})
	defer tearDownTest(f)

	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	blockTime := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	newBlockTime := time.Date(2024, 1, 1, 12, 0, 1, 0, time.UTC)

	f.clock.EXPECT().Now().Return(now)
	f.fetcher.EXPECT().FetchBlockTimestamp(ctx, uint64(1000)).Return(blockTime, nil)

	timestamp1, err1 := f.provider.GetBlockTimestamp(ctx, 1000)
	assert.NoError(t, err1)
	assert.Equal(t, blockTime, timestamp1)

	// 35s later the entry has aged past the 30s TTL
	f.clock.EXPECT().Now().Return(now.Add(35 * time.Second))
	f.fetcher.EXPECT().FetchBlockTimestamp(ctx, uint64(1000)).Return(newBlockTime, nil)

	// Act
	timestamp2, err2 := f.provider.GetBlockTimestamp(ctx, 1000)

	// Assert
	assert.NoError(t, err2)
	assert.Equal(t, newBlockTime, timestamp2)
}

func TestBlockProvider_GetBlockTimestamp_FallsBackToStaleEntryOnError(t *testing.T) {
	f := setupTest(t, func(c *block.Config) {
		c.BlockTimestampTTL = 30 * time.Second
	})
	defer tearDownTest(f)

	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	blockTime := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	f.clock.EXPECT().Now().Return(now)
	f.fetcher.EXPECT().FetchBlockTimestamp(ctx, uint64(1000)).Return(blockTime, nil)

	timestamp1, err1 := f.provider.GetBlockTimestamp(ctx, 1000)
	assert.NoError(t, err1)
	assert.Equal(t, blockTime, timestamp1)

	// 45s later: past the TTL, inside the stale window, refetch fails
	f.clock.EXPECT().Now().Return(now.Add(45 * time.Second))
	f.fetcher.EXPECT().FetchBlockTimestamp(ctx, uint64(1000)).Return(time.Time{}, errors.New("network error"))

	// Act
	timestamp2, err2 := f.provider.GetBlockTimestamp(ctx, 1000)

	// Assert - the stale entry still answers
	assert.NoError(t, err2)
	assert.Equal(t, blockTime, timestamp2)
}

func TestBlockProvider_GetBlockTimestamp_ErrorWithoutEntry(t *testing.T) {
	f := setupTest(t)
	defer tearDownTest(f)

	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	f.clock.EXPECT().Now().Return(now)
	f.fetcher.EXPECT().FetchBlockTimestamp(ctx, uint64(1000)).Return(time.Time{}, errors.New("network error"))

	// Act
	timestamp, err := f.provider.GetBlockTimestamp(ctx, 1000)

	// Assert
	assert.Error(t, err)
	assert.Equal(t, time.Time{}, timestamp)
	assert.Contains(t, err.Error(), "failed to fetch timestamp for block 1000 and no usable entry cached")
}

func TestBlockProvider_GetBlockTimestamp_CachesPerBlock(t *testing.T) {
	f := setupTest(t)
	defer tearDownTest(f)

	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	blockTime1 := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	blockTime2 := time.Date(2024, 1, 1, 13, 0, 0, 0, time.UTC)

	f.clock.EXPECT().Now().Return(now)
	f.fetcher.EXPECT().FetchBlockTimestamp(ctx, uint64(1000)).Return(blockTime1, nil)

	timestamp1, err1 := f.provider.GetBlockTimestamp(ctx, 1000)
	assert.NoError(t, err1)
	assert.Equal(t, blockTime1, timestamp1)

	// A different block is its own cache entry
	f.clock.EXPECT().Now().Return(now)
	f.fetcher.EXPECT().FetchBlockTimestamp(ctx, uint64(2000)).Return(blockTime2, nil)

	timestamp2, err2 := f.provider.GetBlockTimestamp(ctx, 2000)
	assert.NoError(t, err2)
	assert.Equal(t, blockTime2, timestamp2)

	// The first block still answers from cache an hour later
	f.clock.EXPECT().Now().Return(now.Add(1 * time.Hour))

	timestamp1Again, err := f.provider.GetBlockTimestamp(ctx, 1000)
	assert.NoError(t, err)
	assert.Equal(t, blockTime1, timestamp1Again)
}

func TestBlockProvider_GetBlockTimestamp_ConcurrentAccess(t *testing.T) {
	f := setupTest(t)
	defer tearDownTest(f)

	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	blockTime := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	f.fetcher.EXPECT().FetchBlockTimestamp(ctx, uint64(1000)).Return(blockTime, nil).AnyTimes()
	f.clock.EXPECT().Now().Return(now).AnyTimes()

	// Act
	done := make(chan bool, 10)
	for range 10 {
		go func() {
			timestamp, err := f.provider.GetBlockTimestamp(ctx, 1000)
			assert.NoError(t, err)
			assert.Equal(t, blockTime, timestamp)
			done <- true
		}()
	}

	for range 10 {
		<-done
	}
}
