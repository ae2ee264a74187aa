package stats_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nftwatch/sales-indexer/internal/domain"
	"github.com/nftwatch/sales-indexer/internal/logger"
	"github.com/nftwatch/sales-indexer/internal/mocks"
	"github.com/nftwatch/sales-indexer/internal/stats"
	"github.com/nftwatch/sales-indexer/internal/store"
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

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

// testStatsMocks contains all the mocks needed for testing the service
type testStatsMocks struct {
	ctrl    *gomock.Controller
	store   *mocks.MockStore
	clock   *mocks.MockClock
	service *stats.Service
}

// setupTest creates all the mocks and service for testing
func setupTest(t *testing.T) *testStatsMocks {
	ctrl := gomock.NewController(t)

	mockStore := mocks.NewMockStore(ctrl)
	mockClock := mocks.NewMockClock(ctrl)

	return &testStatsMocks{
		ctrl:    ctrl,
		store:   mockStore,
		clock:   mockClock,
		service: stats.NewService(mockStore, mockClock),
	}
}

// tearDownTest cleans up the test mocks
func tearDownTest(tm *testStatsMocks) {
	tm.ctrl.Finish()
}

func TestService_WalletStatistics(t *testing.T) {
	tm := setupTest(t)
	defer tearDownTest(tm)

	ctx := context.Background()
	wallet := "0xAbC"
	firstEvent := testNow.AddDate(0, 0, -10)

	tm.store.EXPECT().WalletActivity(ctx, wallet).Return(&store.WalletActivity{
		Transactions:   5,
		Volume:         10.5,
		FirstEventDate: firstEvent.Format(domain.TxDateLayout),
		LastEventDate:  testNow.AddDate(0, 0, -1).Format(domain.TxDateLayout),
	}, nil)
	tm.store.EXPECT().LastEventDate(ctx).Return("2024-05-31T09:00:00Z", nil)
	tm.store.EXPECT().OwnedTokens(ctx, wallet).Return([]int64{3, 7, 9}, nil)
	tm.clock.EXPECT().Now().Return(testNow)

	// Act
	result, err := tm.service.WalletStatistics(ctx, wallet)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, int64(5), result.Transactions)
	assert.Equal(t, 10.5, result.Volume)
	assert.Equal(t, "2024-05-31T09:00:00Z", result.LastEvent)
	assert.Equal(t, int64(10), result.HolderSinceDays)
	assert.Equal(t, int64(3), result.OwnedTokens)
}

func TestService_WalletStatistics_EmptyLedger(t *testing.T) {
	tm := setupTest(t)
	defer tearDownTest(tm)

	ctx := context.Background()
	wallet := "0xAbC"

	tm.store.EXPECT().WalletActivity(ctx, wallet).Return(&store.WalletActivity{}, nil)
	tm.store.EXPECT().LastEventDate(ctx).Return("", domain.ErrNoEvents)
	tm.store.EXPECT().OwnedTokens(ctx, wallet).Return(nil, nil)

	// Act
	result, err := tm.service.WalletStatistics(ctx, wallet)

	// Assert - absence of data is not an error
	require.NoError(t, err)
	assert.Equal(t, int64(0), result.Transactions)
	assert.Equal(t, "", result.LastEvent)
	assert.Equal(t, int64(0), result.HolderSinceDays)
	assert.Equal(t, int64(0), result.OwnedTokens)
}

func TestService_GlobalStatistics_WindowBounds(t *testing.T) {
	tm := setupTest(t)
	defer tearDownTest(tm)

	ctx := context.Background()
	expected := []store.PlatformVolume{{Platform: "opensea", Volume: 12.0}}

	cases := []struct {
		window domain.TimeWindow
		bound  time.Time
	}{
		{domain.Window24h, testNow.AddDate(0, 0, -1)},
		{domain.Window7d, testNow.AddDate(0, 0, -7)},
		{domain.Window1m, testNow.AddDate(0, -1, 0)},
		{domain.Window1y, testNow.AddDate(-1, 0, 0)},
		{domain.WindowOverall, testNow.AddDate(-100, 0, 0)},
	}

	for _, tc := range cases {
		tm.clock.EXPECT().Now().Return(testNow)
		tm.store.EXPECT().PlatformVolumesSince(ctx, tc.bound).Return(expected, nil)

		result, err := tm.service.GlobalStatistics(ctx, tc.window)

		require.NoError(t, err, "window %s", tc.window)
		assert.Equal(t, expected, result)
	}
}

func TestService_VolumeSeries_PassesWalletFilter(t *testing.T) {
	tm := setupTest(t)
	defer tearDownTest(tm)

	ctx := context.Background()
	expected := []store.DailyVolume{{Date: "2024-01-01", Volume: 2.0, AveragePrice: 1.0, Sales: 2}}

	tm.store.EXPECT().DailyVolumes(ctx, "0xabc").Return(expected, nil)

	// Act
	result, err := tm.service.VolumeSeries(ctx, "0xabc")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, expected, result)
}

// Windowed volume over a real store: overall equals the full ledger sum and
// widening the window never decreases the returned volume.
func TestService_GlobalStatistics_Monotonicity(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	st, err := store.Open(store.InMemoryDSN, 1)
	require.NoError(t, err)
	defer func() { _ = st.Close() }()

	mockClock := mocks.NewMockClock(ctrl)
	mockClock.EXPECT().Now().Return(testNow).AnyTimes()

	service := stats.NewService(st, mockClock)
	ctx := context.Background()

	ages := []struct {
		date   time.Time
		amount float64
	}{
		{testNow.Add(-12 * time.Hour), 1.0},  // inside 24h
		{testNow.AddDate(0, 0, -3), 2.0},     // inside 7d
		{testNow.AddDate(0, 0, -20), 4.0},    // inside 1m
		{testNow.AddDate(0, -6, 0), 8.0},     // inside 1y
		{testNow.AddDate(-5, 0, 0), 16.0},    // inside overall only
	}
	for i, a := range ages {
		event := &domain.SaleEvent{
			EventType:      domain.EventTypeSale,
			FromWallet:     "0xaaa",
			ToWallet:       "0xbbb",
			TokenID:        int64(i),
			Ether:          a.amount,
			AlternateValue: a.amount,
			TxDate:         a.date,
			TxHash:         "0x01",
			LogIndex:       uint(i),
			Platform:       domain.PlatformOpenSea,
		}
		require.NoError(t, st.UpsertEvent(ctx, event))
	}

	totalVolume := func(window domain.TimeWindow) float64 {
		volumes, err := service.GlobalStatistics(ctx, window)
		require.NoError(t, err)
		var sum float64
		for _, v := range volumes {
			sum += v.Volume
		}
		return sum
	}

	windows := []domain.TimeWindow{
		domain.Window24h, domain.Window7d, domain.Window1m, domain.Window1y, domain.WindowOverall,
	}
	previous := -1.0
	for _, w := range windows {
		volume := totalVolume(w)
		assert.GreaterOrEqual(t, volume, previous, "window %s", w)
		previous = volume
	}

	// Overall covers the entire ledger
	assert.Equal(t, 31.0, totalVolume(domain.WindowOverall))
}
