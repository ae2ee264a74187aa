package stats

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/nftwatch/sales-indexer/internal/adapter"
	"github.com/nftwatch/sales-indexer/internal/domain"
	"github.com/nftwatch/sales-indexer/internal/store"
)

// WalletStatistics summarizes a wallet's ledger activity
type WalletStatistics struct {
	// Transactions is the number of ledger rows involving the wallet
	Transactions int64 `json:"transactions"`

	// LastEvent is the most recent tx_date across the whole ledger, a
	// freshness indicator rather than a wallet-scoped value
	LastEvent string `json:"last_event"`

	// Volume is the summed amount of the wallet's events
	Volume float64 `json:"volume"`

	// HolderSinceDays counts whole days since the wallet's first event
	HolderSinceDays int64 `json:"holder_since_days"`

	// OwnedTokens is the number of tokens currently owned by the wallet
	OwnedTokens int64 `json:"owned_tokens"`
}

// Service is the statistics and ownership query engine. It only reads the
// ledger; concurrent scanner writes are tolerated as eventual consistency.
type Service struct {
	store store.Store
	clock adapter.Clock
}

// NewService creates a statistics service
func NewService(st store.Store, clock adapter.Clock) *Service {
	return &Service{
		store: st,
		clock: clock,
	}
}

// OwnedTokens returns the tokens currently owned by the wallet, the owner of
// a token being the recipient of its chronologically latest event
func (s *Service) OwnedTokens(ctx context.Context, wallet string) ([]int64, error) {
	return s.store.OwnedTokens(ctx, wallet)
}

// WalletStatistics aggregates activity, volume, holding duration and owned
// token count for one wallet
func (s *Service) WalletStatistics(ctx context.Context, wallet string) (*WalletStatistics, error) {
	activity, err := s.store.WalletActivity(ctx, wallet)
	if err != nil {
		return nil, fmt.Errorf("failed to query wallet activity: %w", err)
	}

	lastEvent, err := s.store.LastEventDate(ctx)
	if err != nil && !errors.Is(err, domain.ErrNoEvents) {
		return nil, fmt.Errorf("failed to query last event date: %w", err)
	}

	owned, err := s.store.OwnedTokens(ctx, wallet)
	if err != nil {
		return nil, fmt.Errorf("failed to query owned tokens: %w", err)
	}

	result := &WalletStatistics{
		Transactions: activity.Transactions,
		LastEvent:    lastEvent,
		Volume:       activity.Volume,
		OwnedTokens:  int64(len(owned)),
	}

	if activity.FirstEventDate != "" {
		firstEvent, err := time.Parse(domain.TxDateLayout, activity.FirstEventDate)
		if err != nil {
			return nil, fmt.Errorf("failed to parse first event date %q: %w", activity.FirstEventDate, err)
		}
		result.HolderSinceDays = int64(math.Ceil(s.clock.Now().Sub(firstEvent).Hours() / 24))
	}

	return result, nil
}

// GlobalStatistics sums sale volume per platform over the given time window
func (s *Service) GlobalStatistics(ctx context.Context, window domain.TimeWindow) ([]store.PlatformVolume, error) {
	bound := window.LowerBound(s.clock.Now())
	volumes, err := s.store.PlatformVolumesSince(ctx, bound)
	if err != nil {
		return nil, fmt.Errorf("failed to query platform volumes: %w", err)
	}
	return volumes, nil
}

// LastEventDate returns the maximum tx_date across the ledger, the staleness
// signal of the whole pipeline. Returns domain.ErrNoEvents on an empty ledger.
func (s *Service) LastEventDate(ctx context.Context) (string, error) {
	return s.store.LastEventDate(ctx)
}

// VolumeSeries returns daily volume aggregates, optionally filtered to one
// wallet as sender or receiver
func (s *Service) VolumeSeries(ctx context.Context, wallet string) ([]store.DailyVolume, error) {
	return s.store.DailyVolumes(ctx, wallet)
}
