package store

import (
	"context"
	"time"

	"github.com/nftwatch/sales-indexer/internal/domain"
)

// WalletActivity aggregates the ledger rows a wallet participated in,
// as sender or receiver.
type WalletActivity struct {
	Transactions   int64   `gorm:"column:transactions"`
	Volume         float64 `gorm:"column:volume"`
	FirstEventDate string  `gorm:"column:first_event"`
	LastEventDate  string  `gorm:"column:last_event"`
}

// PlatformVolume is the summed sale volume attributed to one marketplace.
type PlatformVolume struct {
	Platform string  `gorm:"column:platform" json:"platform"`
	Volume   float64 `gorm:"column:volume" json:"volume"`
}

// DailyVolume is a per-calendar-day aggregate of the ledger.
type DailyVolume struct {
	Date         string  `gorm:"column:date" json:"date"`
	Volume       float64 `gorm:"column:volume" json:"volume"`
	AveragePrice float64 `gorm:"column:average_price" json:"average_price"`
	Sales        int64   `gorm:"column:sales" json:"sales"`
}

// Store defines the persistence contract over the events ledger and the
// scan checkpoint. The scanner is the only writer; the statistics engine
// only reads.
//
//go:generate mockgen -source=store.go -destination=../mocks/store.go -package=mocks -mock_names=Store=MockStore
type Store interface {
	// UpsertEvent inserts a ledger row keyed by (tx, log_index). On conflict
	// only amount and platform are overwritten; every other column keeps the
	// value of the first insert.
	UpsertEvent(ctx context.Context, event *domain.SaleEvent) error

	// GetCheckpoint returns the next unscanned block height.
	// Returns domain.ErrNoCheckpoint when no checkpoint row exists.
	GetCheckpoint(ctx context.Context) (uint64, error)

	// SetCheckpoint persists the next unscanned block height.
	SetCheckpoint(ctx context.Context, block uint64) error

	// OwnedTokens returns the tokens whose current owner is the given wallet,
	// the owner being the recipient of the chronologically latest event per
	// token. Wallet comparison is case-insensitive.
	OwnedTokens(ctx context.Context, wallet string) ([]int64, error)

	// WalletActivity aggregates transaction count, volume and first/last
	// involvement dates for a wallet as sender or receiver.
	WalletActivity(ctx context.Context, wallet string) (*WalletActivity, error)

	// PlatformVolumesSince sums amounts per platform for events strictly
	// after the given date floor.
	PlatformVolumesSince(ctx context.Context, bound time.Time) ([]PlatformVolume, error)

	// LastEventDate returns the maximum tx_date across the ledger.
	// Returns domain.ErrNoEvents on an empty ledger.
	LastEventDate(ctx context.Context) (string, error)

	// DailyVolumes returns per-day aggregates ordered chronologically,
	// optionally filtered to one wallet as sender or receiver. Entries from
	// the looksrare platform are excluded from every series.
	DailyVolumes(ctx context.Context, wallet string) ([]DailyVolume, error)

	// Close closes the underlying database handle.
	Close() error
}
