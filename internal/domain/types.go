package domain

import (
	"strings"
	"time"
)

// EventType tags the kind of ledger entry produced by enrichment.
type EventType string

const (
	EventTypeSale     EventType = "sale"
	EventTypeTransfer EventType = "transfer"
)

// Platform identifies which marketplace contract pattern produced a sale.
type Platform string

const (
	PlatformOpenSea      Platform = "opensea"
	PlatformLooksRare    Platform = "looksrare"
	PlatformBlur         Platform = "blurio"
	PlatformX2Y2         Platform = "x2y2"
	PlatformNFTX         Platform = "nftx"
	PlatformCargo        Platform = "cargo"
	PlatformRarible      Platform = "rarible"
	PlatformNotLarvaLabs Platform = "notlarvalabs"
	PlatformUnknown      Platform = "unknown"
)

// TxDateLayout is the storage format for event timestamps. RFC3339 in UTC
// sorts lexicographically and is understood by SQLite's date() function.
const TxDateLayout = time.RFC3339

// SaleEvent is a normalized on-chain transfer/sale observed for the watched
// contract. (TxHash, LogIndex) is the natural idempotency key in the ledger.
type SaleEvent struct {
	EventType  EventType
	FromWallet string
	ToWallet   string
	TokenID    int64
	// Ether is the native-currency value attached to the sale.
	Ether float64
	// AlternateValue is the marketplace-reported price. When the resolver
	// yields no alternate value but a native one, enrichment copies Ether
	// here; this is the value the ledger persists as amount.
	AlternateValue float64
	TxDate         time.Time
	TxHash         string
	LogIndex       uint
	Platform       Platform
}

// Valid reports whether the event carries every field the ledger requires.
// Enrichment drops invalid events instead of persisting partial rows.
func (e *SaleEvent) Valid() bool {
	if e == nil {
		return false
	}
	if e.EventType == "" || e.TxHash == "" || e.Platform == "" {
		return false
	}
	if e.FromWallet == "" || e.ToWallet == "" {
		return false
	}
	if e.TokenID < 0 {
		return false
	}
	return !e.TxDate.IsZero()
}

// TimeWindow selects the lower bound of a windowed statistics query.
type TimeWindow string

const (
	Window24h     TimeWindow = "24h"
	Window7d      TimeWindow = "7d"
	Window1m      TimeWindow = "1m"
	Window1y      TimeWindow = "1y"
	WindowOverall TimeWindow = "overall"
)

// ParseTimeWindow validates a window string coming from the query surface.
func ParseTimeWindow(s string) (TimeWindow, error) {
	switch w := TimeWindow(strings.ToLower(strings.TrimSpace(s))); w {
	case Window24h, Window7d, Window1m, Window1y, WindowOverall:
		return w, nil
	default:
		return "", ErrInvalidTimeWindow
	}
}

// LowerBound returns the inclusive date floor for the window relative to now.
// WindowOverall reaches back a hundred years, which is unbounded in practice.
func (w TimeWindow) LowerBound(now time.Time) time.Time {
	switch w {
	case Window24h:
		return now.AddDate(0, 0, -1)
	case Window7d:
		return now.AddDate(0, 0, -7)
	case Window1m:
		return now.AddDate(0, -1, 0)
	case Window1y:
		return now.AddDate(-1, 0, 0)
	default:
		return now.AddDate(-100, 0, 0)
	}
}
