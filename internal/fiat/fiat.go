package fiat

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nftwatch/sales-indexer/internal/adapter"
	"github.com/nftwatch/sales-indexer/internal/logger"
)

const priceEndpoint = "https://api.coingecko.com/api/v3/simple/price?ids=ethereum&vs_currencies=%s"

// Service periodically polls the ETH spot price in one fiat currency and
// caches the latest successful quote. Poll failures only mean a stale quote,
// never an error surfaced to consumers.
type Service struct {
	http     adapter.HTTPClient
	clock    adapter.Clock
	currency string
	interval time.Duration

	mu        sync.RWMutex
	price     float64
	updatedAt time.Time
}

// NewService creates a fiat price poller for the given ISO currency code
func NewService(httpClient adapter.HTTPClient, clock adapter.Clock, currency string, interval time.Duration) *Service {
	return &Service{
		http:     httpClient,
		clock:    clock,
		currency: strings.ToLower(currency),
		interval: interval,
	}
}

// Run polls until the context is canceled. The first refresh happens
// immediately so consumers have a quote as soon as possible.
func (s *Service) Run(ctx context.Context) error {
	for {
		if err := s.refresh(ctx); err != nil {
			logger.Warn("Failed to refresh ETH price, keeping previous quote",
				zap.Error(err),
				zap.String("currency", s.currency))
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.clock.After(s.interval):
		}
	}
}

// Price returns the latest quote and whether one has been fetched yet
func (s *Service) Price() (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.price, !s.updatedAt.IsZero()
}

func (s *Service) refresh(ctx context.Context) error {
	var quote map[string]map[string]float64
	url := fmt.Sprintf(priceEndpoint, s.currency)
	if err := s.http.GetJSON(ctx, url, &quote); err != nil {
		return err
	}

	price, ok := quote["ethereum"][s.currency]
	if !ok {
		return fmt.Errorf("no %s quote in response", s.currency)
	}

	s.mu.Lock()
	s.price = price
	s.updatedAt = s.clock.Now()
	s.mu.Unlock()

	logger.Debug("ETH price refreshed",
		zap.Float64("price", price),
		zap.String("currency", s.currency))
	return nil
}
