package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"

	"github.com/nftwatch/sales-indexer/internal/chart"
	"github.com/nftwatch/sales-indexer/internal/domain"
	"github.com/nftwatch/sales-indexer/internal/fiat"
	"github.com/nftwatch/sales-indexer/internal/stats"
)

// Handler defines the interface for REST API handlers
//
//go:generate mockgen -source=handler.go -destination=../mocks/api_handler.go -package=mocks -mock_names=Handler=MockAPIHandler
type Handler interface {
	// GetWalletStatistics summarizes one wallet's ledger activity
	// GET /api/v1/wallets/:wallet/statistics
	GetWalletStatistics(c *gin.Context)

	// GetOwnedTokens lists the tokens currently owned by a wallet
	// GET /api/v1/wallets/:wallet/tokens
	GetOwnedTokens(c *gin.Context)

	// GetVolume sums sale volume per platform over a time window
	// GET /api/v1/volume?window=<24h|7d|1m|1y|overall>
	GetVolume(c *gin.Context)

	// GetLastEvent returns the most recent ledger date, the pipeline's
	// freshness signal
	// GET /api/v1/events/last
	GetLastEvent(c *gin.Context)

	// GetChart returns a render-ready daily volume series
	// GET /api/v1/chart?wallet=<address>&max_bars=<n>
	GetChart(c *gin.Context)

	// GetEthPrice returns the latest fiat quote for ETH
	// GET /api/v1/price
	GetEthPrice(c *gin.Context)

	// HealthCheck returns the health status of the API
	// GET /health
	HealthCheck(c *gin.Context)
}

// handler implements the Handler interface
type handler struct {
	stats    *stats.Service
	fiat     *fiat.Service
	maxBars  int
	currency string
}

// NewHandler creates a REST API handler. The fiat service may be nil when
// price polling is disabled.
func NewHandler(statsService *stats.Service, fiatService *fiat.Service, maxBars int, currency string) Handler {
	if maxBars <= 0 {
		maxBars = chart.DefaultMaxBars
	}
	return &handler{
		stats:    statsService,
		fiat:     fiatService,
		maxBars:  maxBars,
		currency: currency,
	}
}

func (h *handler) GetWalletStatistics(c *gin.Context) {
	wallet, ok := walletParam(c)
	if !ok {
		return
	}

	result, err := h.stats.WalletStatistics(c.Request.Context(), wallet)
	if err != nil {
		respondDatabaseError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *handler) GetOwnedTokens(c *gin.Context) {
	wallet, ok := walletParam(c)
	if !ok {
		return
	}

	tokens, err := h.stats.OwnedTokens(c.Request.Context(), wallet)
	if err != nil {
		respondDatabaseError(c, err)
		return
	}
	if tokens == nil {
		tokens = []int64{}
	}

	c.JSON(http.StatusOK, gin.H{
		"wallet": wallet,
		"tokens": tokens,
	})
}

func (h *handler) GetVolume(c *gin.Context) {
	window, err := domain.ParseTimeWindow(c.DefaultQuery("window", string(domain.WindowOverall)))
	if err != nil {
		respondBadRequest(c, "Invalid time window", "expected one of 24h, 7d, 1m, 1y, overall")
		return
	}

	volumes, err := h.stats.GlobalStatistics(c.Request.Context(), window)
	if err != nil {
		respondDatabaseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"window":  window,
		"volumes": volumes,
	})
}

func (h *handler) GetLastEvent(c *gin.Context) {
	lastEvent, err := h.stats.LastEventDate(c.Request.Context())
	if err != nil {
		if errors.Is(err, domain.ErrNoEvents) {
			respondNotFound(c, "No events recorded yet")
			return
		}
		respondDatabaseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"last_event": lastEvent})
}

func (h *handler) GetChart(c *gin.Context) {
	wallet := c.Query("wallet")
	if wallet != "" && !common.IsHexAddress(wallet) {
		respondBadRequest(c, "Invalid wallet address")
		return
	}

	maxBars := h.maxBars
	if raw := c.Query("max_bars"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > h.maxBars {
			respondBadRequest(c, "Invalid max_bars", "expected an integer between 1 and "+strconv.Itoa(h.maxBars))
			return
		}
		maxBars = parsed
	}

	daily, err := h.stats.VolumeSeries(c.Request.Context(), wallet)
	if err != nil {
		respondDatabaseError(c, err)
		return
	}

	series, err := chart.BuildSeries(daily, maxBars)
	if err != nil {
		respondDatabaseError(c, err)
		return
	}
	if series == nil {
		series = []chart.Bar{}
	}

	c.JSON(http.StatusOK, gin.H{"series": series})
}

func (h *handler) GetEthPrice(c *gin.Context) {
	if h.fiat == nil {
		respondNotFound(c, "Price polling is disabled")
		return
	}

	price, ok := h.fiat.Price()
	if !ok {
		respondNotFound(c, "No price quote available yet")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"currency": h.currency,
		"price":    price,
	})
}

func (h *handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// walletParam validates the :wallet path parameter, responding with 400 on
// a malformed address
func walletParam(c *gin.Context) (string, bool) {
	wallet := c.Param("wallet")
	if !common.IsHexAddress(wallet) {
		respondBadRequest(c, "Invalid wallet address")
		return "", false
	}
	return wallet, true
}
