package restapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"holdings_checker/internal/app/port"
	"holdings_checker/internal/domain/entity"
)

// APIHoldingsResponse is the response envelope for the holdings endpoint.
// On any error Data stays nil so clients always clear previously displayed
// balances and totals.
type APIHoldingsResponse struct {
	Data  *entity.WalletHoldings `json:"data,omitempty"`
	Error string                 `json:"error,omitempty"`
}

// APIRecentResponse is the response envelope for the recent-address endpoint.
type APIRecentResponse struct {
	Addresses []string `json:"addresses"`
}

// HoldingsHandler handles HTTP requests for wallet holdings.
type HoldingsHandler struct {
	holdingsSvc port.HoldingsService
	recents     port.RecentAddressStore
	market      port.MarketRefresher
	logger      *zap.Logger
}

// NewHoldingsHandler creates a new HoldingsHandler.
func NewHoldingsHandler(hs port.HoldingsService, rs port.RecentAddressStore, mr port.MarketRefresher, logger *zap.Logger) *HoldingsHandler {
	return &HoldingsHandler{
		holdingsSvc: hs,
		recents:     rs,
		market:      mr,
		logger:      logger.Named("HoldingsHandler"),
	}
}

// GetHoldingsHandler handles GET /api/v1/holdings/:address.
func (h *HoldingsHandler) GetHoldingsHandler(c *gin.Context) {
	address := c.Param("address")

	holdings, err := h.holdingsSvc.GetHoldings(c.Request.Context(), address)
	if err != nil {
		status := http.StatusBadGateway
		var vErr *entity.ValidationError
		switch {
		case errors.As(err, &vErr):
			status = http.StatusBadRequest
		case errors.Is(err, entity.ErrRateLimited):
			status = http.StatusTooManyRequests
		}
		c.JSON(status, APIHoldingsResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, APIHoldingsResponse{Data: holdings})
}

// GetRecentAddressesHandler handles GET /api/v1/recent.
func (h *HoldingsHandler) GetRecentAddressesHandler(c *gin.Context) {
	c.JSON(http.StatusOK, APIRecentResponse{Addresses: h.recents.List()})
}

// GetMarketStatusHandler handles GET /api/v1/market/status.
func (h *HoldingsHandler) GetMarketStatusHandler(c *gin.Context) {
	c.JSON(http.StatusOK, h.market.Status())
}
