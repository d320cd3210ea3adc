package client

import (
	"context"
	"fmt"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"holdings_checker/internal/app/port"
	"holdings_checker/internal/domain/entity"
	providerentity "holdings_checker/internal/entity"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// CoinGecko demo keys are passed in a request header, not the query string.
const coinGeckoKeyHeader = "x-cg-demo-api-key"

// coinGeckoClientImpl is the fasthttp implementation of port.CoinGeckoClient.
type coinGeckoClientImpl struct {
	client  *fasthttp.Client
	baseURL string
	apiKey  string
	timeout time.Duration
	perPage int
	logger  *zap.Logger
}

// NewCoinGeckoClient creates a new CoinGecko markets client.
func NewCoinGeckoClient(baseURL, apiKey string, timeout time.Duration, perPage int, logger *zap.Logger) port.CoinGeckoClient {
	return &coinGeckoClientImpl{
		client:  &fasthttp.Client{},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		timeout: timeout,
		perPage: perPage,
		logger:  logger.Named("CoinGeckoClient"),
	}
}

// GetMarketPage implements port.CoinGeckoClient.
func (c *coinGeckoClientImpl) GetMarketPage(ctx context.Context, page int) ([]entity.MarketTokenEntry, error) {
	if page < 1 {
		return nil, fmt.Errorf("page must be >= 1, got %d", page)
	}

	requestURL := fmt.Sprintf("%s/coins/markets?vs_currency=usd&order=market_cap_desc&per_page=%d&page=%d&locale=en",
		c.baseURL, c.perPage, page)

	c.logger.Debug("Requesting market page from CoinGecko", zap.Int("page", page), zap.String("url", requestURL))

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(requestURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set(coinGeckoKeyHeader, c.apiKey)
	}

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	if deadline, ok := ctx.Deadline(); ok {
		if err := c.client.DoDeadline(req, resp, deadline); err != nil {
			c.logger.Error("Failed to execute request to CoinGecko", zap.Int("page", page), zap.Error(err))
			return nil, &entity.RequestError{Provider: "coingecko", Message: err.Error()}
		}
	} else {
		if err := c.client.DoTimeout(req, resp, c.timeout); err != nil {
			c.logger.Error("Failed to execute request to CoinGecko (with default timeout)", zap.Int("page", page), zap.Error(err))
			return nil, &entity.RequestError{Provider: "coingecko", Message: err.Error()}
		}
	}

	rawBody := resp.Body()
	if resp.StatusCode() != fasthttp.StatusOK {
		c.logger.Error("CoinGecko API request failed",
			zap.Int("page", page),
			zap.Int("statusCode", resp.StatusCode()),
			zap.ByteString("responseBody", rawBody))
		return nil, &entity.RequestError{
			Provider:   "coingecko",
			StatusCode: resp.StatusCode(),
			Message:    extractErrorMessage(rawBody, resp.StatusCode()),
		}
	}

	var rows []providerentity.CoinMarketRow
	if err := json.Unmarshal(rawBody, &rows); err != nil {
		c.logger.Error("Failed to unmarshal CoinGecko markets response",
			zap.Int("page", page), zap.Error(err))
		return nil, &entity.RequestError{Provider: "coingecko", Message: fmt.Sprintf("unexpected response body: %v", err)}
	}

	entries := make([]entity.MarketTokenEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, entity.MarketTokenEntry{
			ID:              row.ID,
			Symbol:          strings.ToUpper(row.Symbol),
			Name:            row.Name,
			ImageURL:        row.Image,
			CurrentPriceUSD: row.CurrentPrice,
		})
	}

	c.logger.Debug("Fetched market page", zap.Int("page", page), zap.Int("entryCount", len(entries)))
	return entries, nil
}

// extractErrorMessage pulls the provider's error message out of a failed
// response body, falling back to the HTTP status text.
func extractErrorMessage(body []byte, statusCode int) string {
	var apiErr providerentity.APIErrorResponse
	if err := json.Unmarshal(body, &apiErr); err == nil {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		if apiErr.Error != "" {
			return apiErr.Error
		}
	}
	return fasthttp.StatusMessage(statusCode)
}
