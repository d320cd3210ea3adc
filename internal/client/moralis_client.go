package client

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"holdings_checker/internal/app/port"
	"holdings_checker/internal/domain/entity"
	providerentity "holdings_checker/internal/entity"
)

const moralisKeyHeader = "X-API-Key"

// moralisClientImpl is the fasthttp implementation of port.MoralisClient.
// A token-bucket limiter throttles outgoing calls as basic courtesy toward
// the provider's free-tier limits.
type moralisClientImpl struct {
	client  *fasthttp.Client
	baseURL string
	apiKey  string
	chain   string
	timeout time.Duration
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewMoralisClient creates a new Moralis wallet-data client.
func NewMoralisClient(baseURL, apiKey, chain string, timeout time.Duration, rateLimit, burstLimit int, logger *zap.Logger) port.MoralisClient {
	return &moralisClientImpl{
		client:  &fasthttp.Client{},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		chain:   chain,
		timeout: timeout,
		limiter: rate.NewLimiter(rate.Limit(rateLimit), burstLimit),
		logger:  logger.Named("MoralisClient"),
	}
}

// GetNativeBalance implements port.MoralisClient.
func (c *moralisClientImpl) GetNativeBalance(ctx context.Context, address string) (*big.Int, error) {
	requestURL := fmt.Sprintf("%s/%s/balance?chain=%s", c.baseURL, address, c.chain)
	body, err := c.doGet(ctx, requestURL)
	if err != nil {
		return nil, err
	}

	var payload providerentity.NativeBalanceResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		c.logger.Error("Failed to unmarshal native balance response", zap.String("address", address), zap.Error(err))
		return nil, &entity.RequestError{Provider: "moralis", Message: fmt.Sprintf("unexpected response body: %v", err)}
	}

	balance, ok := new(big.Int).SetString(payload.Balance, 10)
	if !ok {
		c.logger.Error("Native balance is not a decimal integer",
			zap.String("address", address), zap.String("balance", payload.Balance))
		return nil, &entity.RequestError{Provider: "moralis", Message: fmt.Sprintf("invalid native balance %q", payload.Balance)}
	}

	c.logger.Debug("Fetched native balance", zap.String("address", address), zap.String("wei", balance.String()))
	return balance, nil
}

// GetERC20Balances implements port.MoralisClient. Tokens flagged possible_spam
// by the provider are dropped here, at the boundary.
func (c *moralisClientImpl) GetERC20Balances(ctx context.Context, address string) ([]entity.RawTokenBalance, error) {
	requestURL := fmt.Sprintf("%s/%s/erc20?chain=%s", c.baseURL, address, c.chain)
	body, err := c.doGet(ctx, requestURL)
	if err != nil {
		return nil, err
	}

	var rows []providerentity.ERC20BalanceRow
	if err := json.Unmarshal(body, &rows); err != nil {
		c.logger.Error("Failed to unmarshal ERC-20 balances response", zap.String("address", address), zap.Error(err))
		return nil, &entity.RequestError{Provider: "moralis", Message: fmt.Sprintf("unexpected response body: %v", err)}
	}

	balances := make([]entity.RawTokenBalance, 0, len(rows))
	skippedSpam := 0
	for _, row := range rows {
		if row.PossibleSpam {
			skippedSpam++
			continue
		}
		thumbnail := row.Thumbnail
		if thumbnail == "" {
			thumbnail = row.Logo
		}
		balances = append(balances, entity.RawTokenBalance{
			TokenAddress: row.TokenAddress,
			Symbol:       row.Symbol,
			Name:         row.Name,
			Thumbnail:    thumbnail,
			Decimals:     row.Decimals,
			RawBalance:   row.Balance,
		})
	}

	c.logger.Debug("Fetched ERC-20 balances",
		zap.String("address", address),
		zap.Int("tokenCount", len(balances)),
		zap.Int("skippedSpam", skippedSpam))
	return balances, nil
}

// doGet performs a rate-limited GET and maps failures to the error taxonomy:
// 429 becomes entity.ErrRateLimited, everything else a *entity.RequestError.
func (c *moralisClientImpl) doGet(ctx context.Context, requestURL string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &entity.RequestError{Provider: "moralis", Message: err.Error()}
	}

	c.logger.Debug("Requesting wallet data from Moralis", zap.String("url", requestURL))

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(requestURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")
	req.Header.Set(moralisKeyHeader, c.apiKey)

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	var err error
	if deadline, ok := ctx.Deadline(); ok {
		err = c.client.DoDeadline(req, resp, deadline)
	} else {
		err = c.client.DoTimeout(req, resp, c.timeout)
	}
	if err != nil {
		c.logger.Error("Failed to execute request to Moralis", zap.String("url", requestURL), zap.Error(err))
		return nil, &entity.RequestError{Provider: "moralis", Message: err.Error()}
	}

	switch resp.StatusCode() {
	case fasthttp.StatusOK:
		// fasthttp reuses response buffers after release, copy out
		body := make([]byte, len(resp.Body()))
		copy(body, resp.Body())
		return body, nil
	case fasthttp.StatusTooManyRequests:
		c.logger.Warn("Moralis rate limit hit", zap.String("url", requestURL))
		return nil, entity.ErrRateLimited
	default:
		rawBody := resp.Body()
		c.logger.Error("Moralis API request failed",
			zap.String("url", requestURL),
			zap.Int("statusCode", resp.StatusCode()),
			zap.ByteString("responseBody", rawBody))
		return nil, &entity.RequestError{
			Provider:   "moralis",
			StatusCode: resp.StatusCode(),
			Message:    extractErrorMessage(rawBody, resp.StatusCode()),
		}
	}
}
