package service

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"holdings_checker/internal/app/port"
	"holdings_checker/internal/config"
	"holdings_checker/internal/domain/entity"
	"holdings_checker/internal/pkg/format"
	"holdings_checker/internal/pkg/utils"
	"holdings_checker/pkg/metrics"
)

// holdingsServiceImpl implements port.HoldingsService.
type holdingsServiceImpl struct {
	moralis port.MoralisClient
	prices  port.PriceTable
	recents port.RecentAddressStore
	cfg     *config.Config
	logger  *zap.Logger
}

// NewHoldingsService creates a new instance of HoldingsService.
func NewHoldingsService(
	moralis port.MoralisClient,
	prices port.PriceTable,
	recents port.RecentAddressStore,
	cfg *config.Config,
	logger *zap.Logger,
) port.HoldingsService {
	return &holdingsServiceImpl{
		moralis: moralis,
		prices:  prices,
		recents: recents,
		cfg:     cfg,
		logger:  logger.Named("HoldingsService"),
	}
}

// GetHoldings implements port.HoldingsService.
func (s *holdingsServiceImpl) GetHoldings(ctx context.Context, address string) (*entity.WalletHoldings, error) {
	start := time.Now()
	holdings, err := s.getHoldings(ctx, address)

	status := "ok"
	if err != nil {
		status = "error"
		switch {
		case entity.IsValidation(err):
			metrics.HoldingsFetchErrors.WithLabelValues(metrics.ErrorClassValidation).Inc()
		case errors.Is(err, entity.ErrRateLimited):
			metrics.HoldingsFetchErrors.WithLabelValues(metrics.ErrorClassRateLimit).Inc()
		default:
			metrics.HoldingsFetchErrors.WithLabelValues(metrics.ErrorClassRequest).Inc()
		}
	}
	metrics.HoldingsFetchDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())

	return holdings, err
}

func (s *holdingsServiceImpl) getHoldings(ctx context.Context, address string) (*entity.WalletHoldings, error) {
	if err := utils.ValidateWalletAddress(address); err != nil {
		return nil, err
	}
	if s.cfg.Moralis.APIKey == "" {
		return nil, &entity.ValidationError{
			Reason: fmt.Sprintf("wallet API key not found, set %s", config.MoralisAPIKeyEnv),
		}
	}

	// Recorded on successful validation, deliberately before the fetch: an
	// address that later fails upstream still counts as recently used.
	if err := s.recents.Record(address); err != nil {
		s.logger.Warn("Failed to record recent address", zap.String("address", address), zap.Error(err))
	}

	s.logger.Info("Fetching holdings", zap.String("address", address))

	var (
		nativeBalance *big.Int
		tokenBalances []entity.RawTokenBalance
	)

	// Native and ERC-20 balances are independent; fetch them in parallel.
	// Either one failing fails the whole operation: no partial display.
	eg, childCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		balance, err := s.moralis.GetNativeBalance(childCtx, address)
		if err != nil {
			return err
		}
		nativeBalance = balance
		return nil
	})
	eg.Go(func() error {
		balances, err := s.moralis.GetERC20Balances(childCtx, address)
		if err != nil {
			return err
		}
		tokenBalances = balances
		return nil
	})
	if err := eg.Wait(); err != nil {
		s.logger.Error("Balance fetch failed", zap.String("address", address), zap.Error(err))
		return nil, err
	}

	all := s.joinWithPrices(address, nativeBalance, tokenBalances)

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].ValueUSD > all[j].ValueUSD
	})

	filtered := make([]entity.TokenHolding, 0, len(all))
	var totalValueUSD float64
	for _, h := range all {
		totalValueUSD += h.ValueUSD
		if h.ValueUSD >= entity.DisplayValueThresholdUSD {
			filtered = append(filtered, h)
		}
	}

	s.logger.Info("Holdings assembled",
		zap.String("address", address),
		zap.Int("allCount", len(all)),
		zap.Int("filteredCount", len(filtered)),
		zap.Float64("totalValueUSD", totalValueUSD),
		zap.Bool("priceTableReady", s.prices.Ready()))

	return &entity.WalletHoldings{
		Address:              utils.ChecksumAddress(address),
		Balances:             filtered,
		AllBalances:          all,
		TotalValueUSD:        totalValueUSD,
		TotalValueUSDDisplay: format.USD(totalValueUSD),
	}, nil
}

// joinWithPrices matches raw balances to price-table entries by symbol,
// case-insensitively. Tokens without a market entry are dropped: holdings
// outside the listing's market-cap universe do not appear in any list.
// The join reads whatever the table holds right now, ready or not.
func (s *holdingsServiceImpl) joinWithPrices(address string, nativeBalance *big.Int, tokenBalances []entity.RawTokenBalance) []entity.TokenHolding {
	all := make([]entity.TokenHolding, 0, len(tokenBalances)+1)

	if entry, ok := s.prices.LookupBySymbol(s.cfg.Moralis.NativeSymbol); ok {
		balanceDecimal := utils.BalanceDecimal(nativeBalance, entity.NativeDecimals)
		all = append(all, entity.TokenHolding{
			TokenAddress:     entity.ZeroAddress,
			Name:             entry.Name,
			Symbol:           entry.Symbol,
			Thumbnail:        entry.ImageURL,
			Decimals:         entity.NativeDecimals,
			BalanceDecimal:   balanceDecimal,
			FormattedBalance: format.Amount(balanceDecimal),
			PriceUSD:         entry.CurrentPriceUSD,
			ValueUSD:         balanceDecimal * entry.CurrentPriceUSD,
		})
	} else {
		// No market entry for the native symbol yet (table still loading, or
		// an unpriced chain): the native balance is dropped entirely.
		s.logger.Warn("No market entry for native symbol, dropping native balance",
			zap.String("address", address),
			zap.String("nativeSymbol", s.cfg.Moralis.NativeSymbol))
	}

	for _, tok := range tokenBalances {
		if tok.Symbol == "" {
			continue
		}
		entry, ok := s.prices.LookupBySymbol(tok.Symbol)
		if !ok {
			s.logger.Debug("No market entry for token symbol, dropping",
				zap.String("address", address),
				zap.String("symbol", tok.Symbol),
				zap.String("tokenAddress", tok.TokenAddress))
			continue
		}

		balanceDecimal, err := utils.BalanceDecimalFromString(tok.RawBalance, tok.Decimals)
		if err != nil {
			s.logger.Error("Failed to parse raw balance, dropping token",
				zap.String("address", address),
				zap.String("symbol", tok.Symbol),
				zap.String("rawBalance", tok.RawBalance),
				zap.Error(err))
			continue
		}

		all = append(all, entity.TokenHolding{
			TokenAddress:     tok.TokenAddress,
			Name:             tok.Name,
			Symbol:           tok.Symbol,
			Thumbnail:        tok.Thumbnail,
			Decimals:         tok.Decimals,
			BalanceDecimal:   balanceDecimal,
			FormattedBalance: format.Amount(balanceDecimal),
			PriceUSD:         entry.CurrentPriceUSD,
			ValueUSD:         balanceDecimal * entry.CurrentPriceUSD,
		})
	}

	return all
}
