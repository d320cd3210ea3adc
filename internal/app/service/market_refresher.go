package service

import (
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"

	"holdings_checker/internal/app/port"
	"holdings_checker/internal/domain/entity"
	"holdings_checker/pkg/metrics"
)

// Sleeper waits for the given duration or until ctx is done. Tests inject a
// fake so the page loop can be driven without wall-clock waits.
type Sleeper func(ctx context.Context, d time.Duration) error

// DefaultSleeper is the production Sleeper, backed by a real timer.
func DefaultSleeper(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// marketRefresherImpl implements port.MarketRefresher: an explicit bounded
// task that walks pages 1..maxPages of the market-cap listing into the price
// table. A failed page is retried after the same fixed delay and the page
// counter never advances on failure; failures are logged and retried forever,
// never surfaced to request handlers.
type marketRefresherImpl struct {
	client   port.CoinGeckoClient
	table    port.PriceTable
	logger   *zap.Logger
	delay    time.Duration
	maxPages int
	sleep    Sleeper

	mu          sync.Mutex
	pagesLoaded int
}

// NewMarketRefresher creates a refresher for the given client and table.
// A nil sleep falls back to DefaultSleeper.
func NewMarketRefresher(client port.CoinGeckoClient, table port.PriceTable, delay time.Duration, maxPages int, sleep Sleeper, logger *zap.Logger) port.MarketRefresher {
	if sleep == nil {
		sleep = DefaultSleeper
	}
	if maxPages < 1 {
		maxPages = 1
	}
	return &marketRefresherImpl{
		client:   client,
		table:    table,
		logger:   logger.Named("MarketRefresher"),
		delay:    delay,
		maxPages: maxPages,
		sleep:    sleep,
	}
}

// Run implements port.MarketRefresher.
func (r *marketRefresherImpl) Run(ctx context.Context) {
	// The cadence between attempts is deliberately constant: the loop is a
	// rate-limit courtesy, not a recovery strategy.
	cadence := backoff.NewConstantBackOff(r.delay)

	r.logger.Info("Starting market table refresh",
		zap.Int("maxPages", r.maxPages),
		zap.Duration("pageDelay", r.delay))

	for page := 1; page <= r.maxPages; {
		if ctx.Err() != nil {
			r.logger.Info("Market refresher stopped", zap.Error(ctx.Err()))
			return
		}

		entries, err := r.client.GetMarketPage(ctx, page)
		if err != nil {
			metrics.MarketPageFailures.Inc()
			r.logger.Warn("Market page fetch failed, retrying same page",
				zap.Int("page", page),
				zap.Error(err))
		} else {
			r.table.UpsertPage(entries)
			metrics.MarketPagesFetched.Inc()

			r.mu.Lock()
			r.pagesLoaded = page
			r.mu.Unlock()

			r.logger.Info("Market page ingested",
				zap.Int("page", page),
				zap.Int("entryCount", len(entries)),
				zap.Int("tableSize", r.table.Len()))

			if page == r.maxPages {
				r.table.MarkReady()
				r.logger.Info("Price table ready", zap.Int("entries", r.table.Len()))
				return
			}
			page++
		}

		if err := r.sleep(ctx, cadence.NextBackOff()); err != nil {
			r.logger.Info("Market refresher stopped", zap.Error(err))
			return
		}
	}
}

// Status implements port.MarketRefresher.
func (r *marketRefresherImpl) Status() entity.MarketTableStatus {
	r.mu.Lock()
	pages := r.pagesLoaded
	r.mu.Unlock()

	return entity.MarketTableStatus{
		Ready:       r.table.Ready(),
		PagesLoaded: pages,
		Entries:     r.table.Len(),
	}
}
