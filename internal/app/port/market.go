package port

import (
	"context"

	"holdings_checker/internal/domain/entity"
)

// CoinGeckoClient fetches pages of the top-market-cap token listing.
type CoinGeckoClient interface {
	// GetMarketPage fetches one 1-indexed page of the listing. Entries come
	// back with symbols already normalized to upper case.
	GetMarketPage(ctx context.Context, page int) ([]entity.MarketTokenEntry, error)
}

// PriceTable is the owned symbol-to-price lookup table the joiner reads.
// It is safe for concurrent use: the background refresher writes, request
// handlers read, and a partially populated table is always readable.
type PriceTable interface {
	// UpsertPage merges one page of market entries, keyed by provider id.
	// Re-applying the same page is a no-op (last-write-wins).
	UpsertPage(entries []entity.MarketTokenEntry)

	// LookupBySymbol returns the entry whose symbol matches case-insensitively.
	LookupBySymbol(symbol string) (entity.MarketTokenEntry, bool)

	// MarkReady flags the table as fully populated.
	MarkReady()

	// Ready reports whether the final page has been ingested.
	Ready() bool

	// Len returns the number of entries currently in the table.
	Len() int
}

// MarketRefresher drives the background page loop that fills the PriceTable.
type MarketRefresher interface {
	// Run blocks until all pages are loaded or ctx is cancelled.
	Run(ctx context.Context)

	// Status reports current loop progress for observability endpoints.
	Status() entity.MarketTableStatus
}
