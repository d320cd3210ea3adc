package entity

// MarketTokenEntry is one row of the provider's top-market-cap listing,
// used purely as a USD price source for the balance join.
// Symbol is always stored upper-case so symbol matching stays consistent.
type MarketTokenEntry struct {
	ID              string  `json:"id"`
	Symbol          string  `json:"symbol"`
	Name            string  `json:"name"`
	ImageURL        string  `json:"imageUrl"`
	CurrentPriceUSD float64 `json:"currentPriceUSD"`
}

// MarketTableStatus describes how far the background page loop has gotten.
// Readers may observe a partially populated table; Ready flips only after
// the final page has been ingested.
type MarketTableStatus struct {
	Ready       bool `json:"ready"`
	PagesLoaded int  `json:"pagesLoaded"`
	Entries     int  `json:"entries"`
}
