package entity

// CoinMarketRow is one element of the CoinGecko /coins/markets response.
// Only the fields the price table needs are decoded.
type CoinMarketRow struct {
	ID           string  `json:"id"`
	Symbol       string  `json:"symbol"`
	Name         string  `json:"name"`
	Image        string  `json:"image"`
	CurrentPrice float64 `json:"current_price"`
}
