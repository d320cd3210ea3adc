package entity

// TokenHolding is a raw balance joined with its market entry. Derived on every
// fetch and never persisted; ValueUSD is always BalanceDecimal * PriceUSD as
// computed at join time.
type TokenHolding struct {
	TokenAddress     string  `json:"tokenAddress"`
	Name             string  `json:"name"`
	Symbol           string  `json:"symbol"`
	Thumbnail        string  `json:"thumbnail,omitempty"`
	Decimals         uint8   `json:"decimals"`
	BalanceDecimal   float64 `json:"balance"`
	FormattedBalance string  `json:"formattedBalance"`
	PriceUSD         float64 `json:"priceUSD"`
	ValueUSD         float64 `json:"valueUSD"`
}

// WalletHoldings is the full join result for one address. Balances is the
// subset of AllBalances with ValueUSD >= DisplayValueThresholdUSD, both sorted
// descending by ValueUSD. TotalValueUSD sums over AllBalances, not Balances.
type WalletHoldings struct {
	Address              string         `json:"address"`
	Balances             []TokenHolding `json:"balances"`
	AllBalances          []TokenHolding `json:"allBalances"`
	TotalValueUSD        float64        `json:"totalValueUSD"`
	TotalValueUSDDisplay string         `json:"totalValueUSDDisplay"`
}

// DisplayValueThresholdUSD is the cutoff for the filtered balances list.
const DisplayValueThresholdUSD = 10.0
