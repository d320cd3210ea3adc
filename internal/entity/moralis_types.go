package entity

// NativeBalanceResponse is the Moralis wallet native-balance payload.
// Balance is a wei amount as a decimal string.
type NativeBalanceResponse struct {
	Balance string `json:"balance"`
}

// ERC20BalanceRow is one element of the Moralis wallet ERC-20 listing.
type ERC20BalanceRow struct {
	TokenAddress string `json:"token_address"`
	Symbol       string `json:"symbol"`
	Name         string `json:"name"`
	Logo         string `json:"logo,omitempty"`
	Thumbnail    string `json:"thumbnail,omitempty"`
	Decimals     uint8  `json:"decimals"`
	Balance      string `json:"balance"`
	PossibleSpam bool   `json:"possible_spam"`
}

// APIErrorResponse is the error payload shape both providers use.
type APIErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}
