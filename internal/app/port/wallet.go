package port

import (
	"context"
	"math/big"

	"holdings_checker/internal/domain/entity"
)

// MoralisClient fetches raw balances for a wallet address on the configured chain.
type MoralisClient interface {
	// GetNativeBalance returns the native-coin balance in wei.
	GetNativeBalance(ctx context.Context, address string) (*big.Int, error)

	// GetERC20Balances returns the address's ERC-20 holdings. Tokens the
	// provider flags as possible spam are already excluded.
	GetERC20Balances(ctx context.Context, address string) ([]entity.RawTokenBalance, error)
}
