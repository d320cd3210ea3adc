package port

import (
	"context"

	"holdings_checker/internal/domain/entity"
)

// HoldingsService validates an address, fetches its balances and joins them
// against the price table.
type HoldingsService interface {
	GetHoldings(ctx context.Context, address string) (*entity.WalletHoldings, error)
}
