package utils

import (
	"fmt"
	"math/big"
)

// ParseRawBalance parses a provider-reported base-unit amount (a decimal
// integer string) into a big.Int.
func ParseRawBalance(raw string) (*big.Int, error) {
	if raw == "" {
		return big.NewInt(0), nil
	}
	amount, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return nil, fmt.Errorf("invalid raw balance %q: not a base-10 integer", raw)
	}
	return amount, nil
}

// BalanceDecimal converts a base-unit amount to its decimal token amount,
// amount / 10^decimals, as a float64. Precision loss beyond float64 is
// accepted; display formatting happens downstream.
func BalanceDecimal(amount *big.Int, decimals uint8) float64 {
	if amount == nil || amount.Sign() == 0 {
		return 0
	}
	amountFloat := new(big.Float).SetInt(amount)
	divisor := new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil))
	value, _ := new(big.Float).Quo(amountFloat, divisor).Float64()
	return value
}

// BalanceDecimalFromString is ParseRawBalance followed by BalanceDecimal.
func BalanceDecimalFromString(raw string, decimals uint8) (float64, error) {
	amount, err := ParseRawBalance(raw)
	if err != nil {
		return 0, err
	}
	return BalanceDecimal(amount, decimals), nil
}
