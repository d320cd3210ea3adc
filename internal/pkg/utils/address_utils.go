package utils

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"holdings_checker/internal/domain/entity"
)

const addressLength = 42 // "0x" + 40 hex characters

// ValidateWalletAddress checks that addr is a well-formed EVM wallet address:
// non-empty, "0x"-prefixed, exactly 42 characters, hex digits only. It returns
// a *entity.ValidationError so callers can refuse before any network call.
// Note common.IsHexAddress alone is not enough: it also accepts unprefixed
// addresses.
func ValidateWalletAddress(addr string) error {
	if addr == "" {
		return &entity.ValidationError{Reason: "wallet address is required"}
	}
	if !strings.HasPrefix(addr, "0x") {
		return &entity.ValidationError{Reason: "wallet address must start with 0x"}
	}
	if len(addr) != addressLength {
		return &entity.ValidationError{Reason: "wallet address must be exactly 42 characters"}
	}
	if !common.IsHexAddress(addr) {
		return &entity.ValidationError{Reason: "wallet address must contain only hexadecimal characters"}
	}
	return nil
}

// ChecksumAddress renders addr in EIP-55 mixed-case form for display.
// Call only after ValidateWalletAddress.
func ChecksumAddress(addr string) string {
	return common.HexToAddress(addr).Hex()
}
