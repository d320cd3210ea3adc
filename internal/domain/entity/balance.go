package entity

// NativeDecimals is the fixed decimal count assumed for the chain's native coin.
const NativeDecimals = 18

// ZeroAddress stands in as the token address of the native coin.
const ZeroAddress = "0x0000000000000000000000000000000000000000"

// RawTokenBalance is the wallet provider's report of a single ERC-20 holding.
// RawBalance is the integer base-unit amount as a decimal string, exactly as
// the provider returns it.
type RawTokenBalance struct {
	TokenAddress string
	Symbol       string
	Name         string
	Thumbnail    string
	Decimals     uint8
	RawBalance   string
}
