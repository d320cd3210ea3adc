// Package format renders token amounts and USD values for display.
// It formats strings only; callers keep the full-precision numbers.
package format

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Amount formats a decimal token amount for display:
//
//	0                    -> "0"
//	|v| < 0.0001         -> exponential, 4 fractional digits
//	|v| in [0.0001, 1)   -> 4 significant digits
//	|v| in [1, 1000)     -> fixed 4 decimal places
//	|v| >= 1000          -> grouped, at most 2 fractional digits
func Amount(v float64) string {
	if v == 0 {
		return "0"
	}
	abs := math.Abs(v)
	switch {
	case abs < 0.0001:
		return strconv.FormatFloat(v, 'e', 4, 64)
	case abs < 1:
		return strconv.FormatFloat(v, 'g', 4, 64)
	case abs < 1000:
		return strconv.FormatFloat(v, 'f', 4, 64)
	default:
		grouped := printer.Sprintf("%.2f", v)
		if strings.Contains(grouped, ".") {
			grouped = strings.TrimRight(grouped, "0")
			grouped = strings.TrimRight(grouped, ".")
		}
		return grouped
	}
}

// USD formats a dollar value in standard 2-decimal currency form, e.g. "$1,234.50".
func USD(v float64) string {
	return printer.Sprintf("$%.2f", v)
}
