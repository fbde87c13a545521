package extraction

import (
	"regexp"

	"github.com/shopspring/decimal"
)

var nonMonetary = regexp.MustCompile(`[^0-9.\-]`)

// ParseMoney parses a monetary string by stripping thousands separators,
// currency symbols, and any other non-numeric characters. A non-positive or
// unparsable result is reported as not found rather than an error.
func ParseMoney(s string) (decimal.Decimal, bool) {
	cleaned := nonMonetary.ReplaceAllString(s, "")
	if cleaned == "" {
		return decimal.Zero, false
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, false
	}
	if d.Sign() <= 0 {
		return decimal.Zero, false
	}
	return d, true
}
