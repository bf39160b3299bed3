package util

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// StrNotSet will return true if the string value provided is empty
func StrNotSet(value string) bool {
	return len(value) == 0
}

// ParseDecimal parses a human formatted number, tolerating thousands
// separators and surrounding whitespace. Exports from exchanges routinely
// contain both.
func ParseDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return decimal.Zero, fmt.Errorf("empty numeric value")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("unable to parse %q as a number: %w", s, err)
	}
	return d, nil
}

// SplitAmountAsset splits values like "0.5BTC" into the numeric part and the
// trailing asset symbol. Binance trade exports use this notation for the
// Executed and Amount columns.
func SplitAmountAsset(s string) (string, string) {
	s = strings.TrimSpace(s)
	i := len(s)
	for i > 0 {
		c := s[i-1]
		if (c >= '0' && c <= '9') || c == '.' {
			break
		}
		i--
	}
	return s[:i], s[i:]
}
