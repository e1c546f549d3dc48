package handler

import (
	"strings"

	"github.com/shopspring/decimal"
)

// toDecimal parses a rate or amount that already passed the "decimal"
// binding; empty means zero
func toDecimal(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
