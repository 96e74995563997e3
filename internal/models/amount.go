package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MinorUnitExponent is the number of decimal places between one token and
// the smallest on-chain unit (1 NEAR = 10^24 yoctoNEAR).
const MinorUnitExponent = 24

// ToMinorUnits converts a whole-token price into minor units
func ToMinorUnits(tokens int64) decimal.Decimal {
	return decimal.New(tokens, MinorUnitExponent)
}

// ParseMinorUnits parses an integer minor-unit amount as stored by the ledger
func ParseMinorUnits(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if !d.Equal(d.Truncate(0)) {
		return decimal.Zero, fmt.Errorf("invalid amount %q: minor units must be whole", s)
	}
	return d, nil
}

// FormatTokens renders a minor-unit amount as a token amount with two
// decimals, the way balances and order totals are shown to customers.
func FormatTokens(minor decimal.Decimal) string {
	return minor.Shift(-MinorUnitExponent).StringFixed(2)
}
