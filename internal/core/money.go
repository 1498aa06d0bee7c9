// Package core provides amount parsing utilities.
//
// This file contains functions for parsing signed monetary amounts from
// strings into exact decimals.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// MaxAmountScale bounds the decimal exponent of a parsed amount in
	// both directions.
	MaxAmountScale = 18
)

// MaxAmount is the largest absolute amount accepted (exclusive).
var MaxAmount = decimal.New(1, 15)

// ParseAmount converts a signed decimal string into an exact amount.
//
// It accepts an optional leading sign, surrounding whitespace and exponent
// notation. A decimal comma (12,34) is accepted when the string has no dot
// and one or two digits follow the comma; "1,234" is rejected. Absolute
// values must stay below MaxAmount and exponents within MaxAmountScale.
// Zero is a valid amount; it counts as neither income nor expense.
//
// Examples:
//
//	ParseAmount("-12.34") -> -12.34, nil
//	ParseAmount("+3000")  -> 3000, nil
//	ParseAmount("12,5")   -> 12.5, nil
//	ParseAmount("1,234")  -> 0, ValidationError
//	ParseAmount("abc")    -> 0, ValidationError
func ParseAmount(s string) (decimal.Decimal, error) {
	invalid := &ValidationError{Field: "amount", Value: s, Err: ErrInvalidAmount}

	raw := strings.TrimSpace(s)
	if raw == "" {
		return decimal.Zero, invalid
	}
	if i := strings.IndexByte(raw, ','); i >= 0 && strings.Count(raw, ",") == 1 && !strings.Contains(raw, ".") {
		if !isCents(raw[i+1:]) {
			return decimal.Zero, invalid
		}
		raw = raw[:i] + "." + raw[i+1:]
	}
	if len(raw) > 1 && raw[0] == '+' && (isDigit(raw[1]) || raw[1] == '.') {
		raw = raw[1:]
	}

	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, invalid
	}
	// Bound the exponent before Abs or comparisons rescale the value.
	if exp := d.Exponent(); exp > MaxAmountScale || exp < -MaxAmountScale {
		return decimal.Zero, invalid
	}
	if d.Abs().GreaterThanOrEqual(MaxAmount) {
		return decimal.Zero, invalid
	}
	return d, nil
}

// isCents reports whether s is one or two ASCII digits.
func isCents(s string) bool {
	if len(s) < 1 || len(s) > 2 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return true
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
