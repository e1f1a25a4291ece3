// Package core provides the domain model of the finance tracker.
//
// This file contains amount parsing and conversion between the decimal
// representation used by the domain and the integer cents stored in SQLite.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// maxAmountDigits bounds the whole amount at ten significant digits,
// matching the storage column width.
const maxAmountDigits = 10

// ParseAmount converts a user-supplied decimal string to a currency amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and at
// most two fractional digits. Negative amounts are accepted: the tracker
// treats a refund as a negative expense.
//
// Examples:
//
//	ParseAmount("25.00")  -> 25.00, nil
//	ParseAmount("12,34")  -> 12.34, nil
//	ParseAmount("-3.50")  -> -3.50, nil
//	ParseAmount("12.345") -> error (too many decimal places)
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if d.Exponent() < -2 {
		return decimal.Zero, ErrInvalidAmount
	}
	if len(d.Abs().Coefficient().String()) > maxAmountDigits {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// ToCents converts an amount to integer cents for storage. The amount must
// already be limited to two decimal places (see ParseAmount).
func ToCents(d decimal.Decimal) int64 {
	return d.Shift(2).IntPart()
}

// FromCents converts stored integer cents back to a decimal amount.
func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// FormatAmount renders an amount with exactly two decimal places for display.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}
