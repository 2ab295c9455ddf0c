// Package types provides common type aliases and monetary arithmetic.
package types

import (
	"github.com/shopspring/decimal"
)

// Money represents a monetary value with full precision.
// Uses decimal.Decimal to avoid floating-point drift; all persisted
// amounts are rounded to 2 fractional digits.
type Money = decimal.Decimal

// NewMoney creates a Money value from a float.
// WARNING: Use NewMoneyFromString for precise values.
func NewMoney(f float64) Money {
	return decimal.NewFromFloat(f)
}

// NewMoneyFromString creates a Money value from a string.
// This is the preferred method for monetary values.
func NewMoneyFromString(s string) (Money, error) {
	return decimal.NewFromString(s)
}

// MustMoney creates a Money value from a string, panics on error.
// Use only for constants and tests.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Zero returns zero Money value.
func Zero() Money {
	return decimal.Zero
}

var hundred = decimal.NewFromInt(100)

// Round2 rounds to 2 fractional digits, half away from zero.
// Every stage of the discount pipeline rounds its running total with this.
func Round2(m Money) Money {
	return m.Round(2)
}

// Percent returns rate% of amount, rounded to 2 digits.
func Percent(amount, rate Money) Money {
	return Round2(amount.Mul(rate).Div(hundred))
}

// SplitGross splits a VAT-inclusive amount into net base and tax at the
// given percent rate: base = gross / (1 + rate/100), tax = gross - base.
func SplitGross(gross, rate Money) (base, tax Money) {
	divisor := decimal.NewFromInt(1).Add(rate.Div(hundred))
	base = Round2(gross.Div(divisor))
	tax = gross.Sub(base)
	return base, tax
}

// ClampNonNegative returns zero when m is negative.
func ClampNonNegative(m Money) Money {
	if m.IsNegative() {
		return decimal.Zero
	}
	return m
}

// MinMoney returns the smaller of a and b.
func MinMoney(a, b Money) Money {
	if a.LessThan(b) {
		return a
	}
	return b
}
