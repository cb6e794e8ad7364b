// Package core provides money parsing and handling utilities.
//
// Amounts are kept as arbitrary-precision decimals so that sums of many
// small values are exact; rounding happens only when a value is formatted
// for display.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Money is a currency amount with exact decimal arithmetic.
type Money struct {
	decimal.Decimal
}

// Zero is the zero amount.
var Zero = Money{Decimal: decimal.Zero}

// NewMoney wraps a decimal.
func NewMoney(d decimal.Decimal) Money {
	return Money{Decimal: d}
}

// MoneyFromFloat converts a float as stored by document databases.
//
// decimal.NewFromFloat uses the shortest representation that round-trips,
// so 12.5 becomes exactly 12.5 and 0.1 becomes exactly 0.1.
func MoneyFromFloat(f float64) Money {
	return Money{Decimal: decimal.NewFromFloat(f)}
}

// ParseMoney accepts "12.34", "12,34", "$12.34" and surrounding spaces.
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", ".")
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	return Money{Decimal: d}, nil
}

// MustMoney parses s and panics on error. Intended for tests and constants.
func MustMoney(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		panic(err)
	}
	return m
}

func (m Money) Add(o Money) Money {
	return Money{Decimal: m.Decimal.Add(o.Decimal)}
}

func (m Money) Sub(o Money) Money {
	return Money{Decimal: m.Decimal.Sub(o.Decimal)}
}

func (m Money) GreaterThan(o Money) bool {
	return m.Decimal.GreaterThan(o.Decimal)
}

func (m Money) Equal(o Money) bool {
	return m.Decimal.Equal(o.Decimal)
}

// Rounded returns the amount rounded half away from zero to cents.
func (m Money) Rounded() Money {
	return Money{Decimal: m.Decimal.Round(2)}
}

// Plain returns the amount with exactly two decimals and no symbol ("12.50").
func (m Money) Plain() string {
	return m.Decimal.StringFixed(2)
}

// Format renders the amount for display as "$12.50" or "-$3.00".
func (m Money) Format() string {
	if m.Decimal.IsNegative() {
		return "-$" + m.Decimal.Neg().StringFixed(2)
	}
	return "$" + m.Decimal.StringFixed(2)
}

// Float returns an approximation for chart rendering only.
func (m Money) Float() float64 {
	f, _ := m.Decimal.Float64()
	return f
}
