// Package money provides a decimal-safe amount type for Indonesian rupiah.
//
// Rupiah has no sub-unit in this domain, so presented amounts are whole
// numbers, but intermediate arithmetic keeps full decimal precision so that
// chained percentage effects never accumulate rounding error. Round is the
// only operation that discards precision and callers apply it exactly once,
// at the end of a calculation chain.
package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is an immutable rupiah amount backed by an arbitrary-precision
// decimal. The zero value is Rp0 and ready to use.
type Money struct {
	amount decimal.Decimal
}

func New(amount decimal.Decimal) Money {
	return Money{amount: amount}
}

func Zero() Money {
	return Money{}
}

func FromInt(amount int64) Money {
	return Money{amount: decimal.NewFromInt(amount)}
}

// FromString parses a decimal amount string such as "150000" or "99.5".
func FromString(amount string) (Money, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	return Money{amount: d}, nil
}

func (m Money) Add(other Money) Money {
	return Money{amount: m.amount.Add(other.amount)}
}

func (m Money) Sub(other Money) Money {
	return Money{amount: m.amount.Sub(other.amount)}
}

func (m Money) Mul(factor decimal.Decimal) Money {
	return Money{amount: m.amount.Mul(factor)}
}

func (m Money) MulInt(n int64) Money {
	return Money{amount: m.amount.Mul(decimal.NewFromInt(n))}
}

// Percent returns p percent of the amount, e.g. m.Percent(10) is a tenth.
func (m Money) Percent(p decimal.Decimal) Money {
	return Money{amount: m.amount.Mul(p).Div(decimal.NewFromInt(100))}
}

func (m Money) Neg() Money {
	return Money{amount: m.amount.Neg()}
}

// Round rounds to whole rupiah, half up.
func (m Money) Round() Money {
	return Money{amount: m.amount.Round(0)}
}

// ClampZero returns Rp0 for negative amounts and the amount unchanged
// otherwise.
func (m Money) ClampZero() Money {
	if m.IsNegative() {
		return Money{}
	}
	return m
}

// Min returns the smaller of the two amounts.
func (m Money) Min(other Money) Money {
	if m.amount.LessThan(other.amount) {
		return m
	}
	return other
}

func (m Money) Cmp(other Money) int {
	return m.amount.Cmp(other.amount)
}

func (m Money) Equal(other Money) bool {
	return m.amount.Equal(other.amount)
}

func (m Money) LessThan(other Money) bool {
	return m.amount.LessThan(other.amount)
}

func (m Money) GreaterThan(other Money) bool {
	return m.amount.GreaterThan(other.amount)
}

func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

func (m Money) IsNegative() bool {
	return m.amount.IsNegative()
}

// Decimal exposes the underlying decimal for comparisons against rule
// condition values.
func (m Money) Decimal() decimal.Decimal {
	return m.amount
}

func (m Money) String() string {
	return "Rp" + m.amount.String()
}

// MarshalJSON encodes the amount as a plain JSON number string, preserving
// decimal precision across the wire.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.amount.String() + `"`), nil
}

// UnmarshalJSON accepts both a quoted decimal string and a bare JSON number.
func (m *Money) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	s = strings.Trim(s, `"`)
	if s == "" || s == "null" {
		m.amount = decimal.Decimal{}
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("invalid money amount %q: %w", s, err)
	}
	m.amount = d
	return nil
}
