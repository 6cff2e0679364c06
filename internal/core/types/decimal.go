// Package types provides money and quantity helpers on top of shopspring/decimal.
package types

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Money represents a monetary value with full precision.
// Uses decimal.Decimal to avoid floating-point errors.
type Money = decimal.Decimal

// Quantity is a stock or billed quantity. Fractional quantities are allowed.
type Quantity = decimal.Decimal

const (
	// MoneyPlaces is the scale used for stored amounts (subtotals, tax, totals).
	MoneyPlaces int32 = 2
	// CostPlaces is the scale used for per-unit costs and prices.
	CostPlaces int32 = 4
)

// MustMoney creates a Money value from a string, panics on error.
// Use only for constants and tests.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// One returns 1.
func One() decimal.Decimal {
	return decimal.NewFromInt(1)
}

// Or returns *d, or fallback when d is nil.
func Or(d *decimal.Decimal, fallback decimal.Decimal) decimal.Decimal {
	if d == nil {
		return fallback
	}
	return *d
}

// OrZero returns *d, or zero when d is nil.
func OrZero(d *decimal.Decimal) decimal.Decimal {
	return Or(d, decimal.Zero)
}

// Ptr returns a pointer to a copy of d.
func Ptr(d decimal.Decimal) *decimal.Decimal {
	return &d
}

// RoundMoney rounds half away from zero to MoneyPlaces.
func RoundMoney(d Money) Money {
	return d.Round(MoneyPlaces)
}

// RoundCost rounds half away from zero to CostPlaces.
func RoundCost(d Money) Money {
	return d.Round(CostPlaces)
}

// PercentOf returns base * pct / 100.
func PercentOf(base, pct decimal.Decimal) decimal.Decimal {
	return base.Mul(pct).Div(decimal.NewFromInt(100))
}

// LooseDecimal decodes a stored JSON decimal leniently. null, "" and
// unparseable strings decode to an absent value instead of an error;
// numbers and numeric strings decode as usual.
type LooseDecimal struct {
	d *decimal.Decimal
}

// Get returns the decoded value, nil when absent.
func (l LooseDecimal) Get() *decimal.Decimal {
	return l.d
}

// UnmarshalJSON implements json.Unmarshaler.
func (l *LooseDecimal) UnmarshalJSON(data []byte) error {
	l.d = nil
	s := strings.TrimSpace(string(data))
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		s = strings.TrimSpace(str)
	}
	if s == "" || s == "null" {
		return nil
	}
	if d, err := decimal.NewFromString(s); err == nil {
		l.d = &d
	}
	return nil
}
