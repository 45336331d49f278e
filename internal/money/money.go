package money

import (
	"bytes"
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Cents is an amount in minor currency units.
type Cents int64

var ErrOverflow = errors.New("amount out of range")

var (
	hundred  = decimal.NewFromInt(100)
	maxCents = decimal.NewFromInt(math.MaxInt64)
	minCents = decimal.NewFromInt(math.MinInt64)
)

// FromDecimal converts a major-unit amount, rounding half away from zero to the nearest cent.
func FromDecimal(d decimal.Decimal) Cents {
	return Cents(d.Mul(hundred).Round(0).IntPart())
}

// Parse reads a major-unit amount such as "1.50".
func Parse(s string) (Cents, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return FromDecimal(d), nil
}

func (c Cents) Decimal() decimal.Decimal {
	return decimal.New(int64(c), -2)
}

// Times returns the amount for quantity units.
func (c Cents) Times(quantity int) Cents {
	return c * Cents(quantity)
}

// TimesChecked is Times that fails with ErrOverflow instead of wrapping.
func (c Cents) TimesChecked(quantity int) (Cents, error) {
	return fit(decimal.NewFromInt(int64(c)).Mul(decimal.NewFromInt(int64(quantity))))
}

// Plus adds two amounts, failing with ErrOverflow instead of wrapping.
func (c Cents) Plus(o Cents) (Cents, error) {
	return fit(decimal.NewFromInt(int64(c)).Add(decimal.NewFromInt(int64(o))))
}

func fit(d decimal.Decimal) (Cents, error) {
	if d.GreaterThan(maxCents) || d.LessThan(minCents) {
		return 0, ErrOverflow
	}
	return Cents(d.IntPart()), nil
}

func (c Cents) String() string {
	return c.Decimal().StringFixed(2)
}

// MarshalJSON writes the amount as a major-unit JSON number, e.g. 4.00.
func (c Cents) MarshalJSON() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalJSON accepts a major-unit JSON number or numeric string.
func (c *Cents) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if len(data) == 0 || string(data) == "null" {
		*c = 0
		return nil
	}
	v, err := Parse(string(data))
	if err != nil {
		return err
	}
	*c = v
	return nil
}
