package domain

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"
)

var ErrInvalidAmount = errors.New("amount must be positive with at most two decimal places")

var (
	hundred  = decimal.NewFromInt(100)
	maxPaisa = decimal.NewFromInt(math.MaxInt64)
)

// Money is an amount of NPR in paisa.
type Money int64

func Rupees(r int64) Money {
	return Money(r * 100)
}

// MoneyFromDecimal converts a rupee amount as sent by clients ("500", "12.50").
func MoneyFromDecimal(d decimal.Decimal) (Money, error) {
	paisa := d.Shift(2)
	if !paisa.Equal(paisa.Truncate(0)) || !paisa.IsPositive() || paisa.GreaterThan(maxPaisa) {
		return 0, ErrInvalidAmount
	}
	return Money(paisa.IntPart()), nil
}

func (m Money) Decimal() decimal.Decimal {
	return decimal.New(int64(m), -2)
}

func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// Percent returns pct percent of m, rounded down to the paisa.
func (m Money) Percent(pct int64) Money {
	return Money(decimal.NewFromInt(int64(m)).
		Mul(decimal.NewFromInt(pct)).
		Div(hundred).
		Floor().
		IntPart())
}
