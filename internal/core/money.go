// Package core holds the domain model of the expenses tracker: users,
// cycles, the recurrence catalog and the transaction records materialized
// into cycles.
package core

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Money is a monetary amount in integer cents. All arithmetic and storage
// happens in cents; decimal strings only exist at the API boundary.
type Money struct {
	Cents int64
}

var ErrInvalidAmount = errors.New("invalid amount")

var centsFactor = decimal.NewFromInt(100)

// ParseMoney converts a decimal string ("1234.56", comma separator accepted)
// into cents. Fractions beyond two digits are rounded half-up. Amounts must
// be strictly positive.
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(normalizeAmount(s))
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	cents := d.Mul(centsFactor).Round(0)
	if !cents.IsPositive() {
		return Money{}, ErrInvalidAmount
	}
	v := cents.IntPart()
	if !cents.Equal(decimal.NewFromInt(v)) {
		return Money{}, ErrInvalidAmount
	}
	return Money{Cents: v}, nil
}

// String renders the amount as a plain decimal with two fraction digits,
// e.g. 1234 cents -> "12.34".
func (m Money) String() string {
	return decimal.NewFromInt(m.Cents).Div(centsFactor).StringFixed(2)
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func normalizeAmount(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch r {
		case ',':
			out = append(out, '.')
		case ' ', '\t':
		default:
			out = append(out, r)
		}
	}
	return string(out)
}
