package models

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Bounds on money values read off the wire. Decimal arithmetic rescales both
// operands to a common exponent, so an unbounded exponent costs unbounded work.
const (
	MaxAmountExponent = 18
	MinAmountExponent = -18
	MaxAmountDigits   = 38
)

var ErrAmountOutOfRange = errors.New("amount out of range")

// CheckAmount reports whether d is small enough in scale and precision to be
// used in balance arithmetic.
func CheckAmount(d decimal.Decimal) error {
	if exp := d.Exponent(); exp < MinAmountExponent || exp > MaxAmountExponent {
		return fmt.Errorf("%w: exponent %d", ErrAmountOutOfRange, exp)
	}
	if n := d.NumDigits(); n > MaxAmountDigits {
		return fmt.Errorf("%w: %d digits", ErrAmountOutOfRange, n)
	}
	return nil
}
