package incentive

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// UnavailableError describes why no bonus could be obtained.
type UnavailableError struct {
	Cause error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("incentive service unavailable: %v", e.Cause)
}

func (e *UnavailableError) Unwrap() error {
	return e.Cause
}

// Result is either Ok(bonus) or Unavailable(cause). The zero Result is Ok(0).
type Result struct {
	bonus decimal.Decimal
	err   *UnavailableError
}

func Ok(bonus decimal.Decimal) Result {
	return Result{bonus: bonus}
}

func Unavailable(cause error) Result {
	return Result{err: &UnavailableError{Cause: cause}}
}

func (r Result) OK() bool {
	return r.err == nil
}

// Bonus is the computed bonus, or zero for an Unavailable result.
func (r Result) Bonus() decimal.Decimal {
	if r.err != nil {
		return decimal.Zero
	}
	return r.bonus
}

// Err returns the *UnavailableError of a failed result, nil otherwise.
func (r Result) Err() error {
	if r.err == nil {
		return nil
	}
	return r.err
}
