package models

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrAccountNotFound is returned by stores when no account matches the lookup key.
var ErrAccountNotFound = errors.New("account not found")

// Account holds a user's balance, keyed by the unique Username.
type Account struct {
	ID       int64           // surrogate key used by the balance query
	Username string          // unique
	Balance  decimal.Decimal // may go negative, no floor is enforced
}
