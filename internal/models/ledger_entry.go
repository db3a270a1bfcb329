package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerEntry is an accepted transfer. Entries are append-only and never modified.
type LedgerEntry struct {
	ID        string          `json:"id"`
	Sender    string          `json:"sender"`
	Recipient string          `json:"recipient"`
	Amount    decimal.Decimal `json:"amount"`
	Bonus     decimal.Decimal `json:"bonus"`
	CreatedAt time.Time       `json:"created_at"`
}
