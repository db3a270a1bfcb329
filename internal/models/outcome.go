package models

import "github.com/shopspring/decimal"

// Status is the terminal state of one processed payload.
type Status string

const (
	StatusAccepted Status = "ACCEPTED"
	StatusBlocked  Status = "BLOCKED"
	StatusSkipped  Status = "SKIPPED"
	StatusFailed   Status = "FAILED"
)

// Reasons attached to SKIPPED and FAILED outcomes.
const (
	ReasonParseError    = "parse_error"
	ReasonUnknownSender = "unknown_sender"
	ReasonStoreError    = "store_error"
)

// Outcome is the single record emitted for every processed payload.
// Fields that were not reached (e.g. Balance for a BLOCKED event) are left zero.
type Outcome struct {
	Status    Status
	Reason    string
	Sender    string
	Recipient string
	Amount    decimal.Decimal
	Bonus     decimal.Decimal
	Balance   decimal.Decimal
	Err       error
}
