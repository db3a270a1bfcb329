package models

import "github.com/shopspring/decimal"

// TransferEvent is one parsed request to move funds from Sender to Recipient.
// It only lives for the duration of a single processing call.
type TransferEvent struct {
	Sender    string          `json:"sender"`
	Recipient string          `json:"recipient"`
	Amount    decimal.Decimal `json:"amount"`
}
