package events

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransferProcessed is published to the outcome topic once per processed payload.
type TransferProcessed struct {
	EventID    string           `json:"event_id"`
	Status     string           `json:"status"`
	Reason     string           `json:"reason,omitempty"`
	Sender     string           `json:"sender,omitempty"`
	Recipient  string           `json:"recipient,omitempty"`
	Amount     decimal.Decimal  `json:"amount"`
	Bonus      decimal.Decimal  `json:"bonus"`
	Balance    *decimal.Decimal `json:"balance,omitempty"`
	Error      string           `json:"error,omitempty"`
	OccurredAt time.Time        `json:"occurred_at"`
}
