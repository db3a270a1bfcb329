package ledger

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sheikh-saqib/midas-transaction-engine/internal/models"
	"github.com/shopspring/decimal"
)

type wireEvent struct {
	Sender    string          `json:"sender"`
	Recipient string          `json:"recipient"`
	Amount    json.RawMessage `json:"amount"`
}

// ParseEvent decodes an untrusted queue payload. Unknown fields are ignored.
// The amount has to be a JSON number >= 0, quoted numbers are rejected.
func ParseEvent(payload []byte) (models.TransferEvent, error) {
	var w wireEvent
	if err := json.Unmarshal(payload, &w); err != nil {
		return models.TransferEvent{}, &ParseError{Err: err}
	}

	if strings.TrimSpace(w.Sender) == "" {
		return models.TransferEvent{}, &ParseError{Err: errors.New("sender is required")}
	}
	if strings.TrimSpace(w.Recipient) == "" {
		return models.TransferEvent{}, &ParseError{Err: errors.New("recipient is required")}
	}

	raw := bytes.TrimSpace(w.Amount)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return models.TransferEvent{}, &ParseError{Err: errors.New("amount is required")}
	}
	if raw[0] == '"' {
		return models.TransferEvent{}, &ParseError{Err: errors.New("amount must be a number")}
	}

	amount, err := decimal.NewFromString(string(raw))
	if err != nil {
		return models.TransferEvent{}, &ParseError{Err: fmt.Errorf("amount: %w", err)}
	}
	if amount.IsNegative() {
		return models.TransferEvent{}, &ParseError{Err: fmt.Errorf("amount must not be negative, got %s", amount)}
	}
	if err := models.CheckAmount(amount); err != nil {
		return models.TransferEvent{}, &ParseError{Err: err}
	}

	return models.TransferEvent{
		Sender:    w.Sender,
		Recipient: w.Recipient,
		Amount:    amount,
	}, nil
}
