package fraud

import (
	"github.com/sheikh-saqib/midas-transaction-engine/internal/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DefaultThreshold is the amount above which transfers are blocked when no
// threshold is configured.
var DefaultThreshold = decimal.NewFromInt(2000)

// Decision is the result of a fraud evaluation.
type Decision int

const (
	Allow Decision = iota
	Block
)

func (d Decision) String() string {
	if d == Block {
		return "BLOCK"
	}
	return "ALLOW"
}

// Guard blocks transfers whose amount is strictly greater than Threshold.
type Guard struct {
	threshold decimal.Decimal
	logger    *zap.Logger
}

func NewGuard(threshold decimal.Decimal, logger *zap.Logger) *Guard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Guard{threshold: threshold, logger: logger}
}

func (g *Guard) Threshold() decimal.Decimal {
	return g.threshold
}

// Evaluate is pure apart from the audit line written for blocked events.
func (g *Guard) Evaluate(event models.TransferEvent) Decision {
	if event.Amount.GreaterThan(g.threshold) {
		g.logger.Warn("fraud guard blocked transfer",
			zap.String("sender", event.Sender),
			zap.String("recipient", event.Recipient),
			zap.String("amount", event.Amount.String()),
			zap.String("threshold", g.threshold.String()),
		)
		return Block
	}
	return Allow
}
