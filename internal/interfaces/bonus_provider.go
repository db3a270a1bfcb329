package interfaces

import (
	"context"

	"github.com/sheikh-saqib/midas-transaction-engine/internal/incentive"
	"github.com/sheikh-saqib/midas-transaction-engine/internal/models"
)

// BonusProvider computes the incentive bonus for an event. It never fails;
// failures are reported inside the Result.
type BonusProvider interface {
	FetchBonus(ctx context.Context, event models.TransferEvent) incentive.Result
}
