package interfaces

import (
	"context"

	"github.com/sheikh-saqib/midas-transaction-engine/internal/models"
	"github.com/shopspring/decimal"
)

// AccountStore owns accounts and the ledger. Writes only happen through a Session.
// LedgerEntries returns the sender's entries oldest first, or every entry when
// sender is empty.
type AccountStore interface {
	Begin(ctx context.Context) (Session, error)
	GetAccount(ctx context.Context, id int64) (models.Account, error)
	UpsertAccount(ctx context.Context, username string, balance decimal.Decimal) (models.Account, error)
	LedgerEntries(ctx context.Context, sender string) ([]models.LedgerEntry, error)
	Close() error
}

// Session is a single store transaction. Nothing written through it is visible
// to readers until Commit. Rollback after Commit is a no-op, so callers can
// always defer it.
type Session interface {
	FindAccount(ctx context.Context, username string) (models.Account, error)
	UpdateBalance(ctx context.Context, username string, balance decimal.Decimal) error
	AppendEntry(ctx context.Context, entry models.LedgerEntry) error
	Commit() error
	Rollback() error
}
