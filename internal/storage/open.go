package storage

import (
	"context"
	"fmt"

	interfaces "github.com/sheikh-saqib/midas-transaction-engine/internal/interfaces"
	"github.com/sheikh-saqib/midas-transaction-engine/internal/storage/memory"
	"github.com/sheikh-saqib/midas-transaction-engine/internal/storage/postgres"
	"github.com/sheikh-saqib/midas-transaction-engine/internal/storage/sqlite"
)

const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Open returns the account store for driver. The caller owns it and must Close it.
func Open(ctx context.Context, driver, dsn string) (interfaces.AccountStore, error) {
	switch driver {
	case DriverMemory:
		return memory.NewMemoryAccountStore(), nil
	case DriverSQLite:
		store, err := sqlite.Open(ctx, dsn)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return store, nil
	case DriverPostgres:
		store, err := postgres.Open(ctx, dsn)
		if err != nil {
			return nil, fmt.Errorf("open postgres store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", driver)
	}
}
