//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sheikh-saqib/midas-transaction-engine/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupPostgresContainer(t *testing.T) string {
	t.Helper()

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("midas"),
		tcpostgres.WithUsername("midas"),
		tcpostgres.WithPassword("midas"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, container.Terminate(ctx))
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	return dsn
}

func TestIntegration_PostgresStore(t *testing.T) {
	dsn := setupPostgresContainer(t)
	ctx := context.Background()

	store, err := Open(ctx, dsn)
	require.NoError(t, err)
	defer store.Close()

	// second open must not fail on existing tables
	again, err := Open(ctx, dsn)
	require.NoError(t, err)
	require.NoError(t, again.Close())

	a, err := store.UpsertAccount(ctx, "john_doe", decimal.NewFromInt(1000))
	require.NoError(t, err)

	t.Run("commit", func(t *testing.T) {
		sess, err := store.Begin(ctx)
		require.NoError(t, err)
		defer sess.Rollback()

		found, err := sess.FindAccount(ctx, "john_doe")
		require.NoError(t, err)
		require.NoError(t, sess.UpdateBalance(ctx, "john_doe", found.Balance.Sub(decimal.RequireFromString("50.5"))))
		require.NoError(t, sess.AppendEntry(ctx, models.LedgerEntry{
			ID:        uuid.New().String(),
			Sender:    "john_doe",
			Recipient: "amazon",
			Amount:    decimal.RequireFromString("50.5"),
			Bonus:     decimal.Zero,
			CreatedAt: time.Now().UTC(),
		}))
		require.NoError(t, sess.Commit())

		got, err := store.GetAccount(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, "949.5", got.Balance.String())

		entries, err := store.LedgerEntries(ctx, "john_doe")
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	t.Run("rollback", func(t *testing.T) {
		sess, err := store.Begin(ctx)
		require.NoError(t, err)
		require.NoError(t, sess.UpdateBalance(ctx, "john_doe", decimal.Zero))
		require.NoError(t, sess.Rollback())

		got, err := store.GetAccount(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, "949.5", got.Balance.String())
	})

	t.Run("unknown", func(t *testing.T) {
		sess, err := store.Begin(ctx)
		require.NoError(t, err)
		defer sess.Rollback()

		_, err = sess.FindAccount(ctx, "ghost")
		assert.ErrorIs(t, err, models.ErrAccountNotFound)

		_, err = store.GetAccount(ctx, a.ID+1000)
		assert.ErrorIs(t, err, models.ErrAccountNotFound)
	})
}
