package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/sheikh-saqib/midas-transaction-engine/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *SQLiteAccountStore {
	t.Helper()

	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "midas.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "midas.db")
	ctx := context.Background()

	first, err := Open(ctx, path)
	require.NoError(t, err)
	_, err = first.UpsertAccount(ctx, "john_doe", decimal.NewFromInt(1000))
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := Open(ctx, path)
	require.NoError(t, err)
	defer second.Close()

	a, err := second.GetAccount(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "john_doe", a.Username)
}

func TestUpsertAndGetAccount(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	a, err := store.UpsertAccount(ctx, "john_doe", decimal.RequireFromString("1000.50"))
	require.NoError(t, err)
	assert.True(t, a.Balance.Equal(decimal.RequireFromString("1000.5")))

	reset, err := store.UpsertAccount(ctx, "john_doe", decimal.NewFromInt(1000))
	require.NoError(t, err)
	assert.Equal(t, a.ID, reset.ID)

	got, err := store.GetAccount(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(decimal.NewFromInt(1000)))

	_, err = store.GetAccount(ctx, a.ID+100)
	assert.ErrorIs(t, err, models.ErrAccountNotFound)
}

func TestSessionCommit(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	a, err := store.UpsertAccount(ctx, "john_doe", decimal.NewFromInt(1000))
	require.NoError(t, err)

	created := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	sess, err := store.Begin(ctx)
	require.NoError(t, err)

	found, err := sess.FindAccount(ctx, "john_doe")
	require.NoError(t, err)
	assert.Equal(t, a.ID, found.ID)

	require.NoError(t, sess.UpdateBalance(ctx, "john_doe", decimal.RequireFromString("950.25")))
	require.NoError(t, sess.AppendEntry(ctx, models.LedgerEntry{
		ID:        "e1",
		Sender:    "john_doe",
		Recipient: "amazon",
		Amount:    decimal.RequireFromString("50"),
		Bonus:     decimal.RequireFromString("0.25"),
		CreatedAt: created,
	}))
	require.NoError(t, sess.Commit())
	require.NoError(t, sess.Rollback(), "rollback after commit is a no-op")

	got, err := store.GetAccount(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "950.25", got.Balance.String())

	entries, err := store.LedgerEntries(ctx, "john_doe")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "e1", entries[0].ID)
	assert.Equal(t, "amazon", entries[0].Recipient)
	assert.True(t, entries[0].Amount.Equal(decimal.NewFromInt(50)))
	assert.Equal(t, "0.25", entries[0].Bonus.String())
	assert.True(t, created.Equal(entries[0].CreatedAt))
}

func TestSessionRollbackLeavesNoTrace(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	a, _ := store.UpsertAccount(ctx, "john_doe", decimal.NewFromInt(1000))

	sess, err := store.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, sess.UpdateBalance(ctx, "john_doe", decimal.NewFromInt(1)))
	require.NoError(t, sess.AppendEntry(ctx, models.LedgerEntry{ID: "e1", Sender: "john_doe", Recipient: "x", CreatedAt: time.Now()}))
	require.NoError(t, sess.Rollback())

	got, err := store.GetAccount(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(decimal.NewFromInt(1000)))

	entries, err := store.LedgerEntries(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDuplicateEntryFailsAndRollsBackBalance(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	a, _ := store.UpsertAccount(ctx, "john_doe", decimal.NewFromInt(1000))

	sess, _ := store.Begin(ctx)
	require.NoError(t, sess.AppendEntry(ctx, models.LedgerEntry{ID: "dup", Sender: "john_doe", Recipient: "x", CreatedAt: time.Now()}))
	require.NoError(t, sess.Commit())

	sess, _ = store.Begin(ctx)
	require.NoError(t, sess.UpdateBalance(ctx, "john_doe", decimal.NewFromInt(1)))
	err := sess.AppendEntry(ctx, models.LedgerEntry{ID: "dup", Sender: "john_doe", Recipient: "x", CreatedAt: time.Now()})
	require.Error(t, err)
	require.NoError(t, sess.Rollback())

	got, _ := store.GetAccount(ctx, a.ID)
	assert.True(t, got.Balance.Equal(decimal.NewFromInt(1000)))
}

func TestSessionUnknownAccount(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	sess, err := store.Begin(ctx)
	require.NoError(t, err)
	defer sess.Rollback()

	_, err = sess.FindAccount(ctx, "ghost")
	assert.ErrorIs(t, err, models.ErrAccountNotFound)
	assert.ErrorIs(t, sess.UpdateBalance(ctx, "ghost", decimal.Zero), models.ErrAccountNotFound)
}

func TestLedgerEntriesOrderAndFilter(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	sess, _ := store.Begin(ctx)
	for i, sender := range []string{"a", "b", "a"} {
		require.NoError(t, sess.AppendEntry(ctx, models.LedgerEntry{
			ID:        string(rune('1' + i)),
			Sender:    sender,
			Recipient: "r",
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}
	require.NoError(t, sess.Commit())

	onlyA, err := store.LedgerEntries(ctx, "a")
	require.NoError(t, err)
	require.Len(t, onlyA, 2)
	assert.Equal(t, "1", onlyA[0].ID)
	assert.Equal(t, "3", onlyA[1].ID)

	all, err := store.LedgerEntries(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
