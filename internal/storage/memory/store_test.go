package memory

import (
	"context"
	"testing"
	"time"

	"github.com/sheikh-saqib/midas-transaction-engine/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertAccountKeepsID(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryAccountStore()

	a, err := s.UpsertAccount(ctx, "john_doe", decimal.NewFromInt(1000))
	require.NoError(t, err)
	b, err := s.UpsertAccount(ctx, "jane", decimal.NewFromInt(5))
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)

	reset, err := s.UpsertAccount(ctx, "john_doe", decimal.NewFromInt(1))
	require.NoError(t, err)
	assert.Equal(t, a.ID, reset.ID)

	got, err := s.GetAccount(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(decimal.NewFromInt(1)))

	_, err = s.GetAccount(ctx, 999)
	assert.ErrorIs(t, err, models.ErrAccountNotFound)
}

func TestSessionCommitAppliesBalanceAndEntry(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryAccountStore()
	a, _ := s.UpsertAccount(ctx, "john_doe", decimal.NewFromInt(1000))

	sess, err := s.Begin(ctx)
	require.NoError(t, err)

	require.NoError(t, sess.UpdateBalance(ctx, "john_doe", decimal.NewFromInt(950)))
	require.NoError(t, sess.AppendEntry(ctx, models.LedgerEntry{ID: "1", Sender: "john_doe", Recipient: "amazon", Amount: decimal.NewFromInt(50), CreatedAt: time.Now()}))

	staged, err := sess.FindAccount(ctx, "john_doe")
	require.NoError(t, err)
	assert.True(t, staged.Balance.Equal(decimal.NewFromInt(950)))

	// not visible before commit
	before, _ := s.GetAccount(ctx, a.ID)
	assert.True(t, before.Balance.Equal(decimal.NewFromInt(1000)))
	entries, _ := s.LedgerEntries(ctx, "john_doe")
	assert.Empty(t, entries)

	require.NoError(t, sess.Commit())
	require.NoError(t, sess.Rollback())

	after, _ := s.GetAccount(ctx, a.ID)
	assert.True(t, after.Balance.Equal(decimal.NewFromInt(950)))
	entries, _ = s.LedgerEntries(ctx, "john_doe")
	assert.Len(t, entries, 1)
}

func TestSessionRollbackDiscardsEverything(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryAccountStore()
	a, _ := s.UpsertAccount(ctx, "john_doe", decimal.NewFromInt(1000))

	sess, _ := s.Begin(ctx)
	require.NoError(t, sess.UpdateBalance(ctx, "john_doe", decimal.NewFromInt(1)))
	require.NoError(t, sess.AppendEntry(ctx, models.LedgerEntry{ID: "1", Sender: "john_doe"}))
	require.NoError(t, sess.Rollback())

	assert.ErrorIs(t, sess.Commit(), ErrSessionClosed)

	got, _ := s.GetAccount(ctx, a.ID)
	assert.True(t, got.Balance.Equal(decimal.NewFromInt(1000)))
	entries, _ := s.LedgerEntries(ctx, "")
	assert.Empty(t, entries)
}

func TestSessionUnknownAccount(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryAccountStore()
	sess, _ := s.Begin(ctx)
	defer sess.Rollback()

	_, err := sess.FindAccount(ctx, "nobody")
	assert.ErrorIs(t, err, models.ErrAccountNotFound)
	assert.ErrorIs(t, sess.UpdateBalance(ctx, "nobody", decimal.Zero), models.ErrAccountNotFound)
}

func TestLedgerEntriesFiltersBySender(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryAccountStore()
	s.UpsertAccount(ctx, "a", decimal.Zero)
	s.UpsertAccount(ctx, "b", decimal.Zero)

	sess, _ := s.Begin(ctx)
	sess.AppendEntry(ctx, models.LedgerEntry{ID: "1", Sender: "a"})
	sess.AppendEntry(ctx, models.LedgerEntry{ID: "2", Sender: "b"})
	sess.AppendEntry(ctx, models.LedgerEntry{ID: "3", Sender: "a"})
	require.NoError(t, sess.Commit())

	onlyA, _ := s.LedgerEntries(ctx, "a")
	require.Len(t, onlyA, 2)
	assert.Equal(t, "1", onlyA[0].ID)
	assert.Equal(t, "3", onlyA[1].ID)

	all, _ := s.LedgerEntries(ctx, "")
	assert.Len(t, all, 3)
}
