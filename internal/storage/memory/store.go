package memory

import (
	"context"
	"errors"
	"sync"

	interfaces "github.com/sheikh-saqib/midas-transaction-engine/internal/interfaces"
	"github.com/sheikh-saqib/midas-transaction-engine/internal/models"
	"github.com/shopspring/decimal"
)

var ErrSessionClosed = errors.New("session already closed")

// MemoryAccountStore keeps accounts and ledger entries in memory.
// Session writes are staged and applied under the store mutex on Commit.
type MemoryAccountStore struct {
	mu       sync.Mutex
	nextID   int64
	accounts map[string]models.Account // keyed by username
	entries  []models.LedgerEntry
}

func NewMemoryAccountStore() *MemoryAccountStore {
	return &MemoryAccountStore{
		accounts: make(map[string]models.Account),
		entries:  make([]models.LedgerEntry, 0),
	}
}

func (m *MemoryAccountStore) Begin(ctx context.Context) (interfaces.Session, error) {
	return &session{
		store:    m,
		balances: make(map[string]decimal.Decimal),
	}, nil
}

func (m *MemoryAccountStore) GetAccount(ctx context.Context, id int64) (models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, a := range m.accounts {
		if a.ID == id {
			return a, nil
		}
	}
	return models.Account{}, models.ErrAccountNotFound
}

func (m *MemoryAccountStore) UpsertAccount(ctx context.Context, username string, balance decimal.Decimal) (models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, exists := m.accounts[username]
	if !exists {
		m.nextID++
		a = models.Account{ID: m.nextID, Username: username}
	}
	a.Balance = balance
	m.accounts[username] = a
	return a, nil
}

// LedgerEntries returns a copy of the sender's entries, or of all entries when
// sender is empty, in insertion order.
func (m *MemoryAccountStore) LedgerEntries(ctx context.Context, sender string) ([]models.LedgerEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]models.LedgerEntry, 0)
	for _, e := range m.entries {
		if sender == "" || e.Sender == sender {
			result = append(result, e)
		}
	}
	return result, nil
}

func (m *MemoryAccountStore) Close() error {
	return nil
}

type session struct {
	store    *MemoryAccountStore
	balances map[string]decimal.Decimal
	entries  []models.LedgerEntry
	done     bool
}

func (s *session) FindAccount(ctx context.Context, username string) (models.Account, error) {
	if s.done {
		return models.Account{}, ErrSessionClosed
	}

	s.store.mu.Lock()
	a, exists := s.store.accounts[username]
	s.store.mu.Unlock()

	if !exists {
		return models.Account{}, models.ErrAccountNotFound
	}
	if staged, ok := s.balances[username]; ok {
		a.Balance = staged
	}
	return a, nil
}

func (s *session) UpdateBalance(ctx context.Context, username string, balance decimal.Decimal) error {
	if _, err := s.FindAccount(ctx, username); err != nil {
		return err
	}
	s.balances[username] = balance
	return nil
}

func (s *session) AppendEntry(ctx context.Context, entry models.LedgerEntry) error {
	if s.done {
		return ErrSessionClosed
	}
	s.entries = append(s.entries, entry)
	return nil
}

func (s *session) Commit() error {
	if s.done {
		return ErrSessionClosed
	}
	s.done = true

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	for username, balance := range s.balances {
		a := s.store.accounts[username]
		a.Balance = balance
		s.store.accounts[username] = a
	}
	s.store.entries = append(s.store.entries, s.entries...)
	return nil
}

func (s *session) Rollback() error {
	s.done = true
	s.balances = nil
	s.entries = nil
	return nil
}

// Compile-time check: ensure MemoryAccountStore implements AccountStore interface
var _ interfaces.AccountStore = (*MemoryAccountStore)(nil)
