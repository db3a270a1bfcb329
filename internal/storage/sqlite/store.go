package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	interfaces "github.com/sheikh-saqib/midas-transaction-engine/internal/interfaces"
	"github.com/sheikh-saqib/midas-transaction-engine/internal/models"
	"github.com/shopspring/decimal"
)

// Amounts are stored as TEXT so decimals round-trip exactly.
const schema = `
	CREATE TABLE IF NOT EXISTS accounts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		balance TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS transactions (
		id TEXT PRIMARY KEY,
		sender TEXT NOT NULL,
		recipient TEXT NOT NULL,
		amount TEXT NOT NULL,
		bonus TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_transactions_sender ON transactions(sender);
`

type SQLiteAccountStore struct {
	db *sql.DB
}

// Open opens (or creates) the database at dsn and ensures the tables exist.
func Open(ctx context.Context, dsn string) (*SQLiteAccountStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	// sqlite allows a single writer; one connection avoids SQLITE_BUSY inside the process.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLiteAccountStore{db: db}, nil
}

func (s *SQLiteAccountStore) Begin(ctx context.Context) (interfaces.Session, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &session{tx: tx}, nil
}

func (s *SQLiteAccountStore) GetAccount(ctx context.Context, id int64) (models.Account, error) {
	const query = `SELECT id, username, balance FROM accounts WHERE id = ?`

	var a models.Account
	err := s.db.QueryRowContext(ctx, query, id).Scan(&a.ID, &a.Username, &a.Balance)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Account{}, models.ErrAccountNotFound
	}
	if err != nil {
		return models.Account{}, err
	}
	return a, nil
}

func (s *SQLiteAccountStore) UpsertAccount(ctx context.Context, username string, balance decimal.Decimal) (models.Account, error) {
	const upsert = `INSERT INTO accounts (username, balance) VALUES (?, ?)
	ON CONFLICT(username) DO UPDATE SET balance = excluded.balance`
	const query = `SELECT id, username, balance FROM accounts WHERE username = ?`

	if _, err := s.db.ExecContext(ctx, upsert, username, balance); err != nil {
		return models.Account{}, err
	}

	var a models.Account
	if err := s.db.QueryRowContext(ctx, query, username).Scan(&a.ID, &a.Username, &a.Balance); err != nil {
		return models.Account{}, err
	}
	return a, nil
}

func (s *SQLiteAccountStore) LedgerEntries(ctx context.Context, sender string) ([]models.LedgerEntry, error) {
	const query = `SELECT id, sender, recipient, amount, bonus, created_at FROM transactions
	WHERE ? = '' OR sender = ? ORDER BY created_at, rowid`

	rows, err := s.db.QueryContext(ctx, query, sender, sender)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]models.LedgerEntry, 0)
	for rows.Next() {
		var e models.LedgerEntry
		if err := rows.Scan(&e.ID, &e.Sender, &e.Recipient, &e.Amount, &e.Bonus, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *SQLiteAccountStore) Close() error {
	return s.db.Close()
}

type session struct {
	tx *sql.Tx
}

func (s *session) FindAccount(ctx context.Context, username string) (models.Account, error) {
	const query = `SELECT id, username, balance FROM accounts WHERE username = ?`

	var a models.Account
	err := s.tx.QueryRowContext(ctx, query, username).Scan(&a.ID, &a.Username, &a.Balance)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Account{}, models.ErrAccountNotFound
	}
	if err != nil {
		return models.Account{}, err
	}
	return a, nil
}

func (s *session) UpdateBalance(ctx context.Context, username string, balance decimal.Decimal) error {
	const query = `UPDATE accounts SET balance = ? WHERE username = ?`

	res, err := s.tx.ExecContext(ctx, query, balance, username)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return models.ErrAccountNotFound
	}
	return nil
}

func (s *session) AppendEntry(ctx context.Context, entry models.LedgerEntry) error {
	const query = `INSERT INTO transactions (id, sender, recipient, amount, bonus, created_at)
	VALUES (?, ?, ?, ?, ?, ?)`

	_, err := s.tx.ExecContext(ctx, query, entry.ID, entry.Sender, entry.Recipient, entry.Amount, entry.Bonus, entry.CreatedAt)
	return err
}

func (s *session) Commit() error {
	return s.tx.Commit()
}

func (s *session) Rollback() error {
	if err := s.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return err
	}
	return nil
}

var _ interfaces.AccountStore = (*SQLiteAccountStore)(nil)
