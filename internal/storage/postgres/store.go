package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"
	interfaces "github.com/sheikh-saqib/midas-transaction-engine/internal/interfaces" // interface AccountStore
	"github.com/sheikh-saqib/midas-transaction-engine/internal/models"
	"github.com/shopspring/decimal"
)

const schema = `
	CREATE TABLE IF NOT EXISTS accounts (
		id BIGSERIAL PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		balance NUMERIC NOT NULL
	);

	CREATE TABLE IF NOT EXISTS transactions (
		id UUID PRIMARY KEY,
		sender TEXT NOT NULL,
		recipient TEXT NOT NULL,
		amount NUMERIC NOT NULL,
		bonus NUMERIC NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_transactions_sender ON transactions (sender);
`

type PostgresAccountStore struct {
	db *sql.DB
}

func NewPostgresAccountStore(db *sql.DB) *PostgresAccountStore {
	return &PostgresAccountStore{
		db: db,
	}
}

// Open connects to dsn, verifies the connection and ensures the tables exist.
func Open(ctx context.Context, dsn string) (*PostgresAccountStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return NewPostgresAccountStore(db), nil
}

func (p *PostgresAccountStore) Begin(ctx context.Context) (interfaces.Session, error) {
	dbTx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &session{tx: dbTx}, nil
}

func (p *PostgresAccountStore) GetAccount(ctx context.Context, id int64) (models.Account, error) {
	const query = `SELECT id, username, balance FROM accounts WHERE id = $1`

	var a models.Account
	err := p.db.QueryRowContext(ctx, query, id).Scan(&a.ID, &a.Username, &a.Balance)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Account{}, models.ErrAccountNotFound
	}
	if err != nil {
		return models.Account{}, err
	}
	return a, nil
}

func (p *PostgresAccountStore) UpsertAccount(ctx context.Context, username string, balance decimal.Decimal) (models.Account, error) {
	const query = `INSERT INTO accounts (username, balance) VALUES ($1, $2)
	ON CONFLICT (username) DO UPDATE SET balance = EXCLUDED.balance
	RETURNING id, username, balance`

	var a models.Account
	if err := p.db.QueryRowContext(ctx, query, username, balance).Scan(&a.ID, &a.Username, &a.Balance); err != nil {
		return models.Account{}, err
	}
	return a, nil
}

func (p *PostgresAccountStore) LedgerEntries(ctx context.Context, sender string) ([]models.LedgerEntry, error) {
	const query = `SELECT id, sender, recipient, amount, bonus, created_at FROM transactions
	WHERE $1 = '' OR sender = $1 ORDER BY created_at, id`

	rows, err := p.db.QueryContext(ctx, query, sender)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	entries := make([]models.LedgerEntry, 0)

	for rows.Next() {
		var entry models.LedgerEntry
		err := rows.Scan(
			&entry.ID,
			&entry.Sender,
			&entry.Recipient,
			&entry.Amount,
			&entry.Bonus,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

func (p *PostgresAccountStore) Close() error {
	return p.db.Close()
}

type session struct {
	tx *sql.Tx
}

// FindAccount locks the sender's row until the session ends.
func (s *session) FindAccount(ctx context.Context, username string) (models.Account, error) {
	const query = `SELECT id, username, balance FROM accounts WHERE username = $1 FOR UPDATE`

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
	const query = `UPDATE accounts SET balance = $1 WHERE username = $2`

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
	VALUES ($1, $2, $3, $4, $5, $6)`

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

var _ interfaces.AccountStore = (*PostgresAccountStore)(nil)
