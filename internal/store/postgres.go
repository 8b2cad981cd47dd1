package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/ethvault/vault-engine/internal/model"
)

// PostgresStore implements Store using PostgreSQL as the durable journal.
// All wei and USD values are stored as NUMERIC for exact precision.
//
// Totals live in a single-row table keyed by id=1.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) LoadAccounts(ctx context.Context) (map[string]*model.Account, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT address, eth_balance::TEXT, total_usd_value::TEXT,
		        deposit_count, withdrawal_count
		 FROM accounts`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	accounts := make(map[string]*model.Account)
	for rows.Next() {
		var a model.Account
		var balS, usdS string
		if err := rows.Scan(&a.Address, &balS, &usdS,
			&a.DepositCount, &a.WithdrawalCount); err != nil {
			return nil, err
		}
		a.EthBalance, _ = decimal.NewFromString(balS)
		a.TotalUSDValue, _ = decimal.NewFromString(usdS)
		accounts[a.Address] = &a
	}
	return accounts, rows.Err()
}

func (s *PostgresStore) SaveAccount(ctx context.Context, a *model.Account) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO accounts (address, eth_balance, total_usd_value, deposit_count, withdrawal_count)
		 VALUES ($1, $2::NUMERIC, $3::NUMERIC, $4, $5)
		 ON CONFLICT (address) DO UPDATE
		 SET eth_balance = EXCLUDED.eth_balance,
		     total_usd_value = EXCLUDED.total_usd_value,
		     deposit_count = EXCLUDED.deposit_count,
		     withdrawal_count = EXCLUDED.withdrawal_count`,
		a.Address, a.EthBalance.String(), a.TotalUSDValue.String(),
		a.DepositCount, a.WithdrawalCount,
	)
	return err
}

func (s *PostgresStore) LoadTotals(ctx context.Context) (model.Totals, error) {
	var t model.Totals
	var depS string

	err := s.pool.QueryRow(ctx,
		`SELECT total_deposits::TEXT, total_deposits_count, total_withdrawals_count
		 FROM vault_totals WHERE id = 1`).
		Scan(&depS, &t.TotalDepositsCount, &t.TotalWithdrawalsCount)
	if err == pgx.ErrNoRows {
		return model.NewTotals(), nil
	}
	if err != nil {
		return model.Totals{}, fmt.Errorf("load totals: %w", err)
	}

	t.TotalDeposits, _ = decimal.NewFromString(depS)
	return t, nil
}

func (s *PostgresStore) SaveTotals(ctx context.Context, t model.Totals) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO vault_totals (id, total_deposits, total_deposits_count, total_withdrawals_count)
		 VALUES (1, $1::NUMERIC, $2, $3)
		 ON CONFLICT (id) DO UPDATE
		 SET total_deposits = EXCLUDED.total_deposits,
		     total_deposits_count = EXCLUDED.total_deposits_count,
		     total_withdrawals_count = EXCLUDED.total_withdrawals_count`,
		t.TotalDeposits.String(), t.TotalDepositsCount, t.TotalWithdrawalsCount,
	)
	return err
}

func (s *PostgresStore) InsertEntry(ctx context.Context, e *model.Entry) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO vault_entries (id, address, kind, amount, price, usd_delta, timestamp)
		 VALUES ($1, $2, $3, $4::NUMERIC, $5, $6::NUMERIC, $7)`,
		e.ID, e.Address, e.Kind,
		e.Amount.String(), e.Price, e.USDDelta.String(),
		e.Timestamp,
	)
	return err
}

func (s *PostgresStore) EntriesByAccount(ctx context.Context, address string) ([]model.Entry, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, address, kind, amount::TEXT, price, usd_delta::TEXT, timestamp
		 FROM vault_entries WHERE address = $1 ORDER BY timestamp`, address)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEntries(rows)
}

func (s *PostgresStore) ListEntries(ctx context.Context) ([]model.Entry, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, address, kind, amount::TEXT, price, usd_delta::TEXT, timestamp
		 FROM vault_entries ORDER BY timestamp`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEntries(rows)
}

// scanEntries reads pgx rows into Entry slices.
type pgxRows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

func scanEntries(rows pgxRows) ([]model.Entry, error) {
	var entries []model.Entry
	for rows.Next() {
		var e model.Entry
		var amountS, usdS string

		if err := rows.Scan(&e.ID, &e.Address, &e.Kind,
			&amountS, &e.Price, &usdS, &e.Timestamp); err != nil {
			return nil, err
		}

		e.Amount, _ = decimal.NewFromString(amountS)
		e.USDDelta, _ = decimal.NewFromString(usdS)

		entries = append(entries, e)
	}
	return entries, rows.Err()
}
