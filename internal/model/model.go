// Package model defines the core domain types shared across the vault engine.
// All wei and USD amounts use shopspring/decimal — never float64 for money.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Entry kinds recorded in the vault journal.
const (
	KindDeposit  = "DEPOSIT"
	KindWithdraw = "WITHDRAW"
)

// Account is one participant's record, created lazily on first deposit.
//
// TotalUSDValue is a historical accrual counter: each deposit adds the
// USD valuation at the price in effect at deposit time. It is never
// recomputed and never decremented on withdrawal.
type Account struct {
	Address         string          `json:"address" db:"address"`
	EthBalance      decimal.Decimal `json:"eth_balance" db:"eth_balance"`           // wei
	TotalUSDValue   decimal.Decimal `json:"total_usd_value" db:"total_usd_value"`   // wei-scale USD
	DepositCount    uint64          `json:"deposit_count" db:"deposit_count"`
	WithdrawalCount uint64          `json:"withdrawal_count" db:"withdrawal_count"`
}

// NewAccount returns a zeroed account for the given address.
func NewAccount(address string) *Account {
	return &Account{
		Address:       address,
		EthBalance:    decimal.Zero,
		TotalUSDValue: decimal.Zero,
	}
}

// Totals is the vault-wide aggregate state. TotalDeposits must equal the
// sum of all account EthBalance values at all times.
type Totals struct {
	TotalDeposits         decimal.Decimal `json:"total_deposits" db:"total_deposits"` // wei
	TotalDepositsCount    uint64          `json:"total_deposits_count" db:"total_deposits_count"`
	TotalWithdrawalsCount uint64          `json:"total_withdrawals_count" db:"total_withdrawals_count"`
}

// NewTotals returns zeroed aggregate state.
func NewTotals() Totals {
	return Totals{TotalDeposits: decimal.Zero}
}

// Entry is an immutable journal record of one deposit or withdrawal.
// Once created, these are never modified or deleted.
type Entry struct {
	ID        string          `json:"id" db:"id"`
	Address   string          `json:"address" db:"address"`
	Kind      string          `json:"kind" db:"kind"` // "DEPOSIT" or "WITHDRAW"
	Amount    decimal.Decimal `json:"amount" db:"amount"` // wei
	Price     int64           `json:"price" db:"price"`   // ETH/USD scaled 1e8; 0 if the feed was degraded
	USDDelta  decimal.Decimal `json:"usd_delta" db:"usd_delta"`
	Timestamp time.Time       `json:"timestamp" db:"timestamp"`
}
