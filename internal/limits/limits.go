// Package limits implements the vault's capacity and per-transaction
// limit checks. The Policy is stateless: callers pass in the current
// aggregate total and the requested amount.
package limits

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	// ErrZeroAmount is returned when an operation carries a zero or
	// negative amount.
	ErrZeroAmount = errors.New("limits: amount must be positive")

	// ErrBankCapExceeded is returned when a deposit would push the
	// aggregate balance beyond the bank cap.
	ErrBankCapExceeded = errors.New("limits: bank capacity exceeded")

	// ErrExceedsMaxWithdrawal is returned when a single withdrawal
	// exceeds the fixed per-transaction ceiling.
	ErrExceedsMaxWithdrawal = errors.New("limits: exceeds maximum withdrawal limit")
)

// DefaultMaxWithdrawal is the fixed per-withdrawal ceiling: 5 ETH in wei.
var DefaultMaxWithdrawal = decimal.New(5, 18)

// Policy holds the vault's immutable limits. BankCap bounds the sum of
// all account balances; MaxWithdrawal bounds a single withdrawal
// regardless of the account's balance.
type Policy struct {
	BankCap       decimal.Decimal
	MaxWithdrawal decimal.Decimal
}

// NewPolicy creates a policy with the given bank cap and the default
// withdrawal ceiling. A zero cap is legal — it simply makes every
// deposit fail the capacity check.
func NewPolicy(bankCap decimal.Decimal) *Policy {
	return &Policy{
		BankCap:       bankCap,
		MaxWithdrawal: DefaultMaxWithdrawal,
	}
}

// CheckDeposit validates a deposit of amount against the cap given the
// current aggregate total. Exactly filling the cap is allowed.
func (p *Policy) CheckDeposit(currentTotal, amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrZeroAmount
	}
	if currentTotal.Add(amount).GreaterThan(p.BankCap) {
		return ErrBankCapExceeded
	}
	return nil
}

// CheckWithdraw validates a withdrawal amount against the per-transaction
// ceiling. Balance sufficiency is the vault's concern, not the policy's.
func (p *Policy) CheckWithdraw(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrZeroAmount
	}
	if amount.GreaterThan(p.MaxWithdrawal) {
		return ErrExceedsMaxWithdrawal
	}
	return nil
}
