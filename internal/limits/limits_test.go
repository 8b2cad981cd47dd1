package limits

import (
	"testing"

	"github.com/shopspring/decimal"
)

// wei builds a wei amount of coefficient × 10^exp.
func wei(coefficient int64, exp int32) decimal.Decimal {
	return decimal.New(coefficient, exp)
}

func TestCheckDeposit_WithinCap(t *testing.T) {
	p := NewPolicy(wei(50, 18))

	if err := p.CheckDeposit(wei(10, 18), wei(1, 18)); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
}

func TestCheckDeposit_ExactlyFillsCap(t *testing.T) {
	p := NewPolicy(wei(50, 18))

	// 40 ETH held, depositing the remaining 10 ETH lands exactly on the cap.
	if err := p.CheckDeposit(wei(40, 18), wei(10, 18)); err != nil {
		t.Errorf("deposit filling the cap exactly should succeed, got %v", err)
	}
}

func TestCheckDeposit_OneWeiOverCap(t *testing.T) {
	p := NewPolicy(wei(50, 18))

	over := wei(10, 18).Add(decimal.New(1, 0))
	if err := p.CheckDeposit(wei(40, 18), over); err != ErrBankCapExceeded {
		t.Errorf("expected ErrBankCapExceeded, got %v", err)
	}
}

func TestCheckDeposit_ZeroAmount(t *testing.T) {
	p := NewPolicy(wei(50, 18))

	if err := p.CheckDeposit(decimal.Zero, decimal.Zero); err != ErrZeroAmount {
		t.Errorf("expected ErrZeroAmount, got %v", err)
	}
}

func TestCheckDeposit_ZeroCapRejectsEverything(t *testing.T) {
	p := NewPolicy(decimal.Zero)

	if err := p.CheckDeposit(decimal.Zero, decimal.New(1, 0)); err != ErrBankCapExceeded {
		t.Errorf("expected ErrBankCapExceeded under zero cap, got %v", err)
	}
}

func TestCheckWithdraw_WithinCeiling(t *testing.T) {
	p := NewPolicy(wei(50, 18))

	if err := p.CheckWithdraw(wei(5, 18)); err != nil {
		t.Errorf("withdrawal at the ceiling should succeed, got %v", err)
	}
}

func TestCheckWithdraw_OneWeiOverCeiling(t *testing.T) {
	p := NewPolicy(wei(50, 18))

	over := wei(5, 18).Add(decimal.New(1, 0))
	if err := p.CheckWithdraw(over); err != ErrExceedsMaxWithdrawal {
		t.Errorf("expected ErrExceedsMaxWithdrawal, got %v", err)
	}
}

func TestCheckWithdraw_ZeroAmount(t *testing.T) {
	p := NewPolicy(wei(50, 18))

	if err := p.CheckWithdraw(decimal.Zero); err != ErrZeroAmount {
		t.Errorf("expected ErrZeroAmount, got %v", err)
	}
}

func TestCheckWithdraw_NegativeAmount(t *testing.T) {
	p := NewPolicy(wei(50, 18))

	if err := p.CheckWithdraw(wei(-1, 18)); err != ErrZeroAmount {
		t.Errorf("expected ErrZeroAmount for negative amount, got %v", err)
	}
}
