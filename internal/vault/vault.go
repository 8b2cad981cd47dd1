// Package vault implements the custodial ledger core: serialized deposit
// and withdrawal bookkeeping over per-account records and vault-wide
// totals, with USD valuation snapshots taken from an external price feed.
//
// All wei and USD amounts use shopspring/decimal — never float64 for money.
package vault

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ethvault/vault-engine/internal/limits"
	"github.com/ethvault/vault-engine/internal/metrics"
	"github.com/ethvault/vault-engine/internal/model"
	"github.com/ethvault/vault-engine/internal/oracle"
	"github.com/ethvault/vault-engine/internal/store"
)

var (
	// ErrInsufficientBalance is returned when a withdrawal exceeds the
	// account's recorded balance.
	ErrInsufficientBalance = errors.New("vault: insufficient balance")

	// ErrTransferFailed is returned when the outbound asset transfer did
	// not succeed; the debit is rolled back before this is returned.
	ErrTransferFailed = errors.New("vault: transfer failed")
)

// priceScale is 1e8 as a decimal, for USD accrual math.
var priceScale = decimal.New(1, 8)

// Transferer delivers withdrawn funds to the account's external address.
// It is the one point where control leaves the vault mid-operation.
type Transferer interface {
	Transfer(ctx context.Context, address string, amount decimal.Decimal) error
}

// LogTransferer settles withdrawals in-process and only logs them. The
// default when no external settlement rail is wired up.
type LogTransferer struct{}

func (LogTransferer) Transfer(_ context.Context, address string, amount decimal.Decimal) error {
	slog.Info("funds released", "address", address, "amount_wei", amount.String())
	return nil
}

// Config wires a Vault's collaborators. Feed and Transfer are required;
// Journal and Hub are optional. Accounts and Totals preload state
// persisted by a previous run.
type Config struct {
	BankCap  decimal.Decimal
	Feed     oracle.PriceFeed
	Transfer Transferer
	Journal  store.Store
	Hub      *Hub
	Accounts map[string]*model.Account
	Totals   model.Totals
}

// Vault owns all account records and the aggregate totals. Every mutation
// runs under one mutex, so each operation observes and re-establishes the
// ledger invariants without interleaving.
type Vault struct {
	policy   *limits.Policy
	feed     oracle.PriceFeed
	transfer Transferer
	journal  store.Store
	hub      *Hub

	mu       sync.Mutex
	accounts map[string]*model.Account
	totals   model.Totals
}

// New creates a vault. The bank cap is immutable for the vault's lifetime.
func New(cfg Config) (*Vault, error) {
	if cfg.Feed == nil {
		return nil, errors.New("vault: price feed is required")
	}
	if cfg.Transfer == nil {
		return nil, errors.New("vault: transferer is required")
	}
	if cfg.BankCap.IsNegative() {
		return nil, errors.New("vault: bank cap must not be negative")
	}

	accounts := cfg.Accounts
	if accounts == nil {
		accounts = make(map[string]*model.Account)
	}
	totals := cfg.Totals
	if totals.TotalDeposits.IsZero() {
		totals.TotalDeposits = decimal.Zero
	}

	return &Vault{
		policy:   limits.NewPolicy(cfg.BankCap),
		feed:     cfg.Feed,
		transfer: cfg.Transfer,
		journal:  cfg.Journal,
		hub:      cfg.Hub,
		accounts: accounts,
		totals:   totals,
	}, nil
}

// Deposit credits amount wei to the account, accruing a USD valuation
// snapshot at the current feed price. The account record is created
// lazily on first deposit.
//
// A degraded price feed (unreachable, or a non-positive reading) skips
// the USD accrual but never blocks the deposit itself.
func (v *Vault) Deposit(ctx context.Context, address string, amount decimal.Decimal) (*model.Entry, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if err := v.policy.CheckDeposit(v.totals.TotalDeposits, amount); err != nil {
		return nil, err
	}

	price, usdDelta := v.valuation(ctx, address, amount)

	account, ok := v.accounts[address]
	created := !ok
	if created {
		account = model.NewAccount(address)
		v.accounts[address] = account
	}

	prevAccount := *account
	prevTotals := v.totals

	account.EthBalance = account.EthBalance.Add(amount)
	account.TotalUSDValue = account.TotalUSDValue.Add(usdDelta)
	account.DepositCount++
	v.totals.TotalDeposits = v.totals.TotalDeposits.Add(amount)
	v.totals.TotalDepositsCount++

	entry := &model.Entry{
		ID:        uuid.New().String(),
		Address:   address,
		Kind:      model.KindDeposit,
		Amount:    amount,
		Price:     price,
		USDDelta:  usdDelta,
		Timestamp: time.Now().UTC(),
	}

	if err := v.persist(ctx, entry, account); err != nil {
		*account = prevAccount
		v.totals = prevTotals
		if created {
			delete(v.accounts, address)
		}
		return nil, fmt.Errorf("deposit journal write: %w", err)
	}

	metrics.DepositsTotal.Inc()
	metrics.TotalDepositsWei.Set(v.totals.TotalDeposits.InexactFloat64())

	slog.Info("deposit committed",
		"address", address,
		"amount_wei", amount.String(),
		"usd_delta", usdDelta.String(),
		"total_deposits_wei", v.totals.TotalDeposits.String(),
	)

	if v.hub != nil {
		v.hub.Broadcast(Event{
			Type:    EventDeposited,
			Address: address,
			Amount:  amount.String(),
		})
	}
	return entry, nil
}

// Withdraw debits amount wei from the account and releases the funds via
// the transferer. Balances and counters commit before the transfer runs,
// so a re-entrant withdrawal issued from inside the transfer observes the
// already-debited balance. If the transfer fails, the debit is reversed
// and ErrTransferFailed is returned.
func (v *Vault) Withdraw(ctx context.Context, address string, amount decimal.Decimal) (*model.Entry, error) {
	v.mu.Lock()

	if err := v.policy.CheckWithdraw(amount); err != nil {
		v.mu.Unlock()
		return nil, err
	}

	account, ok := v.accounts[address]
	if !ok || account.EthBalance.LessThan(amount) {
		balance := decimal.Zero
		if ok {
			balance = account.EthBalance
		}
		v.mu.Unlock()
		return nil, fmt.Errorf("%w: balance %s, requested %s",
			ErrInsufficientBalance, balance.String(), amount.String())
	}

	// Effects before interaction: debit first, transfer after.
	account.EthBalance = account.EthBalance.Sub(amount)
	account.WithdrawalCount++
	v.totals.TotalDeposits = v.totals.TotalDeposits.Sub(amount)
	v.totals.TotalWithdrawalsCount++
	v.mu.Unlock()

	if err := v.transfer.Transfer(ctx, address, amount); err != nil {
		v.mu.Lock()
		account.EthBalance = account.EthBalance.Add(amount)
		account.WithdrawalCount--
		v.totals.TotalDeposits = v.totals.TotalDeposits.Add(amount)
		v.totals.TotalWithdrawalsCount--
		v.mu.Unlock()

		slog.Warn("withdrawal rolled back", "address", address, "amount_wei", amount.String(), "err", err)
		return nil, fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}

	entry := &model.Entry{
		ID:        uuid.New().String(),
		Address:   address,
		Kind:      model.KindWithdraw,
		Amount:    amount,
		USDDelta:  decimal.Zero,
		Timestamp: time.Now().UTC(),
	}

	v.mu.Lock()
	// The asset already moved; a journal failure here is logged, never
	// surfaced as an operation failure.
	if err := v.persist(ctx, entry, account); err != nil {
		slog.Error("withdrawal journal write failed", "address", address, "err", err)
	}
	totalDeposits := v.totals.TotalDeposits
	v.mu.Unlock()

	metrics.WithdrawalsTotal.Inc()
	metrics.TotalDepositsWei.Set(totalDeposits.InexactFloat64())

	slog.Info("withdrawal committed",
		"address", address,
		"amount_wei", amount.String(),
		"total_deposits_wei", totalDeposits.String(),
	)

	if v.hub != nil {
		v.hub.Broadcast(Event{
			Type:    EventWithdrawn,
			Address: address,
			Amount:  amount.String(),
		})
	}
	return entry, nil
}

// valuation reads the price feed and computes the USD accrual for a
// deposit: floor(amount × price / 1e8). Returns price 0 and a zero delta
// when the feed is degraded.
func (v *Vault) valuation(ctx context.Context, address string, amount decimal.Decimal) (int64, decimal.Decimal) {
	price, err := v.feed.Latest(ctx)
	if err != nil || price <= 0 {
		metrics.OracleDegradedTotal.Inc()
		slog.Warn("usd accrual skipped, price feed degraded",
			"address", address, "price", price, "err", err)
		return 0, decimal.Zero
	}

	usdDelta := amount.Mul(decimal.NewFromInt(price)).Div(priceScale).Floor()
	return price, usdDelta
}

// persist appends the journal entry and the updated account and totals.
// No-op when the vault runs without a durable store.
func (v *Vault) persist(ctx context.Context, entry *model.Entry, account *model.Account) error {
	if v.journal == nil {
		return nil
	}
	if err := v.journal.InsertEntry(ctx, entry); err != nil {
		return err
	}
	if err := v.journal.SaveAccount(ctx, account); err != nil {
		return err
	}
	return v.journal.SaveTotals(ctx, v.totals)
}

// --- Read operations ---

// Balance returns the account's withdrawable wei balance; zero for
// unknown accounts.
func (v *Vault) Balance(address string) decimal.Decimal {
	v.mu.Lock()
	defer v.mu.Unlock()
	if a, ok := v.accounts[address]; ok {
		return a.EthBalance
	}
	return decimal.Zero
}

// AccountRecord returns a copy of the full account record; a zeroed
// record for unknown accounts.
func (v *Vault) AccountRecord(address string) model.Account {
	v.mu.Lock()
	defer v.mu.Unlock()
	if a, ok := v.accounts[address]; ok {
		return *a
	}
	return *model.NewAccount(address)
}

// DepositCount returns how many deposits the account has made.
func (v *Vault) DepositCount(address string) uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	if a, ok := v.accounts[address]; ok {
		return a.DepositCount
	}
	return 0
}

// WithdrawalCount returns how many withdrawals the account has made.
func (v *Vault) WithdrawalCount(address string) uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	if a, ok := v.accounts[address]; ok {
		return a.WithdrawalCount
	}
	return 0
}

// Totals returns a copy of the vault-wide aggregate state.
func (v *Vault) Totals() model.Totals {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.totals
}

// BankCap returns the immutable capacity cap in wei.
func (v *Vault) BankCap() decimal.Decimal {
	return v.policy.BankCap
}

// MaxWithdrawal returns the fixed per-transaction withdrawal ceiling.
func (v *Vault) MaxWithdrawal() decimal.Decimal {
	return v.policy.MaxWithdrawal
}

// CurrentPrice delegates to the price feed and surfaces its failure
// directly; this is the one path where oracle.ErrUnavailable reaches the
// caller.
func (v *Vault) CurrentPrice(ctx context.Context) (int64, error) {
	return v.feed.Latest(ctx)
}
