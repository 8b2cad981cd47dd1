// Package store defines the persistence interface for the vault engine.
// Implementations include PostgreSQL (source of truth), Redis (read-through
// cache), and in-memory (for testing).
//
// The vault's in-memory state is authoritative at runtime; the store is a
// durable journal loaded at boot and appended after every committed
// operation.
package store

import (
	"context"

	"github.com/ethvault/vault-engine/internal/model"
)

// Store is the persistence interface.
type Store interface {
	// --- Account records ---

	// LoadAccounts returns every persisted account keyed by address.
	LoadAccounts(ctx context.Context) (map[string]*model.Account, error)

	// SaveAccount upserts one account record.
	SaveAccount(ctx context.Context, account *model.Account) error

	// --- Aggregate totals ---

	// LoadTotals returns the vault-wide aggregate state. A store with no
	// persisted totals returns zeroed totals, not an error.
	LoadTotals(ctx context.Context) (model.Totals, error)

	// SaveTotals persists the vault-wide aggregate state.
	SaveTotals(ctx context.Context, totals model.Totals) error

	// --- Immutable journal ---

	// InsertEntry appends an immutable deposit/withdrawal record.
	InsertEntry(ctx context.Context, entry *model.Entry) error

	// EntriesByAccount returns all journal entries for one account,
	// oldest first.
	EntriesByAccount(ctx context.Context, address string) ([]model.Entry, error)

	// ListEntries returns the full journal, oldest first.
	ListEntries(ctx context.Context) ([]model.Entry, error)
}
