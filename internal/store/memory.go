package store

import (
	"context"
	"sync"

	"github.com/ethvault/vault-engine/internal/model"
)

// MemoryStore implements Store with in-memory maps. Used for testing
// and development. Not suitable for production (no persistence).
type MemoryStore struct {
	mu       sync.RWMutex
	accounts map[string]*model.Account
	totals   model.Totals
	journal  []model.Entry
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts: make(map[string]*model.Account),
		totals:   model.NewTotals(),
	}
}

func (s *MemoryStore) LoadAccounts(_ context.Context) (map[string]*model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]*model.Account, len(s.accounts))
	for address, a := range s.accounts {
		copy := *a
		out[address] = &copy
	}
	return out, nil
}

func (s *MemoryStore) SaveAccount(_ context.Context, account *model.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Store a copy to avoid external mutation.
	copy := *account
	s.accounts[account.Address] = &copy
	return nil
}

func (s *MemoryStore) LoadTotals(_ context.Context) (model.Totals, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.totals, nil
}

func (s *MemoryStore) SaveTotals(_ context.Context, totals model.Totals) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.totals = totals
	return nil
}

func (s *MemoryStore) InsertEntry(_ context.Context, entry *model.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.journal = append(s.journal, *entry)
	return nil
}

func (s *MemoryStore) EntriesByAccount(_ context.Context, address string) ([]model.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []model.Entry
	for _, e := range s.journal {
		if e.Address == address {
			result = append(result, e)
		}
	}
	return result, nil
}

func (s *MemoryStore) ListEntries(_ context.Context) ([]model.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]model.Entry, len(s.journal))
	copy(result, s.journal)
	return result, nil
}
