package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ethvault/vault-engine/internal/model"
)

// CachedStore wraps a primary Store (PostgreSQL) with a Redis read-through
// cache. Writes go to the primary store and invalidate the cache; reads
// check Redis first then fall back to the primary.
type CachedStore struct {
	primary Store
	rdb     *redis.Client
	ttl     time.Duration
}

// NewCachedStore creates a cached wrapper around a primary store.
func NewCachedStore(primary Store, rdb *redis.Client, ttl time.Duration) *CachedStore {
	return &CachedStore{
		primary: primary,
		rdb:     rdb,
		ttl:     ttl,
	}
}

// --- Write-through (write to primary, invalidate cache) ---

func (s *CachedStore) SaveAccount(ctx context.Context, a *model.Account) error {
	if err := s.primary.SaveAccount(ctx, a); err != nil {
		return err
	}
	s.cacheAccount(ctx, a)
	return nil
}

func (s *CachedStore) SaveTotals(ctx context.Context, t model.Totals) error {
	if err := s.primary.SaveTotals(ctx, t); err != nil {
		return err
	}
	if data, err := json.Marshal(t); err == nil {
		s.rdb.Set(ctx, totalsKey(), data, s.ttl)
	}
	return nil
}

func (s *CachedStore) InsertEntry(ctx context.Context, e *model.Entry) error {
	if err := s.primary.InsertEntry(ctx, e); err != nil {
		return err
	}
	// Invalidate the journal cache for this account; next read re-populates.
	s.rdb.Del(ctx, entriesKey(e.Address))
	return nil
}

// --- Read-through (check cache first) ---

func (s *CachedStore) LoadTotals(ctx context.Context) (model.Totals, error) {
	data, err := s.rdb.Get(ctx, totalsKey()).Bytes()
	if err == nil {
		var t model.Totals
		if json.Unmarshal(data, &t) == nil {
			return t, nil
		}
	}

	// Cache miss: read from primary.
	t, err := s.primary.LoadTotals(ctx)
	if err != nil {
		return model.Totals{}, err
	}

	if data, err := json.Marshal(t); err == nil {
		s.rdb.Set(ctx, totalsKey(), data, s.ttl)
	}
	return t, nil
}

func (s *CachedStore) EntriesByAccount(ctx context.Context, address string) ([]model.Entry, error) {
	data, err := s.rdb.Get(ctx, entriesKey(address)).Bytes()
	if err == nil {
		var entries []model.Entry
		if json.Unmarshal(data, &entries) == nil {
			return entries, nil
		}
	}

	// Cache miss.
	entries, err := s.primary.EntriesByAccount(ctx, address)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(entries); err == nil {
		s.rdb.Set(ctx, entriesKey(address), data, s.ttl)
	}
	return entries, nil
}

// --- Passthrough (not cached) ---

// LoadAccounts runs once at boot; caching it would only serve stale state.
func (s *CachedStore) LoadAccounts(ctx context.Context) (map[string]*model.Account, error) {
	return s.primary.LoadAccounts(ctx)
}

func (s *CachedStore) ListEntries(ctx context.Context) ([]model.Entry, error) {
	return s.primary.ListEntries(ctx)
}

// --- Cache helpers ---

func (s *CachedStore) cacheAccount(ctx context.Context, a *model.Account) {
	if data, err := json.Marshal(a); err == nil {
		s.rdb.Set(ctx, accountKey(a.Address), data, s.ttl)
	}
}

func accountKey(address string) string { return fmt.Sprintf("account:%s", address) }
func entriesKey(address string) string { return fmt.Sprintf("entries:%s", address) }
func totalsKey() string                { return "vault:totals" }
