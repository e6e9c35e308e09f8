package memory

import (
	"context"
	"sync"

	"crypto-tracker/internal/domain"
	"crypto-tracker/internal/storage"
)

// WatchlistStore is an in-memory implementation of storage.WatchlistStore.
type WatchlistStore struct {
	mu    sync.RWMutex
	ids   []domain.CoinID
	saves int
}

// NewWatchlistStore creates a new in-memory watchlist store, optionally
// seeded with ids.
func NewWatchlistStore(ids ...domain.CoinID) *WatchlistStore {
	return &WatchlistStore{
		ids: domain.NewWatchlist(ids...).IDs(),
	}
}

// Compile-time interface check.
var _ storage.WatchlistStore = (*WatchlistStore)(nil)

// Load returns the stored watchlist.
func (s *WatchlistStore) Load(_ context.Context) (domain.Watchlist, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return domain.NewWatchlist(s.ids...), nil
}

// Save replaces the stored watchlist.
func (s *WatchlistStore) Save(_ context.Context, w domain.Watchlist) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// IDs returns a copy, so later mutation by the caller is impossible
	s.ids = w.IDs()
	s.saves++
	return nil
}

// Saves returns how many times Save was called.
func (s *WatchlistStore) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}
