// Package redis persists the watchlist as a JSON string under a single key.
package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"crypto-tracker/internal/domain"
	"crypto-tracker/internal/storage"
)

// DefaultKey is the key used when none is configured.
const DefaultKey = "crypto-tracker:watchlist"

// Compile-time check to ensure Store implements WatchlistStore
var _ storage.WatchlistStore = (*Store)(nil)

// Store implements storage.WatchlistStore on top of a redis client.
type Store struct {
	client *redis.Client
	key    string
}

// NewStore creates a redis store writing to key.
func NewStore(client *redis.Client, key string) *Store {
	if key == "" {
		key = DefaultKey
	}
	return &Store{client: client, key: key}
}

// Load fetches and decodes the stored JSON array. A missing key yields an
// empty watchlist.
func (s *Store) Load(ctx context.Context) (domain.Watchlist, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Watchlist{}, nil
		}
		return domain.Watchlist{}, fmt.Errorf("get %s: %w", s.key, err)
	}

	w, err := storage.DecodeWatchlist(data)
	if err != nil {
		return domain.Watchlist{}, fmt.Errorf("load %s: %w", s.key, err)
	}
	return w, nil
}

// Save overwrites the key with the encoded watchlist.
func (s *Store) Save(ctx context.Context, w domain.Watchlist) error {
	data, err := storage.EncodeWatchlist(w)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("set %s: %w", s.key, err)
	}
	return nil
}
