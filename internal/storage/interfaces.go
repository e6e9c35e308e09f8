package storage

import (
	"context"

	"crypto-tracker/internal/domain"
)

// WatchlistStore persists the user's watchlist between sessions.
type WatchlistStore interface {
	// Load returns the persisted watchlist. Returns an empty watchlist and a
	// nil error when nothing was saved yet. Returns ErrCorruptState (wrapped)
	// when state exists but cannot be decoded.
	Load(ctx context.Context) (domain.Watchlist, error)

	// Save replaces all previously persisted state with w.
	Save(ctx context.Context, w domain.Watchlist) error
}

// Backend names accepted by configuration.
const (
	BackendFile     = "file"
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
	BackendRedis    = "redis"
)

// Backends lists every supported backend name.
var Backends = []string{BackendFile, BackendMemory, BackendPostgres, BackendSQLite, BackendRedis}
