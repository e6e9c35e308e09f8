// Package watchlist loads, mutates and persists the user's watchlist.
package watchlist

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"crypto-tracker/internal/domain"
	"crypto-tracker/internal/observability"
	"crypto-tracker/internal/storage"
)

// Service wraps a storage backend with the watchlist contract: loading never
// fails, and every mutation is persisted before it returns.
type Service struct {
	store   storage.WatchlistStore
	backend string
	logger  *zap.Logger
}

// NewService creates a Service. backend labels metrics and log lines.
// A nil logger disables logging.
func NewService(store storage.WatchlistStore, backend string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, backend: backend, logger: logger}
}

// Load returns the persisted watchlist. Missing, unreadable or corrupt
// state is logged and treated as an empty watchlist.
func (s *Service) Load(ctx context.Context) domain.Watchlist {
	w, err := s.store.Load(ctx)
	observability.RecordWatchlistOperation(s.backend, "load", err)
	if err != nil {
		s.logger.Warn("watchlist state unreadable, starting empty",
			zap.String("backend", s.backend),
			zap.Error(err))
		return domain.Watchlist{}
	}
	observability.UpdateWatchlistSize(w.Len())
	return w
}

// Save overwrites persisted state with w.
func (s *Service) Save(ctx context.Context, w domain.Watchlist) error {
	err := s.store.Save(ctx, w)
	observability.RecordWatchlistOperation(s.backend, "save", err)
	if err != nil {
		return fmt.Errorf("save watchlist: %w", err)
	}
	observability.UpdateWatchlistSize(w.Len())
	s.logger.Debug("watchlist saved",
		zap.String("backend", s.backend),
		zap.Int("coins", w.Len()))
	return nil
}

// Add merges ids into w and persists the result. On save failure the
// unmodified watchlist is returned with the error.
func (s *Service) Add(ctx context.Context, w domain.Watchlist, ids ...domain.CoinID) (domain.Watchlist, error) {
	next := w.Add(ids...)
	if err := s.Save(ctx, next); err != nil {
		return w, err
	}
	return next, nil
}

// Remove subtracts ids from w. Storage is rewritten only when something was
// actually removed.
func (s *Service) Remove(ctx context.Context, w domain.Watchlist, ids ...domain.CoinID) (domain.Watchlist, error) {
	next := w.Remove(ids...)
	if next.Len() == w.Len() {
		return w, nil
	}
	if err := s.Save(ctx, next); err != nil {
		return w, err
	}
	return next, nil
}
