package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"crypto-tracker/internal/domain"
	"crypto-tracker/internal/storage"
)

// WatchlistStore implements storage.WatchlistStore using PostgreSQL.
// The watchlist is stored one row per coin; position preserves order.
type WatchlistStore struct {
	pool *Pool
}

// NewWatchlistStore creates a new WatchlistStore.
func NewWatchlistStore(pool *Pool) *WatchlistStore {
	return &WatchlistStore{pool: pool}
}

// Compile-time interface check.
var _ storage.WatchlistStore = (*WatchlistStore)(nil)

// Load returns all rows ordered by position. An empty table yields an empty
// watchlist.
func (s *WatchlistStore) Load(ctx context.Context) (domain.Watchlist, error) {
	query := `
		SELECT coin_id
		FROM watchlist
		ORDER BY position ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return domain.Watchlist{}, fmt.Errorf("query watchlist: %w", err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return domain.Watchlist{}, fmt.Errorf("scan watchlist: %w", err)
	}
	return domain.NewWatchlist(domain.CoinIDs(ids)...), nil
}

// Save replaces every row in a single transaction.
func (s *WatchlistStore) Save(ctx context.Context, w domain.Watchlist) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM watchlist`); err != nil {
		return fmt.Errorf("clear watchlist: %w", err)
	}

	query := `
		INSERT INTO watchlist (position, coin_id)
		VALUES ($1, $2)
	`

	for i, id := range w.IDs() {
		if _, err := tx.Exec(ctx, query, i, id.String()); err != nil {
			return fmt.Errorf("insert watchlist coin %s: %w", id, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}
