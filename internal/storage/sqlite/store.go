// Package sqlite persists the watchlist in a local SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/glebarez/go-sqlite"

	"crypto-tracker/internal/domain"
	"crypto-tracker/internal/storage"
)

// DefaultPath is the database file used when none is configured.
const DefaultPath = "watchlist.db"

// Store implements storage.WatchlistStore using SQLite.
type Store struct {
	db *sql.DB
}

// Compile-time interface check.
var _ storage.WatchlistStore = (*Store)(nil)

// NewStore opens (creating if needed) the database at path and ensures the
// watchlist table exists.
func NewStore(path string) (*Store, error) {
	if path == "" {
		path = DefaultPath
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("set pragma %s: %w", pragma, err)
		}
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS watchlist (
			position INTEGER PRIMARY KEY,
			coin_id TEXT NOT NULL UNIQUE
		);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create watchlist table: %w", err)
	}

	return &Store{db: db}, nil
}

// Load returns all rows ordered by position.
func (s *Store) Load(ctx context.Context) (domain.Watchlist, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT coin_id FROM watchlist ORDER BY position ASC")
	if err != nil {
		return domain.Watchlist{}, fmt.Errorf("query watchlist: %w", err)
	}
	defer rows.Close()

	var ids []domain.CoinID
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return domain.Watchlist{}, fmt.Errorf("scan watchlist: %w", err)
		}
		ids = append(ids, domain.CoinID(id))
	}
	if err := rows.Err(); err != nil {
		return domain.Watchlist{}, fmt.Errorf("iterate watchlist: %w", err)
	}
	return domain.NewWatchlist(ids...), nil
}

// Save replaces every row in a single transaction.
func (s *Store) Save(ctx context.Context, w domain.Watchlist) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM watchlist"); err != nil {
		return fmt.Errorf("clear watchlist: %w", err)
	}
	for i, id := range w.IDs() {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO watchlist (position, coin_id) VALUES (?, ?)",
			i, id.String(),
		); err != nil {
			return fmt.Errorf("insert watchlist coin %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
