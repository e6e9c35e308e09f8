// Package file persists the watchlist as a JSON document on local disk.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"crypto-tracker/internal/domain"
	"crypto-tracker/internal/storage"
)

// DefaultPath is the watchlist file used when none is configured.
const DefaultPath = "coins_v2.json"

// Store implements storage.WatchlistStore over a single JSON file.
// Saves are atomic: the document is written to a temp file in the same
// directory and renamed over the target.
type Store struct {
	path string
}

// NewStore creates a file store at path. An empty path selects DefaultPath.
func NewStore(path string) *Store {
	if path == "" {
		path = DefaultPath
	}
	return &Store{path: path}
}

// Compile-time interface check.
var _ storage.WatchlistStore = (*Store)(nil)

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the watchlist file. A missing file yields an empty watchlist.
func (s *Store) Load(_ context.Context) (domain.Watchlist, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.Watchlist{}, nil
		}
		return domain.Watchlist{}, fmt.Errorf("read watchlist %s: %w", s.path, err)
	}

	w, err := storage.DecodeWatchlist(data)
	if err != nil {
		return domain.Watchlist{}, fmt.Errorf("load %s: %w", s.path, err)
	}
	return w, nil
}

// Save overwrites the watchlist file with w.
func (s *Store) Save(_ context.Context, w domain.Watchlist) error {
	data, err := storage.EncodeWatchlist(w)
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write watchlist: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync watchlist: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close watchlist: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod watchlist: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace watchlist %s: %w", s.path, err)
	}
	return nil
}
