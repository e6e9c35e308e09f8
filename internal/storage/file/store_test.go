package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crypto-tracker/internal/domain"
	"crypto-tracker/internal/storage"
)

func TestStore_LoadMissingFile(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "coins_v2.json"))

	w, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, w.IsEmpty())
}

func TestStore_SaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "coins_v2.json")
	store := NewStore(path)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domain.NewWatchlist("bitcoin", "ethereum")))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[\n    \"bitcoin\",\n    \"ethereum\"\n]\n", string(raw))

	w, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.CoinID{"bitcoin", "ethereum"}, w.IDs())
}

func TestStore_SaveOverwrites(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(filepath.Join(dir, "coins_v2.json"))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domain.NewWatchlist("bitcoin", "ethereum", "solana")))
	require.NoError(t, store.Save(ctx, domain.NewWatchlist("dogecoin")))

	w, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.CoinID{"dogecoin"}, w.IDs())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestStore_LoadInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "coins_v2.json")
	require.NoError(t, os.WriteFile(path, []byte(`["bitcoin",`), 0o644))

	w, err := NewStore(path).Load(context.Background())
	assert.ErrorIs(t, err, storage.ErrCorruptState)
	assert.True(t, w.IsEmpty())
}

func TestStore_LoadWrongShape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "coins_v2.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"bitcoin": true}`), 0o644))

	_, err := NewStore(path).Load(context.Background())
	assert.ErrorIs(t, err, storage.ErrCorruptState)
}

func TestStore_SaveToMissingDirectory(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "missing", "coins_v2.json"))

	err := store.Save(context.Background(), domain.NewWatchlist("bitcoin"))
	assert.Error(t, err)
}

func TestNewStore_DefaultPath(t *testing.T) {
	assert.Equal(t, DefaultPath, NewStore("").Path())
}
