package storage

import (
	"bytes"
	"encoding/json"
	"fmt"

	"crypto-tracker/internal/domain"
)

// EncodeWatchlist renders w as an indented JSON array of canonical ids.
func EncodeWatchlist(w domain.Watchlist) ([]byte, error) {
	ids := domain.Strings(w.IDs())
	data, err := json.MarshalIndent(ids, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("encode watchlist: %w", err)
	}
	return append(data, '\n'), nil
}

// DecodeWatchlist parses a JSON array of canonical ids. Blank entries and
// duplicates are dropped. A JSON null decodes to an empty watchlist.
func DecodeWatchlist(data []byte) (domain.Watchlist, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return domain.Watchlist{}, fmt.Errorf("decode watchlist: empty document: %w", ErrCorruptState)
	}
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return domain.Watchlist{}, fmt.Errorf("decode watchlist: %v: %w", err, ErrCorruptState)
	}
	return domain.NewWatchlist(domain.CoinIDs(ids)...), nil
}
