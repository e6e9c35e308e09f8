package domain

import "strings"

// CoinID is the provider-assigned canonical identifier of a coin
// (e.g. "bitcoin", "usd-coin"). It is the only form ever persisted.
type CoinID string

// String returns the string representation of CoinID.
func (id CoinID) String() string {
	return string(id)
}

// IsValid reports whether the id is non-blank.
func (id CoinID) IsValid() bool {
	return strings.TrimSpace(string(id)) != ""
}

// CoinIDs converts a slice of strings to CoinIDs, dropping blank entries.
func CoinIDs(values []string) []CoinID {
	ids := make([]CoinID, 0, len(values))
	for _, v := range values {
		id := CoinID(strings.TrimSpace(v))
		if id.IsValid() {
			ids = append(ids, id)
		}
	}
	return ids
}

// Strings converts CoinIDs back to plain strings.
func Strings(ids []CoinID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}

// CoinMatch is one hit of a provider search, in provider-ranked order.
type CoinMatch struct {
	ID            CoinID `json:"id"`
	Name          string `json:"name"`
	Symbol        string `json:"symbol"`
	MarketCapRank *int   `json:"market_cap_rank,omitempty"`
}
