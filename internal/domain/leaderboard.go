package domain

import "github.com/shopspring/decimal"

// LeaderboardEntry is one row of a market-cap ranking.
// Entries are request-scoped; Rank is unique within one fetch.
type LeaderboardEntry struct {
	Rank      int                 `json:"rank"`
	ID        CoinID              `json:"id"`
	Name      string              `json:"name"`
	Symbol    string              `json:"symbol"`
	Price     decimal.NullDecimal `json:"price"`
	Change24h decimal.NullDecimal `json:"change_24h"`
	MarketCap decimal.NullDecimal `json:"market_cap"`
}
