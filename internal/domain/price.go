package domain

import "github.com/shopspring/decimal"

// Quote holds the market data of a single coin as returned by one fetch.
// Each field may be absent (Valid == false) when the provider omitted it or
// returned a non-numeric value.
type Quote struct {
	Price     decimal.NullDecimal `json:"price"`
	Change24h decimal.NullDecimal `json:"change_24h"`
	MarketCap decimal.NullDecimal `json:"market_cap"`
}

// PriceRecord maps canonical ids to their quotes. It is produced fresh by
// every fetch and never cached.
type PriceRecord map[CoinID]Quote

// Lookup returns the quote for id and whether the provider returned it.
func (r PriceRecord) Lookup(id CoinID) (Quote, bool) {
	q, ok := r[id]
	return q, ok
}
