// Package pricing fetches watchlist prices in one batched request and
// renders them for display.
package pricing

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"crypto-tracker/internal/domain"
)

// Source is the provider's batched price lookup.
type Source interface {
	SimplePrice(ctx context.Context, ids []domain.CoinID) (domain.PriceRecord, error)
}

// Aggregator fetches quotes for many coins at once.
type Aggregator struct {
	source Source
	logger *zap.Logger
}

// NewAggregator creates an Aggregator. A nil logger disables logging.
func NewAggregator(source Source, logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{source: source, logger: logger}
}

// FetchPrices issues exactly one request for all distinct ids. An empty id
// list returns an empty record without contacting the provider. Ids the
// provider does not know are simply absent from the record.
func (a *Aggregator) FetchPrices(ctx context.Context, ids []domain.CoinID) (domain.PriceRecord, error) {
	unique := domain.NewWatchlist(ids...).IDs()
	if len(unique) == 0 {
		return domain.PriceRecord{}, nil
	}

	record, err := a.source.SimplePrice(ctx, unique)
	if err != nil {
		return nil, fmt.Errorf("fetch prices: %w", err)
	}
	if record == nil {
		record = domain.PriceRecord{}
	}

	if missing := len(unique) - countPresent(record, unique); missing > 0 {
		a.logger.Debug("provider returned no quote for some coins",
			zap.Int("requested", len(unique)),
			zap.Int("missing", missing))
	}
	return record, nil
}

func countPresent(record domain.PriceRecord, ids []domain.CoinID) int {
	n := 0
	for _, id := range ids {
		if _, ok := record[id]; ok {
			n++
		}
	}
	return n
}

// Line is one formatted watchlist row.
type Line struct {
	ID      domain.CoinID `json:"id"`
	Display string        `json:"display"`
	Found   bool          `json:"found"`
	Quote   domain.Quote  `json:"quote"`
}

// Lines formats every id against record, in the order given.
func Lines(record domain.PriceRecord, ids []domain.CoinID) []Line {
	lines := make([]Line, 0, len(ids))
	for _, id := range ids {
		q, ok := record.Lookup(id)
		lines = append(lines, Line{
			ID:      id,
			Display: Format(record, id),
			Found:   ok,
			Quote:   q,
		})
	}
	return lines
}
