// Package stub provides an in-memory price provider for testing.
package stub

import (
	"context"
	"strings"
	"sync"

	"crypto-tracker/internal/coingecko"
	"crypto-tracker/internal/domain"
)

// MarketsCall records one Markets invocation.
type MarketsCall struct {
	Page    int
	PerPage int
}

// Provider implements the Search, SimplePrice and Markets operations of
// coingecko.Client from fixed data. All Err fields, when set, are returned
// instead of data.
type Provider struct {
	// Matches maps lower-cased queries to ranked matches.
	Matches map[string][]domain.CoinMatch
	// Prices holds quotes returned by SimplePrice for ids it contains.
	Prices domain.PriceRecord
	// Ranked is the full market-cap ordered listing Markets pages through.
	Ranked []coingecko.MarketCoin
	// Pages, when set for a page number, overrides slicing of Ranked.
	Pages map[int][]coingecko.MarketCoin

	SearchErr      error
	SimplePriceErr error
	// MarketsErr maps page numbers to the error that page returns.
	MarketsErr map[int]error

	mu               sync.Mutex
	SearchCalls      []string
	SimplePriceCalls [][]domain.CoinID
	MarketsCalls     []MarketsCall
}

// NewProvider creates an empty stub provider.
func NewProvider() *Provider {
	return &Provider{
		Matches:    make(map[string][]domain.CoinMatch),
		Prices:     make(domain.PriceRecord),
		Pages:      make(map[int][]coingecko.MarketCoin),
		MarketsErr: make(map[int]error),
	}
}

// Search returns the configured matches for query.
func (p *Provider) Search(_ context.Context, query string) ([]domain.CoinMatch, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.SearchCalls = append(p.SearchCalls, query)
	if p.SearchErr != nil {
		return nil, p.SearchErr
	}
	matches := p.Matches[strings.ToLower(query)]
	out := make([]domain.CoinMatch, len(matches))
	copy(out, matches)
	return out, nil
}

// SimplePrice returns the configured quotes for the requested ids.
func (p *Provider) SimplePrice(_ context.Context, ids []domain.CoinID) (domain.PriceRecord, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	requested := make([]domain.CoinID, len(ids))
	copy(requested, ids)
	p.SimplePriceCalls = append(p.SimplePriceCalls, requested)
	if p.SimplePriceErr != nil {
		return nil, p.SimplePriceErr
	}

	record := make(domain.PriceRecord)
	for _, id := range ids {
		if q, ok := p.Prices[id]; ok {
			record[id] = q
		}
	}
	return record, nil
}

// Markets returns one page of the configured listing.
func (p *Provider) Markets(_ context.Context, page, perPage int) ([]coingecko.MarketCoin, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.MarketsCalls = append(p.MarketsCalls, MarketsCall{Page: page, PerPage: perPage})
	if err := p.MarketsErr[page]; err != nil {
		return nil, err
	}
	if coins, ok := p.Pages[page]; ok {
		out := make([]coingecko.MarketCoin, len(coins))
		copy(out, coins)
		return out, nil
	}

	start := (page - 1) * perPage
	if start >= len(p.Ranked) {
		return nil, nil
	}
	end := start + perPage
	if end > len(p.Ranked) {
		end = len(p.Ranked)
	}
	out := make([]coingecko.MarketCoin, end-start)
	copy(out, p.Ranked[start:end])
	return out, nil
}

// SimplePriceCallCount returns how many batched price requests were made.
func (p *Provider) SimplePriceCallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.SimplePriceCalls)
}

// SearchCallCount returns how many search requests were made.
func (p *Provider) SearchCallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.SearchCalls)
}

// MarketsCallCount returns how many market pages were requested.
func (p *Provider) MarketsCallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.MarketsCalls)
}
