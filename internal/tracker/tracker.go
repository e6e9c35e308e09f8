// Package tracker is the caller-facing facade over resolution, pricing,
// leaderboards and the persisted watchlist. The interactive menu, the CLI
// and the HTTP API all drive a Tracker.
package tracker

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"crypto-tracker/internal/domain"
	"crypto-tracker/internal/leaderboard"
	"crypto-tracker/internal/pricing"
	"crypto-tracker/internal/resolver"
	"crypto-tracker/internal/watchlist"
)

// Provider is the market data source a Tracker needs.
type Provider interface {
	resolver.Searcher
	pricing.Source
	leaderboard.MarketLister
}

// Option configures a Tracker.
type Option func(*options)

type options struct {
	pageSize int
	logger   *zap.Logger
}

// WithPageSize sets the leaderboard page size.
func WithPageSize(n int) Option {
	return func(o *options) {
		o.pageSize = n
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// Tracker serializes every operation: one operation runs at a time against
// the provider session, even with concurrent callers.
type Tracker struct {
	mu        sync.Mutex
	resolver  *resolver.Resolver
	prices    *pricing.Aggregator
	board     *leaderboard.Fetcher
	watchlist *watchlist.Service
	logger    *zap.Logger
}

// New creates a Tracker.
func New(p Provider, wl *watchlist.Service, opts ...Option) *Tracker {
	o := options{pageSize: leaderboard.DefaultPageSize, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	return &Tracker{
		resolver:  resolver.New(p, o.logger.Named("resolver")),
		prices:    pricing.NewAggregator(p, o.logger.Named("pricing")),
		board:     leaderboard.NewFetcher(p, o.pageSize, o.logger.Named("leaderboard")),
		watchlist: wl,
		logger:    o.logger,
	}
}

// Resolve maps free text to a canonical id.
func (t *Tracker) Resolve(ctx context.Context, text string) (domain.CoinID, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.resolver.Resolve(ctx, text)
}

// ResolveAll resolves every input independently.
func (t *Tracker) ResolveAll(ctx context.Context, inputs []string) []resolver.Resolution {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.resolver.ResolveAll(ctx, inputs)
}

// Search returns every provider match for query.
func (t *Tracker) Search(ctx context.Context, query string) ([]domain.CoinMatch, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.resolver.Candidates(ctx, query)
}

// Watchlist loads the persisted watchlist. It never fails.
func (t *Tracker) Watchlist(ctx context.Context) domain.Watchlist {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.watchlist.Load(ctx)
}

// SaveWatchlist overwrites the persisted watchlist.
func (t *Tracker) SaveWatchlist(ctx context.Context, w domain.Watchlist) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.watchlist.Save(ctx, w)
}

// AddResult is the outcome of AddCoins.
type AddResult struct {
	Resolutions []resolver.Resolution
	// Added holds resolved ids that were not already tracked.
	Added     []domain.CoinID
	Watchlist domain.Watchlist
}

// AddCoins resolves inputs and merges the resolved ids into the persisted
// watchlist. Unresolvable entries are reported per entry and skipped.
// Storage is not touched when nothing resolved.
func (t *Tracker) AddCoins(ctx context.Context, inputs []string) (AddResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	current := t.watchlist.Load(ctx)
	results := t.resolver.ResolveAll(ctx, inputs)
	ids := resolver.Resolved(results)

	res := AddResult{Resolutions: results, Watchlist: current}
	if len(ids) == 0 {
		return res, nil
	}

	for _, id := range domain.NewWatchlist(ids...).IDs() {
		if !current.Contains(id) {
			res.Added = append(res.Added, id)
		}
	}

	next, err := t.watchlist.Add(ctx, current, ids...)
	if err != nil {
		return res, err
	}
	res.Watchlist = next
	t.logger.Info("coins added", zap.Int("added", len(res.Added)), zap.Int("size", next.Len()))
	return res, nil
}

// RemoveResult is the outcome of RemoveCoins.
type RemoveResult struct {
	Removed []domain.CoinID
	// Unmatched holds inputs that matched nothing in the watchlist.
	Unmatched []string
	Watchlist domain.Watchlist
}

// RemoveCoins removes entries from the persisted watchlist. Each input is
// either a canonical id already tracked or free text that resolves to one.
// Storage is rewritten only when something was removed.
func (t *Tracker) RemoveCoins(ctx context.Context, inputs []string) (RemoveResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	current := t.watchlist.Load(ctx)
	res := RemoveResult{Watchlist: current}

	var ids []domain.CoinID
	for _, input := range inputs {
		id, ok := t.matchTracked(ctx, current, input)
		if !ok {
			res.Unmatched = append(res.Unmatched, input)
			continue
		}
		ids = append(ids, id)
	}
	res.Removed = domain.NewWatchlist(ids...).IDs()

	next, err := t.watchlist.Remove(ctx, current, ids...)
	if err != nil {
		res.Removed = nil
		return res, err
	}
	res.Watchlist = next
	return res, nil
}

// matchTracked finds the tracked id an input refers to.
func (t *Tracker) matchTracked(ctx context.Context, w domain.Watchlist, input string) (domain.CoinID, bool) {
	text := strings.TrimSpace(input)
	if text == "" {
		return "", false
	}
	for _, candidate := range []domain.CoinID{domain.CoinID(text), domain.CoinID(strings.ToLower(text))} {
		if w.Contains(candidate) {
			return candidate, true
		}
	}

	id, err := t.resolver.Resolve(ctx, text)
	if err != nil || !w.Contains(id) {
		return "", false
	}
	return id, true
}

// PricesResult is the outcome of Prices.
type PricesResult struct {
	Resolutions []resolver.Resolution
	Lines       []pricing.Line
}

// Prices resolves free-text inputs and fetches their prices in one batched
// request. The watchlist is not modified.
func (t *Tracker) Prices(ctx context.Context, inputs []string) (PricesResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	results := t.resolver.ResolveAll(ctx, inputs)
	ids := resolver.Resolved(results)

	record, err := t.prices.FetchPrices(ctx, ids)
	if err != nil {
		return PricesResult{Resolutions: results}, err
	}
	return PricesResult{
		Resolutions: results,
		Lines:       pricing.Lines(record, domain.NewWatchlist(ids...).IDs()),
	}, nil
}

// WatchlistPrices loads the watchlist and fetches prices for every tracked
// coin in one request. An empty watchlist makes no request.
func (t *Tracker) WatchlistPrices(ctx context.Context) ([]pricing.Line, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	w := t.watchlist.Load(ctx)
	record, err := t.prices.FetchPrices(ctx, w.IDs())
	if err != nil {
		return nil, err
	}
	return pricing.Lines(record, w.IDs()), nil
}

// Top returns the top n coins by market cap.
func (t *Tracker) Top(ctx context.Context, n int) ([]domain.LeaderboardEntry, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.board.Top(ctx, n)
}
