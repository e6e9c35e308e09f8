// Package leaderboard builds market-cap rankings from paged provider data.
package leaderboard

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"crypto-tracker/internal/coingecko"
	"crypto-tracker/internal/domain"
)

// DefaultPageSize is the number of coins requested per page.
const DefaultPageSize = 100

// MarketLister is the provider's paged market listing.
type MarketLister interface {
	Markets(ctx context.Context, page, perPage int) ([]coingecko.MarketCoin, error)
}

// Fetcher assembles the top-N coins by market cap.
type Fetcher struct {
	lister   MarketLister
	pageSize int
	logger   *zap.Logger
}

// NewFetcher creates a Fetcher. pageSize <= 0 selects DefaultPageSize and
// values above coingecko.MaxPerPage are clamped.
func NewFetcher(lister MarketLister, pageSize int, logger *zap.Logger) *Fetcher {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > coingecko.MaxPerPage {
		pageSize = coingecko.MaxPerPage
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{lister: lister, pageSize: pageSize, logger: logger}
}

// PageSize returns the effective page size.
func (f *Fetcher) PageSize() int {
	return f.pageSize
}

// Top returns at most n entries ordered by ascending rank with no duplicate
// ranks. Pages are requested sequentially until n entries are collected, a
// page is short or empty, or a page contributes nothing new. Any page
// failure fails the whole call.
func (f *Fetcher) Top(ctx context.Context, n int) ([]domain.LeaderboardEntry, error) {
	if n <= 0 {
		return []domain.LeaderboardEntry{}, nil
	}

	perPage := f.pageSize
	if n < perPage {
		perPage = n
	}

	b := newBoard(n)
	pages := 0
	for page := 1; len(b.byRank) < n; page++ {
		coins, err := f.lister.Markets(ctx, page, perPage)
		if err != nil {
			return nil, fmt.Errorf("fetch leaderboard page %d: %w", page, err)
		}
		pages++

		// Provider ranks are placed before positional ones so an unranked
		// coin never takes the slot of a ranked coin on the same page.
		added := 0
		for _, c := range coins {
			if c.Rank != nil && b.placeRanked(toEntry(*c.Rank, c)) {
				added++
			}
		}
		for i, c := range coins {
			if c.Rank == nil && b.placeUnranked(toEntry((page-1)*perPage+i+1, c)) {
				added++
			}
		}

		if len(coins) < perPage || added == 0 {
			break
		}
	}

	entries := b.sorted()
	if len(entries) > n {
		entries = entries[:n]
	}

	f.logger.Debug("leaderboard fetched",
		zap.Int("requested", n),
		zap.Int("entries", len(entries)),
		zap.Int("pages", pages))
	return entries, nil
}

// board collects entries keyed by rank. Positional ranks given to unranked
// coins yield to provider ranks: a ranked coin claiming a positional slot
// moves the unranked coin to the next free rank.
type board struct {
	byRank     map[int]domain.LeaderboardEntry
	positional map[int]bool
	ids        map[domain.CoinID]bool
}

func newBoard(n int) *board {
	return &board{
		byRank:     make(map[int]domain.LeaderboardEntry, n),
		positional: make(map[int]bool),
		ids:        make(map[domain.CoinID]bool, n),
	}
}

// placeRanked adds e at its provider rank. The first ranked entry seen for
// a rank wins.
func (b *board) placeRanked(e domain.LeaderboardEntry) bool {
	old, taken := b.byRank[e.Rank]
	if taken && !b.positional[e.Rank] {
		return false
	}
	b.byRank[e.Rank] = e
	b.ids[e.ID] = true
	if taken {
		delete(b.positional, e.Rank)
		b.slot(old, e.Rank+1)
	}
	return true
}

// placeUnranked adds e at the first free rank at or after e.Rank. Coins
// already on the board are skipped.
func (b *board) placeUnranked(e domain.LeaderboardEntry) bool {
	if b.ids[e.ID] {
		return false
	}
	b.ids[e.ID] = true
	b.slot(e, e.Rank)
	return true
}

func (b *board) slot(e domain.LeaderboardEntry, from int) {
	rank := from
	for {
		if _, taken := b.byRank[rank]; !taken {
			break
		}
		rank++
	}
	e.Rank = rank
	b.byRank[rank] = e
	b.positional[rank] = true
}

func (b *board) sorted() []domain.LeaderboardEntry {
	entries := make([]domain.LeaderboardEntry, 0, len(b.byRank))
	for _, e := range b.byRank {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Rank < entries[j].Rank
	})
	return entries
}

func toEntry(rank int, c coingecko.MarketCoin) domain.LeaderboardEntry {
	return domain.LeaderboardEntry{
		Rank:      rank,
		ID:        c.ID,
		Name:      c.Name,
		Symbol:    c.Symbol,
		Price:     c.Price,
		Change24h: c.Change24h,
		MarketCap: c.MarketCap,
	}
}
