// Package resolver turns free-text coin names and symbols into canonical ids.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"crypto-tracker/internal/domain"
	"crypto-tracker/internal/observability"
)

// Searcher is the provider search operation.
type Searcher interface {
	Search(ctx context.Context, query string) ([]domain.CoinMatch, error)
}

// Resolution is the outcome of resolving one input entry.
type Resolution struct {
	Input string
	ID    domain.CoinID
	Err   error
}

// OK reports whether the entry resolved.
func (r Resolution) OK() bool {
	return r.Err == nil
}

// Resolver maps free text to canonical ids using the first provider match.
//
// Matching is deliberately naive: the provider's top-ranked hit wins, with
// no scoring and no disambiguation. Two tokens sharing a symbol resolve to
// whichever the provider ranks first. Use Candidates to see all hits.
type Resolver struct {
	searcher Searcher
	logger   *zap.Logger
}

// New creates a Resolver. A nil logger disables logging.
func New(s Searcher, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{searcher: s, logger: logger}
}

// Resolve returns the canonical id of the first match for text.
// Returns domain.ErrNotFound if the provider has no match.
func (r *Resolver) Resolve(ctx context.Context, text string) (domain.CoinID, error) {
	matches, err := r.Candidates(ctx, text)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			observability.RecordResolution("not_found")
		} else {
			observability.RecordResolution("error")
		}
		return "", err
	}

	id := matches[0].ID
	observability.RecordResolution("found")
	r.logger.Debug("resolved coin",
		zap.String("input", text),
		zap.String("id", id.String()),
		zap.Int("matches", len(matches)))
	return id, nil
}

// Candidates returns every provider match for text in provider-ranked
// order. Returns domain.ErrNotFound when there are none. Blank input never
// reaches the provider.
func (r *Resolver) Candidates(ctx context.Context, text string) ([]domain.CoinMatch, error) {
	query := strings.TrimSpace(text)
	if query == "" {
		return nil, fmt.Errorf("resolve %q: %w", text, domain.ErrNotFound)
	}

	matches, err := r.searcher.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", query, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("resolve %q: %w", query, domain.ErrNotFound)
	}
	return matches, nil
}

// ResolveAll resolves every input independently. It never fails as a
// whole: each Resolution carries its own error, and a provider failure on
// one entry does not stop the others.
func (r *Resolver) ResolveAll(ctx context.Context, inputs []string) []Resolution {
	results := make([]Resolution, 0, len(inputs))
	for _, input := range inputs {
		id, err := r.Resolve(ctx, input)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			r.logger.Warn("coin resolution failed", zap.String("input", input), zap.Error(err))
		}
		results = append(results, Resolution{Input: input, ID: id, Err: err})
	}
	return results
}

// Resolved returns the ids of successful resolutions, in input order.
func Resolved(results []Resolution) []domain.CoinID {
	var ids []domain.CoinID
	for _, res := range results {
		if res.OK() {
			ids = append(ids, res.ID)
		}
	}
	return ids
}

// SplitInput splits comma-separated user input into trimmed, non-empty
// entries.
func SplitInput(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
