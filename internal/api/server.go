// Package api exposes the tracker over HTTP with JSON responses.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"crypto-tracker/internal/domain"
	"crypto-tracker/internal/observability"
	"crypto-tracker/internal/pricing"
	"crypto-tracker/internal/reporting"
	"crypto-tracker/internal/resolver"
	"crypto-tracker/internal/tracker"
)

// Limits on request input.
const (
	DefaultTopN  = 10
	MaxTopN      = 1000
	maxBodyBytes = 1 << 20
)

// Tracker is the subset of tracker.Tracker served over HTTP.
type Tracker interface {
	Watchlist(ctx context.Context) domain.Watchlist
	WatchlistPrices(ctx context.Context) ([]pricing.Line, error)
	Prices(ctx context.Context, inputs []string) (tracker.PricesResult, error)
	AddCoins(ctx context.Context, inputs []string) (tracker.AddResult, error)
	RemoveCoins(ctx context.Context, inputs []string) (tracker.RemoveResult, error)
	Top(ctx context.Context, n int) ([]domain.LeaderboardEntry, error)
	Search(ctx context.Context, query string) ([]domain.CoinMatch, error)
}

var _ Tracker = (*tracker.Tracker)(nil)

// Server holds the HTTP handlers.
type Server struct {
	tracker Tracker
	logger  *zap.Logger
	now     func() time.Time
}

// NewServer creates a Server. A nil logger disables logging.
func NewServer(t Tracker, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{tracker: t, logger: logger, now: time.Now}
}

// Handler returns the routed handler including /health and /metrics.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// Prometheus metrics
	mux.Handle("GET /metrics", observability.Handler())

	mux.HandleFunc("GET /api/v1/watchlist", s.handleWatchlist)
	mux.HandleFunc("GET /api/v1/watchlist/prices", s.handleWatchlistPrices)
	mux.HandleFunc("POST /api/v1/watchlist/add", s.handleAdd)
	mux.HandleFunc("POST /api/v1/watchlist/remove", s.handleRemove)
	mux.HandleFunc("GET /api/v1/prices", s.handlePrices)
	mux.HandleFunc("GET /api/v1/top", s.handleTop)
	mux.HandleFunc("GET /api/v1/search", s.handleSearch)

	return mux
}

// WatchlistResponse is the JSON response for /api/v1/watchlist.
type WatchlistResponse struct {
	Coins []string `json:"coins"`
}

// CoinPrice is one formatted price row.
type CoinPrice struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Display   string `json:"display"`
	Found     bool   `json:"found"`
	Price     string `json:"price"`
	Change24h string `json:"change_24h"`
	MarketCap string `json:"market_cap"`
}

// PricesResponse is the JSON response for price endpoints.
type PricesResponse struct {
	Resolutions []ResolutionJSON `json:"resolutions,omitempty"`
	Coins       []CoinPrice      `json:"coins"`
}

// ResolutionJSON reports how one input entry resolved.
type ResolutionJSON struct {
	Input string `json:"input"`
	ID    string `json:"id,omitempty"`
	Error string `json:"error,omitempty"`
}

// AddResponse is the JSON response for /api/v1/watchlist/add.
type AddResponse struct {
	Resolutions []ResolutionJSON `json:"resolutions"`
	Added       []string         `json:"added"`
	Coins       []string         `json:"coins"`
}

// RemoveResponse is the JSON response for /api/v1/watchlist/remove.
type RemoveResponse struct {
	Removed   []string `json:"removed"`
	Unmatched []string `json:"unmatched"`
	Coins     []string `json:"coins"`
}

// TopResponse is the JSON response for /api/v1/top.
type TopResponse struct {
	Entries []TopEntry `json:"entries"`
}

// TopEntry is one formatted leaderboard row.
type TopEntry struct {
	Rank      int    `json:"rank"`
	ID        string `json:"id"`
	Name      string `json:"name"`
	Symbol    string `json:"symbol"`
	Price     string `json:"price"`
	Change24h string `json:"change_24h"`
	MarketCap string `json:"market_cap"`
}

// SearchResponse is the JSON response for /api/v1/search.
type SearchResponse struct {
	Matches []domain.CoinMatch `json:"matches"`
}

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

type coinsRequest struct {
	Coins []string `json:"coins"`
}

func (s *Server) handleWatchlist(w http.ResponseWriter, r *http.Request) {
	wl := s.tracker.Watchlist(r.Context())
	s.writeJSON(w, http.StatusOK, WatchlistResponse{Coins: ids(wl.IDs())})
}

func (s *Server) handleWatchlistPrices(w http.ResponseWriter, r *http.Request) {
	lines, err := s.tracker.WatchlistPrices(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, PricesResponse{Coins: coinPrices(lines)})
}

func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	inputs, err := decodeCoins(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	res, err := s.tracker.AddCoins(r.Context(), inputs)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, AddResponse{
		Resolutions: resolutions(res.Resolutions),
		Added:       ids(res.Added),
		Coins:       ids(res.Watchlist.IDs()),
	})
}

func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request) {
	inputs, err := decodeCoins(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	res, err := s.tracker.RemoveCoins(r.Context(), inputs)
	if err != nil {
		s.writeError(w, err)
		return
	}
	unmatched := res.Unmatched
	if unmatched == nil {
		unmatched = []string{}
	}
	s.writeJSON(w, http.StatusOK, RemoveResponse{
		Removed:   ids(res.Removed),
		Unmatched: unmatched,
		Coins:     ids(res.Watchlist.IDs()),
	})
}

func (s *Server) handlePrices(w http.ResponseWriter, r *http.Request) {
	inputs := resolver.SplitInput(r.URL.Query().Get("coins"))
	if len(inputs) == 0 {
		s.writeError(w, fmt.Errorf("coins parameter is required: %w", domain.ErrInvalidInput))
		return
	}

	res, err := s.tracker.Prices(r.Context(), inputs)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, PricesResponse{
		Resolutions: resolutions(res.Resolutions),
		Coins:       coinPrices(res.Lines),
	})
}

func (s *Server) handleTop(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	n := DefaultTopN
	if raw := query.Get("n"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > MaxTopN {
			s.writeError(w, fmt.Errorf("n must be an integer in 1..%d: %w", MaxTopN, domain.ErrInvalidInput))
			return
		}
		n = parsed
	}

	format := reporting.FormatJSON
	if raw := query.Get("format"); raw != "" {
		f, err := reporting.ParseFormat(raw)
		if err != nil {
			s.writeError(w, err)
			return
		}
		format = f
	}

	entries, err := s.tracker.Top(r.Context(), n)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if format == reporting.FormatJSON {
		s.writeJSON(w, http.StatusOK, TopResponse{Entries: topEntries(entries)})
		return
	}

	body, err := reporting.RenderLeaderboard(format, entries, s.now())
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", contentType(format))
	io.WriteString(w, body)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		s.writeError(w, fmt.Errorf("q parameter is required: %w", domain.ErrInvalidInput))
		return
	}

	matches, err := s.tracker.Search(r.Context(), q)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, SearchResponse{Matches: matches})
}

func decodeCoins(r *http.Request) ([]string, error) {
	var req coinsRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		return nil, fmt.Errorf("decode request body: %v: %w", err, domain.ErrInvalidInput)
	}

	var inputs []string
	for _, c := range req.Coins {
		inputs = append(inputs, resolver.SplitInput(c)...)
	}
	if len(inputs) == 0 {
		return nil, fmt.Errorf("coins must not be empty: %w", domain.ErrInvalidInput)
	}
	return inputs, nil
}

// StatusFor maps an error to its HTTP status code.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrNetwork), errors.Is(err, domain.ErrMalformedResponse):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Warn("request failed", zap.Int("status", status), zap.Error(err))
	}
	s.writeJSON(w, status, ErrorResponse{Error: err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Debug("write response", zap.Error(err))
	}
}

func contentType(f reporting.Format) string {
	switch f {
	case reporting.FormatCSV:
		return "text/csv; charset=utf-8"
	case reporting.FormatMarkdown:
		return "text/markdown; charset=utf-8"
	default:
		return "text/plain; charset=utf-8"
	}
}

func ids(in []domain.CoinID) []string {
	return domain.Strings(in)
}

func resolutions(results []resolver.Resolution) []ResolutionJSON {
	out := make([]ResolutionJSON, 0, len(results))
	for _, r := range results {
		item := ResolutionJSON{Input: r.Input, ID: r.ID.String()}
		if r.Err != nil {
			item.Error = r.Err.Error()
		}
		out = append(out, item)
	}
	return out
}

func coinPrices(lines []pricing.Line) []CoinPrice {
	rows := reporting.WatchlistRows(lines)
	out := make([]CoinPrice, 0, len(rows))
	for _, r := range rows {
		out = append(out, CoinPrice{
			ID:        r.ID,
			Name:      r.Name,
			Display:   r.Display,
			Found:     r.Found,
			Price:     r.Price,
			Change24h: r.Change,
			MarketCap: r.MarketCap,
		})
	}
	return out
}

func topEntries(entries []domain.LeaderboardEntry) []TopEntry {
	rows := reporting.LeaderboardRows(entries)
	out := make([]TopEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, TopEntry{
			Rank:      r.Rank,
			ID:        r.ID,
			Name:      r.Name,
			Symbol:    r.Symbol,
			Price:     r.Price,
			Change24h: r.Change,
			MarketCap: r.MarketCap,
		})
	}
	return out
}
