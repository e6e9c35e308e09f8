// Package reporting renders watchlist prices and leaderboards as text
// tables, CSV, Markdown or JSON.
package reporting

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"crypto-tracker/internal/domain"
	"crypto-tracker/internal/pricing"
)

// Format selects an output rendering.
type Format string

// Supported formats.
const (
	FormatText     Format = "text"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

// ParseFormat parses a format name. Empty input selects FormatText.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return FormatText, nil
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown format %q: %w", s, domain.ErrInvalidInput)
	}
}

// LeaderboardRow is one leaderboard entry with every field rendered.
type LeaderboardRow struct {
	Rank      int
	ID        string
	Name      string
	Symbol    string
	Price     string
	Change    string
	MarketCap string
}

// LeaderboardRows renders entries for display. Missing fields become
// sentinel strings.
func LeaderboardRows(entries []domain.LeaderboardEntry) []LeaderboardRow {
	rows := make([]LeaderboardRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, LeaderboardRow{
			Rank:      e.Rank,
			ID:        e.ID.String(),
			Name:      e.Name,
			Symbol:    strings.ToUpper(e.Symbol),
			Price:     pricing.FormatPrice(e.Price),
			Change:    pricing.FormatChange(e.Change24h),
			MarketCap: pricing.FormatMarketCap(e.MarketCap),
		})
	}
	return rows
}

// WatchlistRow is one watchlist coin with every field rendered.
type WatchlistRow struct {
	ID        string
	Name      string
	Display   string
	Price     string
	Change    string
	MarketCap string
	Found     bool
}

// WatchlistRows renders formatted price lines for display. Coins the
// provider did not return show "not found" in every column.
func WatchlistRows(lines []pricing.Line) []WatchlistRow {
	rows := make([]WatchlistRow, 0, len(lines))
	for _, l := range lines {
		row := WatchlistRow{
			ID:        l.ID.String(),
			Name:      DisplayName(l.ID),
			Display:   l.Display,
			Price:     pricing.NotFound,
			Change:    pricing.NotFound,
			MarketCap: pricing.NotFound,
			Found:     l.Found,
		}
		if l.Found {
			row.Price = pricing.FormatPrice(l.Quote.Price)
			row.Change = pricing.FormatChange(l.Quote.Change24h)
			row.MarketCap = pricing.FormatMarketCap(l.Quote.MarketCap)
		}
		rows = append(rows, row)
	}
	return rows
}

var titleCaser = cases.Title(language.English)

// DisplayName title-cases a canonical id for display ("usd-coin" -> "Usd-Coin").
func DisplayName(id domain.CoinID) string {
	return titleCaser.String(id.String())
}

// RenderLeaderboard renders entries in format f.
func RenderLeaderboard(f Format, entries []domain.LeaderboardEntry, generatedAt time.Time) (string, error) {
	switch f {
	case FormatText:
		return RenderLeaderboardText(entries), nil
	case FormatCSV:
		return RenderLeaderboardCSV(entries)
	case FormatMarkdown:
		return RenderLeaderboardMarkdown(entries, generatedAt), nil
	case FormatJSON:
		return renderJSON(entries)
	default:
		return "", fmt.Errorf("unknown format %q: %w", f, domain.ErrInvalidInput)
	}
}

// RenderWatchlist renders formatted price lines in format f.
func RenderWatchlist(f Format, lines []pricing.Line, generatedAt time.Time) (string, error) {
	switch f {
	case FormatText:
		return RenderWatchlistText(lines), nil
	case FormatCSV:
		return RenderWatchlistCSV(lines)
	case FormatMarkdown:
		return RenderWatchlistMarkdown(lines, generatedAt), nil
	case FormatJSON:
		return renderJSON(lines)
	default:
		return "", fmt.Errorf("unknown format %q: %w", f, domain.ErrInvalidInput)
	}
}

func renderJSON(v interface{}) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode json: %w", err)
	}
	return string(data) + "\n", nil
}
