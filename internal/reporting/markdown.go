package reporting

import (
	"fmt"
	"strings"
	"time"

	"crypto-tracker/internal/domain"
	"crypto-tracker/internal/pricing"
)

// RenderLeaderboardMarkdown renders entries as a Markdown report.
func RenderLeaderboardMarkdown(entries []domain.LeaderboardEntry, generatedAt time.Time) string {
	var sb strings.Builder

	// Header
	sb.WriteString(fmt.Sprintf("# Top %d Cryptocurrencies by Market Cap\n\n", len(entries)))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", generatedAt.UTC().Format(time.RFC3339)))

	if len(entries) == 0 {
		sb.WriteString("No leaderboard data available.\n")
		return sb.String()
	}

	sb.WriteString("| Rank | Name | Symbol | Price | 24h Change | Market Cap |\n")
	sb.WriteString("|------|------|--------|-------|------------|------------|\n")
	for _, r := range LeaderboardRows(entries) {
		sb.WriteString(fmt.Sprintf("| %d | %s | %s | %s | %s | %s |\n",
			r.Rank, escapeCell(r.Name), escapeCell(r.Symbol), r.Price, r.Change, r.MarketCap))
	}
	return sb.String()
}

// RenderWatchlistMarkdown renders price lines as a Markdown report.
func RenderWatchlistMarkdown(lines []pricing.Line, generatedAt time.Time) string {
	var sb strings.Builder

	sb.WriteString("# Watchlist\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", generatedAt.UTC().Format(time.RFC3339)))

	if len(lines) == 0 {
		sb.WriteString("No coins in watchlist.\n")
		return sb.String()
	}

	sb.WriteString("| Coin | Price | 24h Change | Market Cap |\n")
	sb.WriteString("|------|-------|------------|------------|\n")
	for _, r := range WatchlistRows(lines) {
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n",
			escapeCell(r.Name), r.Price, r.Change, r.MarketCap))
	}
	return sb.String()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
