package reporting

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"crypto-tracker/internal/domain"
	"crypto-tracker/internal/pricing"
)

const (
	nameWidth    = 20
	maxNameRunes = nameWidth - 1
)

// RenderWatchlistText renders one "Name: price (change)" line per coin.
func RenderWatchlistText(lines []pricing.Line) string {
	if len(lines) == 0 {
		return "No coins in watchlist.\n"
	}

	var sb strings.Builder
	for _, l := range lines {
		sb.WriteString(fmt.Sprintf("%-*s %s\n", nameWidth, DisplayName(l.ID)+":", l.Display))
	}
	return sb.String()
}

// RenderLeaderboardText renders entries as an aligned table.
func RenderLeaderboardText(entries []domain.LeaderboardEntry) string {
	if len(entries) == 0 {
		return "No leaderboard data available.\n"
	}

	var sb strings.Builder
	header := fmt.Sprintf("%-5s %-*s %-8s %18s %12s %12s", "Rank", nameWidth, "Name", "Symbol", "Price", "24h Change", "Market Cap")
	sb.WriteString(header + "\n")
	sb.WriteString(strings.Repeat("-", len(header)) + "\n")

	for _, r := range LeaderboardRows(entries) {
		sb.WriteString(fmt.Sprintf("%-5d %-*s %-8s %18s %12s %12s\n",
			r.Rank, nameWidth, truncate(r.Name, maxNameRunes), r.Symbol, r.Price, r.Change, r.MarketCap))
	}
	return sb.String()
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
