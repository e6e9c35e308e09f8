package reporting

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"crypto-tracker/internal/domain"
	"crypto-tracker/internal/pricing"
)

// RenderLeaderboardCSV renders entries as CSV with raw numeric values.
// Absent values are empty cells.
func RenderLeaderboardCSV(entries []domain.LeaderboardEntry) (string, error) {
	records := [][]string{
		{"rank", "id", "name", "symbol", "price_usd", "change_24h_pct", "market_cap_usd"},
	}
	for _, e := range entries {
		records = append(records, []string{
			strconv.Itoa(e.Rank),
			e.ID.String(),
			e.Name,
			strings.ToUpper(e.Symbol),
			raw(e.Price),
			raw(e.Change24h),
			raw(e.MarketCap),
		})
	}
	return writeCSV(records)
}

// RenderWatchlistCSV renders price lines as CSV with raw numeric values.
func RenderWatchlistCSV(lines []pricing.Line) (string, error) {
	records := [][]string{
		{"id", "found", "price_usd", "change_24h_pct", "market_cap_usd"},
	}
	for _, l := range lines {
		records = append(records, []string{
			l.ID.String(),
			strconv.FormatBool(l.Found),
			raw(l.Quote.Price),
			raw(l.Quote.Change24h),
			raw(l.Quote.MarketCap),
		})
	}
	return writeCSV(records)
}

func writeCSV(records [][]string) (string, error) {
	var sb strings.Builder
	w := csv.NewWriter(&sb)
	if err := w.WriteAll(records); err != nil {
		return "", fmt.Errorf("write csv: %w", err)
	}
	return sb.String(), nil
}

func raw(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.String()
}
