package reporting

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crypto-tracker/internal/domain"
	"crypto-tracker/internal/pricing"
)

func dec(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func testEntries() []domain.LeaderboardEntry {
	return []domain.LeaderboardEntry{
		{Rank: 1, ID: "bitcoin", Name: "Bitcoin", Symbol: "btc", Price: dec("67187.339"), Change24h: dec("3.62"), MarketCap: dec("1325000000000")},
		{Rank: 2, ID: "ethereum", Name: "Ethereum", Symbol: "eth", Price: dec("3456.7"), Change24h: dec("-1.234"), MarketCap: dec("415000000000")},
		{Rank: 3, ID: "wrapped-thing", Name: "Wrapped Thing, Bridged | Long Name", Symbol: "wt"},
	}
}

func testLines() []pricing.Line {
	record := domain.PriceRecord{
		"bitcoin":  {Price: dec("67187.339"), Change24h: dec("3.62"), MarketCap: dec("1325000000000")},
		"usd-coin": {Price: dec("1")},
	}
	return pricing.Lines(record, []domain.CoinID{"bitcoin", "usd-coin", "gone"})
}

var generated = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{in: "", want: FormatText},
		{in: "TEXT", want: FormatText},
		{in: "csv", want: FormatCSV},
		{in: "md", want: FormatMarkdown},
		{in: "markdown", want: FormatMarkdown},
		{in: " json ", want: FormatJSON},
		{in: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Bitcoin", DisplayName("bitcoin"))
	assert.Equal(t, "Usd-Coin", DisplayName("usd-coin"))
}

func TestLeaderboardRows(t *testing.T) {
	rows := LeaderboardRows(testEntries())
	require.Len(t, rows, 3)

	assert.Equal(t, LeaderboardRow{
		Rank: 1, ID: "bitcoin", Name: "Bitcoin", Symbol: "BTC",
		Price: "$67,187.34", Change: "+3.62%", MarketCap: "$1.3T",
	}, rows[0])
	assert.Equal(t, "-1.23%", rows[1].Change)
	assert.Equal(t, "$415.0B", rows[1].MarketCap)
	assert.Equal(t, "unavailable", rows[2].Price)
	assert.Equal(t, "unavailable", rows[2].MarketCap)
}

func TestWatchlistRows(t *testing.T) {
	rows := WatchlistRows(testLines())
	require.Len(t, rows, 3)

	assert.Equal(t, "$67,187.34 (+3.62%)", rows[0].Display)
	assert.Equal(t, "Usd-Coin", rows[1].Name)
	assert.Equal(t, "unavailable", rows[1].Change)
	assert.False(t, rows[2].Found)
	assert.Equal(t, "not found", rows[2].Price)
}

func TestRenderWatchlistText(t *testing.T) {
	out := RenderWatchlistText(testLines())
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 3)

	assert.Equal(t, "Bitcoin:             $67,187.34 (+3.62%)", lines[0])
	assert.Equal(t, "Usd-Coin:            $1.00", lines[1])
	assert.Equal(t, "Gone:                not found", lines[2])

	assert.Equal(t, "No coins in watchlist.\n", RenderWatchlistText(nil))
}

func TestRenderLeaderboardText(t *testing.T) {
	out := RenderLeaderboardText(testEntries())
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 5)

	assert.True(t, strings.HasPrefix(lines[0], "Rank  Name"))
	assert.Contains(t, lines[2], "BTC")
	assert.Contains(t, lines[2], "$67,187.34")
	assert.Contains(t, lines[3], "-1.23%")
	assert.Contains(t, lines[4], "Wrapped Thing, Brid ")
	assert.NotContains(t, lines[4], "Long Name")
}

func TestRenderLeaderboardCSV(t *testing.T) {
	out, err := RenderLeaderboardCSV(testEntries())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "rank,id,name,symbol,price_usd,change_24h_pct,market_cap_usd", lines[0])
	assert.Equal(t, "1,bitcoin,Bitcoin,BTC,67187.339,3.62,1325000000000", lines[1])
	assert.Equal(t, `3,wrapped-thing,"Wrapped Thing, Bridged | Long Name",WT,,,`, lines[3])
}

func TestRenderWatchlistCSV(t *testing.T) {
	out, err := RenderWatchlistCSV(testLines())
	require.NoError(t, err)

	assert.Equal(t, "id,found,price_usd,change_24h_pct,market_cap_usd\n"+
		"bitcoin,true,67187.339,3.62,1325000000000\n"+
		"usd-coin,true,1,,\n"+
		"gone,false,,,\n", out)
}

func TestRenderLeaderboardMarkdown(t *testing.T) {
	out := RenderLeaderboardMarkdown(testEntries(), generated)

	assert.True(t, strings.HasPrefix(out, "# Top 3 Cryptocurrencies by Market Cap\n"))
	assert.Contains(t, out, "Generated: 2026-01-02T03:04:05Z")
	assert.Contains(t, out, "| 1 | Bitcoin | BTC | $67,187.34 | +3.62% | $1.3T |")
	assert.Contains(t, out, `Wrapped Thing, Bridged \| Long Name`)

	empty := RenderLeaderboardMarkdown(nil, generated)
	assert.Contains(t, empty, "No leaderboard data available.")
}

func TestRenderWatchlistMarkdown(t *testing.T) {
	out := RenderWatchlistMarkdown(testLines(), generated)

	assert.Contains(t, out, "| Bitcoin | $67,187.34 | +3.62% | $1.3T |")
	assert.Contains(t, out, "| Gone | not found | not found | not found |")
}

func TestRenderLeaderboard_Dispatch(t *testing.T) {
	for _, f := range []Format{FormatText, FormatCSV, FormatMarkdown, FormatJSON} {
		out, err := RenderLeaderboard(f, testEntries(), generated)
		require.NoError(t, err, f)
		assert.Contains(t, out, "Bitcoin", f)
	}

	_, err := RenderLeaderboard(Format("xml"), nil, generated)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRenderWatchlist_JSON(t *testing.T) {
	out, err := RenderWatchlist(FormatJSON, testLines(), generated)
	require.NoError(t, err)
	assert.Contains(t, out, `"display": "$67,187.34 (+3.62%)"`)
	assert.Contains(t, out, `"found": false`)
}
