package coingecko

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crypto-tracker/internal/domain"
)

func TestClient_SimplePrice(t *testing.T) {
	var gotQuery url.Values
	hc, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"bitcoin": {"usd": 1234567.891, "usd_market_cap": 2.3e9, "usd_24h_change": -3.456},
			"ethereum": {"usd": 3000},
			"weird": {"usd": "n/a", "usd_market_cap": null, "usd_24h_change": true}
		}`))
	})
	client := New(hc)

	record, err := client.SimplePrice(context.Background(), []domain.CoinID{"bitcoin", "ethereum", "weird", "unknown"})
	require.NoError(t, err)

	assert.Equal(t, "bitcoin,ethereum,weird,unknown", gotQuery.Get("ids"))
	assert.Equal(t, "usd", gotQuery.Get("vs_currencies"))
	assert.Equal(t, "true", gotQuery.Get("include_market_cap"))
	assert.Equal(t, "true", gotQuery.Get("include_24hr_change"))

	btc, ok := record.Lookup("bitcoin")
	require.True(t, ok)
	assert.True(t, btc.Price.Valid)
	assert.Equal(t, "1234567.891", btc.Price.Decimal.String())
	assert.Equal(t, "2300000000", btc.MarketCap.Decimal.String())
	assert.Equal(t, "-3.456", btc.Change24h.Decimal.String())

	eth := record["ethereum"]
	assert.True(t, eth.Price.Valid)
	assert.False(t, eth.Change24h.Valid)
	assert.False(t, eth.MarketCap.Valid)

	weird := record["weird"]
	assert.False(t, weird.Price.Valid)
	assert.False(t, weird.MarketCap.Valid)
	assert.False(t, weird.Change24h.Valid)

	_, ok = record.Lookup("unknown")
	assert.False(t, ok)
}

func TestClient_Markets(t *testing.T) {
	var gotQuery url.Values
	hc, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, EndpointMarkets, r.URL.Path)
		gotQuery = r.URL.Query()
		w.Write([]byte(`[
			{"id": "bitcoin", "symbol": "btc", "name": "Bitcoin", "current_price": 67000.5, "market_cap": 1320000000000, "market_cap_rank": 1, "price_change_percentage_24h": 1.25},
			{"id": "newcoin", "symbol": "new", "name": "New Coin", "current_price": null, "market_cap": 0, "market_cap_rank": null, "price_change_percentage_24h": null}
		]`))
	})
	client := New(hc)

	coins, err := client.Markets(context.Background(), 2, 50)
	require.NoError(t, err)

	assert.Equal(t, "usd", gotQuery.Get("vs_currency"))
	assert.Equal(t, "market_cap_desc", gotQuery.Get("order"))
	assert.Equal(t, "50", gotQuery.Get("per_page"))
	assert.Equal(t, "2", gotQuery.Get("page"))
	assert.Equal(t, "false", gotQuery.Get("sparkline"))

	require.Len(t, coins, 2)
	assert.Equal(t, domain.CoinID("bitcoin"), coins[0].ID)
	require.NotNil(t, coins[0].Rank)
	assert.Equal(t, 1, *coins[0].Rank)
	assert.Equal(t, "67000.5", coins[0].Price.Decimal.String())

	assert.Nil(t, coins[1].Rank)
	assert.False(t, coins[1].Price.Valid)
	assert.True(t, coins[1].MarketCap.Valid)
}

func TestClient_MarketsRejectsBadPaging(t *testing.T) {
	client := New(NewHTTPClient())

	for _, tc := range []struct{ page, perPage int }{{0, 10}, {1, 0}, {1, MaxPerPage + 1}} {
		_, err := client.Markets(context.Background(), tc.page, tc.perPage)
		assert.True(t, errors.Is(err, domain.ErrInvalidInput), "page=%d per_page=%d", tc.page, tc.perPage)
	}
}

func TestClient_Search(t *testing.T) {
	hc, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "btc", r.URL.Query().Get("query"))
		w.Write([]byte(`{
			"coins": [
				{"id": "bitcoin", "name": "Bitcoin", "api_symbol": "bitcoin", "symbol": "BTC", "market_cap_rank": 1},
				{"id": "", "name": "Broken"},
				{"id": "batcat", "name": "batcat", "symbol": "BTC", "market_cap_rank": null}
			],
			"exchanges": [], "categories": []
		}`))
	})
	client := New(hc)

	matches, err := client.Search(context.Background(), "btc")
	require.NoError(t, err)

	require.Len(t, matches, 2)
	assert.Equal(t, domain.CoinID("bitcoin"), matches[0].ID)
	assert.Equal(t, "BTC", matches[0].Symbol)
	assert.Equal(t, domain.CoinID("batcat"), matches[1].ID)
	assert.Nil(t, matches[1].MarketCapRank)
}

func TestClient_PropagatesFailure(t *testing.T) {
	hc, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	client := New(hc)

	record, err := client.SimplePrice(context.Background(), []domain.CoinID{"bitcoin"})
	assert.True(t, errors.Is(err, domain.ErrNetwork))
	assert.Nil(t, record)
}

func TestParseDecimal(t *testing.T) {
	tests := []struct {
		raw   string
		valid bool
		want  string
	}{
		{raw: `1.5`, valid: true, want: "1.5"},
		{raw: `1.5e3`, valid: true, want: "1500"},
		{raw: `"42.10"`, valid: true, want: "42.1"},
		{raw: `-0.001`, valid: true, want: "-0.001"},
		{raw: `null`, valid: false},
		{raw: ``, valid: false},
		{raw: `"abc"`, valid: false},
		{raw: `true`, valid: false},
		{raw: `{}`, valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got := parseDecimal(json.RawMessage(tt.raw))
			assert.Equal(t, tt.valid, got.Valid)
			if tt.valid {
				assert.Equal(t, tt.want, got.Decimal.String())
			}
		})
	}
}
