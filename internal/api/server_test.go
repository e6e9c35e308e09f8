package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crypto-tracker/internal/coingecko"
	"crypto-tracker/internal/coingecko/stub"
	"crypto-tracker/internal/domain"
	"crypto-tracker/internal/storage/memory"
	"crypto-tracker/internal/tracker"
	"crypto-tracker/internal/watchlist"
)

func dec(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func newTestServer(t *testing.T, seed ...domain.CoinID) (*httptest.Server, *stub.Provider) {
	t.Helper()

	provider := stub.NewProvider()
	provider.Matches["btc"] = []domain.CoinMatch{{ID: "bitcoin", Name: "Bitcoin", Symbol: "BTC"}}
	provider.Matches["eth"] = []domain.CoinMatch{
		{ID: "ethereum", Name: "Ethereum", Symbol: "ETH"},
		{ID: "ethereum-classic", Name: "Ethereum Classic", Symbol: "ETC"},
	}
	provider.Prices["bitcoin"] = domain.Quote{Price: dec("67187.339"), Change24h: dec("3.62"), MarketCap: dec("1325000000000")}
	provider.Prices["ethereum"] = domain.Quote{Price: dec("3456.7")}
	for i := 1; i <= 30; i++ {
		rank := i
		provider.Ranked = append(provider.Ranked, coingecko.MarketCoin{
			ID:     domain.CoinID(fmt.Sprintf("coin-%d", i)),
			Name:   fmt.Sprintf("Coin %d", i),
			Symbol: fmt.Sprintf("c%d", i),
			Rank:   &rank,
			Price:  dec("2.5"),
		})
	}

	svc := watchlist.NewService(memory.NewWatchlistStore(seed...), "memory", nil)
	srv := NewServer(tracker.New(provider, svc), nil)
	srv.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, provider
}

func getJSON(t *testing.T, url string, wantStatus int, out interface{}) {
	t.Helper()

	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, wantStatus, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func postJSON(t *testing.T, url, body string, wantStatus int, out interface{}) {
	t.Helper()

	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, wantStatus, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func TestHealth(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", string(body))
}

func TestMetricsEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestWatchlist(t *testing.T) {
	ts, _ := newTestServer(t, "bitcoin", "ethereum")

	var resp WatchlistResponse
	getJSON(t, ts.URL+"/api/v1/watchlist", http.StatusOK, &resp)
	assert.Equal(t, []string{"bitcoin", "ethereum"}, resp.Coins)
}

func TestWatchlistEmpty(t *testing.T) {
	ts, _ := newTestServer(t)

	var raw map[string]interface{}
	getJSON(t, ts.URL+"/api/v1/watchlist", http.StatusOK, &raw)
	assert.Equal(t, []interface{}{}, raw["coins"])
}

func TestWatchlistPrices(t *testing.T) {
	ts, provider := newTestServer(t, "bitcoin", "gone")

	var resp PricesResponse
	getJSON(t, ts.URL+"/api/v1/watchlist/prices", http.StatusOK, &resp)

	require.Len(t, resp.Coins, 2)
	assert.Equal(t, CoinPrice{
		ID: "bitcoin", Name: "Bitcoin", Display: "$67,187.34 (+3.62%)", Found: true,
		Price: "$67,187.34", Change24h: "+3.62%", MarketCap: "$1.3T",
	}, resp.Coins[0])
	assert.Equal(t, "not found", resp.Coins[1].Display)
	assert.Equal(t, 1, provider.SimplePriceCallCount())
}

func TestWatchlistPrices_ProviderFailure(t *testing.T) {
	ts, provider := newTestServer(t, "bitcoin")
	provider.SimplePriceErr = fmt.Errorf("dial: %w", domain.ErrNetwork)

	var resp ErrorResponse
	getJSON(t, ts.URL+"/api/v1/watchlist/prices", http.StatusBadGateway, &resp)
	assert.Contains(t, resp.Error, "network failure")
}

func TestAddAndRemove(t *testing.T) {
	ts, _ := newTestServer(t)

	var added AddResponse
	postJSON(t, ts.URL+"/api/v1/watchlist/add", `{"coins": ["btc", "eth, nope"]}`, http.StatusOK, &added)

	require.Len(t, added.Resolutions, 3)
	assert.Equal(t, "bitcoin", added.Resolutions[0].ID)
	assert.Contains(t, added.Resolutions[2].Error, "not found")
	assert.Equal(t, []string{"bitcoin", "ethereum"}, added.Added)
	assert.Equal(t, []string{"bitcoin", "ethereum"}, added.Coins)

	var removed RemoveResponse
	postJSON(t, ts.URL+"/api/v1/watchlist/remove", `{"coins": ["bitcoin", "dogecoin"]}`, http.StatusOK, &removed)
	assert.Equal(t, []string{"bitcoin"}, removed.Removed)
	assert.Equal(t, []string{"dogecoin"}, removed.Unmatched)
	assert.Equal(t, []string{"ethereum"}, removed.Coins)
}

func TestAdd_BadRequest(t *testing.T) {
	ts, _ := newTestServer(t)

	for _, body := range []string{`not json`, `{"coins": []}`, `{"coins": [" , "]}`} {
		var resp ErrorResponse
		postJSON(t, ts.URL+"/api/v1/watchlist/add", body, http.StatusBadRequest, &resp)
		assert.NotEmpty(t, resp.Error, body)
	}
}

func TestPrices(t *testing.T) {
	ts, _ := newTestServer(t)

	var resp PricesResponse
	getJSON(t, ts.URL+"/api/v1/prices?coins=btc,eth,nope", http.StatusOK, &resp)

	require.Len(t, resp.Coins, 2)
	assert.Equal(t, "$3,456.70", resp.Coins[1].Display)
	require.Len(t, resp.Resolutions, 3)
	assert.NotEmpty(t, resp.Resolutions[2].Error)
}

func TestPrices_MissingParam(t *testing.T) {
	ts, _ := newTestServer(t)

	var resp ErrorResponse
	getJSON(t, ts.URL+"/api/v1/prices", http.StatusBadRequest, &resp)
}

func TestTop_JSON(t *testing.T) {
	ts, provider := newTestServer(t)

	var resp TopResponse
	getJSON(t, ts.URL+"/api/v1/top?n=5", http.StatusOK, &resp)

	require.Len(t, resp.Entries, 5)
	assert.Equal(t, 1, resp.Entries[0].Rank)
	assert.Equal(t, "C1", resp.Entries[0].Symbol)
	assert.Equal(t, "$2.50", resp.Entries[0].Price)
	assert.Equal(t, "unavailable", resp.Entries[0].MarketCap)
	assert.Equal(t, 1, provider.MarketsCallCount())
}

func TestTop_DefaultN(t *testing.T) {
	ts, _ := newTestServer(t)

	var resp TopResponse
	getJSON(t, ts.URL+"/api/v1/top", http.StatusOK, &resp)
	assert.Len(t, resp.Entries, DefaultTopN)
}

func TestTop_Formats(t *testing.T) {
	ts, _ := newTestServer(t)

	tests := []struct {
		format      string
		contentType string
		contains    string
	}{
		{format: "csv", contentType: "text/csv; charset=utf-8", contains: "rank,id,name,symbol"},
		{format: "markdown", contentType: "text/markdown; charset=utf-8", contains: "# Top 3 Cryptocurrencies"},
		{format: "text", contentType: "text/plain; charset=utf-8", contains: "Coin 3"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			resp, err := http.Get(ts.URL + "/api/v1/top?n=3&format=" + tt.format)
			require.NoError(t, err)
			defer resp.Body.Close()

			body, _ := io.ReadAll(resp.Body)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, tt.contentType, resp.Header.Get("Content-Type"))
			assert.Contains(t, string(body), tt.contains)
		})
	}
}

func TestTop_BadInput(t *testing.T) {
	ts, _ := newTestServer(t)

	for _, q := range []string{"n=abc", "n=0", "n=-1", "n=100000", "format=xml"} {
		var resp ErrorResponse
		getJSON(t, ts.URL+"/api/v1/top?"+q, http.StatusBadRequest, &resp)
	}
}

func TestSearch(t *testing.T) {
	ts, _ := newTestServer(t)

	var resp SearchResponse
	getJSON(t, ts.URL+"/api/v1/search?q=eth", http.StatusOK, &resp)
	require.Len(t, resp.Matches, 2)
	assert.Equal(t, domain.CoinID("ethereum-classic"), resp.Matches[1].ID)

	var notFound ErrorResponse
	getJSON(t, ts.URL+"/api/v1/search?q=zzz", http.StatusNotFound, &notFound)

	var bad ErrorResponse
	getJSON(t, ts.URL+"/api/v1/search?q=", http.StatusBadRequest, &bad)
}

func TestMethodNotAllowed(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/v1/watchlist/add")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, StatusFor(fmt.Errorf("x: %w", domain.ErrInvalidInput)))
	assert.Equal(t, http.StatusNotFound, StatusFor(fmt.Errorf("x: %w", domain.ErrNotFound)))
	assert.Equal(t, http.StatusBadGateway, StatusFor(&coingecko.StatusError{Code: 503}))
	assert.Equal(t, http.StatusBadGateway, StatusFor(fmt.Errorf("x: %w", domain.ErrMalformedResponse)))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(errors.New("boom")))
}
