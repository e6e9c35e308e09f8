// Package coingecko talks to the CoinGecko v3 REST API.
// The API is documented here: https://docs.coingecko.com/
package coingecko

import (
	"context"
	"net/url"
	"time"
)

const (
	// DefaultBaseURL is the free-tier API root.
	DefaultBaseURL = "https://api.coingecko.com/api/v3"

	// DefaultRequestInterval is the wait before every request. The free tier
	// allows roughly 30 calls per minute.
	DefaultRequestInterval = 2 * time.Second

	// DefaultTimeout bounds a single HTTP round trip.
	DefaultTimeout = 30 * time.Second

	// MaxPerPage is the largest page size /coins/markets accepts.
	MaxPerPage = 250

	// DefaultUserAgent identifies the client to the API.
	DefaultUserAgent = "crypto-tracker/1.0"

	// VsCurrency is the quote currency for every request.
	VsCurrency = "usd"
)

// Endpoint paths, relative to the base URL.
const (
	EndpointSimplePrice = "/simple/price"
	EndpointMarkets     = "/coins/markets"
	EndpointSearch      = "/search"
)

// Requester issues one GET request against endpoint and decodes the JSON
// body into out. Implementations return an error wrapping
// domain.ErrNetwork or domain.ErrMalformedResponse on failure and never
// leave a partially decoded result for the caller to use.
type Requester interface {
	Request(ctx context.Context, endpoint string, params url.Values, out interface{}) error
}

// searchResponse is the raw /search payload. Only coins are used.
//
// Example:
//
//	{"coins": [{"id": "bitcoin", "name": "Bitcoin", "symbol": "BTC", "market_cap_rank": 1}]}
type searchResponse struct {
	Coins []searchCoin `json:"coins"`
}

type searchCoin struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Symbol        string `json:"symbol"`
	MarketCapRank *int   `json:"market_cap_rank"`
}
