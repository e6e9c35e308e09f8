package coingecko

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"crypto-tracker/internal/domain"
)

// Client exposes the three provider operations on top of a Requester.
type Client struct {
	requester Requester
}

// New creates a Client over r.
func New(r Requester) *Client {
	return &Client{requester: r}
}

// SimplePrice fetches price, market cap and 24h change for all ids in one
// request. Ids the provider does not know are absent from the result.
// Fields that are missing or non-numeric are left invalid.
//
// Response format: {"bitcoin": {"usd": 67187.33, "usd_market_cap": 1.3e12, "usd_24h_change": 3.6}}
func (c *Client) SimplePrice(ctx context.Context, ids []domain.CoinID) (domain.PriceRecord, error) {
	params := url.Values{}
	params.Set("ids", strings.Join(domain.Strings(ids), ","))
	params.Set("vs_currencies", VsCurrency)
	params.Set("include_market_cap", "true")
	params.Set("include_24hr_change", "true")

	var raw map[string]map[string]json.RawMessage
	if err := c.requester.Request(ctx, EndpointSimplePrice, params, &raw); err != nil {
		return nil, err
	}

	record := make(domain.PriceRecord, len(raw))
	for id, fields := range raw {
		record[domain.CoinID(id)] = domain.Quote{
			Price:     parseDecimal(fields[VsCurrency]),
			Change24h: parseDecimal(fields[VsCurrency+"_24h_change"]),
			MarketCap: parseDecimal(fields[VsCurrency+"_market_cap"]),
		}
	}
	return record, nil
}

// MarketCoin is one row of /coins/markets. Rank is nil when the provider
// has not ranked the coin.
type MarketCoin struct {
	ID        domain.CoinID
	Symbol    string
	Name      string
	Rank      *int
	Price     decimal.NullDecimal
	Change24h decimal.NullDecimal
	MarketCap decimal.NullDecimal
}

type marketCoinResponse struct {
	ID                       string          `json:"id"`
	Symbol                   string          `json:"symbol"`
	Name                     string          `json:"name"`
	CurrentPrice             json.RawMessage `json:"current_price"`
	MarketCap                json.RawMessage `json:"market_cap"`
	MarketCapRank            *int            `json:"market_cap_rank"`
	PriceChangePercentage24h json.RawMessage `json:"price_change_percentage_24h"`
}

// Markets fetches one page of coins ordered by market cap, descending.
// page starts at 1.
func (c *Client) Markets(ctx context.Context, page, perPage int) ([]MarketCoin, error) {
	if page < 1 || perPage < 1 || perPage > MaxPerPage {
		return nil, fmt.Errorf("markets page %d per_page %d: %w", page, perPage, domain.ErrInvalidInput)
	}

	params := url.Values{}
	params.Set("vs_currency", VsCurrency)
	params.Set("order", "market_cap_desc")
	params.Set("per_page", strconv.Itoa(perPage))
	params.Set("page", strconv.Itoa(page))
	params.Set("sparkline", "false")

	var raw []marketCoinResponse
	if err := c.requester.Request(ctx, EndpointMarkets, params, &raw); err != nil {
		return nil, err
	}

	coins := make([]MarketCoin, 0, len(raw))
	for _, r := range raw {
		coins = append(coins, MarketCoin{
			ID:        domain.CoinID(r.ID),
			Symbol:    r.Symbol,
			Name:      r.Name,
			Rank:      r.MarketCapRank,
			Price:     parseDecimal(r.CurrentPrice),
			Change24h: parseDecimal(r.PriceChangePercentage24h),
			MarketCap: parseDecimal(r.MarketCap),
		})
	}
	return coins, nil
}

// Search returns the provider's ranked coin matches for a free-text query.
func (c *Client) Search(ctx context.Context, query string) ([]domain.CoinMatch, error) {
	params := url.Values{}
	params.Set("query", query)

	var resp searchResponse
	if err := c.requester.Request(ctx, EndpointSearch, params, &resp); err != nil {
		return nil, err
	}

	matches := make([]domain.CoinMatch, 0, len(resp.Coins))
	for _, coin := range resp.Coins {
		if coin.ID == "" {
			continue
		}
		matches = append(matches, domain.CoinMatch{
			ID:            domain.CoinID(coin.ID),
			Name:          coin.Name,
			Symbol:        coin.Symbol,
			MarketCapRank: coin.MarketCapRank,
		})
	}
	return matches, nil
}

// parseDecimal reads a JSON number (or a quoted number) exactly as the
// provider wrote it. Anything else yields an invalid NullDecimal.
func parseDecimal(raw json.RawMessage) decimal.NullDecimal {
	text := bytes.TrimSpace(raw)
	if len(text) == 0 || bytes.Equal(text, []byte("null")) {
		return decimal.NullDecimal{}
	}
	if text[0] == '"' {
		unquoted, err := strconv.Unquote(string(text))
		if err != nil {
			return decimal.NullDecimal{}
		}
		text = []byte(strings.TrimSpace(unquoted))
	}
	d, err := decimal.NewFromString(string(text))
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}
}
