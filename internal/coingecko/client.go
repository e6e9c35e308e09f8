package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"crypto-tracker/internal/domain"
	"crypto-tracker/internal/observability"
)

const (
	maxBodySize      = 10 << 20
	maxErrorBodySize = 1 << 10
)

// Sleeper blocks for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// ContextSleep is the default Sleeper.
func ContextSleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// HTTPClient implements Requester over HTTP.
//
// Every request waits the full request interval first, whatever the
// endpoint and however long ago the previous call was. Requests on one
// HTTPClient never overlap. There are no retries; see Retrying.
type HTTPClient struct {
	baseURL   string
	client    *http.Client
	interval  time.Duration
	sleep     Sleeper
	userAgent string
	logger    *zap.Logger

	mu sync.Mutex
}

// ClientOption configures HTTPClient.
type ClientOption func(*HTTPClient)

// WithBaseURL overrides the API root.
func WithBaseURL(u string) ClientOption {
	return func(c *HTTPClient) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithTimeout sets HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *HTTPClient) {
		c.client.Timeout = d
	}
}

// WithHTTPClient sets custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *HTTPClient) {
		c.client = client
	}
}

// WithRequestInterval sets the wait before every request. Negative values
// are treated as zero.
func WithRequestInterval(d time.Duration) ClientOption {
	return func(c *HTTPClient) {
		if d < 0 {
			d = 0
		}
		c.interval = d
	}
}

// WithSleeper replaces the pacing wait implementation.
func WithSleeper(s Sleeper) ClientOption {
	return func(c *HTTPClient) {
		c.sleep = s
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(c *HTTPClient) {
		c.userAgent = ua
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) ClientOption {
	return func(c *HTTPClient) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewHTTPClient creates a new CoinGecko HTTP client.
func NewHTTPClient(opts ...ClientOption) *HTTPClient {
	c := &HTTPClient{
		baseURL:   DefaultBaseURL,
		client:    &http.Client{Timeout: DefaultTimeout},
		interval:  DefaultRequestInterval,
		sleep:     ContextSleep,
		userAgent: DefaultUserAgent,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Request waits the request interval, performs one GET and decodes the body
// into out.
func (c *HTTPClient) Request(ctx context.Context, endpoint string, params url.Values, out interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.sleep(ctx, c.interval); err != nil {
		return fmt.Errorf("%s: wait: %w", endpoint, err)
	}

	target := c.baseURL + endpoint
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("%s: create request: %w: %w", endpoint, domain.ErrNetwork, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.finish(endpoint, "network_error", start, err)
		return fmt.Errorf("%s: %w: %w", endpoint, domain.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		statusErr := &StatusError{Endpoint: endpoint, Code: resp.StatusCode, Body: string(body)}
		c.finish(endpoint, "http_error", start, statusErr)
		return statusErr
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		c.finish(endpoint, "network_error", start, err)
		return fmt.Errorf("%s: read response: %w: %w", endpoint, domain.ErrNetwork, err)
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			c.finish(endpoint, "malformed", start, err)
			return fmt.Errorf("%s: %w: %v", endpoint, domain.ErrMalformedResponse, err)
		}
	}

	c.finish(endpoint, "success", start, nil)
	return nil
}

func (c *HTTPClient) finish(endpoint, outcome string, start time.Time, err error) {
	elapsed := time.Since(start)
	observability.RecordAPIRequest(endpoint, outcome, elapsed.Seconds())

	if err != nil {
		c.logger.Warn("price API request failed",
			zap.String("endpoint", endpoint),
			zap.String("outcome", outcome),
			zap.Duration("elapsed", elapsed),
			zap.Error(err))
		return
	}
	c.logger.Debug("price API request",
		zap.String("endpoint", endpoint),
		zap.Duration("elapsed", elapsed))
}

// Compile-time interface check.
var _ Requester = (*HTTPClient)(nil)
