// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Provider API metrics
	APIRequests        *prometheus.CounterVec
	APIRequestDuration *prometheus.HistogramVec
	APIRetries         *prometheus.CounterVec

	// Resolver metrics
	Resolutions *prometheus.CounterVec

	// Watchlist metrics
	WatchlistOperations *prometheus.CounterVec
	WatchlistSize       prometheus.Gauge
}

// NewMetrics creates a new Metrics instance registered with reg.
// A nil reg registers with the default Prometheus registry.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "crypto_tracker"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		APIRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Total number of price API requests by endpoint and outcome",
		}, []string{"endpoint", "outcome"}),
		APIRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "Price API request latency in seconds, excluding pacing waits",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
		APIRetries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "retries_total",
			Help:      "Total number of retried price API requests",
		}, []string{"endpoint"}),

		Resolutions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "resolver",
			Name:      "resolutions_total",
			Help:      "Total number of free-text resolutions by outcome",
		}, []string{"outcome"}),

		WatchlistOperations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "watchlist",
			Name:      "operations_total",
			Help:      "Total number of watchlist store operations",
		}, []string{"backend", "operation", "status"}),
		WatchlistSize: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "watchlist",
			Name:      "size",
			Help:      "Number of coins in the last loaded or saved watchlist",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("", nil)

// RecordAPIRequest records one provider request and its latency.
func RecordAPIRequest(endpoint, outcome string, seconds float64) {
	DefaultMetrics.APIRequests.WithLabelValues(endpoint, outcome).Inc()
	DefaultMetrics.APIRequestDuration.WithLabelValues(endpoint).Observe(seconds)
}

// RecordAPIRetry increments the retry counter for endpoint.
func RecordAPIRetry(endpoint string) {
	DefaultMetrics.APIRetries.WithLabelValues(endpoint).Inc()
}

// RecordResolution records the outcome of one free-text resolution
// ("found", "not_found" or "error").
func RecordResolution(outcome string) {
	DefaultMetrics.Resolutions.WithLabelValues(outcome).Inc()
}

// RecordWatchlistOperation records a store load or save.
func RecordWatchlistOperation(backend, operation string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	DefaultMetrics.WatchlistOperations.WithLabelValues(backend, operation, status).Inc()
}

// UpdateWatchlistSize sets the watchlist size gauge.
func UpdateWatchlistSize(n int) {
	DefaultMetrics.WatchlistSize.Set(float64(n))
}
