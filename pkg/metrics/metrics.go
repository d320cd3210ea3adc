// Package metrics defines the Prometheus collectors exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// MarketPagesFetched counts successful market-cap page fetches.
	MarketPagesFetched = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "holdings_market_pages_fetched_total",
		Help: "Number of market-cap listing pages fetched successfully.",
	})

	// MarketPageFailures counts failed market-cap page fetches (retried, never fatal).
	MarketPageFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "holdings_market_page_failures_total",
		Help: "Number of failed market-cap listing page fetches.",
	})

	// PriceTableSize tracks how many token entries the price table holds.
	PriceTableSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "holdings_price_table_entries",
		Help: "Number of token entries currently in the price table.",
	})

	// HoldingsFetchDuration observes end-to-end holdings request latency.
	HoldingsFetchDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "holdings_fetch_duration_seconds",
		Help:    "Duration of wallet holdings fetches.",
		Buckets: prometheus.DefBuckets,
	}, []string{"status"})

	// HoldingsFetchErrors counts failed holdings fetches by error class.
	HoldingsFetchErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "holdings_fetch_errors_total",
		Help: "Number of failed wallet holdings fetches by error class.",
	}, []string{"class"})
)

// Error class label values for HoldingsFetchErrors.
const (
	ErrorClassValidation = "validation"
	ErrorClassRateLimit  = "rate_limit"
	ErrorClassRequest    = "request"
)

// MustRegisterMetrics registers all collectors with the default registry.
// Call once from main before serving.
func MustRegisterMetrics() {
	prometheus.MustRegister(
		MarketPagesFetched,
		MarketPageFailures,
		PriceTableSize,
		HoldingsFetchDuration,
		HoldingsFetchErrors,
	)
}
