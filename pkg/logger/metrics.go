package logger

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the screener pipeline. Registered via promauto
// and exposed on the /metrics endpoint by the API service.

var (
	ScanCyclesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "screener_scan_cycles_total",
			Help: "Total number of completed scan passes",
		},
	)

	SymbolsScannedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "screener_symbols_scanned_total",
			Help: "Total number of symbols processed, by outcome",
		},
		[]string{"outcome"}, // "ok", "insufficient_history", "provider_failure", "computation_fault"
	)

	ScanDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "screener_scan_duration_seconds",
			Help:    "Duration of a full scan pass in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 60},
		},
	)

	ProviderRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "screener_provider_request_duration_seconds",
			Help:    "Duration of data-provider calls in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"provider", "operation"},
	)

	ProviderErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "screener_provider_errors_total",
			Help: "Total number of data-provider errors",
		},
		[]string{"provider", "operation"},
	)

	RequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)
)
