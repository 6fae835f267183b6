// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts handled requests by route pattern and status code.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "videotube_http_requests_total",
			Help: "Total number of HTTP requests handled",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestDuration tracks request latency by route pattern.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "videotube_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// SessionEvents counts session lifecycle transitions.
	SessionEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "videotube_session_events_total",
			Help: "Session lifecycle events (login, refresh, logout, reuse_detected, password_change)",
		},
		[]string{"event"},
	)

	// ToggleOutcomes counts like and subscription flips by resulting state.
	ToggleOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "videotube_toggle_total",
			Help: "Toggle operations by relation kind and resulting state",
		},
		[]string{"kind", "state"},
	)

	// AggregationDuration tracks derived-view query latency.
	AggregationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "videotube_aggregation_duration_seconds",
			Help:    "Duration of aggregation pipeline queries in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"view"},
	)

	// AssetOperations counts object storage operations by kind and outcome.
	AssetOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "videotube_asset_operations_total",
			Help: "Asset store operations by operation, asset kind and outcome",
		},
		[]string{"operation", "kind", "outcome"},
	)

	// StorageBreakerState reports the object storage circuit breaker state (0 closed, 1 half-open, 2 open).
	StorageBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "videotube_storage_breaker_state",
			Help: "Object storage circuit breaker state (0 closed, 1 half-open, 2 open)",
		},
	)
)
