// Package metrics provides the Prometheus registry and the /metrics handler
// for the employee client. All metrics are defined in their respective
// packages (client, cache, orchestrator) via promauto to keep those packages
// self-contained.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the default Prometheus registry used by the employee client.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Names lists every metric registered by the client packages.
var Names = []string{
	// pkg/client
	"employee_client_requests_total",
	"employee_client_request_duration_seconds",
	"employee_client_errors_total",
	"employee_client_retries_total",
	"employee_client_retry_exhausted_total",

	// pkg/cache
	"employee_cache_hits_total",
	"employee_cache_misses_total",
	"employee_conditional_requests_total",
	"employee_304_responses_total",
	"employee_cache_errors_total",

	// pkg/orchestrator
	"employee_orchestrator_loads_total",
	"employee_orchestrator_load_more_skipped_total",
	"employee_orchestrator_mutations_total",

	// internal/fakeapi
	"employee_fakeapi_requests_total",
	"employee_fakeapi_injected_failures_total",
}

// Handler serves the default gatherer in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - employee_client_requests_total{method, status} (Counter): Requests by HTTP method and status
//   - employee_client_request_duration_seconds{method} (Histogram): Request duration by method
//   - employee_client_errors_total{class} (Counter): Normalized errors by class (bad_request, unauthorized, not_found, server, unknown)
//
// Retry Metrics (pkg/client):
//   - employee_client_retries_total{operation} (Counter): Retry attempts by read operation
//   - employee_client_retry_exhausted_total{operation} (Counter): Reads that failed on every attempt
//
// Cache Metrics (pkg/cache):
//   - employee_cache_hits_total (Counter): Cache hits
//   - employee_cache_misses_total (Counter): Cache misses
//   - employee_conditional_requests_total (Counter): Conditional requests sent with If-None-Match
//   - employee_304_responses_total (Counter): 304 Not Modified responses served from cache
//   - employee_cache_errors_total{operation} (Counter): Cache operation errors
//
// Orchestrator Metrics (pkg/orchestrator):
//   - employee_orchestrator_loads_total{kind, outcome} (Counter): Listing/search loads by outcome (success, failure, stale)
//   - employee_orchestrator_load_more_skipped_total{reason} (Counter): Load-more calls answered without a fetch
//   - employee_orchestrator_mutations_total{operation, outcome} (Counter): Create/update/delete outcomes
//
// Fake API Metrics (internal/fakeapi):
//   - employee_fakeapi_requests_total{route, status} (Counter): Requests served by the fake API
//   - employee_fakeapi_injected_failures_total (Counter): Failures injected with FailNext
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(employee_cache_hits_total[5m])) /
//   (sum(rate(employee_cache_hits_total[5m])) + sum(rate(employee_cache_misses_total[5m])))
//
//   # Retry Exhaustion Rate
//   rate(employee_client_retry_exhausted_total[5m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(employee_client_request_duration_seconds_bucket[5m]))
//
//   # Stale Responses Dropped
//   rate(employee_orchestrator_loads_total{outcome="stale"}[5m])
