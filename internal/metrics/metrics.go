// Package metrics exposes Prometheus collectors for the outage watch service.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	pollCyclesTotal            *prometheus.CounterVec
	cycleDurationSeconds       prometheus.Histogram
	sourceResultsTotal         *prometheus.CounterVec
	fetchRequestsTotal         *prometheus.CounterVec
	fetchCacheTotal            *prometheus.CounterVec
	crowdChecksTotal           *prometheus.CounterVec
	crowdAlertsTotal           prometheus.Counter
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		pollCyclesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "outagewatch_poll_cycles_total",
				Help: "Total number of poll cycles executed, labeled by result.",
			},
			[]string{"result"},
		)

		cycleDurationSeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "outagewatch_cycle_duration_seconds",
				Help:    "Histogram of complete poll cycle durations.",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
		)

		sourceResultsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "outagewatch_source_results_total",
				Help: "Total number of per-source results, labeled by kind and level.",
			},
			[]string{"kind", "level"},
		)

		fetchRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "outagewatch_fetch_requests_total",
				Help: "Total number of outbound fetches, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		fetchCacheTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "outagewatch_fetch_cache_total",
				Help: "Fetch cache lookups, labeled hit or miss.",
			},
			[]string{"result"},
		)

		crowdChecksTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "outagewatch_crowd_checks_total",
				Help: "Total crowd entity checks, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		crowdAlertsTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "outagewatch_crowd_alerts_total",
				Help: "Total crowd alerts emitted.",
			},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "outagewatch_http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "outagewatch_http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"method", "route"},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveCycle records one completed poll cycle.
func ObserveCycle(result string, duration time.Duration) {
	Init()
	pollCyclesTotal.WithLabelValues(result).Inc()
	cycleDurationSeconds.Observe(duration.Seconds())
}

// ObserveSourceResult counts one normalized source result.
func ObserveSourceResult(kind, level string) {
	Init()
	sourceResultsTotal.WithLabelValues(kind, level).Inc()
}

// ObserveFetch counts one outbound fetch attempt.
func ObserveFetch(outcome string) {
	Init()
	fetchRequestsTotal.WithLabelValues(outcome).Inc()
}

// ObserveCacheLookup counts a fetch cache hit or miss.
func ObserveCacheLookup(hit bool) {
	Init()
	result := "miss"
	if hit {
		result = "hit"
	}
	fetchCacheTotal.WithLabelValues(result).Inc()
}

// ObserveCrowdCheck counts one crowd entity check.
func ObserveCrowdCheck(outcome string) {
	Init()
	crowdChecksTotal.WithLabelValues(outcome).Inc()
}

// ObserveCrowdAlert counts one emitted crowd alert.
func ObserveCrowdAlert() {
	Init()
	crowdAlertsTotal.Inc()
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	Init()
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}
