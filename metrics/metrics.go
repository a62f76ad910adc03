// Package metrics exposes the Prometheus collectors used across the service.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendations_total",
			Help: "Total number of recommendation passes by path",
		},
		[]string{"path"}, // "scored", "fallback"
	)

	RecommendationCandidates = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommendation_candidates",
			Help:    "Number of candidate events considered per recommendation pass",
			Buckets: []float64{0, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
	)

	RecommendationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommendation_duration_seconds",
			Help:    "Duration of a recommendation pass including snapshot loading",
			Buckets: prometheus.DefBuckets,
		},
	)

	EventStatusTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "event_status_transitions_total",
			Help: "Total number of automatic event status transitions",
		},
		[]string{"to"},
	)
)

// RecordHTTPRequest records one served request. route is the chi route pattern.
func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	HTTPRequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(duration.Seconds())
}

// RecordRecommendation records one recommendation pass.
func RecordRecommendation(fallback bool, candidates int, duration time.Duration) {
	path := "scored"
	if fallback {
		path = "fallback"
	}
	RecommendationsTotal.WithLabelValues(path).Inc()
	RecommendationCandidates.Observe(float64(candidates))
	RecommendationDuration.Observe(duration.Seconds())
}

// RecordStatusTransitions adds n transitions into status to.
func RecordStatusTransitions(to string, n int64) {
	if n > 0 {
		EventStatusTransitions.WithLabelValues(to).Add(float64(n))
	}
}
