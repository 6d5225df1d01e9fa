// Package metrics exposes the Prometheus collectors used across the API.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestDuration tracks request latency by route pattern.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "aisle_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "route", "status"},
	)

	// DBQueryDuration tracks SurrealDB round trips.
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "aisle_db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"operation", "status"},
	)

	// ExternalCallDuration tracks calls to the image generation and floor-plan APIs.
	ExternalCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "aisle_external_call_duration_seconds",
			Help:    "Outbound API call duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms to ~25s
		},
		[]string{"service", "status"},
	)

	// RateLimited counts rejected requests.
	RateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "aisle_rate_limited_total",
			Help: "Requests rejected by the rate limiter",
		},
	)

	// MoodboardImagesGenerated counts generated images stored on moodboards.
	MoodboardImagesGenerated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "aisle_moodboard_images_generated_total",
			Help: "Images produced by the image generation API and saved to moodboards",
		},
	)

	// JobRuns counts background job passes by outcome.
	JobRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aisle_job_runs_total",
			Help: "Background job runs",
		},
		[]string{"job", "status"},
	)
)

// RecordHTTPRequest records one served request.
func RecordHTTPRequest(method, route, status string, d time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, route, status).Observe(d.Seconds())
}

// RecordDBQuery records one database round trip.
func RecordDBQuery(operation, status string, d time.Duration) {
	DBQueryDuration.WithLabelValues(operation, status).Observe(d.Seconds())
}

// RecordExternalCall records one outbound API call.
func RecordExternalCall(service, status string, d time.Duration) {
	ExternalCallDuration.WithLabelValues(service, status).Observe(d.Seconds())
}

// RecordJobRun records one background job pass.
func RecordJobRun(job string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	JobRuns.WithLabelValues(job, status).Inc()
}
