// Package obs wires Prometheus metrics for the service.
package obs

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	orphansDeleted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "identity_orphans_deleted_total",
		Help: "Auth records removed by orphan reconciliation.",
	})

	upgradeSubmissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upgrade_submissions_total",
			Help: "Upgrade request submissions by outcome.",
		},
		[]string{"outcome"},
	)
)

// Init registers all metrics with the default registry. Call once at startup.
func Init() {
	prometheus.MustRegister(httpRequestsTotal, httpRequestDuration, orphansDeleted, upgradeSubmissions)
}

// Handler exposes the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// OrphansDeleted records n successful orphan deletions.
func OrphansDeleted(n int) {
	orphansDeleted.Add(float64(n))
}

// UpgradeSubmission records one submission outcome: created, conflict,
// invalid or error.
func UpgradeSubmission(outcome string) {
	upgradeSubmissions.WithLabelValues(outcome).Inc()
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

// Instrument measures request counts and latency per method/path/status.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(sw, r)

		status := strconv.Itoa(sw.code)
		httpRequestsTotal.WithLabelValues(r.Method, r.URL.Path, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, r.URL.Path, status).Observe(time.Since(start).Seconds())
	})
}
