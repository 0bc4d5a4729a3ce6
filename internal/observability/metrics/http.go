package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webauth_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path"},
	)

	HTTPRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "webauth_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

// servedPaths must stay in step with the router's route surface.
var servedPaths = map[string]struct{}{
	"/":          {},
	"/register":  {},
	"/login":     {},
	"/logout":    {},
	"/dashboard": {},
	"/health":    {},
	"/metrics":   {},
}

const unmatchedPathLabel = "/unmatched"

// NormalizePath collapses any path outside the served routes into a
// single label value, keeping series cardinality bounded no matter what
// paths clients request.
func NormalizePath(path string) string {
	if _, ok := servedPaths[path]; ok {
		return path
	}
	return unmatchedPathLabel
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware records request counts and durations, labeled by the
// normalized path.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := NormalizePath(r.URL.Path)

		HTTPRequestsTotal.WithLabelValues(r.Method, path).Inc()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		HTTPRequestDurationSeconds.WithLabelValues(
			r.Method,
			path,
			strconv.Itoa(rec.status),
		).Observe(time.Since(start).Seconds())
	})
}
