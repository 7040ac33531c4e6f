package api

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fir_http_requests_total",
		Help: "HTTP requests by method, route and status code.",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fir_http_request_duration_seconds",
		Help:    "HTTP request latency by method and route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	objectIDPattern    = regexp.MustCompile(`/[0-9a-fA-F]{24}(/|$)`)
	uuidPattern        = regexp.MustCompile(`/[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}(/|$)`)
	longNumericPattern = regexp.MustCompile(`/\d{10,}(/|$)`)
)

// MetricsHandler serves the default prometheus registry
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

// normalizeRoutePath replaces id segments with placeholders so unmatched
// paths do not explode label cardinality
//   - /api/v1/fir/3f1c2a9e-8d4b-4c1a-9e2f-6b7a8c9d0e1f/update -> /api/v1/fir/{id}/update
func normalizeRoutePath(path string) string {
	path = objectIDPattern.ReplaceAllString(path, "/{id}$1")
	path = uuidPattern.ReplaceAllString(path, "/{id}$1")
	path = longNumericPattern.ReplaceAllString(path, "/{id}$1")
	path = strings.ReplaceAll(path, "//", "/")

	if len(path) > 1 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}
	return path
}
