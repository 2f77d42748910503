package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spacedash_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"path", "method", "code"},
	)

	httpDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "spacedash_http_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)

	catalogLoadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spacedash_catalog_loads_total",
			Help: "Catalog load attempts by outcome.",
		},
		[]string{"outcome"},
	)

	catalogSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "spacedash_catalog_size",
		Help: "Number of distinct names in the current catalog.",
	})

	catalogAgeSeconds = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "spacedash_catalog_age_seconds",
		Help: "Seconds since the current catalog was fetched.",
	})

	catalogDuplicatesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "spacedash_catalog_duplicate_names_total",
		Help: "Element sets that replaced an earlier one with the same name.",
	})

	propagationDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "spacedash_propagation_duration_seconds",
			Help:    "Time to produce a position or a full ground track, failed attempts included.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
		},
		[]string{"kind"},
	)

	propagationFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "spacedash_propagation_failures_total",
		Help: "Propagation calls that produced no valid position.",
	})

	feedRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spacedash_feed_requests_total",
			Help: "Upstream public feed requests by feed and outcome.",
		},
		[]string{"feed", "outcome"},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpDurationSeconds,
		catalogLoadsTotal,
		catalogSize,
		catalogAgeSeconds,
		catalogDuplicatesTotal,
		propagationDurationSeconds,
		propagationFailuresTotal,
		feedRequestsTotal,
	)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordCatalogLoad counts one catalog load attempt.
func RecordCatalogLoad(outcome string) {
	catalogLoadsTotal.WithLabelValues(outcome).Inc()
}

// SetCatalogSize publishes the number of names in the current catalog.
func SetCatalogSize(n int) {
	catalogSize.Set(float64(n))
}

// SetCatalogAge publishes the current catalog age.
func SetCatalogAge(seconds float64) {
	catalogAgeSeconds.Set(seconds)
}

// AddCatalogDuplicates counts name collisions resolved by last-wins.
func AddCatalogDuplicates(n int) {
	catalogDuplicatesTotal.Add(float64(n))
}

// ObservePropagation records how long a position ("position") or a track
// ("track") took, whether or not it succeeded.
func ObservePropagation(kind string, d time.Duration) {
	propagationDurationSeconds.WithLabelValues(kind).Observe(d.Seconds())
}

// IncPropagationFailures counts one failed propagation.
func IncPropagationFailures() {
	propagationFailuresTotal.Inc()
}

// RecordFeedRequest counts one upstream feed request.
func RecordFeedRequest(feed, outcome string) {
	feedRequestsTotal.WithLabelValues(feed, outcome).Inc()
}

// knownRoutes are exact paths reported under their own label.
var knownRoutes = map[string]bool{
	"/":                         true,
	"/healthz":                  true,
	"/readyz":                   true,
	"/metrics":                  true,
	"/api/v1/satellites":        true,
	"/api/v1/satellites/reload": true,
	"/api/v1/apod":              true,
	"/api/v1/neo":               true,
	"/api/v1/epic":              true,
	"/api/v1/events":            true,
}

// normalizeRoute collapses parameterized paths so label cardinality stays bounded.
func normalizeRoute(path string) string {
	if knownRoutes[path] {
		return path
	}

	if rest, ok := strings.CutPrefix(path, "/api/v1/satellites/"); ok {
		switch {
		case strings.HasSuffix(rest, "/position") && len(rest) > len("/position"):
			return "/api/v1/satellites/{name}/position"
		case strings.HasSuffix(rest, "/track") && len(rest) > len("/track"):
			return "/api/v1/satellites/{name}/track"
		}
		return "other"
	}

	if rest, ok := strings.CutPrefix(path, "/api/v1/mars/"); ok {
		if strings.HasSuffix(rest, "/photos") && len(rest) > len("/photos") {
			return "/api/v1/mars/{rover}/photos"
		}
	}

	return "other"
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware records request count and duration for each request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		route := normalizeRoute(r.URL.Path)
		httpRequestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(rw.statusCode)).Inc()
		httpDurationSeconds.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}
