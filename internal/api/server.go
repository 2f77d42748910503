// Package api serves the dashboard's JSON endpoints: the satellite catalog,
// current positions, ground tracks and the public space feeds.
package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/star/spacedash/internal/groundtrack"
	"github.com/star/spacedash/internal/health"
	"github.com/star/spacedash/internal/httputil"
	"github.com/star/spacedash/internal/metrics"
	"github.com/star/spacedash/internal/nasa"
	"github.com/star/spacedash/internal/tle"
)

// Options wires the server to the rest of the service.
type Options struct {
	Store   *tle.Store
	Loader  *tle.Loader
	Source  string // element-set feed used by reload
	Sampler *groundtrack.Sampler
	Feeds   *nasa.Client

	// Track window used when a request omits duration or step.
	TrackDuration time.Duration
	TrackStep     time.Duration

	TrustProxy bool
}

// Server holds the HTTP server and its dependencies.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates a configured HTTP server.
func NewServer(addr string, logger *slog.Logger, opts Options) *Server {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", indexHandler)
	mux.HandleFunc("GET /healthz", health.Healthz)
	mux.HandleFunc("GET /readyz", health.Readyz(func() bool { return opts.Store.Get() != nil }))
	mux.Handle("GET /metrics", metrics.Handler())

	sats := &satelliteHandlers{opts: opts, logger: logger}
	mux.HandleFunc("GET /api/v1/satellites", sats.list)
	mux.HandleFunc("POST /api/v1/satellites/reload", sats.reload)
	mux.HandleFunc("GET /api/v1/satellites/{name}/position", sats.position)
	mux.HandleFunc("GET /api/v1/satellites/{name}/track", sats.track)

	feeds := &feedHandlers{client: opts.Feeds, logger: logger, now: time.Now}
	mux.HandleFunc("GET /api/v1/apod", feeds.apod)
	mux.HandleFunc("GET /api/v1/mars/{rover}/photos", feeds.marsPhotos)
	mux.HandleFunc("GET /api/v1/neo", feeds.neo)
	mux.HandleFunc("GET /api/v1/epic", feeds.epic)
	mux.HandleFunc("GET /api/v1/events", feeds.events)

	// Build middleware chain: metrics -> logging -> mux.
	var handler http.Handler = mux
	handler = loggingMiddleware(logger, opts.TrustProxy)(handler)
	handler = metrics.Middleware(handler)

	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadTimeout:       10 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
			// Reload waits on the upstream feed, which has its own 30s timeout.
			WriteTimeout: 45 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		logger: logger,
	}
}

// HTTPServer returns the underlying *http.Server for external control (e.g. shutdown).
func (s *Server) HTTPServer() *http.Server {
	return s.httpServer
}

// Handler returns the full middleware chain.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

var routes = []string{
	"GET /healthz",
	"GET /readyz",
	"GET /metrics",
	"GET /api/v1/satellites",
	"POST /api/v1/satellites/reload",
	"GET /api/v1/satellites/{name}/position?at=",
	"GET /api/v1/satellites/{name}/track?start=&duration=&step=",
	"GET /api/v1/apod?date=",
	"GET /api/v1/mars/{rover}/photos?date=",
	"GET /api/v1/neo?date=",
	"GET /api/v1/epic?date=",
	"GET /api/v1/events?limit=&days=",
}

func indexHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"service": "spacedash",
		"routes":  routes,
	})
}

// probePath returns true for health/readiness probe paths that should not log at INFO.
func probePath(path string) bool {
	return path == "/healthz" || path == "/readyz"
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.statusCode = code
	sr.ResponseWriter.WriteHeader(code)
}

func loggingMiddleware(logger *slog.Logger, trustProxy bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sr := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(sr, r)

			level := slog.LevelInfo
			switch {
			case probePath(r.URL.Path):
				level = slog.LevelDebug
			case sr.statusCode >= 500:
				level = slog.LevelWarn
			}

			logger.Log(r.Context(), level, "request",
				"component", "api",
				"method", r.Method,
				"path", r.URL.Path,
				"status", strconv.Itoa(sr.statusCode),
				"duration_ms", time.Since(start).Milliseconds(),
				"remote_ip", httputil.ClientIP(r, trustProxy),
			)
		})
	}
}
