package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/logiclink/logiclink/internal/logger"
	"github.com/logiclink/logiclink/pkg/api/handlers"
)

// Deps are the components the routes read from. Any of them may be nil;
// the matching routes are then not mounted.
type Deps struct {
	// Store answers group and level queries.
	Store handlers.Store

	// Sampler extracts channel windows, usually a frontend.Frontend.
	Sampler handlers.Sampler

	// Session is the running capture.
	Session handlers.Session

	// Gatherer is served on /metrics.
	Gatherer prometheus.Gatherer
}

// NewRouter creates the chi router with all middleware and routes.
//
// Routes:
//   - GET /health - Liveness probe
//   - GET /health/ready - Readiness probe
//   - GET /metrics - Prometheus exposition
//   - GET /api/v1/groups - Group list
//   - GET /api/v1/groups/{group} - Group detail with zoom levels
//   - GET /api/v1/groups/{group}/channels/{channel} - Channel window
//   - GET /api/v1/session - Capture counters
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	// Middleware stack - order matters
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	var groups handlers.Groups
	if deps.Store != nil {
		groups = deps.Store
	}
	healthHandler := handlers.NewHealthHandler(groups)
	r.Route("/health", func(r chi.Router) {
		r.Get("/", healthHandler.Liveness)
		r.Get("/ready", healthHandler.Readiness)
	})

	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		if deps.Store != nil && deps.Sampler != nil {
			groupHandler := handlers.NewGroupHandler(deps.Store, deps.Sampler)
			r.Route("/groups", func(r chi.Router) {
				r.Get("/", groupHandler.List)
				r.Get("/{group}", groupHandler.Get)
				r.Get("/{group}/channels/{channel}", groupHandler.Channel)
			})
		}
		r.Get("/session", handlers.NewSessionHandler(deps.Session).Get)
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/health", http.StatusTemporaryRedirect)
	})

	return r
}

// isQuietPath reports whether requests to path are logged at DEBUG only.
// Probes and scrapes arrive every few seconds.
func isQuietPath(path string) bool {
	return path == "/metrics" || path == "/health" || strings.HasPrefix(path, "/health/")
}

// requestLogger logs requests using the internal logger.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := middleware.GetReqID(r.Context())

		logger.Debug("API request started",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
		)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		logArgs := []any{
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			logger.Bytes(ww.BytesWritten()),
			logger.DurationMs(logger.Duration(start)),
		}
		if isQuietPath(r.URL.Path) {
			logger.Debug("API request completed", logArgs...)
		} else {
			logger.Info("API request completed", logArgs...)
		}
	})
}
