// Package api provides the tracker HTTP server.
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/peerdex/peerdex/internal/logger"
	"github.com/peerdex/peerdex/pkg/metrics"
	"github.com/peerdex/peerdex/pkg/tracker/api/handlers"
	"github.com/peerdex/peerdex/pkg/tracker/peers"
	"github.com/peerdex/peerdex/pkg/tracker/service"
	"github.com/peerdex/peerdex/pkg/tracker/store"
)

// NewRouter creates and configures the chi router with all middleware and
// routes.
//
// Routes:
//   - GET /health - Liveness probe
//   - GET /health/ready - Readiness probe
//   - POST /api/v1/rpc/{operation} - Tracker operations
//   - POST /admin/capacity - Arm the session table
//   - GET /admin/status - Session table state
//   - GET /admin/sessions - Live session listing
//   - GET /metrics - Prometheus scrape endpoint
func NewRouter(svc *service.Service, st *store.Store, table *peers.Table) http.Handler {
	r := chi.NewRouter()

	// Middleware stack - order matters
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	healthHandler := handlers.NewHealthHandler(svc, st)
	r.Route("/health", func(r chi.Router) {
		r.Get("/", healthHandler.Liveness)
		r.Get("/ready", healthHandler.Readiness)
	})

	// Root redirect to health for convenience
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/health", http.StatusTemporaryRedirect)
	})

	rpcHandler := handlers.NewRPCHandler(svc)
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/rpc/{operation}", rpcHandler.Handle)
	})

	adminHandler := handlers.NewAdminHandler(svc, table)
	r.Route("/admin", func(r chi.Router) {
		r.Post("/capacity", adminHandler.SetCapacity)
		r.Get("/status", adminHandler.Status)
		r.Get("/sessions", adminHandler.Sessions)
	})

	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	return r
}

// isQuietPath returns true for endpoints polled by machines; their
// request logs go to DEBUG to reduce noise.
func isQuietPath(path string) bool {
	return path == "/health" || strings.HasPrefix(path, "/health/") ||
		path == "/metrics" ||
		strings.HasSuffix(path, "/sendHeartBeat")
}

// requestLogger is a custom middleware that logs requests using the
// internal logger.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := middleware.GetReqID(r.Context())

		logger.Debug("API request started",
			logger.KeyRequestID, requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
		)

		// Wrap response writer to capture status code
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		duration := time.Since(start)

		logArgs := []any{
			logger.KeyRequestID, requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", duration.String(),
		}

		if isQuietPath(r.URL.Path) {
			logger.Debug("API request completed", logArgs...)
		} else {
			logger.Info("API request completed", logArgs...)
		}
	})
}
