package api

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/peerdex/peerdex/internal/logger"
	"github.com/peerdex/peerdex/pkg/tracker/peers"
	"github.com/peerdex/peerdex/pkg/tracker/service"
	"github.com/peerdex/peerdex/pkg/tracker/store"
)

// Server provides the tracker HTTP server.
//
// The server supports graceful shutdown with a bounded timeout.
type Server struct {
	server       *http.Server
	config       APIConfig
	shutdownOnce sync.Once
}

// NewServer creates a new tracker HTTP server.
//
// The server is created in a stopped state. Call Start() to begin serving
// requests. When config.MaxUsers is set the session table is armed here;
// otherwise the tracker answers not-ready until an operator arms it via
// the admin endpoint.
func NewServer(config APIConfig, svc *service.Service, st *store.Store, table *peers.Table) (*Server, error) {
	config.applyDefaults()

	if config.MaxUsers != 0 {
		if err := svc.Arm(config.MaxUsers); err != nil {
			return nil, fmt.Errorf("invalid max_users: %w", err)
		}
	}

	router := NewRouter(svc, st, table)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", config.Port),
		Handler:      router,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	return &Server{
		server: server,
		config: config,
	}, nil
}

// Start starts the tracker HTTP server and blocks until the context is
// cancelled or an error occurs.
//
// When the context is cancelled, Start initiates graceful shutdown and
// returns nil.
func (s *Server) Start(ctx context.Context) error {
	errChan := make(chan error, 1)
	go func() {
		logger.Info("tracker API listening", "port", s.config.Port)

		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			select {
			case errChan <- err:
			default:
				// Context was cancelled, error is not needed
			}
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("tracker API shutdown signal received")
		// Don't use the cancelled ctx: it would abort the drain immediately.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.Stop(shutdownCtx)
	case err := <-errChan:
		return fmt.Errorf("tracker API failed: %w", err)
	}
}

// Stop initiates graceful shutdown of the tracker server.
//
// Stop is safe to call multiple times and safe to call concurrently with
// Start().
func (s *Server) Stop(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		logger.Debug("tracker API shutdown initiated")

		if err := s.server.Shutdown(ctx); err != nil {
			shutdownErr = fmt.Errorf("tracker API shutdown error: %w", err)
			logger.Error("tracker API shutdown error", logger.KeyError, err)
		} else {
			logger.Info("tracker API stopped gracefully")
		}
	})
	return shutdownErr
}

// Port returns the TCP port the server is configured to listen on.
func (s *Server) Port() int {
	return s.config.Port
}
