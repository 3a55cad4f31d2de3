// Package api serves the monitoring endpoints of a running drive: health
// checks and Prometheus metrics.
package api

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/marmos91/dittodrive/internal/logger"
	"github.com/marmos91/dittodrive/pkg/api/handlers"
)

// Server is the monitoring HTTP server.
type Server struct {
	server       *http.Server
	config       Config
	shutdownOnce sync.Once
}

// NewServer creates a server in a stopped state. Call Start to serve.
// gatherer may be nil to leave /metrics out.
func NewServer(config Config, drive handlers.Drive, rootUser string, gatherer prometheus.Gatherer) *Server {
	config.applyDefaults()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", config.Port),
		Handler:           NewRouter(drive, rootUser, gatherer),
		ReadTimeout:       config.ReadTimeout,
		ReadHeaderTimeout: config.ReadTimeout,
		WriteTimeout:      config.WriteTimeout,
		IdleTimeout:       config.IdleTimeout,
	}

	return &Server{server: server, config: config}
}

// Start serves until ctx is cancelled or the listener fails. Cancellation
// triggers a graceful shutdown and a nil return.
func (s *Server) Start(ctx context.Context) error {
	errChan := make(chan error, 1)
	go func() {
		logger.Info("Monitoring server listening", "port", s.config.Port)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			select {
			case errChan <- err:
			default:
			}
		}
	}()

	select {
	case <-ctx.Done():
		// ctx is already cancelled; shut down on a fresh deadline.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.Stop(shutdownCtx)
	case err := <-errChan:
		return fmt.Errorf("monitoring server failed: %w", err)
	}
}

// Stop shuts the server down. It is safe to call more than once.
func (s *Server) Stop(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if err := s.server.Shutdown(ctx); err != nil {
			shutdownErr = fmt.Errorf("monitoring server shutdown error: %w", err)
			logger.Error("Monitoring server shutdown error", logger.Err(err))
			return
		}
		logger.Debug("Monitoring server stopped")
	})
	return shutdownErr
}

// Port returns the TCP port the server listens on.
func (s *Server) Port() int {
	return s.config.Port
}
