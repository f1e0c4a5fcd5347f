// Package http hosts the engine's REST surface: claim CRUD plus the
// interest, timeline, deadline, recommendation and document operations.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/paidup/paidup/internal/config"
	"github.com/paidup/paidup/internal/infrastructure/monitoring/logging"
)

type Server struct {
	srv    *http.Server
	router http.Handler
	logger logging.Logger
}

func NewServer(cfg config.ServerConfig, router http.Handler, logger logging.Logger) *Server {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Server{
		router: router,
		logger: logger.Named("http"),
		srv: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      router,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
	}
}

// Start blocks serving requests until Stop or a listener error.
func (s *Server) Start() error {
	s.logger.Info("http server listening", logging.String("addr", s.srv.Addr))
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop drains in-flight requests and shuts the listener down.
func (s *Server) Stop(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("http server stopped")
	return nil
}

// Handler exposes the route tree; tests drive it with httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}
