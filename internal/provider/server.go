// Package provider implements the provider side of the synchronization
// protocol: ingesting workspaces into a content-addressed store and serving
// assets over HTTP by checksum.
package provider

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"wsync/internal/source"
)

// Server is the HTTP asset service.
type Server struct {
	router *http.ServeMux
	server *http.Server
	addr   string
	logger *slog.Logger
	store  source.AssetSource
}

// NewServer creates a new HTTP server instance over the given store.
func NewServer(addr string, store source.AssetSource, logger *slog.Logger) *Server {
	s := &Server{
		addr:   addr,
		logger: logger,
		store:  store,
		router: http.NewServeMux(),
	}

	// Register routes
	s.registerRoutes()

	// Create HTTP server with configured router and middleware
	handler := s.applyMiddleware(s.router)
	s.server = &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) registerRoutes() {
	s.router.HandleFunc("/health", s.handleHealth)
	s.router.HandleFunc("/assets/batch", s.handleBatchAssets) // POST
	s.router.HandleFunc("/assets/", s.handleGetAsset)         // GET /assets/:checksum
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info("Starting asset server", "addr", s.addr)

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down asset server")

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}

// ServeHTTP implements http.Handler for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.server.Handler.ServeHTTP(w, r)
}

// applyMiddleware wraps the handler with middleware in the correct order.
func (s *Server) applyMiddleware(handler http.Handler) http.Handler {
	// Apply middleware in reverse order (last one wraps first)
	handler = RecoveryMiddleware(s.logger)(handler)
	handler = LoggingMiddleware(s.logger)(handler)
	handler = RequestIDMiddleware()(handler)
	return handler
}
