package metrics

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// =============================================================================
// Metrics endpoint
// =============================================================================

// Server exposes the default Prometheus registry over HTTP at /metrics.
// Start is non-blocking; Shutdown stops the listener gracefully.
type Server struct {
	server   *http.Server
	listener net.Listener
	logger   *zap.Logger
	mu       sync.Mutex
	closed   bool
}

// NewServer creates a metrics server for addr, e.g. ":9090". Port 0 picks
// a free port; Addr reports the bound address after Start.
func NewServer(addr string, logger *zap.Logger) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	return &Server{
		server: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		logger: logger.With(zap.String("component", "metrics_server")),
	}
}

// Start binds the listener and serves in the background.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("metrics server is closed")
	}
	if s.listener != nil {
		return fmt.Errorf("metrics server already started")
	}

	listener, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.server.Addr, err)
	}
	s.listener = listener
	s.logger.Info("starting metrics server", zap.String("addr", listener.Addr().String()))

	go func() {
		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.logger.Error("metrics server failed", zap.Error(err))
		}
	}()

	return nil
}

// Addr returns the bound address, or the configured one before Start.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.server.Addr
}

// Shutdown stops the server, waiting for in-flight scrapes to finish.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.logger.Info("shutting down metrics server")

	if err := s.server.Shutdown(ctx); err != nil {
		s.logger.Error("metrics server shutdown failed", zap.Error(err))
		return err
	}
	s.listener = nil
	return nil
}
