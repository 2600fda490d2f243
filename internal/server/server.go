// Package server provides the launchboard HTTP surface.
//
// It serves an embedded single-page dashboard and a small JSON API over one
// query.Engine. View responses can also be streamed as length-delimited
// protobuf envelopes (see package wire).
package server

import (
	"context"
	"embed"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/xtxerr/launchboard/config"
	"github.com/xtxerr/launchboard/internal/logging"
	"github.com/xtxerr/launchboard/internal/query"
)

var log = logging.Component("server")

//go:embed index.html
var assets embed.FS

// Config configures the HTTP server.
type Config struct {
	Listen          string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	// SliderStep is reported by /api/options.
	SliderStep float64
}

// DefaultConfig returns the default server configuration.
func DefaultConfig() Config {
	return Config{
		Listen:          config.DefaultListenAddress,
		ReadTimeout:     config.DefaultReadTimeout,
		WriteTimeout:    config.DefaultWriteTimeout,
		ShutdownTimeout: config.DefaultShutdownTimeout,
		SliderStep:      config.DefaultSliderStep,
	}
}

// Server serves the dashboard for one engine.
type Server struct {
	cfg    Config
	engine *query.Engine
	http   *http.Server

	mu       sync.Mutex
	listener net.Listener

	requests atomic.Uint64
	failures atomic.Int64
}

// New creates a new server.
func New(cfg Config, engine *query.Engine) *Server {
	s := &Server{
		cfg:    cfg,
		engine: engine,
	}
	s.http = &http.Server{
		Handler:           s.Handler(),
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
	}
	return s
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /api/options", s.handleOptions)
	mux.HandleFunc("GET /api/view", s.handleView)
	mux.HandleFunc("GET /api/stats", s.handleStats)

	return s.withRequestID(mux)
}

// withRequestID tags every request context with a sequential request ID.
func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strconv.FormatUint(s.requests.Add(1), 10)
		w.Header().Set("X-Request-Id", id)
		next.ServeHTTP(w, r.WithContext(logging.ContextWithRequestID(r.Context(), id)))
	})
}

// Run listens on the configured address and serves until ctx is cancelled,
// then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Listen)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Listen, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.http.Serve(ln)
	}()

	log.Info("dashboard listening", "addr", ln.Addr().String())

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down", "timeout", s.cfg.ShutdownTimeout)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	if err := s.http.Shutdown(shutdownCtx); err != nil {
		log.Warn("graceful shutdown failed, closing", "error", err)
		if err := s.http.Close(); err != nil {
			return fmt.Errorf("close: %w", err)
		}
	}

	if err := <-errCh; err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("serve: %w", err)
	}

	stats := s.engine.Stats()
	log.Info("server stopped",
		"requests", s.requests.Load(),
		"failed", s.failures.Load(),
		"queries", stats.QueriesExecuted)
	return nil
}

// Addr returns the listening address, or "" before Serve.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}
