// Package server exposes the attack tree pipeline over HTTP.
//
// # Routes
//
//	POST /v1/layout                       envelope body → layout JSON
//	POST /v1/diagram                      envelope body → Mermaid text
//	GET  /v1/assessments                  stored assessments, newest first
//	GET  /v1/assessments/{id}/layout      layout of a stored assessment
//	GET  /v1/assessments/{id}/diagram     diagram of a stored assessment
//	GET  /healthz                         liveness
//	GET  /metrics                         Prometheus exposition (when configured)
//
// Layout routes accept spacing overrides as query parameters (base_width,
// vertical_base, vertical_increment, lateral_offset). Diagram routes accept
// direction, styled, fenced and forest. Both accept refresh to bypass the
// cache. An envelope without an attack tree is not an error: layout routes
// answer 200 with an empty layout and diagram routes answer 204.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/attacktree/pkg/pipeline"
	"github.com/matzehuels/attacktree/pkg/source"
)

// Default server settings.
const (
	DefaultAddr         = ":8080"
	DefaultMaxBodyBytes = 8 << 20
	DefaultTimeout      = 30 * time.Second
	shutdownTimeout     = 10 * time.Second
)

// Config configures a Server.
type Config struct {
	// Addr is the listen address.
	Addr string
	// MaxBodyBytes bounds request bodies.
	MaxBodyBytes int64
	// Timeout bounds reading, writing and handling one request.
	Timeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}

// Server serves the pipeline over HTTP.
type Server struct {
	cfg     Config
	runner  *pipeline.Runner
	source  source.Source
	metrics http.Handler
	logger  *log.Logger
}

// Option customizes a Server.
type Option func(*Server)

// WithSource enables the assessment routes.
func WithSource(src source.Source) Option {
	return func(s *Server) { s.source = src }
}

// WithMetrics serves h at /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

// WithLogger sets the request logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// New creates a server around runner.
func New(cfg Config, runner *pipeline.Runner, opts ...Option) *Server {
	s := &Server{cfg: cfg.withDefaults(), runner: runner}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = runner.Logger
	}
	return s
}

// ListenAndServe serves until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       s.cfg.Timeout,
		WriteTimeout:      s.cfg.Timeout + 5*time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down", "timeout", shutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
