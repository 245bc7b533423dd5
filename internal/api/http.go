// SPDX-License-Identifier: MIT

// Package api exposes the HTTP surface of conftrackd: health probes, the
// refresh trigger, dataset status and the published artifact files.
package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/conftrack/conftrack/internal/api/middleware"
	"github.com/conftrack/conftrack/internal/config"
	"github.com/conftrack/conftrack/internal/jobs"
	"github.com/conftrack/conftrack/internal/log"
)

// tracingService is the span service name for HTTP instrumentation.
const tracingService = "conftrackd"

// Runner triggers dataset refreshes and reports on them. *jobs.Runner
// satisfies it; tests substitute stubs.
type Runner interface {
	Refresh(ctx context.Context) (*jobs.Status, error)
	Last() *jobs.Status
	DatasetPath() string
}

// Server handles HTTP requests for the daemon.
type Server struct {
	cfg    config.AppConfig
	runner Runner
}

// New creates a Server around the given runner.
func New(cfg config.AppConfig, runner Runner) *Server {
	return &Server{cfg: cfg, runner: runner}
}

// Handler builds the router with the full middleware stack applied.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	// Recoverer first so nothing below can take the process down, request ID
	// second so every later log line can be correlated.
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.SecurityHeaders(""))
	r.Use(middleware.Metrics())
	if s.cfg.Tracing.Enabled {
		r.Use(middleware.OTelHTTP(tracingService))
	}
	r.Use(log.Middleware())

	r.Get("/healthz", s.handleHealthz)
	r.Get("/readyz", s.handleReadyz)

	// Without a dedicated metrics listener, metrics share the API mux.
	if s.cfg.MetricsListen == "" {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/tracks", s.handleTracks)

		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)
			r.Use(middleware.RefreshRateLimit())
			r.Post("/refresh", s.handleRefresh)
		})
	})

	r.Handle("/files/*", http.StripPrefix("/files/", s.secureFileServer()))

	return r
}
