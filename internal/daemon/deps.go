// SPDX-License-Identifier: MIT

package daemon

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/conftrack/conftrack/internal/config"
	"github.com/conftrack/conftrack/internal/jobs"
)

// Runner triggers dataset refresh and reexport cycles. *jobs.Runner
// satisfies it; tests substitute stubs.
type Runner interface {
	Refresh(ctx context.Context) (*jobs.Status, error)
	Reexport(ctx context.Context) (*jobs.Status, error)
}

// Deps contains the dependencies required by the daemon Manager.
type Deps struct {
	// Logger is the structured logger for the daemon.
	Logger zerolog.Logger

	// Config is the effective application configuration.
	Config config.AppConfig

	// APIHandler serves the HTTP API.
	APIHandler http.Handler

	// MetricsHandler serves Prometheus metrics on the metrics listener.
	// Nil disables the metrics server.
	MetricsHandler http.Handler
}

// Validate checks that the required dependencies are present.
func (d *Deps) Validate() error {
	if d.Logger.GetLevel() == zerolog.Disabled {
		return ErrMissingLogger
	}
	if d.APIHandler == nil {
		return ErrMissingAPIHandler
	}
	return nil
}
