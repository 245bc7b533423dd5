// SPDX-License-Identifier: MIT

package daemon

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultReadTimeout    = 10 * time.Second
	defaultIdleTimeout    = 120 * time.Second
	defaultMaxHeaderBytes = 1 << 20

	// defaultWriteTimeout must outlive a synchronous refresh triggered
	// over POST /api/refresh, which can take minutes when an upstream
	// source is slow.
	defaultWriteTimeout = 6 * time.Minute

	defaultShutdownTimeout = 15 * time.Second

	metricsReadHeaderTimeout = 5 * time.Second
)

// ServerConfig holds the HTTP server settings for the daemon.
type ServerConfig struct {
	// ListenAddr is the API server listen address.
	ListenAddr string

	// MetricsAddr is the metrics server listen address. Empty disables
	// the metrics server.
	MetricsAddr string

	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxHeaderBytes int

	// ShutdownTimeout bounds graceful shutdown of both servers plus all
	// registered shutdown hooks.
	ShutdownTimeout time.Duration
}

// Manager runs the daemon's HTTP servers and owns their shutdown order.
type Manager interface {
	// Start runs the servers and blocks until ctx is cancelled or a
	// server fails. Shutdown has completed when Start returns.
	Start(ctx context.Context) error

	// Shutdown stops the servers and runs shutdown hooks in LIFO order.
	Shutdown(ctx context.Context) error

	// RegisterShutdownHook adds a named hook executed during Shutdown.
	RegisterShutdownHook(name string, hook func(context.Context) error)
}

type namedHook struct {
	name string
	hook func(context.Context) error
}

type manager struct {
	serverCfg ServerConfig
	deps      Deps
	logger    zerolog.Logger

	mu            sync.Mutex
	started       bool
	stopping      bool
	apiServer     *http.Server
	metricsServer *http.Server
	hooks         []namedHook
}

// NewManager creates a Manager from validated dependencies.
func NewManager(serverCfg ServerConfig, deps Deps) (Manager, error) {
	if err := deps.Validate(); err != nil {
		return nil, err
	}
	if serverCfg.ShutdownTimeout <= 0 {
		serverCfg.ShutdownTimeout = defaultShutdownTimeout
	}
	return &manager{
		serverCfg: serverCfg,
		deps:      deps,
		logger:    deps.Logger,
	}, nil
}

func (m *manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return fmt.Errorf("manager already started")
	}
	m.started = true
	m.mu.Unlock()

	// Buffered for one error per server so neither goroutine blocks.
	errChan := make(chan error, 2)

	m.startMetricsServer(errChan)
	m.startAPIServer(errChan)

	select {
	case err := <-errChan:
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.serverCfg.ShutdownTimeout)
		defer cancel()
		if sErr := m.Shutdown(shutdownCtx); sErr != nil {
			m.logger.Error().Err(sErr).Msg("shutdown after server failure reported errors")
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.serverCfg.ShutdownTimeout)
		defer cancel()
		return m.Shutdown(shutdownCtx)
	}
}

func (m *manager) startAPIServer(errChan chan<- error) {
	srv := &http.Server{
		Addr:              m.serverCfg.ListenAddr,
		Handler:           m.deps.APIHandler,
		ReadTimeout:       m.serverCfg.ReadTimeout,
		ReadHeaderTimeout: m.serverCfg.ReadTimeout / 2,
		WriteTimeout:      m.serverCfg.WriteTimeout,
		IdleTimeout:       m.serverCfg.IdleTimeout,
		MaxHeaderBytes:    m.serverCfg.MaxHeaderBytes,
	}

	m.mu.Lock()
	m.apiServer = srv
	m.mu.Unlock()

	go func() {
		m.logger.Info().
			Str("event", "daemon.api_listen").
			Str("addr", srv.Addr).
			Msg("API server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("api server: %w", err)
		}
	}()
}

func (m *manager) startMetricsServer(errChan chan<- error) {
	if m.serverCfg.MetricsAddr == "" || m.deps.MetricsHandler == nil {
		m.logger.Info().
			Str("event", "daemon.metrics_disabled").
			Msg("metrics server disabled")
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", m.deps.MetricsHandler)

	srv := &http.Server{
		Addr:              m.serverCfg.MetricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: metricsReadHeaderTimeout,
	}

	m.mu.Lock()
	m.metricsServer = srv
	m.mu.Unlock()

	go func() {
		m.logger.Info().
			Str("event", "daemon.metrics_listen").
			Str("addr", srv.Addr).
			Msg("metrics server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("metrics server: %w", err)
		}
	}()
}

func (m *manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	if !m.started {
		m.mu.Unlock()
		return ErrManagerNotStarted
	}
	if m.stopping {
		m.mu.Unlock()
		return nil
	}
	m.stopping = true
	apiSrv := m.apiServer
	metricsSrv := m.metricsServer
	hooks := make([]namedHook, len(m.hooks))
	copy(hooks, m.hooks)
	m.mu.Unlock()

	// Shutdown must proceed even when the parent context is already
	// cancelled, bounded only by the configured timeout.
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.serverCfg.ShutdownTimeout)
	defer cancel()

	m.logger.Info().Str("event", "daemon.shutdown_start").Msg("shutting down")

	var errs []error
	if apiSrv != nil {
		if err := apiSrv.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("api server shutdown: %w", err))
		}
	}
	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}

	// Hooks run LIFO so later registrations tear down first.
	for i := len(hooks) - 1; i >= 0; i-- {
		h := hooks[i]
		start := time.Now()
		if err := h.hook(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown hook %s: %w", h.name, err))
			m.logger.Warn().
				Err(err).
				Str("hook", h.name).
				Dur("elapsed", time.Since(start)).
				Msg("shutdown hook failed")
			continue
		}
		m.logger.Debug().
			Str("hook", h.name).
			Dur("elapsed", time.Since(start)).
			Msg("shutdown hook complete")
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %w", errors.Join(errs...))
	}

	m.logger.Info().Str("event", "daemon.shutdown_complete").Msg("daemon stopped")
	return nil
}

func (m *manager) RegisterShutdownHook(name string, hook func(context.Context) error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks = append(m.hooks, namedHook{name: name, hook: hook})
}
