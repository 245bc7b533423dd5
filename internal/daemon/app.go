// SPDX-License-Identifier: MIT

// Package daemon assembles and runs the conftrackd process: the HTTP API
// and metrics servers, the scheduled refresh loop, catalog file watching
// and SIGHUP configuration reload.
package daemon

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/conftrack/conftrack/internal/config"
)

// schedulerDrainTimeout bounds the wait for a running scheduled job
// during shutdown.
const schedulerDrainTimeout = 10 * time.Second

// App ties the daemon components into one lifecycle.
type App struct {
	logger         zerolog.Logger
	manager        Manager
	cfgHolder      *config.ConfigHolder
	runner         Runner
	scheduler      *cron.Cron
	catalog        *catalogWatcher
	initialRefresh bool
	reloadSignal   os.Signal
}

// NewApp creates an App around the given manager and runner. The config
// holder is optional; without it SIGHUP reload and hot config snapshots
// are disabled.
func NewApp(logger zerolog.Logger, manager Manager, holder *config.ConfigHolder, runner Runner) (*App, error) {
	if manager == nil {
		return nil, ErrMissingManager
	}
	if runner == nil {
		return nil, ErrMissingRunner
	}
	return &App{
		logger:       logger,
		manager:      manager,
		cfgHolder:    holder,
		runner:       runner,
		reloadSignal: syscall.SIGHUP,
	}, nil
}

// Run starts all components and blocks until ctx is cancelled or a fatal
// component error occurs. Background loops drain before Run returns.
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	if a.cfgHolder != nil {
		if err := a.cfgHolder.StartWatcher(ctx); err != nil {
			a.logger.Warn().
				Err(err).
				Msg("config file watcher unavailable; reload via SIGHUP only")
		}

		snapshotCh := make(chan config.AppConfig, 1)
		a.cfgHolder.RegisterListener(snapshotCh)
		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return nil
				case snap := <-snapshotCh:
					a.applySnapshot(ctx, snap)
				}
			}
		})

		hupCh := make(chan os.Signal, 1)
		signal.Notify(hupCh, a.reloadSignal)
		g.Go(func() error {
			defer signal.Stop(hupCh)
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-hupCh:
					a.logger.Info().
						Str("event", "daemon.reload_signal").
						Msg("reload signal received")
					if err := a.cfgHolder.Reload(context.Background()); err != nil {
						a.logger.Warn().
							Err(err).
							Msg("config reload failed; keeping previous configuration")
					}
				}
			}
		})
	}

	if a.catalog != nil {
		if err := a.catalog.start(ctx); err != nil {
			a.logger.Warn().
				Err(err).
				Msg("catalog watcher unavailable; catalog edits apply on next refresh")
		}
	}

	if a.scheduler != nil {
		g.Go(func() error {
			a.scheduler.Start()
			<-ctx.Done()
			stopCtx := a.scheduler.Stop()
			select {
			case <-stopCtx.Done():
			case <-time.After(schedulerDrainTimeout):
				a.logger.Warn().Msg("scheduled job still running at shutdown")
			}
			return nil
		})
	}

	if a.initialRefresh {
		g.Go(func() error {
			refreshCtx, cancel := context.WithTimeout(ctx, refreshJobTimeout)
			defer cancel()

			start := time.Now()
			st, err := a.runner.Refresh(refreshCtx)
			if err != nil {
				// Startup continues; the next scheduled run retries.
				a.logger.Error().
					Err(err).
					Str("event", "daemon.initial_refresh_failed").
					Dur("elapsed", time.Since(start)).
					Msg("initial refresh failed")
				return nil
			}
			a.logger.Info().
				Str("event", "daemon.initial_refresh_complete").
				Str("job_id", st.JobID).
				Int("total", st.Total).
				Dur("elapsed", time.Since(start)).
				Msg("initial refresh complete")
			return nil
		})
	}

	g.Go(func() error {
		if err := a.manager.Start(ctx); err != nil {
			return fmt.Errorf("server manager: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// applySnapshot applies the hot-reloadable parts of a fresh config
// snapshot. The log level switches immediately; a reexport picks up
// catalog path changes. Listen addresses and fetch settings bind at
// startup and need a restart.
func (a *App) applySnapshot(ctx context.Context, snap config.AppConfig) {
	if snap.LogLevel != "" {
		if lvl, err := zerolog.ParseLevel(snap.LogLevel); err == nil && lvl != zerolog.GlobalLevel() {
			zerolog.SetGlobalLevel(lvl)
			a.logger.Info().
				Str("level", lvl.String()).
				Msg("log level updated")
		}
	}

	reexportCtx, cancel := context.WithTimeout(ctx, reexportTimeout)
	defer cancel()
	if _, err := a.runner.Reexport(reexportCtx); err != nil {
		a.logger.Warn().
			Err(err).
			Msg("reexport after config reload failed")
		return
	}
	a.logger.Info().
		Str("event", "daemon.snapshot_applied").
		Msg("configuration snapshot applied")
}
