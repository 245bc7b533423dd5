// SPDX-License-Identifier: MIT

package daemon

import (
	"context"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/conftrack/conftrack/internal/api"
	"github.com/conftrack/conftrack/internal/config"
	"github.com/conftrack/conftrack/internal/jobs"
	"github.com/conftrack/conftrack/internal/log"
	"github.com/conftrack/conftrack/internal/telemetry"
)

const serviceName = "conftrackd"

// Build assembles a runnable daemon from the holder's current
// configuration: refresh runner, API server, metrics endpoint, tracing,
// cron schedule and catalog watcher.
func Build(ctx context.Context, holder *config.ConfigHolder) (*App, error) {
	cfg := holder.Get()
	logger := log.WithComponent("daemon")

	runner := jobs.NewRunner(JobsConfig(cfg))
	apiServer := api.New(cfg, runner)

	deps := Deps{
		Logger:     logger,
		Config:     cfg,
		APIHandler: apiServer.Handler(),
	}
	if cfg.MetricsListen != "" {
		deps.MetricsHandler = promhttp.Handler()
	}

	mgr, err := NewManager(serverConfigFrom(cfg), deps)
	if err != nil {
		return nil, err
	}

	provider, err := telemetry.NewProvider(ctx, telemetryConfigFrom(cfg))
	if err != nil {
		logger.Warn().
			Err(err).
			Msg("tracing unavailable; continuing without exporter")
	} else {
		mgr.RegisterShutdownHook("telemetry", provider.Shutdown)
	}

	app, err := NewApp(logger, mgr, holder, runner)
	if err != nil {
		return nil, err
	}
	app.initialRefresh = cfg.InitialRefresh

	if cfg.RefreshCron != "" {
		sched, err := newScheduler(log.WithComponent("scheduler"), cfg.RefreshCron, runner)
		if err != nil {
			return nil, err
		}
		app.scheduler = sched
	}

	app.catalog = newCatalogWatcher(log.WithComponent("catalog"), runner,
		cfg.TracksFile, cfg.SeriesFile, cfg.WatchlistFile)

	return app, nil
}

// JobsConfig maps the application configuration onto the refresh runner.
func JobsConfig(cfg config.AppConfig) jobs.Config {
	return jobs.Config{
		DataDir:          cfg.DataDir,
		TracksFile:       cfg.TracksFile,
		SeriesFile:       cfg.SeriesFile,
		WatchlistFile:    cfg.WatchlistFile,
		Sources:          cfg.Sources,
		FetchConcurrency: cfg.FetchConcurrency,
		Retries:          jobs.DefaultRetries,
		StrictValidate:   cfg.StrictValidate,
		HTTPTimeout:      cfg.HTTPTimeout,
		CSALabBase:       cfg.CSALabBase,
		EasyChairBase:    cfg.EasyChairBase,
		CCFDDLBase:       cfg.CCFDDLBase,
		CCFCategories:    cfg.CCFCategories,
		YearFrom:         cfg.YearFrom,
		YearTo:           cfg.YearTo,
		GithubToken:      cfg.GithubToken,
	}
}

func serverConfigFrom(cfg config.AppConfig) ServerConfig {
	return ServerConfig{
		ListenAddr:      cfg.Listen,
		MetricsAddr:     cfg.MetricsListen,
		ReadTimeout:     defaultReadTimeout,
		WriteTimeout:    defaultWriteTimeout,
		IdleTimeout:     defaultIdleTimeout,
		MaxHeaderBytes:  defaultMaxHeaderBytes,
		ShutdownTimeout: defaultShutdownTimeout,
	}
}

func telemetryConfigFrom(cfg config.AppConfig) telemetry.Config {
	return telemetry.Config{
		Enabled:        cfg.Tracing.Enabled,
		ServiceName:    serviceName,
		ServiceVersion: cfg.Version,
		Environment:    cfg.Tracing.Environment,
		ExporterType:   cfg.Tracing.Exporter,
		Endpoint:       cfg.Tracing.Endpoint,
		SamplingRate:   cfg.Tracing.SamplingRate,
	}
}
