// SPDX-License-Identifier: MIT

// Command conftrackd publishes a curated conference deadline dataset. It
// refreshes from the upstream sources on a schedule, serves the exported
// artifacts over HTTP and revalidates when the curated catalog changes.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/conftrack/conftrack/internal/catalog"
	"github.com/conftrack/conftrack/internal/config"
	"github.com/conftrack/conftrack/internal/daemon"
	"github.com/conftrack/conftrack/internal/export"
	"github.com/conftrack/conftrack/internal/jobs"
	"github.com/conftrack/conftrack/internal/log"
	"github.com/conftrack/conftrack/internal/validate"
)

// Overridden at build time via -ldflags.
var (
	version   = "v1.0.0"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "validate" {
		os.Exit(runValidate(os.Args[2:]))
	}

	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "", "path to config file (YAML)")
	once := flag.Bool("once", false, "run a single refresh and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	// Safe defaults until the config is loaded.
	log.Configure(log.Config{
		Level:   "info",
		Service: "conftrackd",
		Version: version,
	})
	logger := log.WithComponent("main")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Config path: explicit via --config, otherwise auto-load
	// <dataDir>/conftrack.yaml when it exists.
	effectiveConfigPath := strings.TrimSpace(*configPath)
	if effectiveConfigPath == "" {
		dataDir := strings.TrimSpace(config.ParseString("CONFTRACK_DATA_DIR", config.DefaultDataDir))
		autoPath := filepath.Join(dataDir, "conftrack.yaml")
		if _, err := os.Stat(autoPath); err == nil {
			effectiveConfigPath = autoPath
		}
	}

	loader := config.NewLoader(effectiveConfigPath, version)
	cfg, err := loader.Load()
	if err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "config.load_failed").
			Str("config_path", effectiveConfigPath).
			Msg("failed to load configuration")
	}

	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil && cfg.LogLevel != "" {
		zerolog.SetGlobalLevel(lvl)
	}

	if effectiveConfigPath != "" {
		logger.Info().
			Str("event", "config.loaded").
			Str("source", "file").
			Str("path", effectiveConfigPath).
			Msg("loaded configuration from file")
	} else {
		logger.Info().
			Str("event", "config.loaded").
			Str("source", "env+defaults").
			Msg("loaded configuration from environment and defaults")
	}

	logger.Info().
		Str("event", "startup").
		Str("version", version).
		Str("commit", commit).
		Str("build_date", buildDate).
		Str("addr", cfg.Listen).
		Msg("starting conftrackd")

	logger.Info().Msgf("→ Data dir: %s", cfg.DataDir)
	logger.Info().Msgf("→ Sources: %s", strings.Join(cfg.Sources, ", "))
	logger.Info().Msgf("→ Year window: %d..%d", cfg.YearFrom, cfg.YearTo)
	logger.Info().Msgf("→ Catalog: %s, %s, %s", cfg.TracksFile, cfg.SeriesFile, cfg.WatchlistFile)
	if cfg.RefreshCron != "" {
		logger.Info().Msgf("→ Refresh: cron %q (initial: %v)", cfg.RefreshCron, cfg.InitialRefresh)
	} else {
		logger.Warn().Msg("→ Refresh: no cron schedule; refresh via POST /api/refresh only")
	}
	if cfg.APIToken != "" {
		logger.Info().Msg("→ API token: configured")
	} else {
		logger.Warn().
			Str("security", "locked").
			Msg("→ API token: NOT configured. POST /api/refresh stays disabled until CONFTRACK_API_TOKEN is set.")
	}

	if *once {
		runner := jobs.NewRunner(daemon.JobsConfig(cfg))
		st, err := runner.Refresh(ctx)
		if err != nil {
			logger.Fatal().
				Err(err).
				Str("event", "refresh.failed").
				Msg("refresh failed")
		}
		logger.Info().
			Str("event", "refresh.complete").
			Str("job_id", st.JobID).
			Int("total", st.Total).
			Int("added", st.Added).
			Int("updated", st.Updated).
			Int("issues", st.Issues).
			Msg("refresh complete")
		return
	}

	cfgHolder := config.NewConfigHolder(cfg, config.NewLoader(effectiveConfigPath, version), effectiveConfigPath)

	app, err := daemon.Build(ctx, cfgHolder)
	if err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "daemon.build_failed").
			Msg("failed to assemble daemon")
	}

	if err := app.Run(ctx); err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "daemon.failed").
			Msg("daemon failed")
	}

	logger.Info().Msg("server exiting")
}

// runValidate checks the curated catalog and the published dataset against
// the data contract. Exit codes: 0 clean, 1 issues found, 2 load errors.
func runValidate(args []string) int {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file (YAML)")
	_ = fs.Parse(args)

	loader := config.NewLoader(strings.TrimSpace(*configPath), version)
	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "conftrackd validate: %v\n", err)
		return 2
	}

	vocab, err := catalog.LoadVocabulary(cfg.TracksFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "conftrackd validate: %v\n", err)
		return 2
	}
	series, err := catalog.LoadSeries(cfg.SeriesFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "conftrackd validate: %v\n", err)
		return 2
	}
	entries, err := export.ReadJSON(filepath.Join(cfg.DataDir, jobs.DatasetFile))
	if err != nil {
		fmt.Fprintf(os.Stderr, "conftrackd validate: %v\n", err)
		return 2
	}

	catalogReport := validate.Catalog(vocab, series)
	datasetReport := validate.Dataset(entries, vocab)

	printReport("catalog", "series", catalogReport)
	printReport("dataset", "entries", datasetReport)

	if !catalogReport.OK() || !datasetReport.OK() {
		return 1
	}
	fmt.Println("ok")
	return 0
}

func printReport(name, unit string, r validate.Report) {
	fmt.Printf("%s: %d %s checked, %d issues\n", name, r.Checked, unit, len(r.Issues))
	for _, issue := range r.Issues {
		fmt.Printf("  - %s / %s: %s\n", issue.Entry, issue.Field, issue.Message)
	}
}
