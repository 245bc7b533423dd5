// SPDX-License-Identifier: MIT

package config

import (
	"fmt"
	"time"
)

// mergeFileConfig applies the keys present in the file onto cfg. Absent keys
// leave the defaults untouched.
func mergeFileConfig(cfg *AppConfig, file *FileConfig) error {
	setString := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	setInt := func(dst *int, src *int) {
		if src != nil {
			*dst = *src
		}
	}
	setBool := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}

	setString(&cfg.DataDir, file.DataDir)
	setString(&cfg.Listen, file.Listen)
	setString(&cfg.MetricsListen, file.MetricsListen)
	setString(&cfg.APIToken, file.APIToken)
	setString(&cfg.LogLevel, file.LogLevel)
	setString(&cfg.TracksFile, file.TracksFile)
	setString(&cfg.SeriesFile, file.SeriesFile)
	setString(&cfg.WatchlistFile, file.WatchlistFile)
	if file.Sources != nil {
		cfg.Sources = append([]string(nil), (*file.Sources)...)
	}
	if file.CCFCategories != nil {
		cfg.CCFCategories = append([]string(nil), (*file.CCFCategories)...)
	}
	setInt(&cfg.YearFrom, file.YearFrom)
	setInt(&cfg.YearTo, file.YearTo)
	setString(&cfg.GithubToken, file.GithubToken)
	setString(&cfg.RefreshCron, file.RefreshCron)
	setBool(&cfg.InitialRefresh, file.InitialRefresh)
	if file.HTTPTimeout != nil {
		d, err := time.ParseDuration(*file.HTTPTimeout)
		if err != nil {
			return fmt.Errorf("httpTimeout: %w", err)
		}
		cfg.HTTPTimeout = d
	}
	setInt(&cfg.FetchConcurrency, file.FetchConcurrency)
	setBool(&cfg.StrictValidate, file.StrictValidate)
	setString(&cfg.CCFDDLBase, file.CCFDDLBase)
	setString(&cfg.CSALabBase, file.CSALabBase)
	setString(&cfg.EasyChairBase, file.EasyChairBase)

	if t := file.Tracing; t != nil {
		setBool(&cfg.Tracing.Enabled, t.Enabled)
		setString(&cfg.Tracing.Endpoint, t.Endpoint)
		setString(&cfg.Tracing.Exporter, t.Exporter)
		if t.SamplingRate != nil {
			cfg.Tracing.SamplingRate = *t.SamplingRate
		}
		setString(&cfg.Tracing.Environment, t.Environment)
	}
	return nil
}

// mergeEnvConfig applies CONFTRACK_* environment overrides onto cfg.
// The GitHub token additionally falls back to the conventional GITHUB_TOKEN.
func (l *Loader) mergeEnvConfig(cfg *AppConfig) {
	cfg.DataDir = l.envString("CONFTRACK_DATA_DIR", cfg.DataDir)
	cfg.Listen = l.envString("CONFTRACK_LISTEN", cfg.Listen)
	cfg.MetricsListen = l.envString("CONFTRACK_METRICS_LISTEN", cfg.MetricsListen)
	cfg.APIToken = l.envString("CONFTRACK_API_TOKEN", cfg.APIToken)
	cfg.LogLevel = l.envString("CONFTRACK_LOG_LEVEL", cfg.LogLevel)
	cfg.TracksFile = l.envString("CONFTRACK_TRACKS_FILE", cfg.TracksFile)
	cfg.SeriesFile = l.envString("CONFTRACK_SERIES_FILE", cfg.SeriesFile)
	cfg.WatchlistFile = l.envString("CONFTRACK_WATCHLIST_FILE", cfg.WatchlistFile)
	if v, ok := l.envLookup("CONFTRACK_SOURCES"); ok && v != "" {
		cfg.Sources = splitList(v)
	}
	if v, ok := l.envLookup("CONFTRACK_CCF_CATEGORIES"); ok && v != "" {
		cfg.CCFCategories = splitList(v)
	}
	cfg.YearFrom = l.envInt("CONFTRACK_YEAR_FROM", cfg.YearFrom)
	cfg.YearTo = l.envInt("CONFTRACK_YEAR_TO", cfg.YearTo)
	cfg.GithubToken = l.envString("CONFTRACK_GITHUB_TOKEN", cfg.GithubToken)
	if cfg.GithubToken == "" {
		cfg.GithubToken = l.envString("GITHUB_TOKEN", "")
	}
	cfg.RefreshCron = l.envString("CONFTRACK_REFRESH_CRON", cfg.RefreshCron)
	cfg.InitialRefresh = l.envBool("CONFTRACK_INITIAL_REFRESH", cfg.InitialRefresh)
	cfg.HTTPTimeout = l.envDuration("CONFTRACK_HTTP_TIMEOUT", cfg.HTTPTimeout)
	cfg.FetchConcurrency = l.envInt("CONFTRACK_FETCH_CONCURRENCY", cfg.FetchConcurrency)
	cfg.StrictValidate = l.envBool("CONFTRACK_STRICT_VALIDATE", cfg.StrictValidate)
	cfg.CCFDDLBase = l.envString("CONFTRACK_CCFDDL_URL", cfg.CCFDDLBase)
	cfg.CSALabBase = l.envString("CONFTRACK_CSALAB_URL", cfg.CSALabBase)
	cfg.EasyChairBase = l.envString("CONFTRACK_EASYCHAIR_URL", cfg.EasyChairBase)

	cfg.Tracing.Enabled = l.envBool("CONFTRACK_TRACING_ENABLED", cfg.Tracing.Enabled)
	cfg.Tracing.Endpoint = l.envString("CONFTRACK_TRACING_ENDPOINT", cfg.Tracing.Endpoint)
	cfg.Tracing.Exporter = l.envString("CONFTRACK_TRACING_EXPORTER", cfg.Tracing.Exporter)
	cfg.Tracing.SamplingRate = l.envFloat("CONFTRACK_TRACING_SAMPLING", cfg.Tracing.SamplingRate)
	cfg.Tracing.Environment = l.envString("CONFTRACK_TRACING_ENVIRONMENT", cfg.Tracing.Environment)
}
