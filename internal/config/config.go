// SPDX-License-Identifier: MIT

package config

import (
	"strings"
	"time"
)

// Defaults applied before file and environment overrides.
const (
	DefaultDataDir          = "./data"
	DefaultListen           = ":8080"
	DefaultMetricsListen    = ":9091"
	DefaultLogLevel         = "info"
	DefaultTracksFile       = "config/tracks.yaml"
	DefaultSeriesFile       = "config/series.yaml"
	DefaultWatchlistFile    = "config/edas_watchlist.yaml"
	DefaultYearFrom         = 2026
	DefaultYearTo           = 2028
	DefaultRefreshCron      = "0 6 * * *"
	DefaultHTTPTimeout      = 30 * time.Second
	DefaultFetchConcurrency = 4
	DefaultCCFDDLBase       = "https://api.github.com/repos/ccfddl/ccf-deadlines/contents"
	DefaultCSALabBase       = "https://csalab.site/conf-track/"
	DefaultEasyChairBase    = "https://easychair.org/cfp/"
)

// KnownSources are the upstream fetchers that can appear in Sources, in
// canonical merge order.
var KnownSources = []string{"csalab", "easychair", "edas", "ccfddl"}

// DefaultSources enables every upstream fetcher.
func DefaultSources() []string {
	return []string{"csalab", "easychair", "edas", "ccfddl"}
}

// DefaultCCFCategories is the ccfddl category set fetched by default.
func DefaultCCFCategories() []string {
	return []string{"DS", "NW", "SC", "SE", "DB", "CT", "CG", "AI", "HI", "MX"}
}

// TracingConfig configures the OpenTelemetry exporter.
type TracingConfig struct {
	Enabled      bool    `yaml:"enabled"`
	Endpoint     string  `yaml:"endpoint"`
	Exporter     string  `yaml:"exporter"`
	SamplingRate float64 `yaml:"samplingRate"`
	Environment  string  `yaml:"environment"`
}

// AppConfig is the resolved daemon configuration.
type AppConfig struct {
	DataDir          string        `yaml:"dataDir"`
	Listen           string        `yaml:"listen"`
	MetricsListen    string        `yaml:"metricsListen"`
	APIToken         string        `yaml:"apiToken"`
	LogLevel         string        `yaml:"logLevel"`
	TracksFile       string        `yaml:"tracksFile"`
	SeriesFile       string        `yaml:"seriesFile"`
	WatchlistFile    string        `yaml:"watchlistFile"`
	Sources          []string      `yaml:"sources"`
	CCFCategories    []string      `yaml:"ccfCategories"`
	YearFrom         int           `yaml:"yearFrom"`
	YearTo           int           `yaml:"yearTo"`
	GithubToken      string        `yaml:"githubToken"`
	RefreshCron      string        `yaml:"refreshCron"`
	InitialRefresh   bool          `yaml:"initialRefresh"`
	HTTPTimeout      time.Duration `yaml:"-"`
	FetchConcurrency int           `yaml:"fetchConcurrency"`
	StrictValidate   bool          `yaml:"strictValidate"`
	CCFDDLBase       string        `yaml:"ccfddlURL"`
	CSALabBase       string        `yaml:"csalabURL"`
	EasyChairBase    string        `yaml:"easychairURL"`
	Tracing          TracingConfig `yaml:"tracing"`
	Version          string        `yaml:"-"`
}

// FileConfig mirrors AppConfig for strict YAML parsing. Pointer fields keep
// "absent" distinguishable from a zero value, so a file only overrides the
// keys it actually sets. Durations are given as Go duration strings.
type FileConfig struct {
	DataDir          *string            `yaml:"dataDir"`
	Listen           *string            `yaml:"listen"`
	MetricsListen    *string            `yaml:"metricsListen"`
	APIToken         *string            `yaml:"apiToken"`
	LogLevel         *string            `yaml:"logLevel"`
	TracksFile       *string            `yaml:"tracksFile"`
	SeriesFile       *string            `yaml:"seriesFile"`
	WatchlistFile    *string            `yaml:"watchlistFile"`
	Sources          *[]string          `yaml:"sources"`
	CCFCategories    *[]string          `yaml:"ccfCategories"`
	YearFrom         *int               `yaml:"yearFrom"`
	YearTo           *int               `yaml:"yearTo"`
	GithubToken      *string            `yaml:"githubToken"`
	RefreshCron      *string            `yaml:"refreshCron"`
	InitialRefresh   *bool              `yaml:"initialRefresh"`
	HTTPTimeout      *string            `yaml:"httpTimeout"`
	FetchConcurrency *int               `yaml:"fetchConcurrency"`
	StrictValidate   *bool              `yaml:"strictValidate"`
	CCFDDLBase       *string            `yaml:"ccfddlURL"`
	CSALabBase       *string            `yaml:"csalabURL"`
	EasyChairBase    *string            `yaml:"easychairURL"`
	Tracing          *FileTracingConfig `yaml:"tracing"`
}

// FileTracingConfig is the YAML form of TracingConfig.
type FileTracingConfig struct {
	Enabled      *bool    `yaml:"enabled"`
	Endpoint     *string  `yaml:"endpoint"`
	Exporter     *string  `yaml:"exporter"`
	SamplingRate *float64 `yaml:"samplingRate"`
	Environment  *string  `yaml:"environment"`
}

// splitList splits a comma-separated environment value into trimmed,
// non-empty items.
func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
