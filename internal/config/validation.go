// SPDX-License-Identifier: MIT

package config

import (
	"fmt"
	"net"
	"strconv"

	"github.com/robfig/cron/v3"

	"github.com/conftrack/conftrack/internal/validate"
)

// Validate checks the resolved configuration. It returns a bundled
// validation error naming every offending field.
func Validate(cfg AppConfig) error {
	v := validate.New()

	v.Directory("dataDir", cfg.DataDir, false)
	validateListen(v, "listen", cfg.Listen, false)
	validateListen(v, "metricsListen", cfg.MetricsListen, true)

	if _, err := validate.ParseLogLevel(cfg.LogLevel); err != nil {
		v.AddError("logLevel", err.Error(), cfg.LogLevel)
	}

	for _, s := range cfg.Sources {
		v.OneOf("sources", s, KnownSources)
	}
	for _, c := range cfg.CCFCategories {
		v.NotEmpty("ccfCategories", c)
	}

	v.Range("yearFrom", cfg.YearFrom, 1900, 2100)
	v.Range("yearTo", cfg.YearTo, 1900, 2100)
	if cfg.YearTo < cfg.YearFrom {
		v.AddError("yearTo",
			fmt.Sprintf("yearTo (%d) must not be before yearFrom (%d)", cfg.YearTo, cfg.YearFrom),
			cfg.YearTo)
	}

	if cfg.RefreshCron != "" {
		if _, err := cron.ParseStandard(cfg.RefreshCron); err != nil {
			v.AddError("refreshCron", fmt.Sprintf("invalid cron spec: %v", err), cfg.RefreshCron)
		}
	}

	if cfg.HTTPTimeout <= 0 {
		v.AddError("httpTimeout", "timeout must be positive", cfg.HTTPTimeout.String())
	}
	v.Range("fetchConcurrency", cfg.FetchConcurrency, 1, 32)

	v.URL("ccfddlURL", cfg.CCFDDLBase, []string{"http", "https"})
	v.URL("csalabURL", cfg.CSALabBase, []string{"http", "https"})
	v.URL("easychairURL", cfg.EasyChairBase, []string{"http", "https"})

	if cfg.Tracing.Enabled {
		v.OneOf("tracing.exporter", cfg.Tracing.Exporter, []string{"grpc", "http"})
		v.NotEmpty("tracing.endpoint", cfg.Tracing.Endpoint)
		if cfg.Tracing.SamplingRate < 0 || cfg.Tracing.SamplingRate > 1 {
			v.AddError("tracing.samplingRate",
				fmt.Sprintf("sampling rate must be between 0 and 1, got %v", cfg.Tracing.SamplingRate),
				cfg.Tracing.SamplingRate)
		}
	}

	return v.Err()
}

// validateListen checks a host:port listen address. Optional addresses may
// be empty, which disables the corresponding listener.
func validateListen(v *validate.Validator, field, addr string, optional bool) {
	if addr == "" {
		if !optional {
			v.AddError(field, "listen address cannot be empty", addr)
		}
		return
	}
	_, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		v.AddError(field, fmt.Sprintf("invalid listen address: %v", err), addr)
		return
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		v.AddError(field, fmt.Sprintf("port must be numeric, got %q", portStr), addr)
		return
	}
	v.Port(field, port)
}
