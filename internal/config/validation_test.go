// SPDX-License-Identifier: MIT

package config

import (
	"testing"
	"time"
)

func validConfig(t *testing.T) AppConfig {
	t.Helper()
	return AppConfig{
		DataDir:          t.TempDir(),
		Listen:           ":8080",
		MetricsListen:    ":9091",
		LogLevel:         "info",
		Sources:          DefaultSources(),
		CCFCategories:    DefaultCCFCategories(),
		YearFrom:         2026,
		YearTo:           2028,
		RefreshCron:      "0 6 * * *",
		HTTPTimeout:      30 * time.Second,
		FetchConcurrency: 4,
		CCFDDLBase:       DefaultCCFDDLBase,
		CSALabBase:       DefaultCSALabBase,
		EasyChairBase:    DefaultEasyChairBase,
	}
}

func TestValidateAcceptsValidConfig(t *testing.T) {
	if err := Validate(validConfig(t)); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*AppConfig)
	}{
		{"empty listen", func(c *AppConfig) { c.Listen = "" }},
		{"listen without port", func(c *AppConfig) { c.Listen = "localhost" }},
		{"non-numeric port", func(c *AppConfig) { c.Listen = "localhost:http" }},
		{"port out of range", func(c *AppConfig) { c.Listen = ":70000" }},
		{"bad log level", func(c *AppConfig) { c.LogLevel = "verbose" }},
		{"unknown source", func(c *AppConfig) { c.Sources = []string{"dblp"} }},
		{"empty ccf category", func(c *AppConfig) { c.CCFCategories = []string{"AI", " "} }},
		{"year window inverted", func(c *AppConfig) { c.YearFrom = 2028; c.YearTo = 2026 }},
		{"year out of range", func(c *AppConfig) { c.YearFrom = 1123 }},
		{"bad cron", func(c *AppConfig) { c.RefreshCron = "every morning" }},
		{"zero timeout", func(c *AppConfig) { c.HTTPTimeout = 0 }},
		{"zero concurrency", func(c *AppConfig) { c.FetchConcurrency = 0 }},
		{"excessive concurrency", func(c *AppConfig) { c.FetchConcurrency = 100 }},
		{"bad upstream URL", func(c *AppConfig) { c.CSALabBase = "not a url" }},
		{"ftp upstream URL", func(c *AppConfig) { c.CCFDDLBase = "ftp://example.com/x" }},
		{"tracing bad exporter", func(c *AppConfig) {
			c.Tracing = TracingConfig{Enabled: true, Endpoint: "otel:4317", Exporter: "udp", SamplingRate: 1}
		}},
		{"tracing missing endpoint", func(c *AppConfig) {
			c.Tracing = TracingConfig{Enabled: true, Exporter: "grpc", SamplingRate: 1}
		}},
		{"tracing sampling out of range", func(c *AppConfig) {
			c.Tracing = TracingConfig{Enabled: true, Endpoint: "otel:4317", Exporter: "grpc", SamplingRate: 2}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(&cfg)
			if err := Validate(cfg); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}

func TestValidateOptionalFields(t *testing.T) {
	cfg := validConfig(t)
	cfg.MetricsListen = ""
	cfg.RefreshCron = ""
	cfg.Tracing = TracingConfig{}
	if err := Validate(cfg); err != nil {
		t.Errorf("Validate() = %v, optional fields must be allowed empty", err)
	}
}

func TestValidateDisabledTracingSkipsChecks(t *testing.T) {
	cfg := validConfig(t)
	cfg.Tracing = TracingConfig{Enabled: false, Exporter: "udp", SamplingRate: 9}
	if err := Validate(cfg); err != nil {
		t.Errorf("Validate() = %v, disabled tracing must not be checked", err)
	}
}
