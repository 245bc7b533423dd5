// SPDX-License-Identifier: MIT

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func writeConfigFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFTRACK_DATA_DIR", t.TempDir())

	cfg, err := NewLoader("", "test").Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Listen != DefaultListen {
		t.Errorf("Listen = %q, want %q", cfg.Listen, DefaultListen)
	}
	if cfg.MetricsListen != DefaultMetricsListen {
		t.Errorf("MetricsListen = %q, want %q", cfg.MetricsListen, DefaultMetricsListen)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
	if diff := cmp.Diff(DefaultSources(), cfg.Sources); diff != "" {
		t.Errorf("Sources mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(DefaultCCFCategories(), cfg.CCFCategories); diff != "" {
		t.Errorf("CCFCategories mismatch (-want +got):\n%s", diff)
	}
	if cfg.YearFrom != 2026 || cfg.YearTo != 2028 {
		t.Errorf("year window = %d..%d, want 2026..2028", cfg.YearFrom, cfg.YearTo)
	}
	if cfg.HTTPTimeout != 30*time.Second {
		t.Errorf("HTTPTimeout = %v, want 30s", cfg.HTTPTimeout)
	}
	if !cfg.InitialRefresh {
		t.Error("InitialRefresh = false, want true")
	}
	if cfg.RefreshCron != "0 6 * * *" {
		t.Errorf("RefreshCron = %q", cfg.RefreshCron)
	}
	if cfg.Version != "test" {
		t.Errorf("Version = %q, want test", cfg.Version)
	}
	if !filepath.IsAbs(cfg.DataDir) {
		t.Errorf("DataDir = %q, want absolute path", cfg.DataDir)
	}
}

func TestLoadFileOverrides(t *testing.T) {
	t.Setenv("CONFTRACK_DATA_DIR", t.TempDir())

	path := writeConfigFile(t, "conftrack.yaml", `
listen: ":9000"
yearFrom: 2027
sources: [ccfddl]
httpTimeout: "10s"
strictValidate: true
tracing:
  enabled: true
  endpoint: "otel:4317"
  exporter: grpc
`)

	cfg, err := NewLoader(path, "test").Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Listen != ":9000" {
		t.Errorf("Listen = %q, want :9000", cfg.Listen)
	}
	if cfg.YearFrom != 2027 {
		t.Errorf("YearFrom = %d, want 2027", cfg.YearFrom)
	}
	if diff := cmp.Diff([]string{"ccfddl"}, cfg.Sources); diff != "" {
		t.Errorf("Sources mismatch (-want +got):\n%s", diff)
	}
	if cfg.HTTPTimeout != 10*time.Second {
		t.Errorf("HTTPTimeout = %v, want 10s", cfg.HTTPTimeout)
	}
	if !cfg.StrictValidate {
		t.Error("StrictValidate = false, want true")
	}
	if !cfg.Tracing.Enabled || cfg.Tracing.Endpoint != "otel:4317" {
		t.Errorf("Tracing = %+v", cfg.Tracing)
	}

	// Untouched keys keep their defaults.
	if cfg.YearTo != DefaultYearTo {
		t.Errorf("YearTo = %d, want default %d", cfg.YearTo, DefaultYearTo)
	}
	if cfg.EasyChairBase != DefaultEasyChairBase {
		t.Errorf("EasyChairBase = %q, want default", cfg.EasyChairBase)
	}
}

func TestLoadEnvBeatsFile(t *testing.T) {
	t.Setenv("CONFTRACK_DATA_DIR", t.TempDir())
	t.Setenv("CONFTRACK_LISTEN", ":7070")
	t.Setenv("CONFTRACK_SOURCES", "csalab , edas")

	path := writeConfigFile(t, "conftrack.yaml", `listen: ":9000"`)

	cfg, err := NewLoader(path, "test").Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Listen != ":7070" {
		t.Errorf("Listen = %q, environment must win over file", cfg.Listen)
	}
	if diff := cmp.Diff([]string{"csalab", "edas"}, cfg.Sources); diff != "" {
		t.Errorf("Sources mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	t.Setenv("CONFTRACK_DATA_DIR", t.TempDir())
	path := writeConfigFile(t, "conftrack.yaml", "bogusKey: 1\n")

	if _, err := NewLoader(path, "test").Load(); err == nil {
		t.Fatal("Load() = nil, want strict parse error for unknown key")
	}
}

func TestLoadRejectsMultipleDocuments(t *testing.T) {
	t.Setenv("CONFTRACK_DATA_DIR", t.TempDir())
	path := writeConfigFile(t, "conftrack.yaml", "listen: \":9000\"\n---\nlisten: \":9001\"\n")

	_, err := NewLoader(path, "test").Load()
	if err == nil || !strings.Contains(err.Error(), "multiple documents") {
		t.Fatalf("Load() = %v, want multiple-documents error", err)
	}
}

func TestLoadRejectsBadExtension(t *testing.T) {
	path := writeConfigFile(t, "conftrack.json", "{}")

	_, err := NewLoader(path, "test").Load()
	if err == nil || !strings.Contains(err.Error(), "unsupported config format") {
		t.Fatalf("Load() = %v, want unsupported format error", err)
	}
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Setenv("CONFTRACK_DATA_DIR", t.TempDir())
	path := writeConfigFile(t, "conftrack.yaml", "httpTimeout: \"banana\"\n")

	if _, err := NewLoader(path, "test").Load(); err == nil {
		t.Fatal("Load() = nil, want duration parse error")
	}
}

func TestLoadEmptyFile(t *testing.T) {
	t.Setenv("CONFTRACK_DATA_DIR", t.TempDir())
	path := writeConfigFile(t, "conftrack.yaml", "# comments only\n")

	cfg, err := NewLoader(path, "test").Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Listen != DefaultListen {
		t.Errorf("Listen = %q, want default", cfg.Listen)
	}
}

func TestGithubTokenFallback(t *testing.T) {
	t.Setenv("CONFTRACK_DATA_DIR", t.TempDir())
	t.Setenv("CONFTRACK_GITHUB_TOKEN", "")
	t.Setenv("GITHUB_TOKEN", "from-fallback")

	cfg, err := NewLoader("", "test").Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.GithubToken != "from-fallback" {
		t.Errorf("GithubToken = %q, want GITHUB_TOKEN fallback", cfg.GithubToken)
	}

	t.Setenv("CONFTRACK_GITHUB_TOKEN", "primary")
	cfg, err = NewLoader("", "test").Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.GithubToken != "primary" {
		t.Errorf("GithubToken = %q, CONFTRACK_GITHUB_TOKEN must win", cfg.GithubToken)
	}
}

func TestLoadInvalidLogLevel(t *testing.T) {
	t.Setenv("CONFTRACK_DATA_DIR", t.TempDir())
	t.Setenv("CONFTRACK_LOG_LEVEL", "verbose")

	if _, err := NewLoader("", "test").Load(); err == nil {
		t.Fatal("Load() = nil, want validation error for log level")
	}
}

func TestConsumedEnvKeys(t *testing.T) {
	t.Setenv("CONFTRACK_DATA_DIR", t.TempDir())

	l := NewLoader("", "test")
	if _, err := l.Load(); err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	for _, key := range []string{
		"CONFTRACK_DATA_DIR",
		"CONFTRACK_LISTEN",
		"CONFTRACK_SOURCES",
		"CONFTRACK_GITHUB_TOKEN",
		"CONFTRACK_TRACING_ENABLED",
	} {
		if _, ok := l.ConsumedEnvKeys[key]; !ok {
			t.Errorf("ConsumedEnvKeys missing %s", key)
		}
	}
}
