package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"

	"sdg-collector/apperr"
)

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	return fs
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(newFlags(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.TargetYear != 2020 {
		t.Errorf("TargetYear: got %d, want 2020", cfg.TargetYear)
	}
	if cfg.AreaListRetries != 2 || cfg.AreaListTimeout != 20*time.Second {
		t.Errorf("area policy: got %d/%v, want 2/20s", cfg.AreaListRetries, cfg.AreaListTimeout)
	}
	if cfg.SeriesRetries != 1 || cfg.SeriesTimeout != 15*time.Second {
		t.Errorf("series policy: got %d/%v, want 1/15s", cfg.SeriesRetries, cfg.SeriesTimeout)
	}
	if cfg.RetryPause != time.Second {
		t.Errorf("RetryPause: got %v, want 1s", cfg.RetryPause)
	}
	if cfg.APIBaseURL != DefaultAPIBaseURL {
		t.Errorf("APIBaseURL: got %q", cfg.APIBaseURL)
	}
	if cfg.UserAgent != DefaultUserAgent {
		t.Errorf("UserAgent: got %q", cfg.UserAgent)
	}
	if cfg.PostgresEnabled || cfg.CSVOutputPath != "" {
		t.Errorf("optional sinks should be off by default: %+v", cfg)
	}
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	t.Setenv("TARGET_YEAR", "2019")
	t.Setenv("SERIES_RETRIES", "3")
	t.Setenv("RETRY_PAUSE_MS", "250")
	t.Setenv("POSTGRES_ENABLED", "true")

	cfg, err := Load(newFlags(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.TargetYear != 2019 {
		t.Errorf("TargetYear: got %d, want 2019", cfg.TargetYear)
	}
	if cfg.SeriesRetries != 3 {
		t.Errorf("SeriesRetries: got %d, want 3", cfg.SeriesRetries)
	}
	if cfg.RetryPause != 250*time.Millisecond {
		t.Errorf("RetryPause: got %v, want 250ms", cfg.RetryPause)
	}
	if !cfg.PostgresEnabled {
		t.Error("PostgresEnabled: expected true")
	}
}

func TestLoadFlagsOverrideEnv(t *testing.T) {
	t.Setenv("TARGET_YEAR", "2019")
	t.Setenv("OUTPUT_JSON_PATH", "/tmp/env.json")

	cfg, err := Load(newFlags(t, "--year", "2021", "--csv", "out/flat.csv"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.TargetYear != 2021 {
		t.Errorf("TargetYear: got %d, want 2021", cfg.TargetYear)
	}
	if cfg.OutputJSONPath != "/tmp/env.json" {
		t.Errorf("OutputJSONPath: got %q, want env value", cfg.OutputJSONPath)
	}
	if cfg.CSVOutputPath != "out/flat.csv" {
		t.Errorf("CSVOutputPath: got %q", cfg.CSVOutputPath)
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "collector.yaml")
	content := "target_year: 2018\nmapping_csv_path: ref/map.csv\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(newFlags(t, "--config", path))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.TargetYear != 2018 {
		t.Errorf("TargetYear: got %d, want 2018", cfg.TargetYear)
	}
	if cfg.MappingCSVPath != "ref/map.csv" {
		t.Errorf("MappingCSVPath: got %q", cfg.MappingCSVPath)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		key, val string
	}{
		{"TARGET_YEAR", "soon"},
		{"TARGET_YEAR", "0"},
		{"SERIES_RETRIES", "-1"},
		{"AREA_LIST_TIMEOUT_SECONDS", "0"},
		{"POSTGRES_ENABLED", "maybe"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.val, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := Load(nil)
			if err == nil {
				t.Fatalf("expected error for %s=%q", tt.key, tt.val)
			}
			if !apperr.IsConfiguration(err) {
				t.Errorf("expected ConfigurationError, got %T: %v", err, err)
			}
		})
	}
}

func TestLoadMissingConfigFile(t *testing.T) {
	_, err := Load(newFlags(t, "--config", filepath.Join(t.TempDir(), "absent.yaml")))
	if !apperr.IsConfiguration(err) {
		t.Errorf("expected ConfigurationError, got %v", err)
	}
}

func TestDSN(t *testing.T) {
	c := &Config{
		PostgresHost: "db", PostgresPort: "5433", PostgresUser: "u",
		PostgresPassword: "p", PostgresDB: "sdg", PostgresSSLMode: "disable",
	}
	want := "host=db port=5433 user=u password=p dbname=sdg sslmode=disable"
	if got := c.DSN(); got != want {
		t.Errorf("DSN: got %q, want %q", got, want)
	}
}
