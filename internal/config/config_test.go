// Alpenglow - Solar and Lunar Peak Alignment Calendar
// Copyright 2026 Alpenglow Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alpenglow-dev/alpenglow

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alpenglow-dev/alpenglow/internal/models"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := defaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Calendar.Timezone != "UTC" {
		t.Errorf("default timezone = %q, want UTC", cfg.Calendar.Timezone)
	}
	if len(cfg.Scheduler.Rules) == 0 {
		t.Error("default config ships without the annual regeneration rule")
	}
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port zero", func(c *Config) { c.Server.Port = 0 }},
		{"port too high", func(c *Config) { c.Server.Port = 70000 }},
		{"empty db path", func(c *Config) { c.Database.Path = "" }},
		{"bad timezone", func(c *Config) { c.Calendar.Timezone = "Mars/Olympus_Mons" }},
		{"years ahead negative", func(c *Config) { c.Calendar.YearsAhead = -1 }},
		{"zero workers", func(c *Config) { c.Queue.Workers = 0 }},
		{"backoff inverted", func(c *Config) {
			c.Queue.BackoffBase = time.Minute
			c.Queue.BackoffMax = time.Second
		}},
		{"bad rule", func(c *Config) {
			c.Scheduler.Rules = []models.ScheduledRule{{Name: "broken", Kind: "fortnightly"}}
		}},
		{"duplicate rule names", func(c *Config) {
			r := models.ScheduledRule{Name: "dup", Kind: models.RuleDaily, Hour: 3}
			c.Scheduler.Rules = []models.ScheduledRule{r, r}
		}},
		{"page size above max", func(c *Config) {
			c.API.DefaultPageSize = 500
			c.API.MaxPageSize = 100
		}},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestLoadLayering(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	yaml := `
server:
  port: 9000
calendar:
  timezone: Asia/Tokyo
search:
  final_azimuth_tol: 0.4
`
	if err := os.WriteFile(cfgPath, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv(ConfigPathEnvVar, cfgPath)
	t.Setenv("ALPENGLOW_SERVER_PORT", "9100")
	t.Setenv("ALPENGLOW_DATABASE_MAX_MEMORY", "512MB")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	// Env beats file.
	if cfg.Server.Port != 9100 {
		t.Errorf("port = %d, want env override 9100", cfg.Server.Port)
	}
	// File beats defaults.
	if cfg.Calendar.Timezone != "Asia/Tokyo" {
		t.Errorf("timezone = %q, want Asia/Tokyo from file", cfg.Calendar.Timezone)
	}
	if cfg.Search.FinalAzimuthTol != 0.4 {
		t.Errorf("final azimuth tol = %v, want 0.4 from file", cfg.Search.FinalAzimuthTol)
	}
	// Env-only override with a multi-word key.
	if cfg.Database.MaxMemory != "512MB" {
		t.Errorf("max memory = %q, want 512MB from env", cfg.Database.MaxMemory)
	}
	// Untouched settings keep their defaults.
	if cfg.Queue.Workers != 4 {
		t.Errorf("workers = %d, want default 4", cfg.Queue.Workers)
	}
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte("calendar:\n  timezone: Nowhere/Nothing\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, cfgPath)

	if _, err := Load(); err == nil {
		t.Fatal("expected validation failure for bad timezone")
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"ALPENGLOW_SERVER_PORT", "server.port"},
		{"ALPENGLOW_DATABASE_MAX_MEMORY", "database.max_memory"},
		{"ALPENGLOW_SEARCH_FINAL_AZIMUTH_TOL", "search.final_azimuth_tol"},
		{"ALPENGLOW_LOGGING_LEVEL", "logging.level"},
	}
	for _, tt := range tests {
		if got := envTransformFunc(tt.key); got != tt.want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestLocationFallsBackToUTC(t *testing.T) {
	cfg := defaultConfig()
	cfg.Calendar.Timezone = "Asia/Tokyo"
	if loc := cfg.Location(); loc.String() != "Asia/Tokyo" {
		t.Errorf("location = %v, want Asia/Tokyo", loc)
	}
	cfg.Calendar.Timezone = "broken"
	if loc := cfg.Location(); loc != time.UTC {
		t.Errorf("location = %v, want UTC fallback", loc)
	}
}
