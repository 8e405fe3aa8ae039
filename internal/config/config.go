// Alpenglow - Solar and Lunar Peak Alignment Calendar
// Copyright 2026 Alpenglow Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alpenglow-dev/alpenglow

package config

import (
	"fmt"
	"time"

	"github.com/alpenglow-dev/alpenglow/internal/models"
	"github.com/alpenglow-dev/alpenglow/internal/search"
)

// Config is the complete application configuration, loaded from defaults,
// an optional YAML file, and environment variables in that order.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Calendar  CalendarConfig  `koanf:"calendar"`
	Search    search.Config   `koanf:"search"`
	Queue     QueueConfig     `koanf:"queue"`
	Scheduler SchedulerConfig `koanf:"scheduler"`
	API       APIConfig       `koanf:"api"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Host        string        `koanf:"host"`
	Port        int           `koanf:"port"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"`
}

// DatabaseConfig holds the DuckDB settings.
type DatabaseConfig struct {
	Path                   string `koanf:"path"`
	MaxMemory              string `koanf:"max_memory"`
	Threads                int    `koanf:"threads"` // 0 = runtime.NumCPU()
	PreserveInsertionOrder bool   `koanf:"preserve_insertion_order"`
	SeedDemoData           bool   `koanf:"seed_demo_data"`
}

// CalendarConfig fixes the calendar frame of the generated events. All
// timestamps persist in UTC; the timezone only decides where a civil day
// begins and when scheduled rules fire.
type CalendarConfig struct {
	Timezone    string `koanf:"timezone"`
	YearsAhead  int    `koanf:"years_ahead"` // horizon for annual regeneration
	MoonEnabled bool   `koanf:"moon_enabled"`
}

// QueueConfig tunes the durable work queue.
type QueueConfig struct {
	Workers          int           `koanf:"workers"`
	MaxAttempts      int           `koanf:"max_attempts"`
	BackoffBase      time.Duration `koanf:"backoff_base"`
	BackoffMax       time.Duration `koanf:"backoff_max"`
	PollInterval     time.Duration `koanf:"poll_interval"`
	StallTimeout     time.Duration `koanf:"stall_timeout"`
	ReclaimInterval  time.Duration `koanf:"reclaim_interval"`
	LowPriorityDelay time.Duration `koanf:"low_priority_delay"`
	RatePerSecond    float64       `koanf:"rate_per_second"` // low-priority pacing, 0 = unlimited
}

// SchedulerConfig carries the scheduled regeneration rules.
type SchedulerConfig struct {
	Enabled bool                   `koanf:"enabled"`
	Rules   []models.ScheduledRule `koanf:"rules"`
}

// APIConfig bounds the query surface.
type APIConfig struct {
	DefaultPageSize int `koanf:"default_page_size"`
	MaxPageSize     int `koanf:"max_page_size"`
}

// LoggingConfig controls the zerolog output.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// defaultConfig returns a Config with all defaults applied. These are layered
// first, then overridden by the config file and environment variables.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        8457,
			Timeout:     30 * time.Second,
			Environment: "development",
		},
		Database: DatabaseConfig{
			Path:                   "/data/alpenglow.duckdb",
			MaxMemory:              "1GB",
			Threads:                0,
			PreserveInsertionOrder: true,
			SeedDemoData:           false,
		},
		Calendar: CalendarConfig{
			Timezone:    "UTC",
			YearsAhead:  1,
			MoonEnabled: true,
		},
		Search: search.DefaultConfig(),
		Queue: QueueConfig{
			Workers:          4,
			MaxAttempts:      3,
			BackoffBase:      5 * time.Second,
			BackoffMax:       5 * time.Minute,
			PollInterval:     time.Second,
			StallTimeout:     10 * time.Minute,
			ReclaimInterval:  time.Minute,
			LowPriorityDelay: 30 * time.Second,
			RatePerSecond:    0,
		},
		Scheduler: SchedulerConfig{
			Enabled: true,
			Rules: []models.ScheduledRule{
				{
					Name:       "annual-regeneration",
					Kind:       models.RuleAnnual,
					Month:      12,
					DayOfMonth: 1,
					Hour:       2,
					Minute:     0,
					YearOffset: 1,
					Priority:   models.PriorityLow,
				},
			},
		},
		API: APIConfig{
			DefaultPageSize: 20,
			MaxPageSize:     200,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Validate checks that required configuration is present and valid.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateDatabase(); err != nil {
		return err
	}
	if err := c.validateCalendar(); err != nil {
		return err
	}
	if err := c.validateQueue(); err != nil {
		return err
	}
	if err := c.validateScheduler(); err != nil {
		return err
	}
	if err := c.validateAPI(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("SERVER_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) validateDatabase() error {
	if c.Database.Path == "" {
		return fmt.Errorf("DATABASE_PATH is required")
	}
	return nil
}

func (c *Config) validateCalendar() error {
	if _, err := time.LoadLocation(c.Calendar.Timezone); err != nil {
		return fmt.Errorf("CALENDAR_TIMEZONE %q is not a valid IANA timezone: %w", c.Calendar.Timezone, err)
	}
	if c.Calendar.YearsAhead < 0 || c.Calendar.YearsAhead > 10 {
		return fmt.Errorf("CALENDAR_YEARS_AHEAD must be between 0 and 10, got %d", c.Calendar.YearsAhead)
	}
	return nil
}

func (c *Config) validateQueue() error {
	if c.Queue.Workers < 1 || c.Queue.Workers > 64 {
		return fmt.Errorf("QUEUE_WORKERS must be between 1 and 64, got %d", c.Queue.Workers)
	}
	if c.Queue.MaxAttempts < 1 {
		return fmt.Errorf("QUEUE_MAX_ATTEMPTS must be at least 1")
	}
	if c.Queue.BackoffBase <= 0 || c.Queue.BackoffMax < c.Queue.BackoffBase {
		return fmt.Errorf("queue backoff must satisfy 0 < QUEUE_BACKOFF_BASE <= QUEUE_BACKOFF_MAX")
	}
	if c.Queue.StallTimeout <= 0 {
		return fmt.Errorf("QUEUE_STALL_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) validateScheduler() error {
	seen := make(map[string]bool, len(c.Scheduler.Rules))
	for i := range c.Scheduler.Rules {
		r := &c.Scheduler.Rules[i]
		if err := r.Validate(); err != nil {
			return fmt.Errorf("scheduler: %w", err)
		}
		if seen[r.Name] {
			return fmt.Errorf("scheduler rule %q is defined twice", r.Name)
		}
		seen[r.Name] = true
	}
	return nil
}

func (c *Config) validateAPI() error {
	if c.API.DefaultPageSize < 1 || c.API.DefaultPageSize > c.API.MaxPageSize {
		return fmt.Errorf("API_DEFAULT_PAGE_SIZE must be between 1 and API_MAX_PAGE_SIZE")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error; got %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

// Location returns the configured calendar timezone. Validate must have
// succeeded before calling.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Calendar.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
