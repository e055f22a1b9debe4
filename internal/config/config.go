// Eventrec - Event Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventrec

package config

import (
	"fmt"
	"time"

	"github.com/tomtom215/eventrec/internal/validation"
)

// Config holds all application configuration.
// Configuration is loaded from multiple sources with the following precedence:
//  1. Built-in defaults (lowest priority)
//  2. Config file (config.yaml or path from CONFIG_PATH)
//  3. Environment variables (highest priority)
type Config struct {
	Database   DatabaseConfig   `koanf:"database"`
	Recommend  RecommendConfig  `koanf:"recommend"`
	Simulation SimulationConfig `koanf:"simulation"`
	Evaluation EvaluationConfig `koanf:"evaluation"`
	Schedule   ScheduleConfig   `koanf:"schedule"`
	Server     ServerConfig     `koanf:"server"`
	Logging    LoggingConfig    `koanf:"logging"`
}

// DatabaseConfig selects and tunes the interaction store.
type DatabaseConfig struct {
	Driver string `koanf:"driver"` // "duckdb" or "mysql"

	// DuckDB settings
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"` // 0 = use runtime.NumCPU()

	MySQL MySQLConfig `koanf:"mysql"`

	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	QueryTimeout    time.Duration `koanf:"query_timeout"`

	// Circuit breaker around table reads
	BreakerMaxFailures uint32        `koanf:"breaker_max_failures"`
	BreakerTimeout     time.Duration `koanf:"breaker_timeout"`
}

// MySQLConfig holds the connection settings of the web application's database.
type MySQLConfig struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	Database string `koanf:"database"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
}

// RecommendConfig holds the pipeline parameters and the model version tag
// written alongside every persisted recommendation.
type RecommendConfig struct {
	MinUserActions      int     `koanf:"min_user_actions" validate:"gte=1"`
	VectorSize          int     `koanf:"vector_size" validate:"gte=1"`
	Threshold           float64 `koanf:"threshold" validate:"gte=0,lte=1"`
	MaxRecentActionDays int     `koanf:"max_recent_action_days" validate:"gte=1"`
	ModelVersion        string  `koanf:"model_version" validate:"required,max=64,modelversion"`
}

// SimulationConfig holds the offline backtest settings.
// Dates use the YYYY-MM-DD layout.
type SimulationConfig struct {
	StartDate          string `koanf:"start_date" validate:"omitempty,isodate"`
	EndDate            string `koanf:"end_date" validate:"omitempty,isodate"`
	OutputPath         string `koanf:"output_path"`
	IncludeUserResults bool   `koanf:"include_user_results"`
	Processes          int    `koanf:"processes" validate:"gte=1"`
}

// EvaluationConfig holds the production A/B report settings.
type EvaluationConfig struct {
	MinDate            string `koanf:"min_date" validate:"omitempty,isodate"`
	MaxDate            string `koanf:"max_date" validate:"omitempty,isodate"`
	RecommendationDate string `koanf:"recommendation_date" validate:"omitempty,isodate"`
	ReportDir          string `koanf:"report_dir"`
}

// ScheduleConfig controls the production run inside `eventrec serve`.
type ScheduleConfig struct {
	Enabled      bool          `koanf:"enabled"`
	Cron         string        `koanf:"cron"` // standard 5-field spec, e.g. "0 6 * * *"
	RunOnStartup bool          `koanf:"run_on_startup"`
	RunTimeout   time.Duration `koanf:"run_timeout"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Enabled         bool          `koanf:"enabled"`
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level  string `koanf:"level"`  // trace, debug, info, warn, error
	Format string `koanf:"format"` // json, console
	Caller bool   `koanf:"caller"`
}

// Addr returns the listen address for the HTTP server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// ParseDate parses a YYYY-MM-DD setting as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(validation.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", s, err)
	}
	return t, nil
}
