// Eventrec - Event Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventrec

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/eventrec/config.yaml",
	"/etc/eventrec/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// DotEnvFile is loaded into the process environment before any layer is read.
// A missing file is not an error.
const DotEnvFile = ".env"

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver:    "duckdb",
			Path:      "/data/eventrec.duckdb",
			MaxMemory: "1GB",
			Threads:   0,
			MySQL: MySQLConfig{
				Host: "127.0.0.1",
				Port: 3306,
			},
			MaxOpenConns:       10,
			MaxIdleConns:       5,
			ConnMaxLifetime:    5 * time.Minute,
			QueryTimeout:       2 * time.Minute,
			BreakerMaxFailures: 5,
			BreakerTimeout:     30 * time.Second,
		},
		Recommend: RecommendConfig{
			MinUserActions:      5,
			VectorSize:          10,
			Threshold:           0.5,
			MaxRecentActionDays: 30,
			ModelVersion:        "svd-1",
		},
		Simulation: SimulationConfig{
			OutputPath:         "./simulation_reports/",
			IncludeUserResults: false,
			Processes:          4,
		},
		Evaluation: EvaluationConfig{
			MinDate:   "2018-09-09",
			ReportDir: "./production_reports/",
		},
		Schedule: ScheduleConfig{
			Enabled:      true,
			Cron:         "0 6 * * *",
			RunOnStartup: false,
			RunTimeout:   30 * time.Minute,
		},
		Server: ServerConfig{
			Enabled:         true,
			Host:            "0.0.0.0",
			Port:            8090,
			Timeout:         30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Load loads configuration using Koanf with layered sources:
//  1. Defaults from struct
//  2. Config file (optional)
//  3. Environment variables (including those from a .env file)
//
// The returned configuration has been validated.
func Load() (*Config, error) {
	if err := loadDotEnv(DotEnvFile); err != nil {
		return nil, err
	}

	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	// MIN_USER_ACTIONS -> recommend.min_user_actions
	// MYSQL_HOST -> database.mysql.host
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadDotEnv exports the variables of path into the process environment.
// Variables already set in the environment win.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// envTransformFunc transforms environment variable names to koanf config paths.
// The names used by the original deployment (MIN_USER_ACTIONS, VECTOR_SIZE,
// THRESHOLD, MYSQL_*) are kept so existing environments keep working.
//
// Examples:
//   - MIN_USER_ACTIONS -> recommend.min_user_actions
//   - MYSQL_DB -> database.mysql.database
//   - DUCKDB_PATH -> database.path
//   - HTTP_PORT -> server.port
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	envMappings := map[string]string{
		// Database mappings
		"database_driver":         "database.driver",
		"duckdb_path":             "database.path",
		"duckdb_max_memory":       "database.max_memory",
		"duckdb_threads":          "database.threads",
		"mysql_host":              "database.mysql.host",
		"mysql_port":              "database.mysql.port",
		"mysql_db":                "database.mysql.database",
		"mysql_username":          "database.mysql.username",
		"mysql_password":          "database.mysql.password",
		"db_max_open_conns":       "database.max_open_conns",
		"db_max_idle_conns":       "database.max_idle_conns",
		"db_conn_max_lifetime":    "database.conn_max_lifetime",
		"db_query_timeout":        "database.query_timeout",
		"db_breaker_max_failures": "database.breaker_max_failures",
		"db_breaker_timeout":      "database.breaker_timeout",

		// Pipeline mappings
		"min_user_actions":       "recommend.min_user_actions",
		"vector_size":            "recommend.vector_size",
		"threshold":              "recommend.threshold",
		"max_recent_action_days": "recommend.max_recent_action_days",
		"model_version":          "recommend.model_version",

		// Simulation mappings
		"simulation_start_date":           "simulation.start_date",
		"simulation_end_date":             "simulation.end_date",
		"simulation_output_path":          "simulation.output_path",
		"simulation_include_user_results": "simulation.include_user_results",
		"simulation_processes":            "simulation.processes",

		// Evaluation mappings
		"evaluation_min_date":            "evaluation.min_date",
		"evaluation_max_date":            "evaluation.max_date",
		"evaluation_recommendation_date": "evaluation.recommendation_date",
		"evaluation_report_dir":          "evaluation.report_dir",

		// Schedule mappings
		"schedule_enabled":        "schedule.enabled",
		"schedule_cron":           "schedule.cron",
		"schedule_run_on_startup": "schedule.run_on_startup",
		"schedule_run_timeout":    "schedule.run_timeout",

		// Server mappings
		"http_enabled":          "server.enabled",
		"http_host":             "server.host",
		"http_port":             "server.port",
		"http_timeout":          "server.timeout",
		"http_shutdown_timeout": "server.shutdown_timeout",

		// Logging mappings
		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}

	// Unmapped keys are skipped so unrelated environment variables
	// cannot pollute the configuration.
	return ""
}
