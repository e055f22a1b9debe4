// Eventrec - Event Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventrec

package config

import (
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"

	"github.com/tomtom215/eventrec/internal/validation"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return err
	}

	if err := c.validateDatabase(); err != nil {
		return err
	}

	if err := c.validateSimulation(); err != nil {
		return err
	}

	if err := c.validateEvaluation(); err != nil {
		return err
	}

	if err := c.validateSchedule(); err != nil {
		return err
	}

	if err := c.validateServer(); err != nil {
		return err
	}

	return c.validateLogging()
}

func (c *Config) validateDatabase() error {
	switch c.Database.Driver {
	case "duckdb":
		if c.Database.Path == "" {
			return fmt.Errorf("DUCKDB_PATH is required when DATABASE_DRIVER=duckdb")
		}
	case "mysql":
		if c.Database.MySQL.Host == "" {
			return fmt.Errorf("MYSQL_HOST is required when DATABASE_DRIVER=mysql")
		}
		if c.Database.MySQL.Database == "" {
			return fmt.Errorf("MYSQL_DB is required when DATABASE_DRIVER=mysql")
		}
		if c.Database.MySQL.Username == "" {
			return fmt.Errorf("MYSQL_USERNAME is required when DATABASE_DRIVER=mysql")
		}
		if c.Database.MySQL.Port < 1 || c.Database.MySQL.Port > 65535 {
			return fmt.Errorf("MYSQL_PORT must be between 1 and 65535, got %d", c.Database.MySQL.Port)
		}
	default:
		return fmt.Errorf("DATABASE_DRIVER must be 'duckdb' or 'mysql', got %q", c.Database.Driver)
	}

	if c.Database.MaxOpenConns < 1 {
		return fmt.Errorf("DB_MAX_OPEN_CONNS must be at least 1, got %d", c.Database.MaxOpenConns)
	}
	if c.Database.MaxIdleConns < 0 || c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("DB_MAX_IDLE_CONNS must be between 0 and DB_MAX_OPEN_CONNS (%d), got %d",
			c.Database.MaxOpenConns, c.Database.MaxIdleConns)
	}
	if c.Database.QueryTimeout <= 0 {
		return fmt.Errorf("DB_QUERY_TIMEOUT must be positive, got %v", c.Database.QueryTimeout)
	}
	if c.Database.BreakerMaxFailures == 0 {
		return fmt.Errorf("DB_BREAKER_MAX_FAILURES must be at least 1")
	}
	return nil
}

// validateSimulation checks the date window when both ends are configured.
// Either end may be left empty and supplied on the command line.
func (c *Config) validateSimulation() error {
	if c.Simulation.StartDate == "" || c.Simulation.EndDate == "" {
		return nil
	}
	start, err := ParseDate(c.Simulation.StartDate)
	if err != nil {
		return fmt.Errorf("SIMULATION_START_DATE: %w", err)
	}
	end, err := ParseDate(c.Simulation.EndDate)
	if err != nil {
		return fmt.Errorf("SIMULATION_END_DATE: %w", err)
	}
	if end.Before(start) {
		return fmt.Errorf("SIMULATION_END_DATE (%s) must not be before SIMULATION_START_DATE (%s)",
			c.Simulation.EndDate, c.Simulation.StartDate)
	}
	return nil
}

func (c *Config) validateEvaluation() error {
	if c.Evaluation.MinDate == "" || c.Evaluation.MaxDate == "" {
		return nil
	}
	minDate, err := ParseDate(c.Evaluation.MinDate)
	if err != nil {
		return fmt.Errorf("EVALUATION_MIN_DATE: %w", err)
	}
	maxDate, err := ParseDate(c.Evaluation.MaxDate)
	if err != nil {
		return fmt.Errorf("EVALUATION_MAX_DATE: %w", err)
	}
	if maxDate.Before(minDate) {
		return fmt.Errorf("EVALUATION_MAX_DATE (%s) must not be before EVALUATION_MIN_DATE (%s)",
			c.Evaluation.MaxDate, c.Evaluation.MinDate)
	}
	return nil
}

func (c *Config) validateSchedule() error {
	if !c.Schedule.Enabled {
		return nil
	}
	if _, err := cron.ParseStandard(c.Schedule.Cron); err != nil {
		return fmt.Errorf("SCHEDULE_CRON %q is invalid: %w", c.Schedule.Cron, err)
	}
	if c.Schedule.RunTimeout <= 0 {
		return fmt.Errorf("SCHEDULE_RUN_TIMEOUT must be positive, got %v", c.Schedule.RunTimeout)
	}
	return nil
}

func (c *Config) validateServer() error {
	if !c.Server.Enabled {
		return nil
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive, got %v", c.Server.Timeout)
	}
	return nil
}

func (c *Config) validateLogging() error {
	validLevels := map[string]bool{
		"trace": true, "debug": true, "info": true,
		"warn": true, "warning": true, "error": true, "disabled": true,
	}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error, disabled; got %q", c.Logging.Level)
	}

	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
		return nil
	default:
		return fmt.Errorf("LOG_FORMAT must be 'json' or 'console', got %q", c.Logging.Format)
	}
}
