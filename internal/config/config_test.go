// Eventrec - Event Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventrec

package config

import (
	"strings"
	"testing"
	"time"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults",
			mutate: func(*Config) {},
		},
		{
			name: "mysql requires database name",
			mutate: func(c *Config) {
				c.Database.Driver = "mysql"
				c.Database.MySQL.Username = "recs"
			},
			wantErr: "MYSQL_DB",
		},
		{
			name: "mysql complete",
			mutate: func(c *Config) {
				c.Database.Driver = "mysql"
				c.Database.MySQL.Database = "events"
				c.Database.MySQL.Username = "recs"
			},
		},
		{
			name:    "duckdb requires path",
			mutate:  func(c *Config) { c.Database.Path = "" },
			wantErr: "DUCKDB_PATH",
		},
		{
			name:    "idle conns above open conns",
			mutate:  func(c *Config) { c.Database.MaxIdleConns = 50 },
			wantErr: "DB_MAX_IDLE_CONNS",
		},
		{
			name:    "threshold below zero",
			mutate:  func(c *Config) { c.Recommend.Threshold = -0.1 },
			wantErr: "recommend.threshold",
		},
		{
			name:    "min user actions zero",
			mutate:  func(c *Config) { c.Recommend.MinUserActions = 0 },
			wantErr: "recommend.min_user_actions",
		},
		{
			name:    "empty model version",
			mutate:  func(c *Config) { c.Recommend.ModelVersion = "" },
			wantErr: "recommend.model_version",
		},
		{
			name:    "model version with path separator",
			mutate:  func(c *Config) { c.Recommend.ModelVersion = "svd/v2" },
			wantErr: "recommend.model_version",
		},
		{
			name:    "zero processes",
			mutate:  func(c *Config) { c.Simulation.Processes = 0 },
			wantErr: "simulation.processes",
		},
		{
			name: "simulation end before start",
			mutate: func(c *Config) {
				c.Simulation.StartDate = "2018-10-01"
				c.Simulation.EndDate = "2018-09-01"
			},
			wantErr: "SIMULATION_END_DATE",
		},
		{
			name: "evaluation max before min",
			mutate: func(c *Config) {
				c.Evaluation.MinDate = "2018-10-01"
				c.Evaluation.MaxDate = "2018-09-01"
			},
			wantErr: "EVALUATION_MAX_DATE",
		},
		{
			name:    "invalid cron",
			mutate:  func(c *Config) { c.Schedule.Cron = "61 * * * *" },
			wantErr: "SCHEDULE_CRON",
		},
		{
			name: "cron ignored when schedule disabled",
			mutate: func(c *Config) {
				c.Schedule.Enabled = false
				c.Schedule.Cron = ""
			},
		},
		{
			name:    "server port out of range",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: "HTTP_PORT",
		},
		{
			name:    "invalid log level",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: "LOG_LEVEL",
		},
		{
			name:    "invalid log format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: "LOG_FORMAT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %q, want it to contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2018-09-09")
	if err != nil {
		t.Fatalf("ParseDate() error = %v", err)
	}
	if want := time.Date(2018, 9, 9, 0, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Errorf("ParseDate() = %v, want %v", got, want)
	}

	if _, err := ParseDate("20180909"); err == nil {
		t.Error("ParseDate() should reject YYYYMMDD")
	}
}

func TestServerAddr(t *testing.T) {
	s := ServerConfig{Host: "127.0.0.1", Port: 8090}
	if got := s.Addr(); got != "127.0.0.1:8090" {
		t.Errorf("Addr() = %q, want 127.0.0.1:8090", got)
	}
}
