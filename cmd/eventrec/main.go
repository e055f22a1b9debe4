// Eventrec - Event Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventrec

// Package main is the eventrec command.
//
// Eventrec recommends upcoming campus events to users from their past
// "add to calendar" actions. The production path reads the selected_events
// and events tables, factorizes the user x event matrix with a truncated
// SVD, and writes one row per recommended (user, event) pair to the
// recommendations table, where the web application and the nightly email
// pick them up.
//
// # Commands
//
//	eventrec generate      production run, persists recommendations
//	eventrec simulate      backtest at weekly checkpoints, writes a report
//	eventrec evaluate      production A/B report for a model version
//	eventrec assign-ab     split users into treatment and control
//	eventrec serve         scheduled production runs plus the report API
//	eventrec init-db       create the schema, optionally with demo data
//
// # Configuration
//
// Settings are layered with koanf (highest priority wins):
//   - Command line flags
//   - Environment variables, including a .env file in the working directory
//   - Config file (config.yaml, /etc/eventrec/config.yaml or CONFIG_PATH)
//   - Built-in defaults
//
// The environment variable names of the original deployment are honored:
// MIN_USER_ACTIONS, VECTOR_SIZE, THRESHOLD, MAX_RECENT_ACTION_DAYS and the
// MYSQL_* connection settings.
//
// # Example Usage
//
// Local store with demo data:
//
//	export DUCKDB_PATH=./data/eventrec.duckdb
//	eventrec init-db --seed
//	eventrec simulate --start-date 2018-10-01 --end-date 2018-11-04 --processes 8
//
// Production against MySQL:
//
//	export DATABASE_DRIVER=mysql
//	export MYSQL_HOST=db.internal MYSQL_DB=events MYSQL_USERNAME=recs MYSQL_PASSWORD=...
//	eventrec generate --model-version svd_v2
//
// # Signal Handling
//
// SIGINT and SIGTERM cancel the running command. A production run rolls
// back its transaction, a simulation writes no report, and serve shuts
// the supervisor tree down gracefully.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/tomtom215/eventrec/internal/config"
)

func main() {
	if err := newRootCmd(config.Load, time.Now).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
