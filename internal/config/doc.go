// Eventrec - Event Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventrec

/*
Package config provides centralized configuration management for Eventrec.

Configuration is layered with Koanf v2:

 1. Struct defaults (defaultConfig)
 2. YAML file: CONFIG_PATH, then config.yaml, config.yml,
    /etc/eventrec/config.yaml, /etc/eventrec/config.yml
 3. Environment variables, after a .env file in the working directory has
    been exported with godotenv

# Sections

  - database: store driver (duckdb or mysql), DuckDB path and tuning, MySQL
    credentials, pool sizes, query timeout and circuit breaker thresholds
  - recommend: the pipeline parameters (min_user_actions, vector_size,
    threshold, max_recent_action_days) and the model_version tag
  - simulation: backtest window, report directory, worker pool size
  - evaluation: production A/B report window and report directory
  - schedule: cron spec of the production run inside `eventrec serve`
  - server: HTTP listener for health, metrics and report listing
  - logging: zerolog level, format and caller annotation

# Environment Variables

Pipeline:
  - MIN_USER_ACTIONS: minimum canonical adds for an eligible user (>= 1, default 5)
  - VECTOR_SIZE: requested latent rank k (>= 1, default 10)
  - THRESHOLD: score cutoff in [0, 1], exclusive (default 0.5)
  - MAX_RECENT_ACTION_DAYS: recency window in days (>= 1, default 30)
  - MODEL_VERSION: tag written with every recommendation (default svd-1)

Database:
  - DATABASE_DRIVER: duckdb or mysql (default duckdb)
  - DUCKDB_PATH, DUCKDB_MAX_MEMORY, DUCKDB_THREADS
  - MYSQL_HOST, MYSQL_PORT, MYSQL_DB, MYSQL_USERNAME, MYSQL_PASSWORD
  - DB_MAX_OPEN_CONNS, DB_MAX_IDLE_CONNS, DB_CONN_MAX_LIFETIME, DB_QUERY_TIMEOUT
  - DB_BREAKER_MAX_FAILURES, DB_BREAKER_TIMEOUT

Simulation and evaluation:
  - SIMULATION_START_DATE, SIMULATION_END_DATE (YYYY-MM-DD)
  - SIMULATION_OUTPUT_PATH, SIMULATION_INCLUDE_USER_RESULTS, SIMULATION_PROCESSES
  - EVALUATION_MIN_DATE, EVALUATION_MAX_DATE, EVALUATION_RECOMMENDATION_DATE
  - EVALUATION_REPORT_DIR

Service:
  - SCHEDULE_ENABLED, SCHEDULE_CRON, SCHEDULE_RUN_ON_STARTUP, SCHEDULE_RUN_TIMEOUT
  - HTTP_ENABLED, HTTP_HOST, HTTP_PORT, HTTP_TIMEOUT, HTTP_SHUTDOWN_TIMEOUT
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER

Any other environment variable is ignored.

# Validation

Range checks on the pipeline parameters and date formats are declared as
validator struct tags (see internal/validation). Cross-field rules such as
driver-specific requirements and date ordering are checked by hand in
config_validate.go.
*/
package config
