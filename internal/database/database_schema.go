// Eventrec - Event Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventrec

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/eventrec/internal/logging"
)

// schemaContext returns a context with timeout for schema operations
func schemaContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, 60*time.Second)
}

// EnsureSchema creates the five pipeline tables if they do not exist.
// In production the MySQL schema belongs to the web application; this is
// for local DuckDB stores and test databases.
func (db *DB) EnsureSchema(ctx context.Context) error {
	ctx, cancel := schemaContext(ctx)
	defer cancel()

	for _, query := range db.getTableCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}

	logging.Debug().Str("driver", db.driver).Msg("Schema ensured")
	return nil
}

// getTableCreationQueries returns the table creation SQL statements for the
// configured dialect.
func (db *DB) getTableCreationQueries() []string {
	if db.driver == DriverMySQL {
		return mysqlSchema
	}
	return duckDBSchema
}

// DuckDB has no AUTO_INCREMENT; sequences back the generated ids.
var duckDBSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id VARCHAR PRIMARY KEY,
		email VARCHAR,
		recommendation_subscribed BOOLEAN DEFAULT TRUE,
		created_at TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS events (
		id BIGINT PRIMARY KEY,
		title VARCHAR,
		start_time TIMESTAMP,
		end_time TIMESTAMP,
		date_added TIMESTAMP
	)`,
	`CREATE SEQUENCE IF NOT EXISTS selected_events_id_seq START 1`,
	`CREATE TABLE IF NOT EXISTS selected_events (
		id BIGINT PRIMARY KEY DEFAULT nextval('selected_events_id_seq'),
		user_id VARCHAR NOT NULL,
		event_id BIGINT NOT NULL,
		date_selected TIMESTAMP NOT NULL,
		selection_type VARCHAR NOT NULL,
		selection_source VARCHAR
	)`,
	`CREATE SEQUENCE IF NOT EXISTS recommendations_id_seq START 1`,
	`CREATE TABLE IF NOT EXISTS recommendations (
		id BIGINT PRIMARY KEY DEFAULT nextval('recommendations_id_seq'),
		user_id VARCHAR NOT NULL,
		event_id BIGINT NOT NULL,
		date_added TIMESTAMP NOT NULL,
		model_version VARCHAR NOT NULL
	)`,
	`CREATE SEQUENCE IF NOT EXISTS ab_tests_id_seq START 1`,
	`CREATE TABLE IF NOT EXISTS ab_tests (
		id BIGINT PRIMARY KEY DEFAULT nextval('ab_tests_id_seq'),
		user_id VARCHAR NOT NULL,
		test_flag BOOLEAN NOT NULL,
		date_added TIMESTAMP NOT NULL,
		model_version VARCHAR NOT NULL
	)`,
}

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id VARCHAR(50) NOT NULL PRIMARY KEY,
		email VARCHAR(256),
		recommendation_subscribed BOOLEAN DEFAULT TRUE,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS events (
		id INT NOT NULL PRIMARY KEY,
		title VARCHAR(256),
		start_time DATETIME,
		end_time DATETIME,
		date_added DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS selected_events (
		id INT NOT NULL AUTO_INCREMENT PRIMARY KEY,
		user_id VARCHAR(50) NOT NULL,
		event_id INT NOT NULL,
		date_selected DATETIME NOT NULL,
		selection_type ENUM('calendar', 'link') NOT NULL,
		selection_source VARCHAR(32)
	)`,
	`CREATE TABLE IF NOT EXISTS recommendations (
		id INT NOT NULL AUTO_INCREMENT PRIMARY KEY,
		user_id VARCHAR(50) NOT NULL,
		event_id INT NOT NULL,
		date_added DATETIME NOT NULL,
		model_version VARCHAR(64) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS ab_tests (
		id INT NOT NULL AUTO_INCREMENT PRIMARY KEY,
		user_id VARCHAR(50) NOT NULL,
		test_flag BOOLEAN NOT NULL,
		date_added DATETIME NOT NULL,
		model_version VARCHAR(64) NOT NULL
	)`,
}
