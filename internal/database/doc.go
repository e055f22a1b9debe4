// Eventrec - Event Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventrec

// Package database is the data layer between the pipeline and the events
// store owned by the web application.
//
// # Drivers
//
// Two drivers are supported through database/sql:
//   - duckdb (github.com/duckdb/duckdb-go/v2): embedded file or :memory:
//     store for local runs, simulation replays and tests
//   - mysql (github.com/go-sql-driver/mysql): the production store. The
//     DSN is built with mysql.Config and always sets parseTime.
//
// # Reading
//
// Every read goes through ReadTable, keyed by one of the five known
// tables (events, selected_events, users, ab_tests, recommendations).
// Rows come back in id order as Records. ReadOptions.IgnoreColumns drops
// duplicate rows compared on all remaining columns, keeping the first.
// Typed readers (SelectedEvents, Events, Users, ABTests, Recommendations)
// convert records into the recommend package's types, so the pipeline
// never sees table or column names.
//
// Reads are wrapped in a gobreaker circuit breaker. Once the store has
// failed BreakerMaxFailures times in a row, reads fail fast with
// gobreaker.ErrOpenState until BreakerTimeout passes.
//
// # Writing
//
// PersistRecommendations and PersistABAssignments insert all rows of a
// call in one transaction; a failure rolls back every row of that call.
//
// # Schema
//
// EnsureSchema creates the tables for either dialect. Production MySQL
// tables are managed by the web application, so it is only run by
// init-db and by tests.
package database
