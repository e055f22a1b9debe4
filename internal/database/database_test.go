// Eventrec - Event Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventrec

package database

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/eventrec/internal/config"
)

// testDBSemaphore limits concurrent database creation to prevent resource exhaustion in CI.
// DuckDB CGO calls can hang when many connections work at once, so only one
// test holds a database at any time. The semaphore is released by t.Cleanup.
var testDBSemaphore = make(chan struct{}, 1)

// testDBMutex serializes database creation.
var testDBMutex sync.Mutex

// testConfig returns an in-memory DuckDB configuration.
func testConfig() *config.DatabaseConfig {
	return &config.DatabaseConfig{
		Driver:             DriverDuckDB,
		Path:               ":memory:",
		MaxMemory:          "1GB",
		BreakerMaxFailures: 3,
		BreakerTimeout:     time.Minute,
	}
}

// setupTestDB creates a new in-memory test database with the schema in
// place. Uses a 120-second timeout to fail fast if DuckDB hangs during
// connection.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() {
		<-testDBSemaphore
	})

	type result struct {
		db  *DB
		err error
	}

	resultCh := make(chan result, 1)
	go func() {
		testDBMutex.Lock()
		db, err := New(testConfig())
		testDBMutex.Unlock()
		resultCh <- result{db: db, err: err}
	}()

	select {
	case res := <-resultCh:
		if res.err != nil {
			t.Fatalf("Failed to create test database: %v", res.err)
		}
		t.Cleanup(func() {
			if err := res.db.Close(); err != nil {
				t.Logf("close test database: %v", err)
			}
		})
		if err := res.db.EnsureSchema(context.Background()); err != nil {
			t.Fatalf("EnsureSchema() error = %v", err)
		}
		return res.db
	case <-time.After(120 * time.Second):
		t.Fatalf("Timeout: database creation took longer than 120s (DuckDB may be under resource pressure)")
		return nil
	}
}

func TestNew_UnsupportedDriver(t *testing.T) {
	cfg := testConfig()
	cfg.Driver = "postgres"

	_, err := New(cfg)
	if err == nil || !strings.Contains(err.Error(), "unsupported database driver") {
		t.Fatalf("New() error = %v, want unsupported driver", err)
	}
}

func TestNew_DuckDB(t *testing.T) {
	db := setupTestDB(t)

	if db.Driver() != DriverDuckDB {
		t.Errorf("Driver() = %s, want duckdb", db.Driver())
	}
	if err := db.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
	// Running it again must be a no-op.
	if err := db.EnsureSchema(context.Background()); err != nil {
		t.Errorf("second EnsureSchema() error = %v", err)
	}
}

func TestMySQLDSN(t *testing.T) {
	cfg := &config.DatabaseConfig{
		Driver: DriverMySQL,
		MySQL: config.MySQLConfig{
			Host:     "db.internal",
			Port:     3307,
			Database: "harvard_events",
			Username: "recs",
			Password: "s3cret",
		},
	}

	dsn := mysqlDSN(cfg)

	for _, want := range []string{
		"recs:s3cret@tcp(db.internal:3307)/harvard_events",
		"parseTime=true",
	} {
		if !strings.Contains(dsn, want) {
			t.Errorf("mysqlDSN() = %s, missing %s", dsn, want)
		}
	}
}

func TestDuckDBDSN(t *testing.T) {
	cfg := testConfig()
	cfg.Threads = 2

	dsn, err := duckDBDSN(cfg)
	if err != nil {
		t.Fatalf("duckDBDSN() error = %v", err)
	}
	if dsn != ":memory:?access_mode=read_write&threads=2&max_memory=1GB" {
		t.Errorf("duckDBDSN() = %s", dsn)
	}
}

func TestDuckDBDSN_CreatesDirectory(t *testing.T) {
	cfg := testConfig()
	cfg.Path = t.TempDir() + "/nested/dir/eventrec.duckdb"

	if _, err := duckDBDSN(cfg); err != nil {
		t.Fatalf("duckDBDSN() error = %v", err)
	}
}
