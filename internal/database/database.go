// Eventrec - Event Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventrec

package database

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/go-sql-driver/mysql"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/eventrec/internal/config"
	"github.com/tomtom215/eventrec/internal/logging"
)

// Supported drivers.
const (
	DriverDuckDB = "duckdb"
	DriverMySQL  = "mysql"
)

// DB wraps the SQL connection to the events store and provides the table
// reads and transactional writes the pipeline needs.
type DB struct {
	conn    *sql.DB
	cfg     *config.DatabaseConfig
	driver  string
	breaker *gobreaker.CircuitBreaker[*resultSet]
}

// New opens a connection to the configured store and verifies it with a
// ping. It does not create tables; call EnsureSchema for that.
func New(cfg *config.DatabaseConfig) (*DB, error) {
	driverName, dsn, err := dataSource(cfg)
	if err != nil {
		return nil, err
	}

	conn, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db := &DB{
		conn:    conn,
		cfg:     cfg,
		driver:  cfg.Driver,
		breaker: newReadBreaker(cfg),
	}

	db.configureConnectionPool()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := db.Ping(ctx); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Driver, err)
	}

	logging.Info().
		Str("driver", cfg.Driver).
		Str("target", db.target()).
		Msg("Connected to events store")

	return db, nil
}

// dataSource returns the database/sql driver name and DSN for cfg.
func dataSource(cfg *config.DatabaseConfig) (string, string, error) {
	switch cfg.Driver {
	case DriverDuckDB:
		dsn, err := duckDBDSN(cfg)
		return DriverDuckDB, dsn, err
	case DriverMySQL:
		return DriverMySQL, mysqlDSN(cfg), nil
	default:
		return "", "", fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// duckDBDSN builds the DuckDB connection string with tuning options,
// creating the parent directory of a file database if needed.
func duckDBDSN(cfg *config.DatabaseConfig) (string, error) {
	numThreads := cfg.Threads
	if numThreads <= 0 {
		numThreads = runtime.NumCPU()
	}

	if cfg.Path != ":memory:" {
		dbDir := filepath.Dir(cfg.Path)
		if dbDir != "" && dbDir != "." {
			if err := os.MkdirAll(dbDir, 0o750); err != nil {
				return "", fmt.Errorf("failed to create database directory %s: %w", dbDir, err)
			}
		}
	}

	maxMemory := cfg.MaxMemory
	if maxMemory == "" {
		maxMemory = "1GB"
	}

	return fmt.Sprintf("%s?access_mode=read_write&threads=%d&max_memory=%s",
		cfg.Path, numThreads, maxMemory), nil
}

// mysqlDSN builds the MySQL DSN. DATETIME columns are always parsed into
// time.Time in UTC.
func mysqlDSN(cfg *config.DatabaseConfig) string {
	mc := mysql.NewConfig()
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(cfg.MySQL.Host, strconv.Itoa(cfg.MySQL.Port))
	mc.DBName = cfg.MySQL.Database
	mc.User = cfg.MySQL.Username
	mc.Passwd = cfg.MySQL.Password
	mc.ParseTime = true
	mc.Loc = time.UTC
	return mc.FormatDSN()
}

// target describes the store without credentials, for logs.
func (db *DB) target() string {
	if db.driver == DriverMySQL {
		return net.JoinHostPort(db.cfg.MySQL.Host, strconv.Itoa(db.cfg.MySQL.Port)) + "/" + db.cfg.MySQL.Database
	}
	return db.cfg.Path
}

// Driver returns the configured driver name.
func (db *DB) Driver() string {
	return db.driver
}

// Conn returns the underlying SQL database connection.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Ping verifies the store is reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Close closes the database connection.
func (db *DB) Close() error {
	if db.conn == nil {
		return nil
	}
	return db.conn.Close()
}

// queryContext bounds ctx by the configured query timeout.
func (db *DB) queryContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if db.cfg.QueryTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, db.cfg.QueryTimeout)
}
