// Eventrec - Event Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventrec

package database

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/tomtom215/eventrec/internal/metrics"
)

// Table names one of the pipeline's tables.
type Table string

const (
	TableEvents          Table = "events"
	TableSelectedEvents  Table = "selected_events"
	TableUsers           Table = "users"
	TableABTests         Table = "ab_tests"
	TableRecommendations Table = "recommendations"
)

// tableColumns lists the columns each table is known to have. Filters are
// checked against it before any SQL is built.
var tableColumns = map[Table][]string{
	TableEvents:          {"id", "title", "start_time", "end_time", "date_added"},
	TableSelectedEvents:  {"id", "user_id", "event_id", "date_selected", "selection_type", "selection_source"},
	TableUsers:           {"id", "email", "recommendation_subscribed", "created_at"},
	TableABTests:         {"id", "user_id", "test_flag", "date_added", "model_version"},
	TableRecommendations: {"id", "user_id", "event_id", "date_added", "model_version"},
}

// Tables returns every known table in a stable order.
func Tables() []Table {
	return []Table{TableEvents, TableSelectedEvents, TableUsers, TableABTests, TableRecommendations}
}

// ParseTable maps a table name to a Table.
func ParseTable(name string) (Table, error) {
	t := Table(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := tableColumns[t]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownTable, name)
	}
	return t, nil
}

// HasColumn reports whether the table has the named column.
func (t Table) HasColumn(column string) bool {
	return slices.Contains(tableColumns[t], column)
}

// Filter restricts a read to rows where Column equals Value.
type Filter struct {
	Column string
	Value  interface{}
}

// ReadOptions controls ReadTable.
type ReadOptions struct {
	// IgnoreColumns drops duplicate rows, comparing every column except
	// these. The first occurrence in id order is kept.
	IgnoreColumns []string

	// Filter is an optional equality condition.
	Filter *Filter
}

// resultSet is what a single query returns through the circuit breaker.
type resultSet struct {
	columns []string
	records []Record
}

// ReadTable returns the rows of table in id order.
func (db *DB) ReadTable(ctx context.Context, table Table, opts ReadOptions) ([]Record, error) {
	table, err := ParseTable(string(table))
	if err != nil {
		return nil, err
	}

	query := "SELECT * FROM " + string(table)
	var args []interface{}
	if opts.Filter != nil {
		if !table.HasColumn(opts.Filter.Column) {
			return nil, fmt.Errorf("%w: %s.%s", ErrUnknownColumn, table, opts.Filter.Column)
		}
		query += " WHERE " + opts.Filter.Column + " = ?"
		args = append(args, opts.Filter.Value)
	}
	query += " ORDER BY id"

	start := time.Now()
	rs, err := db.breaker.Execute(func() (*resultSet, error) {
		return db.query(ctx, query, args...)
	})
	metrics.RecordDBQuery("read", string(table), time.Since(start), err)
	db.recordBreakerResult(err)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", table, err)
	}
	metrics.DBRowsRead.WithLabelValues(string(table)).Add(float64(len(rs.records)))

	if len(opts.IgnoreColumns) > 0 {
		return dedupe(rs.columns, rs.records, opts.IgnoreColumns), nil
	}
	return rs.records, nil
}

// CheckTables verifies that every pipeline table can be queried. The MySQL
// schema is owned by the web application, so a missing table is reported
// before any run starts rather than halfway through one.
func (db *DB) CheckTables(ctx context.Context) error {
	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	var missing []string
	for _, table := range Tables() {
		rows, err := db.conn.QueryContext(ctx, "SELECT * FROM "+string(table)+" WHERE 1 = 0")
		if err != nil {
			if ctx.Err() != nil {
				return fmt.Errorf("check tables: %w", ctx.Err())
			}
			missing = append(missing, string(table))
			continue
		}
		closeQuietly(rows)
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingTable, strings.Join(missing, ", "))
	}
	return nil
}

// query runs a SELECT and scans every row into a Record.
func (db *DB) query(ctx context.Context, query string, args ...interface{}) (*resultSet, error) {
	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer closeQuietly(rows)

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}

	var records []Record
	for rows.Next() {
		values := make([]interface{}, len(columns))
		ptrs := make([]interface{}, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		rec := make(Record, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				// Drivers may reuse the buffer on the next Scan.
				values[i] = string(b)
			}
			rec[col] = values[i]
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return &resultSet{columns: columns, records: records}, nil
}

// dedupe keeps the first record for each combination of the columns not
// listed in ignore.
func dedupe(columns []string, records []Record, ignore []string) []Record {
	keyCols := make([]string, 0, len(columns))
	for _, c := range columns {
		if !slices.Contains(ignore, c) {
			keyCols = append(keyCols, c)
		}
	}

	seen := make(map[string]struct{}, len(records))
	out := make([]Record, 0, len(records))
	var b strings.Builder
	for _, rec := range records {
		b.Reset()
		for _, c := range keyCols {
			writeKeyPart(&b, rec[c])
			b.WriteByte(0x1f)
		}
		key := b.String()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, rec)
	}
	return out
}

func writeKeyPart(b *strings.Builder, v interface{}) {
	switch x := v.(type) {
	case nil:
		b.WriteString("\x00null")
	case time.Time:
		b.WriteString(x.UTC().Format(time.RFC3339Nano))
	default:
		fmt.Fprintf(b, "%v", x)
	}
}
