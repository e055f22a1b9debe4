// Eventrec - Event Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventrec

package database

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Record is one row keyed by column name. Values are whatever the driver
// scanned: DuckDB yields int32/int64/string/bool/time.Time, MySQL yields
// int64/time.Time and text as bytes (converted to string on read).
type Record map[string]interface{}

// timeLayouts are tried, in order, for timestamps returned as text.
var timeLayouts = []string{
	"2006-01-02 15:04:05.999999999",
	time.RFC3339Nano,
	"2006-01-02",
}

// String returns col as a string. NULL yields "".
func (r Record) String(col string) (string, error) {
	v, ok := r[col]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrMissingColumn, col)
	}
	switch x := v.(type) {
	case nil:
		return "", nil
	case string:
		return x, nil
	case []byte:
		return string(x), nil
	case fmt.Stringer:
		return x.String(), nil
	case int32, int64, int, uint32, uint64:
		return fmt.Sprintf("%d", x), nil
	default:
		return "", fmt.Errorf("column %s: cannot convert %T to string", col, v)
	}
}

// Int64 returns col as an int64.
func (r Record) Int64(col string) (int64, error) {
	v, ok := r[col]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrMissingColumn, col)
	}
	switch x := v.(type) {
	case int64:
		return x, nil
	case int32:
		return int64(x), nil
	case int:
		return int64(x), nil
	case int16:
		return int64(x), nil
	case int8:
		return int64(x), nil
	case uint32:
		return int64(x), nil
	case uint64:
		return int64(x), nil //nolint:gosec // ids fit in int64
	case string:
		return parseInt(col, x)
	case []byte:
		return parseInt(col, string(x))
	default:
		return 0, fmt.Errorf("column %s: cannot convert %T to int64", col, v)
	}
}

func parseInt(col, s string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("column %s: %w", col, err)
	}
	return n, nil
}

// Bool returns col as a bool. MySQL stores BOOLEAN as TINYINT(1).
func (r Record) Bool(col string) (bool, error) {
	v, ok := r[col]
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrMissingColumn, col)
	}
	switch x := v.(type) {
	case nil:
		return false, nil
	case bool:
		return x, nil
	case string, []byte:
		s, _ := r.String(col) //nolint:errcheck // both types convert
		b, err := strconv.ParseBool(strings.TrimSpace(s))
		if err != nil {
			return false, fmt.Errorf("column %s: %w", col, err)
		}
		return b, nil
	default:
		n, err := r.Int64(col)
		if err != nil {
			return false, err
		}
		return n != 0, nil
	}
}

// Time returns col as a UTC time. NULL yields the zero time.
func (r Record) Time(col string) (time.Time, error) {
	v, ok := r[col]
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %s", ErrMissingColumn, col)
	}
	switch x := v.(type) {
	case nil:
		return time.Time{}, nil
	case time.Time:
		return x.UTC(), nil
	case string:
		return parseTime(col, x)
	case []byte:
		return parseTime(col, string(x))
	default:
		return time.Time{}, fmt.Errorf("column %s: cannot convert %T to time", col, v)
	}
}

func parseTime(col, s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("column %s: unrecognized time %q", col, s)
}
