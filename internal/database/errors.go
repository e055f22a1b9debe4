// Eventrec - Event Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventrec

package database

import (
	"database/sql"
	"errors"
	"io"

	"github.com/tomtom215/eventrec/internal/logging"
)

var (
	// ErrUnknownTable is returned for table names outside the pipeline's
	// five tables.
	ErrUnknownTable = errors.New("unknown table")

	// ErrMissingTable is returned by CheckTables when the store lacks one of
	// the pipeline's tables.
	ErrMissingTable = errors.New("missing table")

	// ErrUnknownColumn is returned when a filter names a column the table
	// does not have.
	ErrUnknownColumn = errors.New("unknown column")

	// ErrMissingColumn is returned when a record lacks a column a typed
	// reader needs.
	ErrMissingColumn = errors.New("missing column")
)

// closeQuietly closes a resource and explicitly ignores any error
// Use this for cleanup operations in error paths where Close() errors are not actionable
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close() //nolint:errcheck // cleanup is best-effort
	}
}

// rollbackQuietly rolls back tx, logging anything other than ErrTxDone.
func rollbackQuietly(tx *sql.Tx) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		logging.Warn().Err(err).Msg("Failed to roll back transaction")
	}
}
