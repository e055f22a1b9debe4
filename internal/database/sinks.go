// Eventrec - Event Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventrec

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/eventrec/internal/metrics"
	"github.com/tomtom215/eventrec/internal/recommend"
)

var _ recommend.Sink = (*DB)(nil)

// PersistRecommendations appends one recommendations row per (user, event)
// pair in a single transaction. On any error nothing is committed.
func (db *DB) PersistRecommendations(ctx context.Context, recs recommend.Recommendations, modelVersion string, at time.Time) (recommend.PersistResult, error) {
	result := recommend.PersistResult{
		UsersConsidered: len(recs),
		UsersWithRecs:   recs.UsersWithRecommendations(),
		TotalRecs:       recs.Total(),
	}

	at = at.UTC()
	err := db.insertRows(ctx, TableRecommendations,
		`INSERT INTO recommendations (user_id, event_id, date_added, model_version) VALUES (?, ?, ?, ?)`,
		func(exec func(args ...interface{}) error) error {
			for _, user := range recs.Users() {
				for _, eventID := range recs[user].Sorted() {
					if err := exec(user, eventID, at, modelVersion); err != nil {
						return err
					}
				}
			}
			return nil
		})
	if err != nil {
		return recommend.PersistResult{}, err
	}
	return result, nil
}

// PersistABAssignments appends the assignments in a single transaction.
func (db *DB) PersistABAssignments(ctx context.Context, assignments []recommend.ABAssignment) error {
	return db.insertRows(ctx, TableABTests,
		`INSERT INTO ab_tests (user_id, test_flag, date_added, model_version) VALUES (?, ?, ?, ?)`,
		func(exec func(args ...interface{}) error) error {
			for _, a := range assignments {
				if err := exec(a.UserID, a.TestFlag, a.DateAdded.UTC(), a.ModelVersion); err != nil {
					return err
				}
			}
			return nil
		})
}

// insertRows prepares query inside a transaction and lets fill execute it
// once per row. The transaction commits only if every row succeeds.
func (db *DB) insertRows(ctx context.Context, table Table, query string, fill func(exec func(args ...interface{}) error) error) (err error) {
	start := time.Now()
	defer func() {
		metrics.RecordDBQuery("insert", string(table), time.Since(start), err)
	}()

	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin %s transaction: %w", table, err)
	}
	defer rollbackQuietly(tx)

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare %s insert: %w", table, err)
	}
	defer closeQuietly(stmt)

	rows := 0
	err = fill(func(args ...interface{}) error {
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert %s row %d: %w", table, rows, err)
		}
		rows++
		return nil
	})
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit %s: %w", table, err)
	}
	return nil
}
