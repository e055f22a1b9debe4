// Eventrec - Event Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventrec

package database

import (
	"context"
	"fmt"

	"github.com/tomtom215/eventrec/internal/recommend"
)

// SelectedEvents returns every selection, dropping rows that repeat all
// columns but the id.
func (db *DB) SelectedEvents(ctx context.Context) ([]recommend.Interaction, error) {
	records, err := db.ReadTable(ctx, TableSelectedEvents, ReadOptions{IgnoreColumns: []string{"id"}})
	if err != nil {
		return nil, err
	}

	out := make([]recommend.Interaction, 0, len(records))
	for i, rec := range records {
		in, err := interactionFromRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("selected_events row %d: %w", i, err)
		}
		out = append(out, in)
	}
	return out, nil
}

func interactionFromRecord(rec Record) (recommend.Interaction, error) {
	var (
		in  recommend.Interaction
		err error
	)
	if in.UserID, err = rec.String("user_id"); err != nil {
		return in, err
	}
	if in.EventID, err = rec.Int64("event_id"); err != nil {
		return in, err
	}
	selType, err := rec.String("selection_type")
	if err != nil {
		return in, err
	}
	in.SelectionType = recommend.SelectionType(selType)
	if in.SelectionSource, err = rec.String("selection_source"); err != nil {
		return in, err
	}
	if in.DateSelected, err = rec.Time("date_selected"); err != nil {
		return in, err
	}
	return in, nil
}

// Events returns the event catalog, dropping rows that repeat everything
// but the id and the scrape date.
func (db *DB) Events(ctx context.Context) ([]recommend.Event, error) {
	records, err := db.ReadTable(ctx, TableEvents, ReadOptions{IgnoreColumns: []string{"id", "date_added"}})
	if err != nil {
		return nil, err
	}

	out := make([]recommend.Event, 0, len(records))
	for i, rec := range records {
		id, err := rec.Int64("id")
		if err != nil {
			return nil, fmt.Errorf("events row %d: %w", i, err)
		}
		start, err := rec.Time("start_time")
		if err != nil {
			return nil, fmt.Errorf("events row %d: %w", i, err)
		}
		out = append(out, recommend.Event{ID: id, StartTime: start})
	}
	return out, nil
}

// Users returns every user with their recommendation email subscription.
func (db *DB) Users(ctx context.Context) ([]recommend.User, error) {
	records, err := db.ReadTable(ctx, TableUsers, ReadOptions{})
	if err != nil {
		return nil, err
	}

	out := make([]recommend.User, 0, len(records))
	for i, rec := range records {
		id, err := rec.String("id")
		if err != nil {
			return nil, fmt.Errorf("users row %d: %w", i, err)
		}
		subscribed, err := rec.Bool("recommendation_subscribed")
		if err != nil {
			return nil, fmt.Errorf("users row %d: %w", i, err)
		}
		out = append(out, recommend.User{ID: id, RecommendationSubscribed: subscribed})
	}
	return out, nil
}

// ABTests returns the A/B assignments of modelVersion.
func (db *DB) ABTests(ctx context.Context, modelVersion string) ([]recommend.ABAssignment, error) {
	records, err := db.ReadTable(ctx, TableABTests, ReadOptions{
		Filter: &Filter{Column: "model_version", Value: modelVersion},
	})
	if err != nil {
		return nil, err
	}

	out := make([]recommend.ABAssignment, 0, len(records))
	for i, rec := range records {
		a := recommend.ABAssignment{ModelVersion: modelVersion}
		if a.UserID, err = rec.String("user_id"); err != nil {
			return nil, fmt.Errorf("ab_tests row %d: %w", i, err)
		}
		if a.TestFlag, err = rec.Bool("test_flag"); err != nil {
			return nil, fmt.Errorf("ab_tests row %d: %w", i, err)
		}
		if a.DateAdded, err = rec.Time("date_added"); err != nil {
			return nil, fmt.Errorf("ab_tests row %d: %w", i, err)
		}
		out = append(out, a)
	}
	return out, nil
}

// Recommendations returns the persisted recommendations of modelVersion.
func (db *DB) Recommendations(ctx context.Context, modelVersion string) ([]recommend.Recommendation, error) {
	records, err := db.ReadTable(ctx, TableRecommendations, ReadOptions{
		Filter: &Filter{Column: "model_version", Value: modelVersion},
	})
	if err != nil {
		return nil, err
	}

	out := make([]recommend.Recommendation, 0, len(records))
	for i, rec := range records {
		r := recommend.Recommendation{ModelVersion: modelVersion}
		if r.UserID, err = rec.String("user_id"); err != nil {
			return nil, fmt.Errorf("recommendations row %d: %w", i, err)
		}
		if r.EventID, err = rec.Int64("event_id"); err != nil {
			return nil, fmt.Errorf("recommendations row %d: %w", i, err)
		}
		if r.DateAdded, err = rec.Time("date_added"); err != nil {
			return nil, fmt.Errorf("recommendations row %d: %w", i, err)
		}
		out = append(out, r)
	}
	return out, nil
}
