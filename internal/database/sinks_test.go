// Eventrec - Event Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventrec

package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tomtom215/eventrec/internal/recommend"
)

func TestPersistRecommendations_RoundTrip(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	recs := recommend.Recommendations{
		"alice": recommend.NewEventSet(3, 1, 2),
		"bob":   recommend.NewEventSet(2),
		"carol": recommend.NewEventSet(),
	}
	at := time.Date(2018, 11, 4, 6, 0, 0, 0, time.UTC)

	result, err := db.PersistRecommendations(ctx, recs, "svd-1", at)
	if err != nil {
		t.Fatalf("PersistRecommendations() error = %v", err)
	}
	want := recommend.PersistResult{UsersConsidered: 3, UsersWithRecs: 2, TotalRecs: 4}
	if result != want {
		t.Errorf("PersistRecommendations() = %+v, want %+v", result, want)
	}

	// Another model's rows must not leak into the read.
	if _, err := db.PersistRecommendations(ctx, recommend.Recommendations{
		"alice": recommend.NewEventSet(9),
	}, "svd-2", at); err != nil {
		t.Fatalf("PersistRecommendations(svd-2) error = %v", err)
	}

	rows, err := db.Recommendations(ctx, "svd-1")
	if err != nil {
		t.Fatalf("Recommendations() error = %v", err)
	}

	got := make(recommend.Recommendations)
	for _, r := range rows {
		if r.ModelVersion != "svd-1" {
			t.Errorf("row model_version = %s", r.ModelVersion)
		}
		if !r.DateAdded.Equal(at) {
			t.Errorf("row date_added = %v, want %v", r.DateAdded, at)
		}
		if got[r.UserID] == nil {
			got[r.UserID] = make(recommend.EventSet)
		}
		got[r.UserID].Add(r.EventID)
	}

	if len(got) != 2 {
		t.Fatalf("read back %d users, want 2", len(got))
	}
	for user, events := range recs {
		if len(events) == 0 {
			continue
		}
		if len(got[user]) != len(events) || len(got[user].Difference(events)) != 0 {
			t.Errorf("user %s: read back %v, want %v", user, got[user].Sorted(), events.Sorted())
		}
	}
}

func TestPersistRecommendations_Empty(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	result, err := db.PersistRecommendations(ctx, recommend.Recommendations{"alice": recommend.NewEventSet()}, "svd-1", time.Now())
	if err != nil {
		t.Fatalf("PersistRecommendations() error = %v", err)
	}
	if result.UsersConsidered != 1 || result.TotalRecs != 0 {
		t.Errorf("PersistRecommendations() = %+v", result)
	}

	rows, err := db.Recommendations(ctx, "svd-1")
	if err != nil {
		t.Fatalf("Recommendations() error = %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("expected no rows, got %d", len(rows))
	}
}

func TestInsertRows_RollsBackOnFailure(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	errBoom := errors.New("boom")

	err := db.insertRows(ctx, TableRecommendations,
		`INSERT INTO recommendations (user_id, event_id, date_added, model_version) VALUES (?, ?, ?, ?)`,
		func(exec func(args ...interface{}) error) error {
			if err := exec("alice", int64(1), time.Now().UTC(), "svd-1"); err != nil {
				return err
			}
			if err := exec("alice", int64(2), time.Now().UTC(), "svd-1"); err != nil {
				return err
			}
			return errBoom
		})
	if !errors.Is(err, errBoom) {
		t.Fatalf("insertRows() error = %v, want boom", err)
	}

	records, err := db.ReadTable(ctx, TableRecommendations, ReadOptions{})
	if err != nil {
		t.Fatalf("ReadTable() error = %v", err)
	}
	if len(records) != 0 {
		t.Errorf("found %d rows after rollback, want 0", len(records))
	}
}

func TestPersistRecommendations_ClosedStore(t *testing.T) {
	db := setupTestDB(t)
	if err := db.Close(); err != nil {
		t.Fatal(err)
	}

	_, err := db.PersistRecommendations(context.Background(), recommend.Recommendations{
		"alice": recommend.NewEventSet(1),
	}, "svd-1", time.Now())
	if err == nil {
		t.Fatal("expected error on closed store")
	}
}
