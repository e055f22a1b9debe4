// Eventrec - Event Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventrec

package database

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/tomtom215/eventrec/internal/logging"
	"github.com/tomtom215/eventrec/internal/recommend"
)

// SeedUsers inserts users in one transaction.
func (db *DB) SeedUsers(ctx context.Context, users []recommend.User) error {
	return db.insertRows(ctx, TableUsers,
		`INSERT INTO users (id, email, recommendation_subscribed, created_at) VALUES (?, ?, ?, ?)`,
		func(exec func(args ...interface{}) error) error {
			createdAt := time.Now().UTC()
			for _, u := range users {
				if err := exec(u.ID, u.ID+"@example.edu", u.RecommendationSubscribed, createdAt); err != nil {
					return err
				}
			}
			return nil
		})
}

// SeedEvents inserts events with their ids in one transaction. Titles are
// generated from the id and each event is dated as scraped two weeks
// before it starts.
func (db *DB) SeedEvents(ctx context.Context, events []recommend.Event) error {
	return db.insertRows(ctx, TableEvents,
		`INSERT INTO events (id, title, start_time, end_time, date_added) VALUES (?, ?, ?, ?, ?)`,
		func(exec func(args ...interface{}) error) error {
			for _, e := range events {
				start := e.StartTime.UTC()
				if err := exec(e.ID, fmt.Sprintf("Event %d", e.ID), start, start.Add(90*time.Minute), start.AddDate(0, 0, -14)); err != nil {
					return err
				}
			}
			return nil
		})
}

// SeedSelections inserts selections in order, so their generated ids
// follow the slice order.
func (db *DB) SeedSelections(ctx context.Context, selections []recommend.Interaction) error {
	return db.insertRows(ctx, TableSelectedEvents,
		`INSERT INTO selected_events (user_id, event_id, date_selected, selection_type, selection_source) VALUES (?, ?, ?, ?, ?)`,
		func(exec func(args ...interface{}) error) error {
			for _, s := range selections {
				source := s.SelectionSource
				if source == "" {
					source = "site"
				}
				if err := exec(s.UserID, s.EventID, s.DateSelected.UTC(), string(s.SelectionType), source); err != nil {
					return err
				}
			}
			return nil
		})
}

// DemoOptions sizes the generated demo data set.
type DemoOptions struct {
	Users  int
	Events int
	Days   int
	Seed   int64
}

// DefaultDemoOptions returns a data set large enough for the default
// pipeline thresholds to produce recommendations.
func DefaultDemoOptions() DemoOptions {
	return DemoOptions{Users: 60, Events: 120, Days: 90, Seed: 1}
}

// SeedDemo fills an empty store with a synthetic campus: users, events
// spread over opts.Days ending around now, and selections in which users
// favour a couple of topic clusters so the factorization has structure
// to find. Generation is deterministic for a given seed.
func (db *DB) SeedDemo(ctx context.Context, opts DemoOptions, now time.Time) error {
	logging.Info().
		Int("users", opts.Users).
		Int("events", opts.Events).
		Int("days", opts.Days).
		Msg("Seeding database with demo data...")

	users, events, selections := demoData(opts, now)

	if err := db.SeedUsers(ctx, users); err != nil {
		return fmt.Errorf("seed users: %w", err)
	}
	if err := db.SeedEvents(ctx, events); err != nil {
		return fmt.Errorf("seed events: %w", err)
	}
	if err := db.SeedSelections(ctx, selections); err != nil {
		return fmt.Errorf("seed selections: %w", err)
	}

	logging.Info().Int("selections", len(selections)).Msg("Demo data seeded")
	return nil
}

// demoData generates the demo rows. Events belong to one of four topics
// and start between -Days and +14 days around now; each user follows two
// topics and occasionally strays.
func demoData(opts DemoOptions, now time.Time) ([]recommend.User, []recommend.Event, []recommend.Interaction) {
	const topics = 4
	rng := rand.New(rand.NewSource(opts.Seed)) //nolint:gosec // demo data only
	now = now.UTC().Truncate(time.Hour)
	first := now.AddDate(0, 0, -opts.Days)
	span := opts.Days + 14

	events := make([]recommend.Event, opts.Events)
	byTopic := make([][]recommend.Event, topics)
	for i := range events {
		start := first.AddDate(0, 0, rng.Intn(span)).Add(time.Duration(9+rng.Intn(10)) * time.Hour)
		events[i] = recommend.Event{ID: int64(i + 1), StartTime: start}
		byTopic[i%topics] = append(byTopic[i%topics], events[i])
	}

	users := make([]recommend.User, opts.Users)
	var selections []recommend.Interaction
	sources := []string{"site", "site", "weekly_email", "popular", "recommended"}
	for i := range users {
		id := fmt.Sprintf("user%03d", i+1)
		users[i] = recommend.User{ID: id, RecommendationSubscribed: rng.Intn(10) > 0}

		favourite := []int{rng.Intn(topics), rng.Intn(topics)}
		picks := 4 + rng.Intn(12)
		for p := 0; p < picks; p++ {
			pool := byTopic[favourite[p%2]]
			if rng.Intn(5) == 0 {
				pool = events
			}
			if len(pool) == 0 {
				continue
			}
			ev := pool[rng.Intn(len(pool))]
			selected := ev.StartTime.AddDate(0, 0, -(1 + rng.Intn(10)))
			if selected.After(now) {
				continue
			}
			kind := recommend.SelectionCalendar
			if rng.Intn(4) == 0 {
				kind = recommend.SelectionLink
			}
			selections = append(selections, recommend.Interaction{
				UserID:          id,
				EventID:         ev.ID,
				SelectionType:   kind,
				SelectionSource: sources[rng.Intn(len(sources))],
				DateSelected:    selected,
			})
		}
	}
	return users, events, selections
}
