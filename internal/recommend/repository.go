// Eventrec - Event Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventrec

package recommend

import (
	"context"
	"fmt"
	"time"
)

// Repository reads interactions and events through an InteractionSource and
// applies the canonicalization and eligibility rules of the pipeline.
// It holds no state between calls, so concurrent use is safe whenever the
// source is.
type Repository struct {
	source InteractionSource
}

// NewRepository returns a Repository backed by source.
func NewRepository(source InteractionSource) *Repository {
	return &Repository{source: source}
}

// FetchAdds returns every canonical add selected on or before asOf.
func (r *Repository) FetchAdds(ctx context.Context, asOf time.Time) ([]Interaction, error) {
	selected, err := r.source.SelectedEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("read selected events: %w", err)
	}
	return FilterAsOf(Canonicalize(selected), asOf), nil
}

// FetchCanonicalAdds returns the canonical adds as of asOf of users who are
// both sufficiently active (at least minActions adds) and recently active
// (latest add within maxRecentDays of asOf).
func (r *Repository) FetchCanonicalAdds(ctx context.Context, asOf time.Time, minActions, maxRecentDays int) ([]Interaction, error) {
	adds, err := r.FetchAdds(ctx, asOf)
	if err != nil {
		return nil, err
	}
	return FilterEligible(adds, asOf, minActions, maxRecentDays), nil
}

// FetchFutureEvents returns the IDs of events starting strictly after asOf.
func (r *Repository) FetchFutureEvents(ctx context.Context, asOf time.Time) (EventSet, error) {
	events, err := r.source.Events(ctx)
	if err != nil {
		return nil, fmt.Errorf("read events: %w", err)
	}
	future := make(EventSet)
	for _, ev := range events {
		if ev.StartTime.After(asOf) {
			future.Add(ev.ID)
		}
	}
	return future, nil
}

// Canonicalize keeps calendar selections and drops repeated (user, event)
// pairs, keeping the first occurrence. Input order is preserved.
func Canonicalize(interactions []Interaction) []Interaction {
	type pair struct {
		user  string
		event int64
	}
	seen := make(map[pair]struct{}, len(interactions))
	out := make([]Interaction, 0, len(interactions))
	for _, in := range interactions {
		if in.SelectionType != SelectionCalendar {
			continue
		}
		key := pair{in.UserID, in.EventID}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, in)
	}
	return out
}

// FilterAsOf keeps interactions selected on or before asOf.
func FilterAsOf(interactions []Interaction, asOf time.Time) []Interaction {
	out := make([]Interaction, 0, len(interactions))
	for _, in := range interactions {
		if !in.DateSelected.After(asOf) {
			out = append(out, in)
		}
	}
	return out
}

// FilterEligible keeps the adds of users with at least minActions adds whose
// most recent add is no earlier than maxRecentDays days before asOf.
func FilterEligible(adds []Interaction, asOf time.Time, minActions, maxRecentDays int) []Interaction {
	type activity struct {
		count  int
		latest time.Time
	}
	users := make(map[string]*activity)
	for _, a := range adds {
		act, ok := users[a.UserID]
		if !ok {
			act = &activity{}
			users[a.UserID] = act
		}
		act.count++
		if a.DateSelected.After(act.latest) {
			act.latest = a.DateSelected
		}
	}

	cutoff := asOf.AddDate(0, 0, -maxRecentDays)
	eligible := make(map[string]bool, len(users))
	for id, act := range users {
		eligible[id] = act.count >= minActions && !act.latest.Before(cutoff)
	}

	out := make([]Interaction, 0, len(adds))
	for _, a := range adds {
		if eligible[a.UserID] {
			out = append(out, a)
		}
	}
	return out
}

// GroupByUser collects each user's added events.
func GroupByUser(adds []Interaction) map[string]EventSet {
	out := make(map[string]EventSet)
	for _, a := range adds {
		set, ok := out[a.UserID]
		if !ok {
			set = make(EventSet)
			out[a.UserID] = set
		}
		set.Add(a.EventID)
	}
	return out
}
