// Eventrec - Event Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventrec

package recommend

import (
	"context"
	"slices"
	"time"
)

// SelectionType classifies how a user selected an event.
type SelectionType string

const (
	// SelectionCalendar is an "added to calendar" action, the only
	// selection that counts as a canonical add.
	SelectionCalendar SelectionType = "calendar"

	// SelectionLink is a click-through to the event's page.
	SelectionLink SelectionType = "link"
)

// Interaction is one row of the selected_events table.
type Interaction struct {
	// UserID is the web application's user identifier.
	UserID string `json:"user_id"`

	// EventID identifies the selected event.
	EventID int64 `json:"event_id"`

	// SelectionType is calendar or link.
	SelectionType SelectionType `json:"selection_type"`

	// SelectionSource records where the selection happened
	// (search, email, recommendation, ...). Optional.
	SelectionSource string `json:"selection_source,omitempty"`

	// DateSelected is when the selection happened.
	DateSelected time.Time `json:"date_selected"`
}

// Event is a catalog entry. Only the start time matters to the pipeline.
type Event struct {
	ID        int64     `json:"id"`
	StartTime time.Time `json:"start_time"`
}

// User is a row of the users table.
type User struct {
	ID                       string `json:"id"`
	RecommendationSubscribed bool   `json:"recommendation_subscribed"`
}

// Recommendation is a persisted (user, event) recommendation.
type Recommendation struct {
	UserID       string    `json:"user_id"`
	EventID      int64     `json:"event_id"`
	ModelVersion string    `json:"model_version"`
	DateAdded    time.Time `json:"date_added"`
}

// ABAssignment places a user in the treatment (TestFlag true) or control
// group of a model version's experiment.
type ABAssignment struct {
	UserID       string    `json:"user_id"`
	TestFlag     bool      `json:"test_flag"`
	ModelVersion string    `json:"model_version"`
	DateAdded    time.Time `json:"date_added"`
}

// EventSet is a set of event IDs.
type EventSet map[int64]struct{}

// NewEventSet returns a set holding ids.
func NewEventSet(ids ...int64) EventSet {
	s := make(EventSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Add inserts id.
func (s EventSet) Add(id int64) { s[id] = struct{}{} }

// Has reports whether id is in the set.
func (s EventSet) Has(id int64) bool {
	_, ok := s[id]
	return ok
}

// Union adds every member of other to s.
func (s EventSet) Union(other EventSet) {
	for id := range other {
		s[id] = struct{}{}
	}
}

// Intersect returns the members present in both sets.
func (s EventSet) Intersect(other EventSet) EventSet {
	small, large := s, other
	if len(large) < len(small) {
		small, large = large, small
	}
	out := make(EventSet)
	for id := range small {
		if large.Has(id) {
			out[id] = struct{}{}
		}
	}
	return out
}

// Difference returns the members of s that are not in other.
func (s EventSet) Difference(other EventSet) EventSet {
	out := make(EventSet)
	for id := range s {
		if !other.Has(id) {
			out[id] = struct{}{}
		}
	}
	return out
}

// Sorted returns the members in ascending order.
func (s EventSet) Sorted() []int64 {
	ids := make([]int64, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Recommendations maps a user ID to the events recommended to that user.
// Every eligible user has an entry, possibly an empty set.
type Recommendations map[string]EventSet

// Total returns the number of (user, event) pairs.
func (r Recommendations) Total() int {
	n := 0
	for _, events := range r {
		n += len(events)
	}
	return n
}

// UsersWithRecommendations returns how many users have a non-empty set.
func (r Recommendations) UsersWithRecommendations() int {
	n := 0
	for _, events := range r {
		if len(events) > 0 {
			n++
		}
	}
	return n
}

// Users returns the user IDs in ascending order.
func (r Recommendations) Users() []string {
	users := make([]string, 0, len(r))
	for u := range r {
		users = append(users, u)
	}
	slices.Sort(users)
	return users
}

// InteractionSource provides the raw tables the pipeline reads.
// It is implemented by the database layer.
type InteractionSource interface {
	// SelectedEvents returns every selection, deduplicated on all columns
	// except the row id.
	SelectedEvents(ctx context.Context) ([]Interaction, error)

	// Events returns the event catalog.
	Events(ctx context.Context) ([]Event, error)
}

// Sink persists recommendation runs. Each call is atomic: either every row
// is committed or none is.
type Sink interface {
	PersistRecommendations(ctx context.Context, recs Recommendations, modelVersion string, at time.Time) (PersistResult, error)
}

// PersistResult summarizes a persisted run.
type PersistResult struct {
	UsersConsidered int `json:"users_considered"`
	UsersWithRecs   int `json:"users_with_recs"`
	TotalRecs       int `json:"total_recs"`
}
