// Eventrec - Event Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventrec

package recommend

import (
	"errors"
	"slices"

	"gonum.org/v1/gonum/mat"
)

// ErrInsufficientData is returned by BuildMatrix when fewer than two users
// or fewer than two events remain. The engine turns it into an empty
// recommendation set; it never reaches callers of Generate.
var ErrInsufficientData = errors.New("insufficient data: need at least 2 users and 2 events")

// InteractionMatrix is the 0/1 user x event matrix of canonical adds.
// Users and Events label the rows and columns, both sorted ascending.
type InteractionMatrix struct {
	Users  []string
	Events []int64
	Cells  *mat.Dense
}

// BuildMatrix pivots adds into an InteractionMatrix. Pairs without an add
// are 0. Repeated pairs are harmless.
func BuildMatrix(adds []Interaction) (*InteractionMatrix, error) {
	userSet := make(map[string]struct{})
	eventSet := make(EventSet)
	for _, a := range adds {
		userSet[a.UserID] = struct{}{}
		eventSet.Add(a.EventID)
	}
	if len(userSet) < 2 || len(eventSet) < 2 {
		return nil, ErrInsufficientData
	}

	users := make([]string, 0, len(userSet))
	for u := range userSet {
		users = append(users, u)
	}
	slices.Sort(users)
	events := eventSet.Sorted()

	row := make(map[string]int, len(users))
	for i, u := range users {
		row[u] = i
	}
	col := make(map[int64]int, len(events))
	for j, e := range events {
		col[e] = j
	}

	cells := mat.NewDense(len(users), len(events), nil)
	for _, a := range adds {
		cells.Set(row[a.UserID], col[a.EventID], 1)
	}

	return &InteractionMatrix{Users: users, Events: events, Cells: cells}, nil
}

// Dims returns the number of users and events.
func (m *InteractionMatrix) Dims() (users, events int) {
	return len(m.Users), len(m.Events)
}

// Added reports whether user row i added event column j.
func (m *InteractionMatrix) Added(i, j int) bool {
	return m.Cells.At(i, j) != 0
}
