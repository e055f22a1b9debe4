// Eventrec - Event Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventrec

package recommend

import (
	"math/rand"
	"reflect"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestSelect(t *testing.T) {
	m := &InteractionMatrix{
		Users:  []string{"a", "b", "c"},
		Events: []int64{1, 2, 3, 4},
		Cells: mat.NewDense(3, 4, []float64{
			1, 1, 0, 0,
			0, 1, 1, 0,
			0, 0, 0, 0,
		}),
	}
	scores := mat.NewDense(3, 4, []float64{
		0.9, 0.8, 0.7, 0.5,
		0.6, 0.9, 0.4, 0.51,
		0.0, 0.2, 0.3, 0.1,
	})
	future := NewEventSet(2, 3, 4, 99) // 99 has no column

	recs, err := Select(scores, m, future, 0.5)
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}

	want := map[string][]int64{
		"a": {3}, // 1 is past, 2 already added, 4 is not strictly above
		"b": {4}, // 2 and 3 already added
		"c": {},  // nothing above threshold
	}
	if len(recs) != 3 {
		t.Fatalf("Select() returned %d users, want an entry for all 3", len(recs))
	}
	for user, events := range want {
		set, ok := recs[user]
		if !ok {
			t.Errorf("missing entry for %s", user)
			continue
		}
		if got := set.Sorted(); !reflect.DeepEqual(got, events) {
			t.Errorf("recs[%s] = %v, want %v", user, got, events)
		}
	}
}

func TestSelect_ShapeMismatch(t *testing.T) {
	m := &InteractionMatrix{
		Users:  []string{"a", "b"},
		Events: []int64{1, 2},
		Cells:  mat.NewDense(2, 2, nil),
	}
	if _, err := Select(mat.NewDense(2, 3, nil), m, NewEventSet(1), 0.5); err == nil {
		t.Error("Select() expected error for mismatched shapes")
	}
}

func TestSelect_NeverRecommendsAddedOrPastEvents(t *testing.T) {
	rng := rand.New(rand.NewSource(42)) //nolint:gosec // deterministic test data

	for trial := 0; trial < 50; trial++ {
		users, events := 2+rng.Intn(6), 2+rng.Intn(10)
		m := &InteractionMatrix{
			Users:  make([]string, users),
			Events: make([]int64, events),
			Cells:  mat.NewDense(users, events, nil),
		}
		scores := mat.NewDense(users, events, nil)
		for i := 0; i < users; i++ {
			m.Users[i] = string(rune('a' + i))
			for j := 0; j < events; j++ {
				if rng.Float64() < 0.3 {
					m.Cells.Set(i, j, 1)
				}
				scores.Set(i, j, rng.Float64())
			}
		}
		future := make(EventSet)
		for j := 0; j < events; j++ {
			m.Events[j] = int64(100 + j)
			if rng.Float64() < 0.5 {
				future.Add(m.Events[j])
			}
		}

		for _, threshold := range []float64{0, 0.25, 0.5, 0.75, 1} {
			recs, err := Select(scores, m, future, threshold)
			if err != nil {
				t.Fatalf("Select() error = %v", err)
			}
			for i, user := range m.Users {
				for id := range recs[user] {
					j := int(id - 100)
					if m.Added(i, j) {
						t.Fatalf("trial %d: recommended already-added event %d to %s", trial, id, user)
					}
					if !future.Has(id) {
						t.Fatalf("trial %d: recommended past event %d to %s", trial, id, user)
					}
					if scores.At(i, j) <= threshold {
						t.Fatalf("trial %d: recommended event %d with score %v <= %v", trial, id, scores.At(i, j), threshold)
					}
				}
			}
		}
	}
}
