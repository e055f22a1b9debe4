// Eventrec - Event Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventrec

package recommend

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Factorizer turns an interaction matrix into a score matrix of the same
// shape with every value in [0, 1].
type Factorizer interface {
	// Name identifies the algorithm in logs.
	Name() string

	// Factorize returns the rescaled low-rank approximation of m using at
	// most k latent components.
	Factorize(ctx context.Context, m mat.Matrix, k int) (*mat.Dense, error)
}

// Select picks, for every user row of m, the future events whose score is
// strictly above threshold and which the user has not added yet.
// Future events without a matrix column have no score and are never picked.
// The result has an entry for every user in m, possibly empty.
func Select(scores mat.Matrix, m *InteractionMatrix, future EventSet, threshold float64) (Recommendations, error) {
	users, events := m.Dims()
	if r, c := scores.Dims(); r != users || c != events {
		return nil, fmt.Errorf("score matrix is %dx%d, interaction matrix is %dx%d", r, c, users, events)
	}

	relevant := make([]int, 0, events)
	for j, id := range m.Events {
		if future.Has(id) {
			relevant = append(relevant, j)
		}
	}

	recs := make(Recommendations, users)
	for i, user := range m.Users {
		set := make(EventSet)
		for _, j := range relevant {
			if m.Added(i, j) {
				continue
			}
			if scores.At(i, j) > threshold {
				set.Add(m.Events[j])
			}
		}
		recs[user] = set
	}
	return recs, nil
}
