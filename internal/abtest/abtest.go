// Eventrec - Event Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventrec

// Package abtest partitions users into the treatment and control groups of
// a model version's experiment.
package abtest

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/eventrec/internal/logging"
	"github.com/tomtom215/eventrec/internal/recommend"
)

// ErrAlreadyAssigned is returned when a model version already has an
// experiment. Assignments are written once.
var ErrAlreadyAssigned = errors.New("model version already has ab assignments")

// Assign samples floor(n/2) users without replacement into the treatment
// group and places the rest in control. Duplicate IDs are assigned once.
// The result is ordered by user ID.
func Assign(userIDs []string, modelVersion string, ts time.Time, rng *rand.Rand) []recommend.ABAssignment {
	seen := make(map[string]struct{}, len(userIDs))
	users := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		users = append(users, id)
	}
	sort.Strings(users)

	shuffled := append([]string(nil), users...)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	treatment := make(map[string]struct{}, len(shuffled)/2)
	for _, id := range shuffled[:len(shuffled)/2] {
		treatment[id] = struct{}{}
	}

	out := make([]recommend.ABAssignment, 0, len(users))
	for _, id := range users {
		_, test := treatment[id]
		out = append(out, recommend.ABAssignment{
			UserID:       id,
			TestFlag:     test,
			ModelVersion: modelVersion,
			DateAdded:    ts.UTC(),
		})
	}
	return out
}

// Store is what Setup reads users from and writes assignments to.
type Store interface {
	Users(ctx context.Context) ([]recommend.User, error)
	ABTests(ctx context.Context, modelVersion string) ([]recommend.ABAssignment, error)
	PersistABAssignments(ctx context.Context, assignments []recommend.ABAssignment) error
}

// Summary describes a persisted partition.
type Summary struct {
	ModelVersion string
	Treatment    int
	Control      int
}

// Setup partitions every user and persists the result in one transaction.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func Setup(ctx context.Context, store Store, modelVersion string, ts time.Time, rng *rand.Rand, logger zerolog.Logger) (Summary, error) {
	if modelVersion == "" {
		return Summary{}, errors.New("model version is required")
	}

	existing, err := store.ABTests(ctx, modelVersion)
	if err != nil {
		return Summary{}, fmt.Errorf("read ab tests: %w", err)
	}
	if len(existing) > 0 {
		return Summary{}, fmt.Errorf("%w: %s", ErrAlreadyAssigned, modelVersion)
	}

	users, err := store.Users(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("read users: %w", err)
	}
	ids := make([]string, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}

	assignments := Assign(ids, modelVersion, ts, rng)
	if err := store.PersistABAssignments(ctx, assignments); err != nil {
		return Summary{}, fmt.Errorf("persist ab assignments: %w", err)
	}

	summary := Summary{ModelVersion: modelVersion}
	for _, a := range assignments {
		if a.TestFlag {
			summary.Treatment++
		} else {
			summary.Control++
		}
	}

	logging.Attach(ctx, logger).Info().
		Str("model_version", modelVersion).
		Int("treatment", summary.Treatment).
		Int("control", summary.Control).
		Msg("AB assignments persisted")

	return summary, nil
}
