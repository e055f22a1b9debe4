// Eventrec - Event Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventrec

// Package recommend implements the batch event recommendation pipeline.
//
// # Architecture
//
// A run is a chain of pure stages over a snapshot of the interaction log:
//
//   - Repository: reads adds, canonicalizes them to one row per (user, event),
//     filters them as of a date and keeps only eligible users
//   - BuildMatrix: indexes users and events in ascending order and builds the
//     0/1 interaction matrix
//   - Factorizer: turns the matrix into a [0, 1] score matrix
//     (see package algorithms)
//   - Select: recommends events that are unadded, strictly above the
//     threshold and start after the as-of date
//   - Sink: persists the result tagged with a model version
//
// Data sets too small to factorize yield empty recommendations for every
// canonical user rather than an error.
//
// # Usage
//
//	repo := recommend.NewRepository(db)
//	engine, err := recommend.NewEngine(cfg, repo, algorithms.NewSVD(logger), logger)
//	if err != nil {
//	    return err
//	}
//
//	// Production: generate and persist in one transaction.
//	result, err := engine.Run(ctx, asOf, db, "svd-1", time.Now())
//
//	// Simulation: generate only.
//	recs, err := engine.Generate(ctx, checkpoint)
//
// # Thread Safety
//
// Engine holds no mutable state after construction, so the simulation
// workers share one engine across checkpoints.
package recommend
