// Eventrec - Event Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventrec

// Package algorithms implements the factorizers used by the recommendation
// engine.
//
// Each factorizer implements recommend.Factorizer: it receives the 0/1
// user x event interaction matrix and returns a score matrix of the same
// shape with values in [0, 1].
//
// # SVD
//
// SVD keeps the top-k singular triplets of the interaction matrix, rebuilds
// the approximation U_k * Sigma_k * V_k^T and rescales it by its global
// minimum and maximum. The requested rank is clamped to min(users, events) - 1
// before the decomposition is attempted. A reconstruction whose values are
// all equal rescales to all zeros, so it never produces a recommendation.
//
// Linear algebra is provided by gonum.org/v1/gonum/mat.
package algorithms
