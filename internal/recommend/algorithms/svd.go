// Eventrec - Event Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventrec

package algorithms

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"

	"github.com/tomtom215/eventrec/internal/logging"
	"github.com/tomtom215/eventrec/internal/metrics"
	"github.com/tomtom215/eventrec/internal/recommend"
)

// ErrFactorizationFailed is returned when the SVD does not converge.
var ErrFactorizationFailed = errors.New("svd factorization failed")

// SVD is a truncated singular value decomposition factorizer.
//
// It reconstructs U_k * Sigma_k * V_k^T from the k largest singular triplets
// and min-max rescales the result over the whole matrix. SVD holds no state
// and is safe for concurrent use.
type SVD struct {
	logger zerolog.Logger
}

// NewSVD creates an SVD factorizer.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewSVD(logger zerolog.Logger) *SVD {
	return &SVD{logger: logger.With().Str("algorithm", "svd").Logger()}
}

// Name returns the algorithm identifier.
func (s *SVD) Name() string {
	return "svd"
}

// Factorize implements recommend.Factorizer.
func (s *SVD) Factorize(ctx context.Context, m mat.Matrix, k int) (*mat.Dense, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows, cols := m.Dims()
	rank, clamped := ClampRank(k, rows, cols)
	if rank < 1 {
		return nil, fmt.Errorf("matrix %dx%d is too small to factorize", rows, cols)
	}
	if clamped {
		metrics.RankClamped.Inc()
		logging.Attach(ctx, s.logger).Debug().
			Int("requested", k).
			Int("rank", rank).
			Msg("clamped latent rank")
	}

	approx, err := Reconstruct(m, rank)
	if err != nil {
		return nil, err
	}
	Rescale(approx)
	return approx, nil
}

// ClampRank limits the requested rank k to min(rows, cols) - 1 and reports
// whether it had to.
func ClampRank(k, rows, cols int) (rank int, clamped bool) {
	limit := min(rows, cols) - 1
	if k > limit {
		return limit, true
	}
	return k, false
}

// Reconstruct returns the best rank-k approximation of m.
func Reconstruct(m mat.Matrix, k int) (*mat.Dense, error) {
	rows, cols := m.Dims()
	if k < 1 || k > min(rows, cols) {
		return nil, fmt.Errorf("rank %d out of range for %dx%d matrix", k, rows, cols)
	}

	var svd mat.SVD
	if ok := svd.Factorize(m, mat.SVDThin); !ok {
		return nil, ErrFactorizationFailed
	}

	values := svd.Values(nil)
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	uk := u.Slice(0, rows, 0, k)
	vk := v.Slice(0, cols, 0, k)
	sigma := mat.NewDiagDense(k, values[:k])

	var us mat.Dense
	us.Mul(uk, sigma)

	approx := mat.NewDense(rows, cols, nil)
	approx.Mul(&us, vk.T())
	return approx, nil
}

// Rescale maps m in place onto [0, 1] with (x - min) / (max - min).
// A matrix whose values are all equal becomes all zeros.
func Rescale(m *mat.Dense) {
	lo, hi := mat.Min(m), mat.Max(m)
	if hi == lo {
		m.Zero()
		return
	}
	span := hi - lo
	m.Apply(func(_, _ int, v float64) float64 {
		return (v - lo) / span
	}, m)
}

var _ recommend.Factorizer = (*SVD)(nil)
