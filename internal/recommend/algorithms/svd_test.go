// Eventrec - Event Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventrec

package algorithms

import (
	"bytes"
	"context"
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"

	"github.com/tomtom215/eventrec/internal/logging"
	"github.com/tomtom215/eventrec/internal/metrics"
)

func TestClampRank(t *testing.T) {
	tests := []struct {
		name        string
		k           int
		rows, cols  int
		wantRank    int
		wantClamped bool
	}{
		{"within limit", 2, 5, 4, 2, false},
		{"at limit", 3, 5, 4, 3, false},
		{"above limit", 10, 5, 4, 3, true},
		{"tall matrix", 10, 3, 40, 2, true},
		{"smallest matrix", 1, 2, 2, 1, false},
		{"smallest matrix clamped", 5, 2, 2, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rank, clamped := ClampRank(tt.k, tt.rows, tt.cols)
			if rank != tt.wantRank || clamped != tt.wantClamped {
				t.Errorf("ClampRank(%d, %d, %d) = (%d, %v), want (%d, %v)",
					tt.k, tt.rows, tt.cols, rank, clamped, tt.wantRank, tt.wantClamped)
			}
		})
	}
}

func TestReconstruct_FullRankReproducesInput(t *testing.T) {
	m := mat.NewDense(3, 4, []float64{
		1, 0, 1, 0,
		0, 1, 1, 0,
		1, 1, 0, 1,
	})

	approx, err := Reconstruct(m, 3)
	if err != nil {
		t.Fatalf("Reconstruct() error = %v", err)
	}
	if !mat.EqualApprox(m, approx, 1e-9) {
		t.Errorf("full-rank reconstruction differs from input:\n%v", mat.Formatted(approx))
	}
}

func TestReconstruct_RankOneOfRankOneMatrix(t *testing.T) {
	// Every row equal: the matrix has rank one.
	m := mat.NewDense(3, 3, []float64{
		1, 0, 1,
		1, 0, 1,
		1, 0, 1,
	})

	approx, err := Reconstruct(m, 1)
	if err != nil {
		t.Fatalf("Reconstruct() error = %v", err)
	}
	if !mat.EqualApprox(m, approx, 1e-9) {
		t.Errorf("rank-1 reconstruction differs from input:\n%v", mat.Formatted(approx))
	}
}

func TestReconstruct_RejectsInvalidRank(t *testing.T) {
	m := mat.NewDense(2, 3, []float64{1, 0, 1, 0, 1, 0})
	for _, k := range []int{0, 3} {
		if _, err := Reconstruct(m, k); err == nil {
			t.Errorf("Reconstruct(k=%d) expected error", k)
		}
	}
}

func TestRescale(t *testing.T) {
	t.Run("maps onto unit interval", func(t *testing.T) {
		m := mat.NewDense(2, 2, []float64{-2, 0, 2, 6})
		Rescale(m)

		want := mat.NewDense(2, 2, []float64{0, 0.25, 0.5, 1})
		if !mat.EqualApprox(m, want, 1e-12) {
			t.Errorf("Rescale() =\n%v\nwant\n%v", mat.Formatted(m), mat.Formatted(want))
		}
	})

	t.Run("constant matrix becomes zeros", func(t *testing.T) {
		m := mat.NewDense(2, 3, []float64{0.4, 0.4, 0.4, 0.4, 0.4, 0.4})
		Rescale(m)

		if got := mat.Max(m); got != 0 {
			t.Errorf("max after degenerate rescale = %v, want 0", got)
		}
		if got := mat.Min(m); got != 0 {
			t.Errorf("min after degenerate rescale = %v, want 0", got)
		}
	})
}

func TestSVDFactorize_ScoresWithinUnitInterval(t *testing.T) {
	rng := rand.New(rand.NewSource(7)) //nolint:gosec // deterministic test data
	svd := NewSVD(zerolog.Nop())

	for trial := 0; trial < 25; trial++ {
		rows := 2 + rng.Intn(8)
		cols := 2 + rng.Intn(8)
		m := mat.NewDense(rows, cols, nil)
		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				if rng.Float64() < 0.4 {
					m.Set(i, j, 1)
				}
			}
		}
		// Guarantee a non-degenerate input
		m.Set(0, 0, 1)
		m.Set(rows-1, cols-1, 0)

		scores, err := svd.Factorize(context.Background(), m, 1+rng.Intn(12))
		if err != nil {
			t.Fatalf("trial %d: Factorize() error = %v", trial, err)
		}
		if r, c := scores.Dims(); r != rows || c != cols {
			t.Fatalf("trial %d: scores are %dx%d, want %dx%d", trial, r, c, rows, cols)
		}
		lo, hi := mat.Min(scores), mat.Max(scores)
		if lo < 0 || hi > 1 || math.IsNaN(lo) || math.IsNaN(hi) {
			t.Errorf("trial %d: scores span [%v, %v], want within [0, 1]", trial, lo, hi)
		}
	}
}

func TestSVDFactorize_ClampsRank(t *testing.T) {
	svd := NewSVD(zerolog.Nop())
	m := mat.NewDense(3, 4, []float64{
		1, 1, 0, 0,
		0, 1, 1, 0,
		0, 0, 1, 1,
	})

	before := testutil.ToFloat64(metrics.RankClamped)
	if _, err := svd.Factorize(context.Background(), m, 50); err != nil {
		t.Fatalf("Factorize() error = %v", err)
	}
	if got := testutil.ToFloat64(metrics.RankClamped) - before; got != 1 {
		t.Errorf("RankClamped advanced by %v, want 1", got)
	}
}

func TestSVDFactorize_LogsClampWithRunID(t *testing.T) {
	prev := zerolog.GlobalLevel()
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	t.Cleanup(func() { zerolog.SetGlobalLevel(prev) })

	var buf bytes.Buffer
	ctx := logging.ContextWithRunID(context.Background(), "clamp001")
	m := mat.NewDense(2, 3, []float64{1, 0, 1, 0, 1, 1})

	if _, err := NewSVD(logging.NewTestLogger(&buf)).Factorize(ctx, m, 10); err != nil {
		t.Fatalf("Factorize() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{`"run_id":"clamp001"`, `"requested":10`, `"rank":1`} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %s in log output, got: %s", want, out)
		}
	}
}

func TestSVDFactorize_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := mat.NewDense(2, 2, []float64{1, 0, 0, 1})
	if _, err := NewSVD(zerolog.Nop()).Factorize(ctx, m, 1); err == nil {
		t.Error("Factorize() expected error for canceled context")
	}
}
