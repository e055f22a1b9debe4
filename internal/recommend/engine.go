// Eventrec - Event Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventrec

package recommend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/eventrec/internal/logging"
	"github.com/tomtom215/eventrec/internal/metrics"
)

// Run modes used as metric labels.
const (
	ModeProduction = "production"
	ModeSimulation = "simulation"
)

// Engine runs the recommendation pipeline: repository, matrix builder,
// factorizer and selector. It keeps no per-run state, so one Engine may
// serve concurrent Generate calls.
type Engine struct {
	config     *Config
	repo       *Repository
	factorizer Factorizer
	logger     zerolog.Logger
	mode       string
}

// Option configures an Engine.
type Option func(*Engine)

// WithMode sets the mode label recorded in metrics. Defaults to ModeProduction.
func WithMode(mode string) Option {
	return func(e *Engine) { e.mode = mode }
}

// NewEngine creates a new recommendation engine.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, repo *Repository, factorizer Factorizer, logger zerolog.Logger, opts ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if repo == nil {
		return nil, errors.New("repository is required")
	}
	if factorizer == nil {
		return nil, errors.New("factorizer is required")
	}

	e := &Engine{
		config:     cfg,
		repo:       repo,
		factorizer: factorizer,
		logger:     logger.With().Str("component", "recommend").Logger(),
		mode:       ModeProduction,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Config returns the engine's pipeline parameters.
func (e *Engine) Config() Config {
	return *e.config
}

// FactorizerName returns the name of the factorization algorithm.
func (e *Engine) FactorizerName() string {
	return e.factorizer.Name()
}

// Repository returns the repository the engine reads from.
func (e *Engine) Repository() *Repository {
	return e.repo
}

// Generate computes recommendations as of asOf without persisting them.
// Insufficient data is not an error: every eligible user gets an empty set.
func (e *Engine) Generate(ctx context.Context, asOf time.Time) (Recommendations, error) {
	recs, empty, err := e.generate(ctx, asOf)
	metrics.RecordPipelineRun(e.mode, recs.Total(), empty, err)
	return recs, err
}

func (e *Engine) generate(ctx context.Context, asOf time.Time) (Recommendations, bool, error) {
	log := logging.Attach(ctx, e.logger)

	start := time.Now()
	adds, err := e.repo.FetchCanonicalAdds(ctx, asOf, e.config.MinUserActions, e.config.MaxRecentActionDays)
	if err != nil {
		return nil, false, fmt.Errorf("fetch canonical adds: %w", err)
	}
	metrics.RecordStage("fetch", time.Since(start))

	start = time.Now()
	matrix, err := BuildMatrix(adds)
	if errors.Is(err, ErrInsufficientData) {
		recs := emptyRecommendations(adds)
		log.Info().
			Int("eligible_users", len(recs)).
			Int("adds", len(adds)).
			Msg("insufficient data, skipping factorization")
		return recs, true, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("build matrix: %w", err)
	}
	metrics.RecordStage("matrix", time.Since(start))
	users, events := matrix.Dims()
	metrics.RecordMatrixShape(users, events)
	log.Debug().Int("users", users).Int("events", events).Msg("built interaction matrix")

	future, err := e.repo.FetchFutureEvents(ctx, asOf)
	if err != nil {
		return nil, false, fmt.Errorf("fetch future events: %w", err)
	}

	start = time.Now()
	scores, err := e.factorizer.Factorize(ctx, matrix.Cells, e.config.VectorSize)
	if err != nil {
		return nil, false, fmt.Errorf("factorize with %s: %w", e.factorizer.Name(), err)
	}
	metrics.RecordStage("factorize", time.Since(start))

	start = time.Now()
	recs, err := Select(scores, matrix, future, e.config.Threshold)
	if err != nil {
		return nil, false, fmt.Errorf("select: %w", err)
	}
	metrics.RecordStage("select", time.Since(start))

	log.Info().
		Int("users", users).
		Int("events", events).
		Int("future_events", len(future)).
		Int("users_with_recs", recs.UsersWithRecommendations()).
		Int("total_recs", recs.Total()).
		Msg("generated recommendations")

	return recs, false, nil
}

// Run generates recommendations as of asOf and persists them through sink
// tagged with modelVersion and now. Nothing is written when generation fails.
func (e *Engine) Run(ctx context.Context, asOf time.Time, sink Sink, modelVersion string, now time.Time) (PersistResult, error) {
	recs, err := e.Generate(ctx, asOf)
	if err != nil {
		return PersistResult{}, err
	}

	start := time.Now()
	result, err := sink.PersistRecommendations(ctx, recs, modelVersion, now)
	if err != nil {
		return PersistResult{}, fmt.Errorf("persist recommendations: %w", err)
	}
	metrics.RecordStage("persist", time.Since(start))
	metrics.RecordPersist(modelVersion, result.TotalRecs, now)

	logging.Attach(ctx, e.logger).Info().
		Str("model_version", modelVersion).
		Int("users_considered", result.UsersConsidered).
		Int("users_with_recs", result.UsersWithRecs).
		Int("total_recs", result.TotalRecs).
		Msg("persisted recommendations")

	return result, nil
}

// emptyRecommendations gives every user in adds an empty set.
func emptyRecommendations(adds []Interaction) Recommendations {
	recs := make(Recommendations)
	for _, a := range adds {
		if _, ok := recs[a.UserID]; !ok {
			recs[a.UserID] = make(EventSet)
		}
	}
	return recs
}
