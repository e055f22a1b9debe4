// Eventrec - Event Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventrec

package evaluate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/eventrec/internal/logging"
	"github.com/tomtom215/eventrec/internal/metrics"
	"github.com/tomtom215/eventrec/internal/recommend"
	"github.com/tomtom215/eventrec/internal/recommend/storage"
	"github.com/tomtom215/eventrec/internal/validation"
)

// Source provides the tables the evaluator reads.
type Source interface {
	SelectedEvents(ctx context.Context) ([]recommend.Interaction, error)
	Events(ctx context.Context) ([]recommend.Event, error)
	Users(ctx context.Context) ([]recommend.User, error)
	ABTests(ctx context.Context, modelVersion string) ([]recommend.ABAssignment, error)
	Recommendations(ctx context.Context, modelVersion string) ([]recommend.Recommendation, error)
}

// Options describes one evaluation.
type Options struct {
	MinDate            time.Time
	MaxDate            time.Time
	RecommendationDate time.Time
	ModelVersion       string
}

// Validate checks the options for errors.
func (o Options) Validate() error {
	if o.MinDate.IsZero() || o.MaxDate.IsZero() || o.RecommendationDate.IsZero() {
		return errors.New("min, max and recommendation dates are required")
	}
	if o.MaxDate.Before(o.MinDate) {
		return fmt.Errorf("max date %s is before min date %s",
			o.MaxDate.Format(DateLayout), o.MinDate.Format(DateLayout))
	}
	if o.ModelVersion == "" {
		return errors.New("model version is required")
	}
	if !validation.IsModelVersion(o.ModelVersion) {
		return fmt.Errorf("model version %q may only contain letters, digits, '.', '_' and '-'", o.ModelVersion)
	}
	return nil
}

// Evaluator measures a deployed model against its A/B control group.
type Evaluator struct {
	source Source
	store  *storage.ReportStore
	logger zerolog.Logger
}

// New creates an evaluator reading from source and writing to store.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(source Source, store *storage.ReportStore, logger zerolog.Logger) *Evaluator {
	return &Evaluator{
		source: source,
		store:  store,
		logger: logger.With().Str("component", "evaluate").Logger(),
	}
}

// Evaluate builds the report without writing it.
func (e *Evaluator) Evaluate(ctx context.Context, opts Options) (*Report, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid evaluation options: %w", err)
	}

	selected, err := e.source.SelectedEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("read selected events: %w", err)
	}
	events, err := e.source.Events(ctx)
	if err != nil {
		return nil, fmt.Errorf("read events: %w", err)
	}
	users, err := e.source.Users(ctx)
	if err != nil {
		return nil, fmt.Errorf("read users: %w", err)
	}
	assignments, err := e.source.ABTests(ctx, opts.ModelVersion)
	if err != nil {
		return nil, fmt.Errorf("read ab tests: %w", err)
	}
	recs, err := e.source.Recommendations(ctx, opts.ModelVersion)
	if err != nil {
		return nil, fmt.Errorf("read recommendations: %w", err)
	}

	adds := JoinAdds(selected, events, opts.MinDate)
	participants := JoinParticipants(assignments, users)
	weekly := WeeklyUserAdds(opts.MinDate, opts.MaxDate, adds)

	report := &Report{
		ModelVersion:             opts.ModelVersion,
		MinDate:                  opts.MinDate.Format(DateLayout),
		MaxDate:                  opts.MaxDate.Format(DateLayout),
		RecommendationDate:       opts.RecommendationDate.Format(DateLayout),
		Metrics:                  AggregateMetrics(weekly, participants, opts.RecommendationDate),
		SelectionSources:         SelectionSources(adds, opts.RecommendationDate),
		RecsSubscribedProportion: SubscribedProportion(participants),
		RecsSelectedProportion:   SelectedProportion(recs, adds),
	}

	logging.Attach(ctx, e.logger).Info().
		Str("model_version", opts.ModelVersion).
		Int("adds", len(adds)).
		Int("participants", len(participants)).
		Int("recommendations", len(recs)).
		Float64("recs_selected_pct", report.RecsSelectedProportion).
		Msg("Evaluated production model")

	return report, nil
}

// Run evaluates and writes {model_version}-{YYYYMMDD}.json to the store.
// An existing report fails the run before any table is read.
func (e *Evaluator) Run(ctx context.Context, opts Options) (*Report, string, error) {
	if err := opts.Validate(); err != nil {
		return nil, "", fmt.Errorf("invalid evaluation options: %w", err)
	}
	name := Filename(opts.ModelVersion, opts.MaxDate)
	if err := e.store.Available(name); err != nil {
		return nil, "", fmt.Errorf("save evaluation report: %w", err)
	}

	report, err := e.Evaluate(ctx, opts)
	if err != nil {
		return nil, "", err
	}

	path, err := e.store.Save(name, report)
	if err != nil {
		return nil, "", fmt.Errorf("save evaluation report: %w", err)
	}
	metrics.RecordReport("evaluation")

	logging.Attach(ctx, e.logger).Info().Str("path", path).Msg("Evaluation report saved")
	return report, path, nil
}

// Filename returns the report name for a model evaluated up to maxDate.
func Filename(modelVersion string, maxDate time.Time) string {
	return fmt.Sprintf("%s-%s.json", modelVersion, maxDate.Format("20060102"))
}
