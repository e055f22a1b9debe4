// Eventrec - Event Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventrec

package simulate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/eventrec/internal/logging"
	"github.com/tomtom215/eventrec/internal/metrics"
	"github.com/tomtom215/eventrec/internal/recommend"
	"github.com/tomtom215/eventrec/internal/recommend/storage"
	"github.com/tomtom215/eventrec/internal/validation"
)

// DateLayout is the calendar date format used in logs and errors.
const DateLayout = "2006-01-02"

// Options describes one simulation run.
type Options struct {
	StartDate          time.Time
	EndDate            time.Time
	ModelVersion       string
	IncludeUserResults bool

	// Processes is the number of checkpoint workers.
	Processes int
}

// Validate checks the options for errors.
func (o Options) Validate() error {
	if o.StartDate.IsZero() || o.EndDate.IsZero() {
		return errors.New("start and end dates are required")
	}
	if o.EndDate.Before(o.StartDate) {
		return fmt.Errorf("end date %s is before start date %s",
			o.EndDate.Format(DateLayout), o.StartDate.Format(DateLayout))
	}
	if o.ModelVersion == "" {
		return errors.New("model version is required")
	}
	if !validation.IsModelVersion(o.ModelVersion) {
		return fmt.Errorf("model version %q may only contain letters, digits, '.', '_' and '-'", o.ModelVersion)
	}
	if o.Processes < 1 {
		return fmt.Errorf("processes must be at least 1, got %d", o.Processes)
	}
	return nil
}

// Result is a completed simulation.
type Result struct {
	Report      *Report
	Path        string
	Checkpoints []time.Time
}

// Simulator replays the pipeline at weekly checkpoints and scores the
// union of its recommendations against what users actually added.
type Simulator struct {
	engine *recommend.Engine
	store  *storage.ReportStore
	logger zerolog.Logger
	now    func() time.Time
}

// New creates a simulator writing reports to store. The engine should be
// created with recommend.WithMode(recommend.ModeSimulation).
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(engine *recommend.Engine, store *storage.ReportStore, logger zerolog.Logger) *Simulator {
	return &Simulator{
		engine: engine,
		store:  store,
		logger: logger.With().Str("component", "simulate").Logger(),
		now:    time.Now,
	}
}

// SetClock replaces the clock that stamps the report.
func (s *Simulator) SetClock(now func() time.Time) {
	s.now = now
}

// Run replays every checkpoint, aggregates and scores the results, and
// writes the report. Any checkpoint failure aborts the run and no report
// is written. The report is stamped when the run starts, and a name that
// is already taken fails the run before any checkpoint is replayed.
func (s *Simulator) Run(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid simulation options: %w", err)
	}
	stamp := s.now()
	name := ReportName(opts.ModelVersion, stamp)
	if err := s.store.Available(name); err != nil {
		return nil, fmt.Errorf("save simulation report: %w", err)
	}
	if logging.RunIDFromContext(ctx) == "" {
		ctx = logging.ContextWithNewRunID(ctx)
	}
	log := logging.Attach(ctx, s.logger)

	start := time.Now()
	checkpoints := WeeklyCheckpoints(opts.StartDate, opts.EndDate)
	log.Info().
		Str("start_date", opts.StartDate.Format(DateLayout)).
		Str("end_date", opts.EndDate.Format(DateLayout)).
		Int("checkpoints", len(checkpoints)).
		Int("processes", opts.Processes).
		Str("model_version", opts.ModelVersion).
		Msg("Starting simulation")

	perCheckpoint, err := s.replay(ctx, checkpoints, opts.Processes)
	if err != nil {
		log.Error().Err(err).Msg("Simulation aborted")
		return nil, err
	}

	recommended := Aggregate(perCheckpoint)

	actual, err := s.groundTruth(ctx, opts.EndDate, recommended)
	if err != nil {
		return nil, err
	}

	cfg := s.engine.Config()
	report := BuildReport(
		Classify(recommended, actual),
		opts.ModelVersion,
		"generate/"+s.engine.FactorizerName(),
		cfg.Params(),
		opts.IncludeUserResults,
		stamp,
	)

	path, err := s.store.Save(name, report)
	if err != nil {
		return nil, fmt.Errorf("save simulation report: %w", err)
	}
	metrics.RecordReport("simulation")
	metrics.SimulationDuration.Observe(time.Since(start).Seconds())

	log.Info().
		Int("correct", report.Correct.Count).
		Int("missed", report.Missed.Count).
		Int("unchosen", report.Unchosen.Count).
		Str("correct_pct", report.Correct.Pct).
		Str("path", path).
		Dur("duration", time.Since(start)).
		Msg("Simulation complete")

	return &Result{Report: report, Path: path, Checkpoints: checkpoints}, nil
}

// replay runs the pipeline once per checkpoint on a pool of workers fed
// from a job channel. Results are gathered only after every worker has
// finished. The first failure cancels the remaining work.
func (s *Simulator) replay(ctx context.Context, checkpoints []time.Time, processes int) ([]recommend.Recommendations, error) {
	if len(checkpoints) == 0 {
		return nil, nil
	}
	if processes > len(checkpoints) {
		processes = len(checkpoints)
	}

	jobs := make(chan time.Time)
	results := make(chan recommend.Recommendations, len(checkpoints))

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(jobs)
		for _, cp := range checkpoints {
			select {
			case jobs <- cp:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	for w := 0; w < processes; w++ {
		g.Go(func() error {
			for cp := range jobs {
				if err := gctx.Err(); err != nil {
					return err
				}
				wctx := logging.ContextWithCheckpoint(gctx, cp)
				recs, err := s.engine.Generate(wctx, cp)
				metrics.RecordCheckpoint(err)
				if err != nil {
					return fmt.Errorf("checkpoint %s: %w", cp.Format(DateLayout), err)
				}
				logging.Attach(wctx, s.logger).Info().
					Int("users", len(recs)).
					Int("recommendations", recs.Total()).
					Msg("Checkpoint complete")
				results <- recs
			}
			return nil
		})
	}

	err := g.Wait()
	close(results)
	if err != nil {
		return nil, err
	}

	out := make([]recommend.Recommendations, 0, len(checkpoints))
	for recs := range results {
		out = append(out, recs)
	}
	return out, nil
}

// Aggregate unions each user's recommendations across checkpoints.
func Aggregate(perCheckpoint []recommend.Recommendations) recommend.Recommendations {
	out := make(recommend.Recommendations)
	for _, recs := range perCheckpoint {
		for user, events := range recs {
			set, ok := out[user]
			if !ok {
				set = make(recommend.EventSet)
				out[user] = set
			}
			set.Union(events)
		}
	}
	return out
}

// groundTruth returns the canonical adds as of end of every user present
// in recommended.
func (s *Simulator) groundTruth(ctx context.Context, end time.Time, recommended recommend.Recommendations) (map[string]recommend.EventSet, error) {
	adds, err := s.engine.Repository().FetchAdds(ctx, end)
	if err != nil {
		return nil, fmt.Errorf("fetch ground truth: %w", err)
	}
	actual := recommend.GroupByUser(adds)
	for user := range actual {
		if _, ok := recommended[user]; !ok {
			delete(actual, user)
		}
	}
	return actual, nil
}
