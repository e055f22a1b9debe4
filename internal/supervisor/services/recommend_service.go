// Eventrec - Event Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventrec

package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/tomtom215/eventrec/internal/logging"
	"github.com/tomtom215/eventrec/internal/recommend"
)

// Pipeline is the production run. Satisfied by *recommend.Engine.
type Pipeline interface {
	Run(ctx context.Context, asOf time.Time, sink recommend.Sink, modelVersion string, now time.Time) (recommend.PersistResult, error)
}

// RecommendServiceConfig holds the schedule of production runs.
type RecommendServiceConfig struct {
	// Cron is a standard five-field spec evaluated in UTC, e.g. "0 6 * * *".
	Cron string

	// RunOnStartup triggers one run as soon as the service starts.
	RunOnStartup bool

	// RunTimeout bounds a single run. Default: 30m
	RunTimeout time.Duration

	// ModelVersion tags every persisted recommendation.
	ModelVersion string
}

// RecommendService persists fresh recommendations on a cron schedule.
// Runs never overlap: a tick that fires while a run is in progress is
// skipped. A failed run is logged and retried at the next tick, it does
// not crash the service.
type RecommendService struct {
	pipeline Pipeline
	sink     recommend.Sink
	config   RecommendServiceConfig
	schedule cron.Schedule
	logger   zerolog.Logger
	now      func() time.Time
	name     string

	mu      sync.Mutex
	running bool
	lastRun RunStatus
}

// RunStatus describes the most recent production run.
type RunStatus struct {
	StartedAt time.Time
	Duration  time.Duration
	Result    recommend.PersistResult
	Err       error
}

// NewRecommendService validates the cron spec and creates the service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRecommendService(pipeline Pipeline, sink recommend.Sink, cfg RecommendServiceConfig, logger zerolog.Logger) (*RecommendService, error) {
	if cfg.ModelVersion == "" {
		return nil, errors.New("model version is required")
	}
	schedule, err := cron.ParseStandard(cfg.Cron)
	if err != nil {
		return nil, fmt.Errorf("invalid cron spec %q: %w", cfg.Cron, err)
	}
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = 30 * time.Minute
	}

	return &RecommendService{
		pipeline: pipeline,
		sink:     sink,
		config:   cfg,
		schedule: schedule,
		logger:   logger.With().Str("service", "recommend").Logger(),
		now:      time.Now,
		name:     "recommend-service",
	}, nil
}

// Serve implements suture.Service.
func (s *RecommendService) Serve(ctx context.Context) error {
	s.logger.Info().
		Str("cron", s.config.Cron).
		Bool("run_on_startup", s.config.RunOnStartup).
		Str("model_version", s.config.ModelVersion).
		Time("next_run", s.schedule.Next(s.now().UTC())).
		Msg("recommendation service starting")

	if s.config.RunOnStartup {
		s.RunOnce(ctx)
	}

	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithLogger(cronLogger{logger: s.logger}),
		cron.WithChain(cron.SkipIfStillRunning(cronLogger{logger: s.logger})),
	)
	c.Schedule(s.schedule, cron.FuncJob(func() { s.RunOnce(ctx) }))
	c.Start()

	<-ctx.Done()
	s.logger.Info().Msg("recommendation service shutting down")

	// Wait for a run in progress; it sees the canceled context.
	<-c.Stop().Done()
	return ctx.Err()
}

// RunOnce performs one production run as of now. Concurrent calls while a
// run is in progress return immediately.
func (s *RecommendService) RunOnce(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.logger.Warn().Msg("production run already in progress, skipping")
		return
	}
	s.running = true
	s.mu.Unlock()

	runCtx, cancel := context.WithTimeout(logging.ContextWithNewRunID(ctx), s.config.RunTimeout)
	defer cancel()

	now := s.now().UTC()
	start := time.Now()
	result, err := s.pipeline.Run(runCtx, now, s.sink, s.config.ModelVersion, now)
	status := RunStatus{StartedAt: now, Duration: time.Since(start), Result: result, Err: err}

	s.mu.Lock()
	s.running = false
	s.lastRun = status
	s.mu.Unlock()

	log := logging.Attach(runCtx, s.logger)
	if err != nil {
		log.Error().Err(err).Dur("duration", status.Duration).Msg("production run failed")
		return
	}
	log.Info().
		Dur("duration", status.Duration).
		Int("total_recs", result.TotalRecs).
		Int("users_with_recs", result.UsersWithRecs).
		Msg("production run complete")
}

// SetClock replaces the clock that decides each run's as-of time.
func (s *RecommendService) SetClock(now func() time.Time) {
	s.now = now
}

// LastRun returns the status of the most recent run, or false if none
// has finished yet.
func (s *RecommendService) LastRun() (RunStatus, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRun, !s.lastRun.StartedAt.IsZero()
}

// String identifies the service in supervisor events.
func (s *RecommendService) String() string {
	return s.name
}

// cronLogger routes cron's internal logging into zerolog.
type cronLogger struct {
	logger zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
