// Eventrec - Event Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventrec

package logging

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Context keys for logging.
type contextKey string

const (
	// runIDKey is the context key for pipeline/simulation run IDs.
	runIDKey contextKey = "run_id"

	// checkpointKey is the context key for the simulation checkpoint date.
	checkpointKey contextKey = "checkpoint"

	// loggerKey is the context key for storing a logger instance.
	loggerKey contextKey = "logger"
)

// CheckpointLayout is the date layout used when logging checkpoint dates.
const CheckpointLayout = "2006-01-02"

// GenerateRunID creates a new run ID.
// Returns the first 8 characters of a UUID for readability.
func GenerateRunID() string {
	return uuid.New().String()[:8]
}

// ContextWithRunID returns a new context with the given run ID.
func ContextWithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey, id)
}

// ContextWithNewRunID returns a context with a newly generated run ID.
//
//	ctx = logging.ContextWithNewRunID(ctx)
func ContextWithNewRunID(ctx context.Context) context.Context {
	return ContextWithRunID(ctx, GenerateRunID())
}

// RunIDFromContext retrieves the run ID from context.
// Returns empty string if not present.
func RunIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(runIDKey).(string); ok {
		return id
	}
	return ""
}

// ContextWithCheckpoint tags the context with a simulation checkpoint date.
func ContextWithCheckpoint(ctx context.Context, checkpoint time.Time) context.Context {
	return context.WithValue(ctx, checkpointKey, checkpoint)
}

// CheckpointFromContext returns the checkpoint date and whether one was set.
func CheckpointFromContext(ctx context.Context) (time.Time, bool) {
	cp, ok := ctx.Value(checkpointKey).(time.Time)
	return cp, ok
}

// ContextWithLogger stores a logger in the context.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func ContextWithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// LoggerFromContext retrieves a logger from context.
// Returns the global logger if no logger is stored in context.
func LoggerFromContext(ctx context.Context) zerolog.Logger {
	if logger, ok := ctx.Value(loggerKey).(zerolog.Logger); ok {
		return logger
	}
	return Logger()
}

// Ctx returns a logger with context values (run_id, checkpoint) automatically added.
//
//	logging.Ctx(ctx).Info().Int("users", n).Msg("Built interaction matrix")
//	// Output: {"level":"info","run_id":"abc12345","checkpoint":"2018-10-07","users":12,...}
func Ctx(ctx context.Context) *zerolog.Logger {
	return Attach(ctx, LoggerFromContext(ctx))
}

// Attach returns logger with the run_id and checkpoint carried by ctx.
// Components holding their own logger use it to join the run context.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func Attach(ctx context.Context, logger zerolog.Logger) *zerolog.Logger {
	logCtx := logger.With()

	if runID := RunIDFromContext(ctx); runID != "" {
		logCtx = logCtx.Str("run_id", runID)
	}
	if cp, ok := CheckpointFromContext(ctx); ok {
		logCtx = logCtx.Str("checkpoint", cp.Format(CheckpointLayout))
	}

	l := logCtx.Logger()
	return &l
}
