// Eventrec - Event Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventrec

// Package logging provides centralized zerolog-based logging for Eventrec.
//
// # Quick Start
//
//	logging.Init(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	})
//
//	logging.Info().Msg("Starting simulation")
//	logging.Error().Err(err).Msg("Checkpoint failed")
//
// # Run Context
//
// Every production run and every simulation carries a short run ID in its
// context. Simulation workers additionally tag their context with the
// checkpoint date they replay, so interleaved worker output stays readable:
//
//	ctx = logging.ContextWithNewRunID(ctx)
//	ctx = logging.ContextWithCheckpoint(ctx, checkpoint)
//	logging.Ctx(ctx).Info().Msg("Checkpoint complete")
//
// # slog Bridge
//
// SlogHandler routes log/slog records into zerolog. The supervisor tree uses
// it so sutureslog events end up in the same structured stream.
//
// Always terminate log chains with .Msg() or .Send().
package logging
