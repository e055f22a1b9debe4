// Eventrec - Event Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventrec

// Package simulate backtests the recommendation pipeline.
//
// A simulation replays the pipeline as of weekly checkpoints between a
// start and end date, without persisting anything. Checkpoints are
// independent, so they run on a fixed pool of workers fed from a job
// channel; the first failing checkpoint cancels the rest and the run
// fails without a report, because a partial window gives misleading
// numbers.
//
// After every worker finishes, each user's recommendations are unioned
// across checkpoints and compared with the user's canonical adds as of
// the end date:
//
//	correct  = recommended ∩ added
//	missed   = added - correct
//	unchosen = recommended - correct
//
// Percentages in the report are taken over correct+unchosen. The report is
// written once as {output_path}{model_version}_{YYYY-MM-DDvHH-MM}.json.
package simulate
