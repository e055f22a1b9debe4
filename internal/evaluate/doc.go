// Eventrec - Event Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventrec

// Package evaluate measures a deployed model in production.
//
// The evaluator joins calendar adds with event start times, splits users
// into the treatment and control groups of the model's A/B test, and counts
// each user's adds per week from the min date. Sum, mean and median of
// those weekly counts are reported before and after the recommendation
// date for both groups, together with where post-deployment adds came
// from and how many persisted recommendations were later added.
//
// Reports are written once as {model_version}-{YYYYMMDD}.json, named after
// the max date.
package evaluate
