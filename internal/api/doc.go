// Eventrec - Event Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventrec

// Package api is the read-only HTTP surface of `eventrec serve`.
//
// It exposes health, Prometheus metrics and the simulation and evaluation
// reports written by the CLI. Recommendations themselves are never served
// over HTTP; the web application reads them from the recommendations
// table.
//
// Responses share one envelope:
//
//	{"success": true, "data": {...}, "meta": {"request_id": "...", "timestamp": "...", "duration_ms": 1}}
//	{"success": false, "error": {"code": "NOT_FOUND", "message": "..."}, "meta": {...}}
package api
