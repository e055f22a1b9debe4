// Eventrec - Event Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventrec

// Package middleware provides the chi middleware of the report API.
//
//   - RequestID: X-Request-ID propagation and request-scoped logger
//   - PrometheusMetrics: eventrec_api_requests_total and
//     eventrec_api_request_duration_seconds, labeled by route pattern
//
// Both have the func(http.Handler) http.Handler shape chi's Use expects:
//
//	r := chi.NewRouter()
//	r.Use(middleware.RequestID)
//	r.Use(middleware.PrometheusMetrics)
package middleware
