// Eventrec - Event Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventrec

// Package testinfra starts disposable service containers for integration tests.
//
// This package uses testcontainers-go to run a real MySQL server, the
// production store of the events platform, so the transactional sinks
// and driver-specific value handling are tested against the real thing:
//
//	func TestMySQLRoundTrip(t *testing.T) {
//	    mysql := testinfra.StartMySQL(ctx, t)
//	    // connect with database.New(&config.DatabaseConfig{Driver: "mysql", ...})
//	}
//
// Everything here is behind the integration build tag:
//
//	go test -tags integration ./...
//
// First run may need to download container images. Subsequent runs use cached images.
package testinfra
