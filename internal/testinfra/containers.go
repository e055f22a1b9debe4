// Eventrec - Event Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventrec

//go:build integration

package testinfra

import (
	"context"
	"testing"

	"github.com/testcontainers/testcontainers-go"
)

// RequireDocker skips the test unless a container provider is reachable.
func RequireDocker(t *testing.T) {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)
}

// StartMySQL skips without Docker, otherwise starts a MySQL container whose
// termination is registered with t.Cleanup. Startup failures are fatal.
func StartMySQL(ctx context.Context, t *testing.T, opts ...MySQLOption) *MySQLContainer {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping container test in short mode")
	}
	RequireDocker(t)

	mysql, err := NewMySQLContainer(ctx, opts...)
	if err != nil {
		t.Fatalf("start mysql container: %v", err)
	}
	testcontainers.CleanupContainer(t, mysql.Container)
	return mysql
}
