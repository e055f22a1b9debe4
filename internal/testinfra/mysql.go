// Eventrec - Event Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventrec

//go:build integration

package testinfra

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	// DefaultMySQLImage matches the major version the web application runs.
	DefaultMySQLImage = "mysql:8.0"

	// DefaultMySQLPort is the MySQL protocol port inside the container.
	DefaultMySQLPort = "3306"

	// DefaultMySQLDatabase is created on startup.
	DefaultMySQLDatabase = "events"

	// DefaultMySQLUser and DefaultMySQLPassword are the application account.
	DefaultMySQLUser     = "eventrec"
	DefaultMySQLPassword = "eventrec-test"
)

// MySQLContainer represents a running MySQL container for testing.
type MySQLContainer struct {
	testcontainers.Container
	Host     string
	Port     int
	Database string
	Username string
	Password string
}

// MySQLOption configures the MySQL container.
type MySQLOption func(*mysqlConfig)

type mysqlConfig struct {
	image        string
	startTimeout time.Duration
}

// WithMySQLImage sets a custom MySQL Docker image.
func WithMySQLImage(image string) MySQLOption {
	return func(c *mysqlConfig) {
		c.image = image
	}
}

// WithStartTimeout sets the timeout for waiting for MySQL to accept
// connections.
func WithStartTimeout(timeout time.Duration) MySQLOption {
	return func(c *mysqlConfig) {
		c.startTimeout = timeout
	}
}

// NewMySQLContainer creates and starts a MySQL container with an empty
// application database.
//
// Tests normally go through StartMySQL, which also handles skipping and
// cleanup.
func NewMySQLContainer(ctx context.Context, opts ...MySQLOption) (*MySQLContainer, error) {
	cfg := &mysqlConfig{
		image:        DefaultMySQLImage,
		startTimeout: 2 * time.Minute,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	// The entrypoint starts a temporary server for initialization first, so
	// the ready message appears twice before the real server listens.
	req := testcontainers.ContainerRequest{
		Image:        cfg.image,
		ExposedPorts: []string{DefaultMySQLPort + "/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": DefaultMySQLPassword,
			"MYSQL_DATABASE":      DefaultMySQLDatabase,
			"MYSQL_USER":          DefaultMySQLUser,
			"MYSQL_PASSWORD":      DefaultMySQLPassword,
			"TZ":                  "UTC",
		},
		WaitingFor: wait.ForAll(
			wait.ForLog("ready for connections").WithOccurrence(2),
			wait.ForListeningPort(DefaultMySQLPort+"/tcp"),
		).WithStartupTimeout(cfg.startTimeout),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("create mysql container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		container.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("get container host: %w", err)
	}

	mapped, err := container.MappedPort(ctx, DefaultMySQLPort)
	if err != nil {
		container.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("get mapped port: %w", err)
	}
	port, err := strconv.Atoi(mapped.Port())
	if err != nil {
		container.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("parse mapped port %q: %w", mapped.Port(), err)
	}

	return &MySQLContainer{
		Container: container,
		Host:      host,
		Port:      port,
		Database:  DefaultMySQLDatabase,
		Username:  DefaultMySQLUser,
		Password:  DefaultMySQLPassword,
	}, nil
}
