// Eventrec - Event Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventrec

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomtom215/eventrec/internal/config"
	"github.com/tomtom215/eventrec/internal/database"
	"github.com/tomtom215/eventrec/internal/logging"
	"github.com/tomtom215/eventrec/internal/recommend"
	"github.com/tomtom215/eventrec/internal/recommend/algorithms"
)

// app carries what every command needs once the configuration is loaded.
type app struct {
	loadConfig func() (*config.Config, error)
	now        func() time.Time
	cfg        *config.Config
	logLevel   string
}

func newRootCmd(loadConfig func() (*config.Config, error), now func() time.Time) *cobra.Command {
	a := &app{loadConfig: loadConfig, now: now}

	root := &cobra.Command{
		Use:   "eventrec",
		Short: "Eventrec - event recommendations from calendar adds",
		Long: `Eventrec recommends upcoming events to users based on the events they
and similar users added to their calendars.

Commands:
  generate     Run the production pipeline and persist recommendations
  simulate     Backtest the pipeline at weekly checkpoints
  evaluate     Measure a deployed model against its A/B control group
  assign-ab    Partition users into treatment and control
  serve        Scheduled production runs plus the report API
  init-db      Create the schema, optionally seeding demo data`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Override the configured log level")

	root.AddCommand(
		a.generateCmd(),
		a.simulateCmd(),
		a.evaluateCmd(),
		a.assignABCmd(),
		a.serveCmd(),
		a.initDBCmd(),
	)
	return root
}

// setup loads the configuration and initializes logging.
func (a *app) setup(_ *cobra.Command, _ []string) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	a.cfg = cfg
	return nil
}

// openDB connects to the configured store and checks that every pipeline
// table is present.
func (a *app) openDB(ctx context.Context) (*database.DB, error) {
	db, err := a.connect(ctx)
	if err != nil {
		return nil, err
	}
	if err := db.CheckTables(ctx); err != nil {
		closeDB(db)
		return nil, err
	}
	return db, nil
}

// connect opens the configured store. Local DuckDB stores get their schema
// on open; the MySQL schema belongs to the web application.
func (a *app) connect(ctx context.Context) (*database.DB, error) {
	db, err := database.New(&a.cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if db.Driver() == database.DriverDuckDB {
		if err := db.EnsureSchema(ctx); err != nil {
			closeDB(db)
			return nil, err
		}
	}
	return db, nil
}

func closeDB(db *database.DB) {
	if err := db.Close(); err != nil {
		logging.Error().Err(err).Msg("Error closing database")
	}
}

// pipelineConfig converts the loaded settings into the engine's config.
func (a *app) pipelineConfig() *recommend.Config {
	rc := a.cfg.Recommend
	return &recommend.Config{
		MinUserActions:      rc.MinUserActions,
		VectorSize:          rc.VectorSize,
		Threshold:           rc.Threshold,
		MaxRecentActionDays: rc.MaxRecentActionDays,
	}
}

func (a *app) newEngine(source recommend.InteractionSource, mode string) (*recommend.Engine, error) {
	engine, err := recommend.NewEngine(
		a.pipelineConfig(),
		recommend.NewRepository(source),
		algorithms.NewSVD(logging.WithComponent("svd")),
		logging.WithComponent("recommend"),
		recommend.WithMode(mode),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}
	return engine, nil
}

// commandContext is canceled on SIGINT or SIGTERM and carries a fresh run ID.
func commandContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	return logging.ContextWithNewRunID(ctx), stop
}

// parseDateFlag parses a YYYY-MM-DD flag value as midnight UTC.
func parseDateFlag(name, value string) (time.Time, error) {
	t, err := config.ParseDate(value)
	if err != nil {
		return time.Time{}, fmt.Errorf("--%s: %w", name, err)
	}
	return t, nil
}

func today(now time.Time) time.Time {
	now = now.UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
