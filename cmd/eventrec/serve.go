// Eventrec - Event Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventrec

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/tomtom215/eventrec/internal/api"
	"github.com/tomtom215/eventrec/internal/logging"
	"github.com/tomtom215/eventrec/internal/recommend"
	"github.com/tomtom215/eventrec/internal/recommend/storage"
	"github.com/tomtom215/eventrec/internal/supervisor"
	"github.com/tomtom215/eventrec/internal/supervisor/services"
)

func (a *app) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Scheduled production runs plus the report API",
		Long: `Runs the production pipeline on the configured cron schedule and serves
health, metrics and stored reports over HTTP, both under a supervisor tree
that restarts crashed services.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := commandContext(cmd.Context())
			defer stop()
			return a.serve(ctx)
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	cfg := a.cfg
	if !cfg.Schedule.Enabled && !cfg.Server.Enabled {
		return errors.New("nothing to serve: both schedule and server are disabled")
	}

	db, err := a.openDB(ctx)
	if err != nil {
		return err
	}
	defer closeDB(db)

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"), supervisor.DefaultTreeConfig())
	if err != nil {
		return fmt.Errorf("failed to create supervisor tree: %w", err)
	}

	var runs api.RunReporter
	if cfg.Schedule.Enabled {
		engine, err := a.newEngine(db, recommend.ModeProduction)
		if err != nil {
			return err
		}
		svc, err := services.NewRecommendService(engine, db, services.RecommendServiceConfig{
			Cron:         cfg.Schedule.Cron,
			RunOnStartup: cfg.Schedule.RunOnStartup,
			RunTimeout:   cfg.Schedule.RunTimeout,
			ModelVersion: cfg.Recommend.ModelVersion,
		}, logging.Logger())
		if err != nil {
			return err
		}
		svc.SetClock(a.now)
		tree.AddPipelineService(svc)
		runs = svc
		logging.Info().Str("cron", cfg.Schedule.Cron).Msg("Production runs scheduled")
	}

	if cfg.Server.Enabled {
		stores, err := a.reportStores()
		if err != nil {
			return err
		}
		server := &http.Server{
			Addr:              cfg.Server.Addr(),
			Handler:           api.NewRouter(api.NewHandler(db, stores, runs)),
			ReadHeaderTimeout: cfg.Server.Timeout,
			ReadTimeout:       cfg.Server.Timeout,
			WriteTimeout:      cfg.Server.Timeout,
		}
		tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout, logging.Logger()))
	}

	logging.Info().
		Bool("schedule", cfg.Schedule.Enabled).
		Bool("server", cfg.Server.Enabled).
		Str("addr", cfg.Server.Addr()).
		Msg("Starting supervisor tree")

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("supervisor tree stopped: %w", err)
	}

	if report, err := tree.UnstoppedServiceReport(); err == nil && len(report) > 0 {
		logging.Warn().Int("services", len(report)).Msg("Services did not stop within the shutdown timeout")
	}
	logging.Info().Msg("Shutdown complete")
	return nil
}

// reportStores opens the report directories the API serves.
func (a *app) reportStores() (map[string]*storage.ReportStore, error) {
	sims, err := storage.NewStore(a.cfg.Simulation.OutputPath)
	if err != nil {
		return nil, err
	}
	evals, err := storage.NewStore(a.cfg.Evaluation.ReportDir)
	if err != nil {
		return nil, err
	}
	return map[string]*storage.ReportStore{
		api.KindSimulation: sims,
		api.KindEvaluation: evals,
	}, nil
}
