// Eventrec - Event Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventrec

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tomtom215/eventrec/internal/config"
	"github.com/tomtom215/eventrec/internal/logging"
	"github.com/tomtom215/eventrec/internal/recommend"
	"github.com/tomtom215/eventrec/internal/recommend/storage"
	"github.com/tomtom215/eventrec/internal/simulate"
	"github.com/tomtom215/eventrec/internal/validation"
)

// simulateFlags mirrors the backtest invocation surface. Only flags set on
// the command line override the loaded configuration.
type simulateFlags struct {
	minUserActions      int
	vectorSize          int
	threshold           float64
	maxRecentActionDays int
	startDate           string
	endDate             string
	outputPath          string
	includeUserResults  bool
	processes           int
	modelVersion        string
}

func (f *simulateFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.IntVar(&f.minUserActions, "min-user-actions", 0, "Minimum canonical adds for a user to be eligible")
	fs.IntVar(&f.vectorSize, "vector-size", 0, "Requested latent rank")
	fs.Float64Var(&f.threshold, "threshold", 0, "Score an event must exceed to be recommended, in [0,1]")
	fs.IntVar(&f.maxRecentActionDays, "max-recent-action-days", 0, "Days since a user's latest add for eligibility")
	fs.StringVar(&f.startDate, "start-date", "", "First day of the window (YYYY-MM-DD)")
	fs.StringVar(&f.endDate, "end-date", "", "Last day of the window (YYYY-MM-DD)")
	fs.StringVar(&f.outputPath, "output-path", "", "Directory the report is written to")
	fs.BoolVar(&f.includeUserResults, "include-user-results", false, "Include per-user breakdowns in the report")
	fs.IntVar(&f.processes, "processes", 0, "Number of checkpoint workers")
	fs.StringVar(&f.modelVersion, "model-version", "", "Model version recorded in the report")
}

// apply copies changed flags into cfg and revalidates it.
func (f *simulateFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	fs := cmd.Flags()
	if fs.Changed("min-user-actions") {
		cfg.Recommend.MinUserActions = f.minUserActions
	}
	if fs.Changed("vector-size") {
		cfg.Recommend.VectorSize = f.vectorSize
	}
	if fs.Changed("threshold") {
		cfg.Recommend.Threshold = f.threshold
	}
	if fs.Changed("max-recent-action-days") {
		cfg.Recommend.MaxRecentActionDays = f.maxRecentActionDays
	}
	if fs.Changed("model-version") {
		cfg.Recommend.ModelVersion = f.modelVersion
	}
	if fs.Changed("start-date") {
		cfg.Simulation.StartDate = f.startDate
	}
	if fs.Changed("end-date") {
		cfg.Simulation.EndDate = f.endDate
	}
	if fs.Changed("output-path") {
		cfg.Simulation.OutputPath = f.outputPath
	}
	if fs.Changed("include-user-results") {
		cfg.Simulation.IncludeUserResults = f.includeUserResults
	}
	if fs.Changed("processes") {
		cfg.Simulation.Processes = f.processes
	}

	if verr := validation.ValidateStruct(cfg); verr != nil {
		return verr
	}
	return nil
}

// options resolves the simulation window from the configuration.
func simulationOptions(cfg *config.Config) (simulate.Options, error) {
	if cfg.Simulation.StartDate == "" || cfg.Simulation.EndDate == "" {
		return simulate.Options{}, errors.New("--start-date and --end-date are required")
	}
	start, err := parseDateFlag("start-date", cfg.Simulation.StartDate)
	if err != nil {
		return simulate.Options{}, err
	}
	end, err := parseDateFlag("end-date", cfg.Simulation.EndDate)
	if err != nil {
		return simulate.Options{}, err
	}

	opts := simulate.Options{
		StartDate:          start,
		EndDate:            end,
		ModelVersion:       cfg.Recommend.ModelVersion,
		IncludeUserResults: cfg.Simulation.IncludeUserResults,
		Processes:          cfg.Simulation.Processes,
	}
	return opts, opts.Validate()
}

func (a *app) simulateCmd() *cobra.Command {
	flags := &simulateFlags{}

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Backtest the pipeline at weekly checkpoints",
		Long: `Replays the pipeline as of every seventh day after --start-date up to
--end-date, unions each user's recommendations and scores them against the
events the user actually added by the end date. Nothing is persisted to the
store; the report is written once to --output-path.`,
		Example: `  eventrec simulate --start-date 2018-10-01 --end-date 2018-11-04 \
      --min-user-actions 3 --vector-size 10 --threshold 0.3 --processes 8`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := flags.apply(cmd, a.cfg); err != nil {
				return err
			}
			opts, err := simulationOptions(a.cfg)
			if err != nil {
				return err
			}

			ctx, stop := commandContext(cmd.Context())
			defer stop()

			store, err := storage.NewStore(a.cfg.Simulation.OutputPath)
			if err != nil {
				return err
			}
			db, err := a.openDB(ctx)
			if err != nil {
				return err
			}
			defer closeDB(db)

			engine, err := a.newEngine(db, recommend.ModeSimulation)
			if err != nil {
				return err
			}

			sim := simulate.New(engine, store, logging.WithComponent("simulate"))
			sim.SetClock(a.now)
			result, err := sim.Run(ctx, opts)
			if err != nil {
				return fmt.Errorf("simulation failed: %w", err)
			}

			r := result.Report
			fmt.Fprintf(cmd.OutOrStdout(), "correct %d (%s), missed %d, unchosen %d (%s), %s recs/user\nreport: %s\n",
				r.Correct.Count, r.Correct.Pct, r.Missed.Count, r.Unchosen.Count, r.Unchosen.Pct,
				r.RecsPerUser, result.Path)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}
