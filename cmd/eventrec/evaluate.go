// Eventrec - Event Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventrec

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tomtom215/eventrec/internal/evaluate"
	"github.com/tomtom215/eventrec/internal/logging"
	"github.com/tomtom215/eventrec/internal/recommend/storage"
)

func (a *app) evaluateCmd() *cobra.Command {
	var minDate, maxDate, recDate, modelVersion, reportDir string

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Measure a deployed model against its A/B control group",
		Long: `Counts each user's calendar adds per week from --min-date to --max-date
(default: today) and compares treatment and control before and after
--recommendation-date, the day the model went live. The report is written
once to {report-dir}{model_version}-{YYYYMMDD}.json.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fs := cmd.Flags()
			ev := &a.cfg.Evaluation
			if fs.Changed("min-date") {
				ev.MinDate = minDate
			}
			if fs.Changed("max-date") {
				ev.MaxDate = maxDate
			}
			if fs.Changed("recommendation-date") {
				ev.RecommendationDate = recDate
			}
			if fs.Changed("report-dir") {
				ev.ReportDir = reportDir
			}
			if fs.Changed("model-version") {
				a.cfg.Recommend.ModelVersion = modelVersion
			}

			opts, err := a.evaluationOptions()
			if err != nil {
				return err
			}

			ctx, stop := commandContext(cmd.Context())
			defer stop()

			store, err := storage.NewStore(ev.ReportDir)
			if err != nil {
				return err
			}
			db, err := a.openDB(ctx)
			if err != nil {
				return err
			}
			defer closeDB(db)

			report, path, err := evaluate.New(db, store, logging.WithComponent("evaluate")).Run(ctx, opts)
			if err != nil {
				return fmt.Errorf("evaluation failed: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "recs selected %.2f%%, treatment subscribed %.2f%%\nreport: %s\n",
				report.RecsSelectedProportion, report.RecsSubscribedProportion, path)
			return nil
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&minDate, "min-date", "", "First week start (YYYY-MM-DD)")
	fs.StringVar(&maxDate, "max-date", "", "Last day evaluated (YYYY-MM-DD, default: today)")
	fs.StringVar(&recDate, "recommendation-date", "", "Day the model went live (YYYY-MM-DD)")
	fs.StringVar(&modelVersion, "model-version", "", "Model version to evaluate")
	fs.StringVar(&reportDir, "report-dir", "", "Directory the report is written to")
	return cmd
}

func (a *app) evaluationOptions() (evaluate.Options, error) {
	ev := a.cfg.Evaluation
	if ev.RecommendationDate == "" {
		return evaluate.Options{}, errors.New("--recommendation-date is required")
	}

	minDate, err := parseDateFlag("min-date", ev.MinDate)
	if err != nil {
		return evaluate.Options{}, err
	}
	maxDate := today(a.now())
	if ev.MaxDate != "" {
		if maxDate, err = parseDateFlag("max-date", ev.MaxDate); err != nil {
			return evaluate.Options{}, err
		}
	}
	recDate, err := parseDateFlag("recommendation-date", ev.RecommendationDate)
	if err != nil {
		return evaluate.Options{}, err
	}

	opts := evaluate.Options{
		MinDate:            minDate,
		MaxDate:            maxDate,
		RecommendationDate: recDate,
		ModelVersion:       a.cfg.Recommend.ModelVersion,
	}
	if err := opts.Validate(); err != nil {
		return evaluate.Options{}, err
	}
	return opts, nil
}
