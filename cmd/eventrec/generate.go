// Eventrec - Event Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventrec

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomtom215/eventrec/internal/logging"
	"github.com/tomtom215/eventrec/internal/recommend"
)

func (a *app) generateCmd() *cobra.Command {
	var asOf, modelVersion string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Run the production pipeline and persist recommendations",
		Long: `Generates recommendations as of --as-of (default: now) and writes them to
the recommendations table tagged with the model version, in one transaction.
Nothing is written when there is too little data to factorize.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("model-version") {
				a.cfg.Recommend.ModelVersion = modelVersion
			}

			now := a.now().UTC()
			at := now
			if asOf != "" {
				parsed, err := parseDateFlag("as-of", asOf)
				if err != nil {
					return err
				}
				at = parsed
			}

			ctx, stop := commandContext(cmd.Context())
			defer stop()

			db, err := a.openDB(ctx)
			if err != nil {
				return err
			}
			defer closeDB(db)

			engine, err := a.newEngine(db, recommend.ModeProduction)
			if err != nil {
				return err
			}

			logging.Ctx(ctx).Info().
				Time("as_of", at).
				Str("model_version", a.cfg.Recommend.ModelVersion).
				Msg("Starting production run")

			result, err := engine.Run(ctx, at, db, a.cfg.Recommend.ModelVersion, now)
			if err != nil {
				return fmt.Errorf("production run failed: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "persisted %d recommendations for %d of %d users (model %s, as of %s)\n",
				result.TotalRecs, result.UsersWithRecs, result.UsersConsidered,
				a.cfg.Recommend.ModelVersion, at.Format(time.RFC3339))
			return nil
		},
	}

	cmd.Flags().StringVar(&asOf, "as-of", "", "Generate as of this date (YYYY-MM-DD, default: now)")
	cmd.Flags().StringVar(&modelVersion, "model-version", "", "Model version tag (default: recommend.model_version)")
	return cmd
}
