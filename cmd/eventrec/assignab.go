// Eventrec - Event Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventrec

package main

import (
	"fmt"
	"math/rand"

	"github.com/spf13/cobra"

	"github.com/tomtom215/eventrec/internal/abtest"
	"github.com/tomtom215/eventrec/internal/logging"
)

func (a *app) assignABCmd() *cobra.Command {
	var modelVersion string
	var seed int64

	cmd := &cobra.Command{
		Use:   "assign-ab",
		Short: "Partition users into treatment and control",
		Long: `Samples half of all users, rounded down, without replacement into the
treatment group of the model version's experiment and the rest into control.
Each model version is assigned once.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("model-version") {
				a.cfg.Recommend.ModelVersion = modelVersion
			}
			now := a.now().UTC()
			if !cmd.Flags().Changed("seed") {
				seed = now.UnixNano()
			}

			ctx, stop := commandContext(cmd.Context())
			defer stop()

			db, err := a.openDB(ctx)
			if err != nil {
				return err
			}
			defer closeDB(db)

			rng := rand.New(rand.NewSource(seed)) //nolint:gosec // experiment partitioning, not security
			summary, err := abtest.Setup(ctx, db, a.cfg.Recommend.ModelVersion, now, rng, logging.WithComponent("abtest"))
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "model %s: %d treatment, %d control (seed %d)\n",
				summary.ModelVersion, summary.Treatment, summary.Control, seed)
			return nil
		},
	}

	cmd.Flags().StringVar(&modelVersion, "model-version", "", "Model version of the experiment")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Random seed (default: current time)")
	return cmd
}
