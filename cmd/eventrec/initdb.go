// Eventrec - Event Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventrec

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tomtom215/eventrec/internal/database"
)

func (a *app) initDBCmd() *cobra.Command {
	var seed bool
	demo := database.DefaultDemoOptions()

	cmd := &cobra.Command{
		Use:   "init-db",
		Short: "Create the schema, optionally seeding demo data",
		Long: `Creates the users, events, selected_events, recommendations and ab_tests
tables if they do not exist. With --seed, fills the store with a synthetic,
deterministic data set whose events end around now.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := commandContext(cmd.Context())
			defer stop()

			db, err := a.connect(ctx)
			if err != nil {
				return err
			}
			defer closeDB(db)

			if db.Driver() != database.DriverDuckDB {
				if err := db.EnsureSchema(ctx); err != nil {
					return err
				}
			}
			if err := db.CheckTables(ctx); err != nil {
				return err
			}
			if seed {
				if err := db.SeedDemo(ctx, demo, a.now()); err != nil {
					return err
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "schema ready (%s)\n", db.Driver())
			return nil
		},
	}

	fs := cmd.Flags()
	fs.BoolVar(&seed, "seed", false, "Seed demo data")
	fs.IntVar(&demo.Users, "demo-users", demo.Users, "Demo users")
	fs.IntVar(&demo.Events, "demo-events", demo.Events, "Demo events")
	fs.IntVar(&demo.Days, "demo-days", demo.Days, "Days of history")
	fs.Int64Var(&demo.Seed, "demo-seed", demo.Seed, "Demo random seed")
	return cmd
}
