package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the demo catalog (safe to re-run)",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := bootstrap(cmd)
		if err != nil {
			return err
		}
		defer a.Shutdown(context.Background())
		if err := a.Migrate(); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		res, err := a.Seed(cmd.Context())
		if err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "seeded %d users, %d scenarios, %d learning paths\n",
			res.Users, res.Scenarios, res.LearningPaths)
		return nil
	},
}
