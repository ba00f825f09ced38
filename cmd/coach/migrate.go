package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := bootstrap(cmd)
		if err != nil {
			return err
		}
		defer a.Shutdown(context.Background())
		if err := a.Migrate(); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		a.Log.Info("Migrations applied", "driver", a.DB.Driver())
		return nil
	},
}
