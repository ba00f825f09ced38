package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yungbote/agilecoach-backend/internal/app"
	"github.com/yungbote/agilecoach-backend/internal/platform/envutil"
	"github.com/yungbote/agilecoach-backend/internal/platform/logger"
)

var rootCmd = &cobra.Command{
	Use:           "coach",
	Short:         "Agile scenario coach backend",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().String("db-driver", "", "database driver: postgres or sqlite (overrides DB_DRIVER)")
	rootCmd.PersistentFlags().String("dsn", "", "database DSN (overrides DATABASE_URL)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
}

// bootstrap builds the logger, config and app, with flags taking priority
// over the environment.
func bootstrap(cmd *cobra.Command) (*app.App, error) {
	if err := envutil.LoadDotEnv(); err != nil {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	log, err := logger.New(envutil.String("LOG_MODE", "development"))
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg, err := app.LoadConfig(log)
	if err != nil {
		log.Sync()
		return nil, err
	}
	if v, _ := cmd.Flags().GetString("db-driver"); strings.TrimSpace(v) != "" {
		cfg.DB.Driver = v
	}
	if v, _ := cmd.Flags().GetString("dsn"); strings.TrimSpace(v) != "" {
		cfg.DB.DSN = v
	}

	a, err := app.New(cfg, log)
	if err != nil {
		log.Sync()
		return nil, err
	}
	return a, nil
}
