package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"example.com/clerk-notes/internal/config"
	"example.com/clerk-notes/internal/db"
	"example.com/clerk-notes/internal/logging"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Long: `Apply the embedded goose migrations to DATABASE_URL.

The API server also creates the notes table on first use, so running this
is only required when the schema should be managed ahead of deploys.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.DatabaseURL == "" {
				return fmt.Errorf("DATABASE_URL is required")
			}

			logger, err := logging.New(os.Stderr, cfg.LogLevel, cfg.LogPretty)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			conn, err := db.Open(cmd.Context(), db.Options{
				DatabaseURL:     cfg.DatabaseURL,
				RequireTLS:      cfg.IsProduction(),
				MaxOpenConns:    1,
				MaxIdleConns:    1,
				ConnectAttempts: cfg.ConnectAttempts,
				Logger:          logger,
			})
			if err != nil {
				return err
			}
			defer conn.Close()

			if err := db.Migrate(cmd.Context(), conn.SQL); err != nil {
				return err
			}
			logger.Info("migrations applied")
			return nil
		},
	}
}
