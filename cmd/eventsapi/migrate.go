package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"eventsapi/config"
	"eventsapi/internal/repository/mongodb"
	"eventsapi/internal/repository/postgres"
)

var migrateSteps int

var migrateCmd = &cobra.Command{
	Use:       "migrate <up|down>",
	Short:     "Apply or roll back schema changes",
	Long:      "For PostgreSQL, applies or rolls back the embedded migrations. For MongoDB, up creates the event indexes.",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"up", "down"},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		logger := config.NewLogger(cfg, os.Stderr)
		backend, err := cfg.Backend()
		if err != nil {
			return err
		}

		direction := args[0]
		if direction != "up" && direction != "down" {
			return fmt.Errorf("unknown direction %q (must be up or down)", direction)
		}

		if backend == config.BackendPostgres {
			if direction == "up" {
				err = postgres.MigrateUp(cfg.DatabaseURL)
			} else {
				err = postgres.MigrateDown(cfg.DatabaseURL, migrateSteps)
			}
			if err != nil {
				return err
			}
			logger.Info("migrations applied", "backend", backend, "direction", direction)
			return nil
		}

		if direction == "down" {
			return fmt.Errorf("migrate down is not supported for %s", backend)
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.RequestTimeout)
		defer cancel()
		client, err := mongodb.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer func() { _ = client.Disconnect(context.Background()) }()
		if err := mongodb.EnsureIndexes(ctx, client.Database(cfg.DBName)); err != nil {
			return err
		}
		logger.Info("indexes ensured", "backend", backend, "database", cfg.DBName)
		return nil
	},
}

func init() {
	migrateCmd.Flags().IntVar(&migrateSteps, "steps", 1, "number of migrations to roll back")
	rootCmd.AddCommand(migrateCmd)
}
