package cmds

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/ctfbridge/ctfbridge/internal/backend/postgres"
	"github.com/ctfbridge/ctfbridge/internal/backend/postgres/migrations"
	"github.com/ctfbridge/ctfbridge/internal/config"
	"github.com/ctfbridge/ctfbridge/internal/logger"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the postgres provider schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply pending migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withMigrationDB(cmd.Context(), migrations.Up)
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back all migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withMigrationDB(cmd.Context(), migrations.Down)
	},
}

func withMigrationDB(ctx context.Context, fn func(context.Context, *gorm.DB) error) error {
	cfg, err := config.GetConfig()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.Postgres == nil {
		return errors.New("postgres configuration is required to migrate")
	}

	logger.LogLevel.Set(slog.Level(cfg.Logging.App.Level))

	provider, err := postgres.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		fail := provider.Close()
		if fail != nil {
			logger.Logger.Warn("failed to close database", "error", fail)
		}
	}()

	return fn(ctx, provider.DB())
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)
	rootCmd.AddCommand(migrateCmd)
}
