package main

import (
	"context"
	"database/sql"
	"fmt"

	"nutrilog/internal/adapter/postgres"
	"nutrilog/internal/adapter/sqlite"
	"nutrilog/internal/config"

	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			results, err := migrate(cmd.Context(), cfg.Database)
			if err != nil {
				return err
			}
			for _, r := range results {
				logger.Info("migration applied", "version", r.Source.Version, "path", r.Source.Path, "duration", r.Duration)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migration(s)\n", len(results))
			return nil
		},
	}
}

func migrate(ctx context.Context, cfg config.DatabaseConfig) ([]*goose.MigrationResult, error) {
	var (
		db  *sql.DB
		run func(context.Context, *sql.DB) ([]*goose.MigrationResult, error)
		err error
	)
	switch cfg.Driver {
	case config.DriverPostgres:
		db, err = postgres.Connect(ctx, cfg)
		run = postgres.Migrate
	case config.DriverSQLite:
		db, err = sqlite.Connect(ctx, cfg.URL)
		run = sqlite.Migrate
	default:
		return nil, fmt.Errorf("driver %q has no migrations", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	defer func() { _ = db.Close() }()
	return run(ctx, db)
}
