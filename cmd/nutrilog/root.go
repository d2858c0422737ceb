package main

import (
	"context"
	"fmt"
	"log/slog"

	"nutrilog/internal/adapter/memory"
	"nutrilog/internal/adapter/postgres"
	"nutrilog/internal/adapter/sqlite"
	"nutrilog/internal/adapter/sqlstore"
	"nutrilog/internal/app"
	"nutrilog/internal/config"
	"nutrilog/internal/domain"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "nutrilog",
		Short:         "nutrilog tracks food intake against calorie and macro goals",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newCreateUserCmd(),
		newCalcCmd(),
	)
	return root
}

func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	return cfg, app.NewLogger(cfg.Log), nil
}

// storage bundles the repositories of whichever backend is configured.
type storage struct {
	users    domain.UserRepository
	sessions domain.SessionRepository
	logs     domain.FoodLogRepository
	goals    domain.GoalsRepository
	close    func() error
}

func openStorage(ctx context.Context, cfg config.DatabaseConfig) (*storage, error) {
	var (
		store *sqlstore.Store
		err   error
	)
	switch cfg.Driver {
	case config.DriverMemory:
		db := memory.New()
		return &storage{
			users:    db,
			sessions: db.NewSessionRepo(),
			logs:     db,
			goals:    db,
			close:    func() error { return nil },
		}, nil
	case config.DriverSQLite:
		store, err = sqlite.Open(ctx, cfg.URL)
	case config.DriverPostgres:
		store, err = postgres.Open(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	return &storage{
		users:    store,
		sessions: sqlstore.NewSessionRepo(store),
		logs:     store,
		goals:    store,
		close:    store.Close,
	}, nil
}
