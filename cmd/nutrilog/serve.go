package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	adapthttp "nutrilog/internal/adapter/http"
	"nutrilog/internal/adapter/fooddata"
	"nutrilog/internal/agent"
	"nutrilog/internal/app"
	"nutrilog/internal/auth"
	"nutrilog/internal/config"
	"nutrilog/internal/domain"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const sessionPurgeInterval = time.Hour

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and web UI",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, logger)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	store, err := openStorage(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer func() { _ = store.close() }()

	var authOpts []app.AuthOption
	authOpts = append(authOpts, app.WithSessionTTL(cfg.Auth.SessionTTL))
	if cfg.Auth.TokensEnabled() {
		authOpts = append(authOpts, app.WithTokenManager(
			auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.TokenTTL)))
	}
	authSvc := app.NewAuthService(store.users, store.sessions, authOpts...)

	usda, off := fooddata.NewClients(cfg.FoodData)
	foods := app.NewFoodSearchService(usda, off, app.NewSearchGuard(cfg.Search.QuietPeriod), logger)
	logs := app.NewFoodLogService(store.logs, usda, off, logger)
	goals := app.NewGoalsService(store.goals, logger)

	svc := adapthttp.Services{
		Auth:     authSvc,
		Logs:     logs,
		Foods:    foods,
		Goals:    goals,
		Insights: app.NewInsightsService(store.logs, store.goals, logger),
	}
	if cfg.Agent.Enabled() {
		tools := agentTools(usda, off, logs, goals, logger)
		svc.Agent = agent.New(agent.NewMessageClient(cfg.Agent), tools, agent.NewConversationStore(time.Hour), cfg.Agent, logger)
		logger.Info("agent enabled", "model", cfg.Agent.Model)
	}

	server := adapthttp.New(svc, cfg.Server.WebDir, logger)
	switch {
	case cfg.Auth.Disabled:
		dev, err := authSvc.ValidateForwardAuth(ctx, "dev")
		if err != nil {
			return err
		}
		logger.Warn("authentication disabled, all requests act as the dev user", "user_id", dev.ID)
		server = server.WithoutAuth().WithDevUser(dev)
	case cfg.Auth.ForwardAuth:
		server = server.WithForwardAuth()
	}
	if cfg.Auth.SSOEnabled() {
		oidcCfg, err := adapthttp.NewOIDCConfig(ctx, cfg.Auth)
		if err != nil {
			return err
		}
		server = server.WithOIDC(oidcCfg)
	}

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      server.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", "addr", cfg.Server.Addr, "driver", cfg.Database.Driver)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		ticker := time.NewTicker(sessionPurgeInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if err := authSvc.PurgeExpiredSessions(gctx); err != nil {
					logger.Warn("purge expired sessions", "error", err)
				}
			}
		}
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		logger.Info("shutting down")
		return httpServer.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// agentTools builds the agent's tool set. Its searches bypass the UI's
// search-as-you-type guard.
func agentTools(foods domain.FoodDatabase, barcodes domain.BarcodeLookup, logs *app.FoodLogService, goals *app.GoalsService, logger *slog.Logger) *agent.Tools {
	return agent.NewTools(app.NewFoodSearchService(foods, barcodes, nil, logger), logs, goals)
}
