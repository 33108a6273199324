package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"gemportal/internal/api"
	"gemportal/internal/app"
	"gemportal/internal/config"
	"gemportal/internal/db"
	"gemportal/internal/domain"
	"gemportal/internal/engine"
	"gemportal/internal/middleware"
)

func newServeCmd() *cobra.Command {
	var seedDemo bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the portal HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadFromEnv()
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
			defer cancel()
			return runServer(ctx, cfg, seedDemo || cfg.DuckDBPath == "")
		},
	}
	cmd.Flags().BoolVar(&seedDemo, "seed-demo", false, "Create demo telemetry tables for the configured deployment")
	return cmd
}

func runServer(ctx context.Context, cfg *config.Config, seedDemo bool) error {
	logger := newLogger(os.Stderr, cfg)
	for _, w := range cfg.Warnings {
		logger.Warn(w)
	}

	duck, err := engine.OpenDuckDB(cfg.DuckDBPath)
	if err != nil {
		return err
	}
	defer func() { _ = duck.Close() }()

	writeDB, readDB, err := db.OpenSQLitePair(cfg.MetaDBPath, 0)
	if err != nil {
		return err
	}
	defer func() {
		_ = readDB.Close()
		_ = writeDB.Close()
	}()
	if err := db.RunMigrations(writeDB); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	a, err := app.New(ctx, app.Deps{Cfg: cfg, DuckDB: duck, WriteDB: writeDB, ReadDB: readDB, Logger: logger})
	if err != nil {
		return err
	}
	if seedDemo {
		deployment := domain.StaticDeployment{Project: cfg.ProjectName, Deployment: cfg.DeploymentName}
		if err := app.SeedDemoTables(ctx, a.Executor, deployment); err != nil {
			return fmt.Errorf("seed demo tables: %w", err)
		}
		logger.Info("demo tables seeded")
	}

	router := api.NewRouter(ctx, a.Handler, api.RouterConfig{
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimit: middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimitRPS,
			Burst:             cfg.RateLimitBurst,
		},
		Logger: logger,
	})

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("portal API listening", "addr", cfg.ListenAddr, "env", cfg.Env)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}
