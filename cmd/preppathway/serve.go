// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PrepPathway Contributors

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/preppathway/preppathway/internal/auth"
	authpg "github.com/preppathway/preppathway/internal/auth/postgres"
	"github.com/preppathway/preppathway/internal/catalog"
	"github.com/preppathway/preppathway/internal/config"
	"github.com/preppathway/preppathway/internal/contact"
	"github.com/preppathway/preppathway/internal/logging"
	"github.com/preppathway/preppathway/internal/observability"
	"github.com/preppathway/preppathway/internal/store"
	"github.com/preppathway/preppathway/internal/web"
)

// contactDelay matches the simulated mail dispatch latency.
const contactDelay = 1500 * time.Millisecond

// serveDeps holds injectable dependencies for tests.
type serveDeps struct {
	connect func(ctx context.Context, databaseURL string) (*pgxpool.Pool, error)
	migrate func(databaseURL string) error
}

func defaultServeDeps() *serveDeps {
	return &serveDeps{
		connect: store.Connect,
		migrate: func(databaseURL string) error {
			migrator, err := store.NewMigrator(databaseURL)
			if err != nil {
				return err
			}
			defer func() {
				if closeErr := migrator.Close(); closeErr != nil {
					slog.Warn("error closing migrator", "error", closeErr)
				}
			}()
			return migrator.Up()
		},
	}
}

// newServeCmd creates the serve subcommand.
func newServeCmd() *cobra.Command {
	var autoMigrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the API server",
		Long: `Run the PrepPathway API server. Serves the JSON API on http-addr
and Prometheus metrics plus health probes on metrics-addr.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), cmd, autoMigrate, defaultServeDeps())
		},
	}

	def := config.Default()
	cmd.Flags().String("http-addr", def.HTTPAddr, "API listen address")
	cmd.Flags().String("metrics-addr", def.MetricsAddr, "metrics/health HTTP address")
	cmd.Flags().String("database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	cmd.Flags().Duration("session-ttl", def.SessionTTL, "session lifetime")
	cmd.Flags().String("log-format", def.LogFormat, "log format (json or text)")
	cmd.Flags().BoolVar(&autoMigrate, "auto-migrate", false, "run pending migrations before serving")

	return cmd
}

func runServe(ctx context.Context, cmd *cobra.Command, autoMigrate bool, deps *serveDeps) error {
	cfg, err := loadServeConfig(cmd)
	if err != nil {
		return err
	}

	logging.SetDefault("preppathway", version, cfg.LogFormat)

	slog.Info("starting server",
		"http_addr", cfg.HTTPAddr,
		"metrics_addr", cfg.MetricsAddr,
		"log_format", cfg.LogFormat,
	)

	if autoMigrate {
		slog.Info("running migrations")
		if err := deps.migrate(cfg.DatabaseURL); err != nil {
			return oops.Code("MIGRATION_FAILED").Wrap(err)
		}
	}

	pool, err := deps.connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return oops.Code("DB_CONNECT_FAILED").Wrap(err)
	}
	defer pool.Close()

	slog.Info("connected to database")

	authSvc, err := auth.NewAuthService(
		authpg.NewAccountRepository(pool),
		authpg.NewSessionRepository(pool),
		auth.NewArgon2idHasher(),
	)
	if err != nil {
		return err
	}
	authSvc.WithSessionTTL(cfg.SessionTTL)

	resetSvc, err := auth.NewPasswordResetService(
		authpg.NewAccountRepository(pool),
		authpg.NewPasswordResetRepository(pool),
		auth.NewArgon2idHasher(),
	)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Readiness follows the database connection
	obsServer := observability.NewServer(cfg.MetricsAddr, func() bool {
		pingCtx, pingCancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer pingCancel()
		return pool.Ping(pingCtx) == nil
	})
	obsErrCh, err := obsServer.Start()
	if err != nil {
		return oops.Code("OBSERVABILITY_START_FAILED").Wrap(err)
	}
	go monitorServerErrors(ctx, cancel, obsErrCh, "observability")

	webServer, err := web.NewServer(cfg.HTTPAddr, authSvc, catalog.New(),
		contact.NewLogSender(slog.Default(), contactDelay), obsServer.Metrics(), slog.Default())
	if err != nil {
		return err
	}
	webServer.WithPasswordReset(resetSvc).WithSignInRoute(cfg.SignInRoute)
	webErrCh, err := webServer.Start()
	if err != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if stopErr := obsServer.Stop(shutdownCtx); stopErr != nil {
			slog.Warn("failed to stop observability server during cleanup", "error", stopErr)
		}
		return oops.Code("WEB_START_FAILED").Wrap(err)
	}
	go monitorServerErrors(ctx, cancel, webErrCh, "web")

	// Handle signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	cmd.Println("Server started")
	slog.Info("server ready",
		"http_addr", webServer.Addr(),
		"metrics_addr", obsServer.Addr(),
	)

	select {
	case sig := <-sigChan:
		slog.Info("received shutdown signal", "signal", sig)
	case <-ctx.Done():
		slog.Info("context cancelled, shutting down")
	}

	slog.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := webServer.Stop(shutdownCtx); err != nil {
		slog.Warn("error stopping web server", "error", err)
	}
	if err := obsServer.Stop(shutdownCtx); err != nil {
		slog.Warn("error stopping observability server", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}

// loadServeConfig merges the config file, command flags, and the
// DATABASE_URL environment fallback.
func loadServeConfig(cmd *cobra.Command) (config.Config, error) {
	if !cmd.Flags().Changed("database-url") {
		if url := os.Getenv("DATABASE_URL"); url != "" {
			if err := cmd.Flags().Set("database-url", url); err != nil {
				return config.Config{}, oops.Code("CONFIG_INVALID").Wrap(err)
			}
		}
	}
	return config.Load(configFile, cmd.Flags())
}

// monitorServerErrors watches a server's error channel and cancels the
// context on error so a failed listener shuts the whole process down.
func monitorServerErrors(ctx context.Context, cancel context.CancelFunc, errCh <-chan error, serverName string) {
	select {
	case err, ok := <-errCh:
		if !ok {
			return
		}
		if err != nil {
			slog.Error("server error, triggering shutdown",
				"server", serverName,
				"error", err,
			)
			cancel()
		}
	case <-ctx.Done():
	}
}
