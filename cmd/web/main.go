// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command web is the entry point for the Charadex character explorer.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to Redis when configured, otherwise keep preferences in memory.
//  4. Connect to PostgreSQL and run migrations when configured, otherwise log error reports.
//  5. Wire the catalog client, sessions, and HTTP handlers.
//  6. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
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

	"github.com/taibuivan/charadex/internal/api"
	"github.com/taibuivan/charadex/internal/boundary"
	"github.com/taibuivan/charadex/internal/browser"
	"github.com/taibuivan/charadex/internal/catalog"
	"github.com/taibuivan/charadex/internal/platform/config"
	"github.com/taibuivan/charadex/internal/platform/constants"
	"github.com/taibuivan/charadex/internal/platform/kvstore"
	"github.com/taibuivan/charadex/internal/platform/migration"
	pgstore "github.com/taibuivan/charadex/internal/platform/postgres"
	redisstore "github.com/taibuivan/charadex/internal/platform/redis"
	"github.com/taibuivan/charadex/internal/platform/sec"
	"github.com/taibuivan/charadex/internal/report"
	"github.com/taibuivan/charadex/internal/session"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", constants.AppName))
	slog.SetDefault(log)

	log.Info("[Charadex] service_initializing", slog.String("version", constants.AppVersion))

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", constants.AppName))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("catalog", cfg.CatalogBaseURL),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// Lives until shutdown; stops the background sweepers.
	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()

	var healthDeps api.HealthDependencies

	// ── 3. Preferences (Redis or memory) ──────────────────────────────────
	var backend kvstore.Backend = kvstore.NewMemoryBackend()

	if cfg.RedisURL != "" {
		rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
		must(log, err, "connect to redis")
		defer func() {
			log.Info("closing redis client")
			if cerr := rdb.Close(); cerr != nil {
				log.Error("redis close error", slog.Any("error", cerr))
			}
		}()

		backend = kvstore.NewRedisBackend(rdb, cfg.SessionTTL)
		healthDeps.CheckCache = func(ctx context.Context) error {
			return redisstore.Ping(ctx, rdb)
		}
	} else {
		log.Warn("redis_not_configured", slog.String("fallback", "memory"))
	}

	preferences := kvstore.New(backend, log)

	// ── 4. Error reports (PostgreSQL or log) ──────────────────────────────
	var reporter report.Reporter = report.NewLogReporter(log)

	if cfg.DatabaseURL != "" {
		pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
		must(log, err, "connect to postgres")
		defer func() {
			log.Info("closing postgres pool")
			pool.Close()
		}()

		must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

		reporter = report.NewPostgresReporter(pool)
		healthDeps.CheckDatabase = func(ctx context.Context) error {
			return pgstore.Ping(ctx, pool)
		}
	} else {
		log.Warn("postgres_not_configured", slog.String("fallback", "log"))
	}

	dispatcher := report.NewDispatcher(reporter, log)

	// ── 5. Sessions ───────────────────────────────────────────────────────
	tokens, err := sec.NewSessionTokens(cfg.SessionSecret, constants.SessionIssuer, cfg.SessionTTL)
	must(log, err, "initialize session tokens")

	sessions := session.NewManager(tokens, preferences, session.Options{
		IdleTTL:      cfg.SessionIdleTTL,
		SecureCookie: cfg.IsProduction(),
		Boundaries: boundary.Options{
			ShowDetails: cfg.IsDevelopment(),
			OnError: func(err error, trace boundary.Trace) {
				log.Error("render_failure_caught",
					slog.String("boundary", trace.Boundary),
					slog.String("view", trace.View),
					slog.Any("error", err),
				)
			},
		},
	}, log)
	go sessions.Run(appCtx)

	// ── 6. Health handlers ────────────────────────────────────────────────
	liveness, readiness := api.NewHealthHandlers(healthDeps, log)

	// ── 7. Domain Wiring ──────────────────────────────────────────────────
	characters := catalog.NewClient(cfg.CatalogBaseURL, cfg.CatalogTimeout, nil)
	browserHandler := browser.NewHandler(characters, dispatcher, browser.Options{
		SupportEmail: cfg.SupportEmail,
		Development:  cfg.IsDevelopment(),
	})

	// ── 8. HTTP Server ────────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Browser:   browserHandler,
	}

	server := api.NewServer(appCtx, cfg, log, sessions, handlers)

	// ── 9. Graceful Shutdown ──────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	appCancel()
	dispatcher.Wait()

	log.Info("server stopped cleanly")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
