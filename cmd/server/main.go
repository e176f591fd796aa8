// Package main is the entrypoint for the ClassPulse API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/classpulse/classpulse/internal/api"
	"github.com/classpulse/classpulse/internal/api/handler"
	mw "github.com/classpulse/classpulse/internal/api/middleware"
	"github.com/classpulse/classpulse/internal/api/response"
	"github.com/classpulse/classpulse/internal/cache"
	"github.com/classpulse/classpulse/internal/config"
	"github.com/classpulse/classpulse/internal/imageio"
	"github.com/classpulse/classpulse/internal/queue"
	"github.com/classpulse/classpulse/internal/store"
	"github.com/classpulse/classpulse/internal/vision"
)

const shutdownTimeout = 30 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config — fail fast on invalid config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.Info("config loaded",
		"ai_provider", cfg.AI.Provider, "store_backend", cfg.Store.Backend, "env", cfg.Server.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Open the session store
	sessionStore, cleanup, err := openStore(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer cleanup()
	slog.Info("session store ready", "backend", cfg.Store.Backend)

	// 3. Create Redis cache
	redisCache, err := cache.NewRedisCache(cfg.Redis.URL)
	if err != nil {
		return fmt.Errorf("create redis cache: %w", err)
	}
	defer redisCache.Close()

	if err := redisCache.Ping(ctx); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	slog.Info("redis connected")

	// 4. Create vision provider
	provider, err := vision.NewProvider(cfg.AI)
	if err != nil {
		return fmt.Errorf("create vision provider: %w", err)
	}
	slog.Info("vision provider initialized", "provider", provider.Name())

	// 5. Wire the pipeline: loader → vision service → queue coordinator
	loader := imageio.NewLoader(cfg.AI.ImageFetchTimeout)
	visionSvc := vision.NewService(provider, loader, sessionStore, redisCache, cfg.AI.InferenceTimeout)
	coordinator := queue.NewCoordinator(sessionStore, visionSvc)

	// 6. Build router with dependencies
	auth := mw.NewAuth(cfg.Auth.APIKeyHash)
	rateLimit := mw.NewRateLimit(redisCache, cfg.Auth.RequestsPerMin)

	deps := api.Dependencies{
		Auth:      auth,
		RateLimit: rateLimit,

		HealthHandler:    healthHandler(sessionStore, redisCache),
		CreateJobHandler: handler.NewCreateJobHandler(sessionStore),
		AnalyzeHandler:   handler.NewAnalyzeHandler(coordinator),
		ReportHandler:    handler.NewReportHandler(visionSvc),
		StatusHandler:    handler.NewStatusHandler(visionSvc),
	}

	router := api.NewRouter(deps)

	// 7. Start HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for shutdown signal or server error
	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		slog.Info("shutdown signal received, draining connections...")
	}

	// Graceful shutdown: stop the listener first, then drain job backlogs
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	if err := coordinator.Shutdown(shutdownCtx); err != nil {
		slog.Warn("job backlogs not fully drained", "error", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}

// openStore builds the configured store backend and returns it with a
// cleanup function.
func openStore(ctx context.Context, cfg config.StoreConfig) (store.Store, func(), error) {
	switch cfg.Backend {
	case "postgres":
		pool, err := store.Connect(ctx, cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("connect database: %w", err)
		}
		if err := store.RunMigrations(cfg.Database.URL, "migrations"); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("run migrations: %w", err)
		}
		return store.NewPostgresStore(pool), pool.Close, nil
	default:
		s, err := store.NewCSVStore(cfg.LogDir)
		if err != nil {
			return nil, nil, fmt.Errorf("open csv store: %w", err)
		}
		return s, func() {}, nil
	}
}

// healthHandler checks store and cache connectivity.
func healthHandler(s store.Store, c cache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{
			"store": "ok",
			"cache": "ok",
		}

		if err := s.Ping(r.Context()); err != nil {
			checks["store"] = "degraded"
		}
		if err := c.Ping(r.Context()); err != nil {
			checks["cache"] = "degraded"
		}

		degraded := checks["store"] != "ok" || checks["cache"] != "ok"
		if degraded {
			response.Error(w, http.StatusServiceUnavailable, "DEGRADED",
				"One or more services degraded", checks)
			return
		}

		response.JSON(w, map[string]any{
			"status":   "ok",
			"services": checks,
		})
	}
}
