// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/olegiv/lingopack-go/internal/cache"
	"github.com/olegiv/lingopack-go/internal/config"
	"github.com/olegiv/lingopack-go/internal/engine"
	"github.com/olegiv/lingopack-go/internal/handler/api"
	"github.com/olegiv/lingopack-go/internal/logging"
	"github.com/olegiv/lingopack-go/internal/middleware"
	"github.com/olegiv/lingopack-go/internal/pack"
	"github.com/olegiv/lingopack-go/internal/provider"
	"github.com/olegiv/lingopack-go/internal/store"
	"github.com/olegiv/lingopack-go/internal/version"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

func main() {
	// Parse CLI flags
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "LingoPack - Translation Batch Orchestration Engine\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  LINGOPACK_DB_PATH           SQLite database path (default: ./data/lingopack.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  LINGOPACK_SERVER_PORT       Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  LINGOPACK_ENV               Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  LINGOPACK_API_TOKEN_HASH    bcrypt hash of the API bearer token (empty disables auth)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  LINGOPACK_PARALLEL_BATCHES  Concurrent batch runs (default: 4)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  LINGOPACK_OPENAI_API_KEY    Enables the openai translation provider\n")
		_, _ = fmt.Fprintf(os.Stderr, "  LINGOPACK_REDIS_URL         Redis URL for distributed caching (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "\nFor more information, see: https://github.com/olegiv/lingopack-go\n")
	}

	flag.Parse()

	// Handle -h/-help flag
	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	// Handle -v/-version flag
	if *showVersion {
		fmt.Println(version.Info{Version: appVersion, GitCommit: appGitCommit, BuildTime: appBuildTime})
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env file if present (development)
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	versionInfo := &version.Info{
		Version:   appVersion,
		GitCommit: appGitCommit,
		BuildTime: appBuildTime,
	}

	// Setup logger
	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Ensure data directory exists
	dbDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	// Initialize database
	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		err = db.Close()
		if err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	// Run migrations
	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	// Upgrade logger to also write WARN and ERROR logs to the event log
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	eventLogHandler := logging.NewEventLogHandler(textHandler, db)
	logger = slog.New(eventLogHandler)
	slog.SetDefault(logger)
	slog.Info("event log integration enabled", "min_level", "warn")

	queries := store.New(db)

	// Initialize cache backend
	cacheConfig := cache.Config{
		Backend:         "memory",
		RedisURL:        cfg.RedisURL,
		Prefix:          cfg.CachePrefix,
		DefaultTTL:      cfg.CacheTTLDuration(),
		CleanupInterval: time.Minute,
	}
	if cfg.UseRedisCache() {
		cacheConfig.Backend = "redis"
	}
	backend, err := cache.New(cacheConfig)
	if err != nil {
		// Redis being down should not keep the engine from starting.
		slog.Warn("cache backend unavailable, falling back to memory", "backend", cacheConfig.Backend, "error", err)
		cacheConfig.Backend = "memory"
		if backend, err = cache.New(cacheConfig); err != nil {
			return fmt.Errorf("initializing cache: %w", err)
		}
	} else {
		slog.Info("cache backend initialized", "backend", cacheConfig.Backend)
	}
	defer func() {
		if err := backend.Close(); err != nil {
			slog.Error("error closing cache backend", "error", err)
		}
	}()

	languageCache := cache.NewLanguageCache(queries)
	glossaryCache := cache.NewGlossaryCache(queries, backend)

	ctx := context.Background()
	if err := languageCache.Preload(ctx); err != nil {
		slog.Warn("failed to preload language cache", "error", err)
	}

	// Register translation providers
	registry := provider.NewRegistry()
	if err := registry.Register(provider.NewStatic()); err != nil {
		return fmt.Errorf("registering static provider: %w", err)
	}
	if cfg.OpenAIEnabled() {
		openAI, err := provider.NewOpenAI(provider.OpenAIOptions{
			APIKey:            cfg.OpenAIAPIKey,
			Model:             cfg.OpenAIModel,
			RequestsPerSecond: cfg.OpenAIRPS,
		}, logger)
		if err != nil {
			return fmt.Errorf("initializing openai provider: %w", err)
		}
		if err := registry.Register(openAI); err != nil {
			return fmt.Errorf("registering openai provider: %w", err)
		}
		slog.Info("openai provider registered", "model", cfg.OpenAIModel, "rps", cfg.OpenAIRPS)
	}
	slog.Info("translation providers ready", "providers", registry.IDs())

	// Engine core
	bus := engine.NewBus(logger)
	defer bus.Close()

	planner := engine.NewPlanner(queries, logger)
	builder := engine.NewContextBuilder(queries, languageCache, glossaryCache, logger)
	controller, err := engine.NewController(queries, registry, bus, logger, cfg.ParallelBatches)
	if err != nil {
		return fmt.Errorf("initializing controller: %w", err)
	}
	defer controller.Close()
	slog.Info("execution controller initialized", "parallel_batches", cfg.ParallelBatches)

	exporter := pack.NewExporter(queries, logger)

	// Scheduled event log retention sweep
	retention := cron.New()
	_, err = retention.AddFunc("17 3 * * *", func() {
		cutoff := time.Now().Add(-cfg.EventRetentionDuration())
		deleted, err := queries.DeleteEventsBefore(context.Background(), cutoff)
		if err != nil {
			slog.Error("event retention sweep failed", "error", err)
			return
		}
		if deleted > 0 {
			slog.Info("event retention sweep", "deleted", deleted, "cutoff", cutoff)
		}
	})
	if err != nil {
		return fmt.Errorf("scheduling event retention sweep: %w", err)
	}
	retention.Start()
	defer retention.Stop()
	slog.Info("event retention sweep scheduled", "retention_days", cfg.EventRetention)

	apiHandler := api.NewHandler(db, planner, builder, controller, bus, exporter, versionInfo, logger)

	// Create router
	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)

	// Health check route (public)
	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		if err := db.PingContext(req.Context()); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = fmt.Fprintln(w, "ok")
	})

	// REST API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		rateLimiter := middleware.NewRateLimiter(float64(cfg.APIRateLimit)/60.0, cfg.APIRateLimit)
		r.Use(rateLimiter.Middleware())

		// Public endpoint
		r.Get("/status", apiHandler.Status)

		// Protected endpoints (bearer token, unless auth is disabled)
		r.Group(func(r chi.Router) {
			r.Use(middleware.BearerAuth(cfg.APITokenHash))

			r.Route("/batches", func(r chi.Router) {
				r.Post("/", apiHandler.StartBatch)
				r.Get("/", apiHandler.ListBatches)
				r.Get("/{id}", apiHandler.GetBatch)
				r.Get("/{id}/units", apiHandler.ListBatchUnits)
				r.Get("/{id}/events", apiHandler.ListBatchEvents)
				r.Post("/{id}/pause", apiHandler.PauseBatch)
				r.Post("/{id}/resume", apiHandler.ResumeBatch)
				r.Post("/{id}/cancel", apiHandler.CancelBatch)
				r.Post("/{id}/retry", apiHandler.RetryBatch)
			})

			r.Get("/events", apiHandler.ListEvents)
			r.Get("/events/stream", apiHandler.StreamEvents)

			r.Get("/project-languages/{id}/export", apiHandler.ExportPack)
		})
	})
	if !cfg.AuthEnabled() {
		slog.Warn("API authentication disabled", "note", "set LINGOPACK_API_TOKEN_HASH in production")
	}
	slog.Info("REST API v1 mounted at /api/v1")

	// Create server with appropriate timeouts. WriteTimeout stays zero so the
	// SSE event stream is not cut off.
	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	// Start server in goroutine
	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
