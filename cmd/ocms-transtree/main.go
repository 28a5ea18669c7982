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

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/olegiv/ocms-transtree/internal/cache"
	"github.com/olegiv/ocms-transtree/internal/config"
	"github.com/olegiv/ocms-transtree/internal/handler"
	"github.com/olegiv/ocms-transtree/internal/hook"
	"github.com/olegiv/ocms-transtree/internal/language"
	"github.com/olegiv/ocms-transtree/internal/logging"
	"github.com/olegiv/ocms-transtree/internal/middleware"
	"github.com/olegiv/ocms-transtree/internal/scheduler"
	"github.com/olegiv/ocms-transtree/internal/service"
	"github.com/olegiv/ocms-transtree/internal/session"
	"github.com/olegiv/ocms-transtree/internal/store"
	"github.com/olegiv/ocms-transtree/internal/treesync"
	"github.com/olegiv/ocms-transtree/internal/version"
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
		_, _ = fmt.Fprintf(os.Stderr, "ocms-transtree - language tree synchronization for oCMS sites\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OCMS_DB_PATH             SQLite database path (default: ./data/transtree.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OCMS_SERVER_PORT         Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OCMS_ENV                 Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OCMS_SYNC_TREE           Mirror page edits into every language tree (default: true)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OCMS_LANGUAGES_PER_SITE  Per-site default and allowed languages (default: false)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OCMS_DEFAULT_LANGUAGE    Language seeded on an empty database (default: en)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OCMS_AUDIT_SCHEDULE      Cron spec of the tree audit, \"off\" disables (default: @hourly)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OCMS_REDIS_URL           Redis URL for distributed caching (optional)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	info := version.Info{Version: appVersion, GitCommit: appGitCommit, BuildTime: appBuildTime}
	if *showVersion {
		_, _ = fmt.Printf("ocms-transtree %s\n", info)
		os.Exit(0)
	}

	if err := run(info); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func parseLogLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func run(info version.Info) error {
	// Load .env files if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logLevel := parseLogLevel(cfg.LogLevel)
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	// WARN and above also go to the event log.
	eventLogHandler := logging.NewEventLogHandler(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}), db)
	defer eventLogHandler.Close()
	logger := slog.New(eventLogHandler)
	slog.SetDefault(logger)

	cacheResult, err := cache.NewCacheWithInfo(cache.CacheConfig{
		Type:             cacheBackend(cfg),
		RedisURL:         cfg.RedisURL,
		Prefix:           cfg.CachePrefix,
		DefaultTTL:       time.Duration(cfg.CacheTTL) * time.Second,
		MaxSize:          cfg.CacheMaxSize,
		CleanupInterval:  time.Minute,
		FallbackToMemory: true,
	})
	if err != nil {
		return fmt.Errorf("initializing cache: %w", err)
	}
	defer func() { _ = cacheResult.Cache.Close() }()
	logger.Info("cache initialized", "backend", cacheResult.BackendType, "fallback", cacheResult.IsFallback,
		"url", cache.SanitizeRedisURL(cfg.RedisURL))

	// Resolver mode is fixed for the lifetime of the process.
	resolver := language.NewResolver(cfg.LanguagesPerSite)
	hooks := hook.NewRegistry(logger)
	synchronizer := treesync.New(hooks, resolver, logger, cfg.SyncTree)
	synchronizer.Register()
	logger.Info("tree synchronization configured", "sync_tree", cfg.SyncTree, "languages_per_site", cfg.LanguagesPerSite)

	languageCache := cache.NewLanguageCache(cacheResult.Cache, store.New(db), resolver, time.Duration(cfg.CacheTTL)*time.Second)
	pages := service.NewPageService(db, hooks, resolver, logger)
	languages := service.NewLanguageService(db, hooks, resolver, logger, languageCache)
	sites := service.NewSiteService(db, hooks, resolver, logger, languageCache)
	events := service.NewEventService(db)

	ctx := context.Background()
	if err := service.Seed(ctx, languages, sites, service.SeedInput{
		LanguageCode: cfg.DefaultLanguage,
		Hostname:     cfg.DefaultSite,
	}); err != nil {
		return fmt.Errorf("seeding database: %w", err)
	}

	if cfg.AuditEnabled() {
		sched := scheduler.New(db, synchronizer, events, cfg.AuditSchedule, logger)
		if err := sched.Start(); err != nil {
			return fmt.Errorf("starting scheduler: %w", err)
		}
		defer sched.Stop()
	}

	sessionManager := session.New(db, cfg.SessionLifetime, cfg.IsDevelopment())

	r := newRouter(routerDeps{
		db:       db,
		sessions: sessionManager,
		resolver: middleware.NewLanguageResolver(languageCache, sessionManager),
		health:   handler.NewHealthHandler(db, cacheResult.Cache, info),
		root:     handler.NewRootHandler(db, logger),
		trans:    handler.NewTranslationsHandler(pages),
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		logger.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env, "version", info.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

func cacheBackend(cfg *config.Config) string {
	if cfg.UseRedisCache() {
		return cache.CacheBackendRedis
	}
	return cache.CacheBackendMemory
}

type routerDeps struct {
	db       *sql.DB
	sessions *scs.SessionManager
	resolver *middleware.LanguageResolver
	health   *handler.HealthHandler
	root     *handler.RootHandler
	trans    *handler.TranslationsHandler
}

func newRouter(d routerDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.GetHead)

	r.Get("/health", d.health.Health)
	r.Get("/health/live", d.health.Liveness)
	r.Get("/health/ready", d.health.Readiness)

	r.Get("/api/pages/{id}/translations", d.trans.List)

	r.Group(func(r chi.Router) {
		r.Use(d.sessions.LoadAndSave)
		r.Use(middleware.Site(d.db))
		lang := middleware.Language(d.resolver)
		// With runs after routing so the {lang} parameter is visible.
		r.With(lang).Get("/", d.root.ServeRoot)
		r.With(lang).Get("/{lang}/", d.root.ServeRoot)
	})

	return r
}
