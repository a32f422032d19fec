// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ristan-marine/catalog-api/internal/account"
	"github.com/ristan-marine/catalog-api/internal/admin"
	"github.com/ristan-marine/catalog-api/internal/auth"
	"github.com/ristan-marine/catalog-api/internal/config"
	"github.com/ristan-marine/catalog-api/internal/core"
	"github.com/ristan-marine/catalog-api/internal/guard"
	"github.com/ristan-marine/catalog-api/internal/health"
	"github.com/ristan-marine/catalog-api/internal/identity"
	"github.com/ristan-marine/catalog-api/internal/inquiry"
	"github.com/ristan-marine/catalog-api/internal/metrics"
	"github.com/ristan-marine/catalog-api/internal/middleware"
	"github.com/ristan-marine/catalog-api/internal/product"
	"github.com/ristan-marine/catalog-api/internal/server"
	"github.com/ristan-marine/catalog-api/internal/storage"
)

const (
	drainDelay = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "", "path to optional YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

//nolint:funlen // bootstrap code is inherently verbose
func run(configPath string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	var telemetry *core.Telemetry
	if cfg.Otel.Enabled {
		tel, telErr := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
		if telErr != nil {
			logger.Warn("failed to initialize telemetry", "error", telErr)
		} else {
			telemetry = tel
			logger.Info("OpenTelemetry tracer initialized",
				"endpoint", cfg.Otel.Endpoint,
			)
		}
	}

	db, err := core.NewDatabase(ctx, cfg.Database, cfg.App.Name)
	if err != nil {
		return err
	}
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"simple_protocol", cfg.Database.SimpleProtocol,
	)

	redis, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	logger.Info("redis connected",
		"pool_size", cfg.Redis.PoolSize,
	)

	store, err := storage.NewStore(cfg.Storage)
	if err != nil {
		return err
	}

	idp := identity.NewClient(cfg.Identity)
	verifier := identity.NewVerifier(cfg.Identity.VerifyMode, cfg.Identity.JWTSecret, idp)
	logger.Info("identity client initialized",
		"verify_mode", cfg.Identity.VerifyMode,
		"oauth_providers", cfg.Identity.OAuthProviders,
	)

	cookies := auth.NewCookies(cfg.Session)
	resolver := auth.NewResolver(verifier, idp, cookies)

	accountRepo := account.NewRepository(db.DB)
	accountSvc := account.NewService(accountRepo, idp)
	accountHandler := account.NewHandler(accountSvc)

	productRepo := product.NewRepository(db.DB)
	productSvc := product.NewService(productRepo, store, redis)
	productHandler := product.NewHandler(productSvc, cfg.Storage.MaxUploadBytes)

	inquiryRepo := inquiry.NewRepository(db.DB)
	inquirySvc := inquiry.NewService(inquiryRepo)
	inquiryHandler := inquiry.NewHandler(inquirySvc)

	authSvc := auth.NewService(idp, accountSvc, cfg.Identity.OAuthProviders)
	authHandler := auth.NewHandler(authSvc, cookies, cfg.Site.BaseURL)

	gate := guard.New(accountSvc, cfg.Site.BaseURL)

	adminHandler := admin.NewHandler(admin.HandlerConfig{
		Products:   productSvc,
		Accounts:   accountSvc,
		Inquiries:  inquirySvc,
		DBStats:    db.Stats,
		RedisStats: redis.PoolStats,
	})

	healthHandler := health.NewHandler(
		health.Dependency{Name: "database", Checker: db},
		health.Dependency{Name: "redis", Checker: redis},
		health.Dependency{Name: "storage", Checker: store},
	)

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Metrics)
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.CORS(cfg.CORS))
	router.Use(middleware.Language(cfg.Lang))

	healthHandler.RegisterRoutes(router)

	if cfg.Metrics.Enabled {
		router.Handle(cfg.Metrics.Path, metrics.Handler())
	}

	publicLimit := middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
		Name:     "public",
		Limit:    middleware.LimitFromConfig(cfg.RateLimit),
		KeyFunc:  middleware.KeyByIPAndRoute,
		FailOpen: true,
	}).Handler

	authenticator := middleware.Authenticator(resolver)
	userOnly := middleware.RequireUser
	adminOnly := middleware.RequireAdmin

	router.Route("/api", func(r chi.Router) {
		r.Use(authenticator)

		authHandler.RegisterRoutes(r, publicLimit)
		inquiryHandler.RegisterRoutes(r, publicLimit)

		accountHandler.RegisterRoutes(r, userOnly)
		productHandler.RegisterRoutes(r, userOnly)

		accountHandler.RegisterAdminRoutes(r, adminOnly)
		productHandler.RegisterAdminRoutes(r, adminOnly)
		adminHandler.RegisterRoutes(r, adminOnly)
	})

	authHandler.RegisterPageRoutes(router)

	pages := server.Pages(cfg.Site.PagesDir)

	router.Group(func(r chi.Router) {
		r.Use(authenticator)
		r.Use(gate.Middleware)

		for _, root := range []string{"/admin", "/catalog"} {
			r.Handle(root, pages)
			r.Handle(root+"/*", pages)
		}
	})

	router.Handle("/*", pages)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}

	if err := redis.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}

	if err := db.Close(); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("application stopped")
	return nil
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var handler slog.Handler

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
