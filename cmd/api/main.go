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

	"github.com/clubfines/backend/internal/admin"
	"github.com/clubfines/backend/internal/authprovider"
	"github.com/clubfines/backend/internal/config"
	"github.com/clubfines/backend/internal/core"
	"github.com/clubfines/backend/internal/fine"
	"github.com/clubfines/backend/internal/finereason"
	"github.com/clubfines/backend/internal/health"
	"github.com/clubfines/backend/internal/identity"
	"github.com/clubfines/backend/internal/middleware"
	"github.com/clubfines/backend/internal/player"
	"github.com/clubfines/backend/internal/reconcile"
	"github.com/clubfines/backend/internal/server"
	"github.com/clubfines/backend/internal/setting"
)

const (
	drainDelay = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
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

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)

	redis, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	logger.Info("redis connected",
		"pool_size", cfg.Redis.PoolSize,
	)

	sessionManager, err := authprovider.NewSessionManager(cfg.Session)
	if err != nil {
		return err
	}
	logger.Info("session manager initialized",
		"algorithm", "ES256",
		"key_id", sessionManager.GetKeyID(),
	)

	userRepo := identity.NewRepository(db.DB)
	userSvc := identity.NewService(userRepo)
	userHandler := identity.NewHandler(userSvc)

	providerRepo := authprovider.NewRepository(db.DB)
	providerSvc := authprovider.NewService(
		providerRepo,
		sessionManager,
		userSvc,
		redis.Client,
	)
	authHandler := authprovider.NewHandler(providerSvc, sessionManager)
	userSvc.SetSessionRevoker(providerSvc)

	engine := reconcile.NewEngine(userRepo, providerSvc, logger)
	reporter := reconcile.NewReporter(userRepo, providerSvc)
	reconcileHandler := reconcile.NewHandler(engine, reporter)

	playerRepo := player.NewRepository(db.DB)
	playerHandler := player.NewHandler(playerRepo)

	reasonRepo := finereason.NewRepository(db.DB)
	reasonHandler := finereason.NewHandler(reasonRepo)

	fineRepo := fine.NewRepository(db.DB)
	fineSvc := fine.NewService(fineRepo, playerRepo, reasonRepo)
	fineHandler := fine.NewHandler(fineSvc)

	settingRepo := setting.NewRepository(db.DB)
	settingHandler := setting.NewHandler(settingRepo)

	healthHandler := health.NewHandler(cfg.App.Name,
		health.Check{Name: "postgres", Checker: db},
		health.Check{Name: "redis", Checker: redis},
	)

	adminHandler := admin.NewHandler(admin.HandlerConfig{
		DBStats:    db.Stats,
		RedisStats: redis.PoolStats,
		DBPing:     db.Ping,
		RedisPing:  redis.Ping,
		Sessions:   providerRepo,
	})

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(logger))
	router.Use(
		middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
			Limit: middleware.PerMinute(
				cfg.RateLimit.Requests,
				cfg.RateLimit.Burst,
			),
			FailOpen: true,
		}).Handler,
	)
	router.Use(middleware.SecurityHeaders(cfg.App.Environment == "production"))
	router.Use(middleware.CORS(cfg.CORS))

	healthHandler.RegisterRoutes(router)

	authenticator := middleware.Authenticator(userSvc, providerSvc)
	roleLimiter := middleware.RoleRateLimiter(
		redis.Client,
		middleware.DefaultRoleLimits,
	)

	router.Route("/api", func(r chi.Router) {
		r.Use(roleLimiter)

		authHandler.RegisterRoutes(r, authenticator)
		userHandler.RegisterRoutes(r, authenticator)
		playerHandler.RegisterRoutes(r, authenticator)
		reasonHandler.RegisterRoutes(r, authenticator)
		fineHandler.RegisterRoutes(r, authenticator)
		settingHandler.RegisterRoutes(r, authenticator)

		if cfg.App.BootstrapRoutes {
			reconcileHandler.RegisterRoutes(r)
			logger.Warn("bootstrap admin routes enabled, no authentication on /api/admin provisioning endpoints")
		}

		adminHandler.RegisterRoutes(
			r,
			authenticator,
			middleware.RequireSuperadmin,
		)
	})

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
