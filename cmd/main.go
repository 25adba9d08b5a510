package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"workspace-service/internal/handler"
	"workspace-service/internal/middleware"
	"workspace-service/internal/ratelimit"
	"workspace-service/internal/service"
	"workspace-service/internal/store"
	"workspace-service/pkg/config"
	"workspace-service/pkg/database"
	"workspace-service/pkg/jwtutil"
	"workspace-service/pkg/logger"
	"workspace-service/pkg/password"
	"workspace-service/prometheus"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (default)",
		RunE:  func(cmd *cobra.Command, _ []string) error { return runServe(cmd.Context()) },
	}
	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema and exit",
		RunE:  func(cmd *cobra.Command, _ []string) error { return runMigrate(cmd.Context()) },
	}

	root := &cobra.Command{
		Use:          "workspace-service",
		Short:        "Multi-tenant workspace API",
		SilenceUsage: true,
		RunE:         serve.RunE,
	}
	root.AddCommand(serve, migrate)
	return root
}

// bootstrap loads configuration, the logger and the database.
func bootstrap(ctx context.Context) (*config.Config, *zap.Logger, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := logger.InitLogger(cfg); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.GetLogger()
	log.Info("Configuration loaded", cfg.LogFields()...)

	db, err := database.InitDB(ctx, &cfg.DB)
	if err != nil {
		log.Error("Failed to initialize database", zap.Error(err))
		return nil, nil, nil, err
	}
	log.Info("Database connection established")
	return cfg, log, db, nil
}

func runMigrate(ctx context.Context) error {
	_, log, db, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer database.Close(db)

	if err := database.Migrate(db); err != nil {
		log.Error("Migration failed", zap.Error(err))
		return err
	}
	log.Info("Database migrated")
	return nil
}

func runServe(ctx context.Context) error {
	cfg, log, db, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	if err := database.Migrate(db); err != nil {
		log.Error("Migration failed", zap.Error(err))
		return multierr.Append(err, database.Close(db))
	}

	hasher, err := password.NewBcrypt(cfg.Auth.BcryptCost)
	if err != nil {
		return multierr.Append(err, database.Close(db))
	}
	tokens := jwtutil.NewJWTUtil(cfg.JWT.SigningKey, cfg.JWT.Lifetime(), nil)

	limiter, redisClient, err := newLimiter(cfg)
	if err != nil {
		return multierr.Append(err, database.Close(db))
	}

	s := store.New(db)
	audit := service.NewAuditRecorder(nil)
	quota := service.NewQuotaEnforcer()

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = handler.ErrorHandler

	// order matters: the request id must exist before the logger reads it
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{AllowOrigins: cfg.Server.AllowedOrigins}))
	e.Use(middleware.RequestIDMiddleware())
	e.Use(logger.Middleware())
	e.Use(prometheus.MetricsMiddleware())
	e.Use(echomiddleware.ContextTimeout(cfg.Server.RequestTimeout))

	handler.RegisterRoutes(e, handler.Handlers{
		Auth:     handler.NewAuthHandler(service.NewTenantService(s, hasher, tokens, quota, audit, nil), limiter),
		Projects: handler.NewProjectHandler(service.NewProjectService(s, quota, audit, nil)),
		Tasks:    handler.NewTaskHandler(service.NewTaskService(s, audit, nil)),
		Health:   handler.NewHealthHandler(s, cfg.ServiceName),
	}, tokens)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		log.Info("Shutting down server")
	case serveErr = <-errCh:
		log.Error("Server stopped", zap.Error(serveErr))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	err = multierr.Combine(serveErr, e.Shutdown(shutdownCtx), database.Close(db))
	if redisClient != nil {
		err = multierr.Append(err, redisClient.Close())
	}
	if err != nil {
		log.Error("Shutdown finished with errors", zap.Error(err))
		return err
	}
	log.Info("Server stopped cleanly")
	_ = log.Sync()
	return nil
}

// newLimiter uses Redis when REDIS_URL is set and an in-process limiter
// otherwise. The returned client, if any, must be closed by the caller.
func newLimiter(cfg *config.Config) (ratelimit.Limiter, *redis.Client, error) {
	if cfg.Auth.RedisURL == "" {
		return ratelimit.NewLocal(cfg.Auth.LoginMaxAttempts, cfg.Auth.LoginWindow, nil), nil, nil
	}
	opts, err := redis.ParseURL(cfg.Auth.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	return ratelimit.NewRedis(client, cfg.Auth.LoginMaxAttempts, cfg.Auth.LoginWindow), client, nil
}
