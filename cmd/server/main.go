package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	httpAdapter "github.com/iho/gorecon/internal/adapter/http"
	"github.com/iho/gorecon/internal/adapter/http/handler"
	"github.com/iho/gorecon/internal/adapter/http/middleware"
	"github.com/iho/gorecon/internal/adapter/report"
	postgresRepo "github.com/iho/gorecon/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/gorecon/internal/adapter/repository/redis"
	"github.com/iho/gorecon/internal/infrastructure/config"
	"github.com/iho/gorecon/internal/infrastructure/logger"
	"github.com/iho/gorecon/internal/infrastructure/metrics"
	"github.com/iho/gorecon/internal/infrastructure/postgres"
	"github.com/iho/gorecon/internal/infrastructure/redis"
	"github.com/iho/gorecon/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Setup logger
	appLogger := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	log.Logger = appLogger

	tolerances, err := cfg.Tolerances()
	if err != nil {
		appLogger.Fatal().Err(err).Msg("invalid matching tolerances")
	}

	ctx := context.Background()

	// Connect to PostgreSQL
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	appLogger.Info().Msg("connected to postgres")

	// Run migrations
	if err := postgres.RunMigrations(cfg.DatabaseURL, "migrations"); err != nil {
		appLogger.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	appLogger.Info().Msg("connected to redis")

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	idGen := postgresRepo.NewULIDGenerator()
	sourceRepo := postgresRepo.NewSourceRepository(pool)
	matchRepo := postgresRepo.NewMatchRepository(pool, idGen)
	findingRepo := postgresRepo.NewFindingRepository(pool, idGen)
	runRepo := postgresRepo.NewRunRepository(pool)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)

	// Initialize use case
	opts := []usecase.ReconciliationOption{
		usecase.WithRunObserver(metrics.New()),
	}
	if cfg.ReportDir != "" {
		opts = append(opts, usecase.WithReportWriter(report.NewExcelWriter(cfg.ReportDir)))
	}

	reconUC := usecase.NewReconciliationUseCase(
		sourceRepo,
		matchRepo,
		findingRepo,
		runRepo,
		txManager,
		tolerances,
		appLogger,
		opts...,
	)

	// Initialize handlers
	reconHandler := handler.NewReconHandler(reconUC)
	healthHandler := handler.NewHealthHandler(pool, redisClient)

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		ReconHandler:     reconHandler,
		HealthHandler:    healthHandler,
		IdempotencyStore: idempotencyStore,
		RateLimiter:      middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
		Logger:           appLogger,
	})

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	// Start server in goroutine
	go func() {
		appLogger.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info().Msg("shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Fatal().Err(err).Msg("server forced to shutdown")
	}

	appLogger.Info().Msg("server stopped")
}
