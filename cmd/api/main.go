package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"zehnify/api/internal/cache"
	"zehnify/api/internal/config"
	"zehnify/api/internal/database"
	"zehnify/api/internal/handlers"
	"zehnify/api/internal/log"
	"zehnify/api/internal/metrics"
	"zehnify/api/internal/repository"
	"zehnify/api/internal/security"
	"zehnify/api/internal/server"
	"zehnify/api/internal/service"
	"zehnify/api/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := log.New(cfg.Environment, cfg.LogLevel)

	ctx := context.Background()

	if cfg.Postgres.AutoMigrate {
		if err := database.Migrate(cfg.Postgres.DSN, logger); err != nil {
			logger.Fatal().Err(err).Msg("failed to migrate database")
		}
	}

	dbPool, err := database.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect postgres")
	}

	checks := map[string]handlers.HealthCheck{
		"postgres": dbPool.Ping,
	}

	users := repository.NewUserRepository(dbPool)
	courses := repository.NewCourseRepository(dbPool)
	enrollments := repository.NewEnrollmentRepository(dbPool)

	var catalogOpts []service.CatalogOption

	var redisClient *redis.Client
	if cfg.CacheEnabled() {
		redisClient, err = cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect redis")
		}
		catalogOpts = append(catalogOpts, service.WithCourseCache(cache.NewCourseCache(redisClient, cfg.Cache.CatalogTTL)))
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	} else {
		logger.Info().Msg("redis not configured, catalog cache disabled")
	}

	if cfg.StorageEnabled() {
		objectStore, err := storage.NewObjectStore(cfg.Storage)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to init object store")
		}
		if err := objectStore.EnsureBucket(ctx); err != nil {
			logger.Warn().Err(err).Msg("ensure thumbnail bucket failed")
		}
		catalogOpts = append(catalogOpts, service.WithThumbnailStore(objectStore, cfg.Storage.MaxThumbnailBytes))
		checks["storage"] = objectStore.Ping
	} else {
		logger.Info().Msg("object storage not configured, thumbnail uploads disabled")
	}

	tokens := security.NewTokenIssuer(cfg.Security.JWTSecret, cfg.Security.Issuer, cfg.Security.TokenTTL)
	m := metrics.New()

	handlerSet := handlers.NewHandlerSet(
		logger,
		cfg,
		service.NewAuthService(users, tokens, logger),
		service.NewCatalogService(courses, logger, catalogOpts...),
		service.NewEnrollmentService(enrollments, courses, logger),
		m,
		checks,
	)
	httpServer := server.NewHTTPServer(cfg, logger, m, handlerSet)

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	waitForShutdown(logger, httpServer, dbPool, redisClient)
}

func waitForShutdown(logger zerolog.Logger, srv *server.HTTPServer, db *pgxpool.Pool, redisClient *redis.Client) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	db.Close()
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("redis close error")
		}
	}

	logger.Info().Msg("server exited cleanly")
}
