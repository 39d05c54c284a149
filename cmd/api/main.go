package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"maidmarket/internal/app"
	"maidmarket/internal/cache"
	"maidmarket/internal/config"
	"maidmarket/internal/database"
	jwtsvc "maidmarket/internal/pkg/jwt"
	"maidmarket/internal/pkg/logger"
	"maidmarket/internal/pkg/tracing"
	"maidmarket/internal/realtime"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("invalid configuration")
	}

	logger.Init("maidmarket-api", !cfg.IsProduction())
	logger.SetLevel(cfg.LogLevel)
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	tp := tracing.Init("maidmarket-api")

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("database connection failed")
	}
	if err := database.Migrate(db); err != nil {
		logger.Logger.Fatal().Err(err).Msg("database migration failed")
	}

	var favoriteIDs cache.FavoriteIDs = cache.Nop{}
	if cfg.RedisURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		rdb, err := cache.NewRedisClient(ctx, cfg.RedisURL)
		cancel()
		if err != nil {
			logger.Logger.Fatal().Err(err).Msg("redis connection failed")
		}
		defer rdb.Close()
		favoriteIDs = cache.NewRedisFavoriteIDs(rdb, cfg.FavoritesCacheTTL)
		logger.Logger.Info().Dur("ttl", cfg.FavoritesCacheTTL).Msg("favorites cache enabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	handler := app.NewRouter(app.Deps{
		DB:          db,
		JWT:         jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL),
		FavoriteIDs: favoriteIDs,
		Hub:         realtime.NewHub(),
		Registry:    registry,
		UnlockPrice: cfg.CVUnlockPrice,
		CORSOrigins: cfg.CORSAllowedOrigins,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Logger.Info().Str("addr", cfg.HTTPAddr).Str("env", cfg.AppEnv).Msg("api listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGrace)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Logger.Error().Err(err).Msg("http server shutdown failed")
	}
	if err := tracing.Shutdown(ctx, tp); err != nil {
		logger.Logger.Error().Err(err).Msg("tracer shutdown failed")
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}
