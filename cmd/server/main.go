package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/agrienergy/agri-produce/internal/config"
	"github.com/agrienergy/agri-produce/internal/database"
	"github.com/agrienergy/agri-produce/internal/logger"
	"github.com/agrienergy/agri-produce/internal/middleware"
	"github.com/agrienergy/agri-produce/internal/server"
	"github.com/agrienergy/agri-produce/internal/services"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})
	log.Info().Str("env", cfg.App.Env).Str("db_driver", cfg.DB.Driver).Msg("starting agri-produce")

	if cfg.App.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()
	db, err := database.Open(ctx, cfg.DB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("open database")
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	hasher := services.NewBcryptHasher()
	if cfg.Seed.Enabled {
		if err := database.Seed(ctx, db, hasher, cfg.Seed.Password, log); err != nil {
			log.Fatal().Err(err).Msg("seed database")
		}
	}

	var limiter middleware.RateLimiter
	if cfg.Redis.Addr != "" {
		rl, err := middleware.NewRedisLimiter(ctx, cfg.Redis, cfg.Throttle.Limit, cfg.Throttle.Window, log)
		if err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis unavailable, login throttle stays in memory")
		} else {
			defer rl.Close()
			limiter = rl
		}
	}

	router, err := server.NewRouter(server.Deps{
		Config:  cfg,
		DB:      db,
		Limiter: limiter,
		Hasher:  hasher,
		Log:     log,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("build router")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.App.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("http server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown")
	}
	log.Info().Msg("stopped")
}
