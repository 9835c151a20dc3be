// TaskForge identity API server.
//
// @title        TaskForge Identity API
// @version      1.0
// @description  Credential issuance, session tokens, and role-based access for the TaskForge platform.
//
// @securityDefinitions.apikey BearerAuth
// @in    header
// @name  Authorization
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/taskforge/taskforge-api/internal/api"
	"github.com/taskforge/taskforge-api/internal/infrastructure/config"
	mongodb "github.com/taskforge/taskforge-api/internal/infrastructure/db/mongo"
	redisdb "github.com/taskforge/taskforge-api/internal/infrastructure/db/redis"
	"github.com/taskforge/taskforge-api/internal/infrastructure/queue"
	"github.com/taskforge/taskforge-api/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	zlog := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		zlog.Fatal().Err(err).Msg("mongodb connection failed")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(shutdownCtx)
	}()

	identityRepo := mongodb.NewIdentityRepository(db)
	if err := identityRepo.EnsureIndexes(ctx); err != nil {
		zlog.Fatal().Err(err).Msg("identity index creation failed")
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		zlog.Fatal().Err(err).Msg("redis connection failed")
	}
	defer rdb.Close()

	dispatcher := queue.NewDispatcher(cfg.Auth.AuditWorkers, mongodb.NewAuditRepository(db), zlog)
	dispatcher.Start(ctx)

	e := api.NewRouter(db, rdb, cfg, zlog, dispatcher)

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil {
			zlog.Info().Err(err).Msg("http server stopped")
		}
	}()
	zlog.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("taskforge identity api started")

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		zlog.Error().Err(err).Msg("graceful shutdown failed")
	}

	zlog.Info().Msg("shutdown complete")
}
