package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eetrade/marketplace/internal/api"
	"github.com/eetrade/marketplace/internal/core/ports"
	mongodb "github.com/eetrade/marketplace/internal/infrastructure/db/mongo"
	redisdb "github.com/eetrade/marketplace/internal/infrastructure/db/redis"
	"github.com/eetrade/marketplace/internal/pkg/config"
	"github.com/eetrade/marketplace/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.Env == "development",
		Service: "marketplace",
	})

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if !cfg.OAuth.SecretUsable() {
		log.Warn().Msg("OAuth client secret is missing or a placeholder; token exchange will fail closed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var kv ports.KeyValue
	switch cfg.StoreBackend {
	case "mongo":
		client, db, err := mongodb.Connect(ctx, mongodb.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("mongo connection failed")
		}
		defer func() {
			_ = client.Disconnect(context.Background())
		}()
		kv = mongodb.NewKV(db)
	default:
		client, err := redisdb.Connect(ctx, redisdb.Config{
			Addr: cfg.Redis.Addr,
			DB:   cfg.Redis.DB,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("redis connection failed")
		}
		defer func() {
			_ = client.Close()
		}()
		kv = redisdb.NewKV(client)
	}

	e := api.NewRouter(cfg, kv, log)

	go func() {
		log.Info().Str("port", cfg.Port).Str("store_backend", cfg.StoreBackend).Msg("relay listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped unexpectedly")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("relay stopped")
}
