package main

import (
	"context"
	"log"
	stdhttp "net/http"
	"time"

	"shortlink/pkg/cache"
	"shortlink/pkg/config"
	httphandler "shortlink/pkg/http"
	"shortlink/pkg/logging"
	"shortlink/pkg/service"
	"shortlink/pkg/storage"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.NewLogger(logging.LogLevel(cfg.LogLevel))

	// DB connection, opened once and shared for the process lifetime.
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()

	linkStore := storage.NewPostgresLinkStore(pool)
	if err := linkStore.EnsureSchema(context.Background()); err != nil {
		log.Fatal(err)
	}

	// Miss cache is optional; the service runs fine without Redis.
	var missCache cache.MissCache
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatal(err)
		}
		redisClient := redis.NewClient(opt)
		defer redisClient.Close()
		missCache = cache.NewRedisMissCache(redisClient, 30*time.Second)
	}

	registry := service.NewRegistry(linkStore, missCache, logger)
	resolver := service.NewResolver(linkStore, missCache, logger)
	handler := httphandler.NewHandler(registry, resolver, cfg.BaseURL, logger)

	r := chi.NewRouter()
	httphandler.SetupRoutes(r, handler, logger, cfg.RequestTimeout)

	log.Println("Starting API server on", cfg.ListenAddr)
	log.Fatal(stdhttp.ListenAndServe(cfg.ListenAddr, r))
}
