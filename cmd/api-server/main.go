package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/olkipaint/backend/internal/api"
	"github.com/olkipaint/backend/internal/auth"
	"github.com/olkipaint/backend/internal/config"
	"github.com/olkipaint/backend/internal/logger"
	"github.com/olkipaint/backend/internal/mediastore"
	"github.com/olkipaint/backend/internal/queue"
	"github.com/olkipaint/backend/internal/storage"
)

func main() {
	configPath := flag.String("config", "config", "path to the config directory")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewFromConfig(cfg.Logging)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := storage.NewDB(ctx, cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("connect to database")
	}
	defer db.Close()
	go db.CollectMetrics(ctx, 15*time.Second)

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Msg("redis unreachable, rate limiting degraded")
		}
		defer redisClient.Close()
	} else {
		log.Warn().Msg("redis not configured, rate limiting disabled")
	}

	media, err := mediastore.New(cfg.Media, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize media store")
	}

	router := api.NewRouter(api.RouterConfig{
		Queries:      storage.New(db.Pool),
		DB:           db,
		Publisher:    queue.NewPublisher(cfg.Broker, log),
		Media:        media,
		MediaBaseURL: cfg.Media.BaseURL,
		JWT:          auth.NewJWTService(cfg.Auth.JWT),
		Admin:        cfg.Auth.Admin,
		Limiter:      auth.NewRateLimiter(redisClient, cfg.RateLimit),
		Logger:       log,
	})

	addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.API.ReadTimeout,
		WriteTimeout: cfg.API.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("api server listening")
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("api server failed")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
	log.Info().Msg("api server stopped")
}
