package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/olkipaint/backend/internal/config"
	"github.com/olkipaint/backend/internal/logger"
	"github.com/olkipaint/backend/internal/mailer"
	"github.com/olkipaint/backend/internal/queue"
	"github.com/olkipaint/backend/internal/storage"
	"github.com/olkipaint/backend/internal/worker"
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

	if err := cfg.ValidateWorker(); err != nil {
		log.Fatal().Err(err).Msg("invalid worker configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := storage.NewDB(ctx, cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("connect to database")
	}
	defer db.Close()

	m, err := mailer.New(cfg.Email)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize mailer")
	}
	log.Info().Str("transport", m.Name()).Msg("mailer initialized")

	handler := worker.NewHandler(m, storage.New(db.Pool), worker.Config{
		FromAddress:    cfg.Email.DefaultFrom,
		ServiceAddress: cfg.Email.ServiceAddress,
	}, log)

	consumer := queue.NewConsumer(cfg.Broker, handler, log)

	log.Info().Str("queue", cfg.Broker.Queue).Msg("notification worker starting")
	if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("consumer failed")
	}
	log.Info().Msg("notification worker stopped")
}
