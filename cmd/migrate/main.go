package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/olkipaint/backend/internal/config"
	"github.com/olkipaint/backend/internal/logger"
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

	ctx := context.Background()
	db, err := storage.NewDB(ctx, cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("connect to database")
	}
	defer db.Close()

	if err := storage.ApplySchema(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("apply schema")
	}
	log.Info().Msg("schema applied")
}
