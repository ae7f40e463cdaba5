package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/dvloznov/sheet-import/internal/config"
	"github.com/dvloznov/sheet-import/internal/gcsuploader"
	"github.com/dvloznov/sheet-import/internal/logger"
	"github.com/dvloznov/sheet-import/internal/pipeline"
)

func main() {
	// Initialize structured logger
	log := logger.New()

	// Parse CLI flags
	configPath := flag.String("config", "", "YAML import config (required)")
	flag.Parse()

	if *configPath == "" {
		log.Fatal().Msg("Error: --config is required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	configured, err := logger.NewWithConfig(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid log config")
	}
	log = configured

	// Create context with timeout so a stuck GCS read doesn't hang
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	ctx = logger.WithContext(ctx, log)

	state, err := pipeline.ImportSheet(ctx, cfg, gcsuploader.NewFromConfig(cfg.GCS), os.Stdout)
	if err != nil {
		log.Fatal().Err(err).Msg("Import failed")
	}

	if cfg.Output != pipeline.StdoutLocation {
		fmt.Printf("Imported %d transactions into %s.\n", len(state.Transactions), cfg.Output)
	}
}
