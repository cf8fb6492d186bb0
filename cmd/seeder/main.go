// Command seeder loads calibrated content items (words, sentences, cloze
// exercises with IRT difficulty) from a JSON file into the database. It is
// intended to be run offline, not as part of the main server.
//
// Flags:
//
//	--file     path to the seed JSON file (required)
//	--dry-run  parse and validate without writing to DB
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/polyglothq/adaptive-srs/internal/adapter/postgres"
	"github.com/polyglothq/adaptive-srs/internal/adapter/postgres/item"
	"github.com/polyglothq/adaptive-srs/internal/app"
	"github.com/polyglothq/adaptive-srs/internal/config"
	"github.com/polyglothq/adaptive-srs/internal/seeder"
)

func main() {
	fileFlag := flag.String("file", "", "path to the seed JSON file")
	dryRunFlag := flag.Bool("dry-run", false, "parse and validate without writing to DB")
	flag.Parse()

	if *fileFlag == "" {
		log.Fatal("--file is required")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	loader := seeder.New(logger, item.New(pool), *dryRunFlag)

	stats, err := loader.Run(ctx, *fileFlag)
	if err != nil {
		logger.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("seed completed",
		slog.Int("inserted", stats.Inserted),
		slog.Int("skipped", stats.Skipped),
		slog.Int("invalid", stats.Invalid),
	)
}
