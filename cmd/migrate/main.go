// Command migrate applies the embedded database migrations.
//
// Usage:
//
//	migrate [command]
//
// Commands: up (default), down, status, version. The database DSN comes from
// the application config (DATABASE_DSN or config.yaml).
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver for database/sql
	"github.com/pressly/goose/v3"

	"github.com/polyglothq/adaptive-srs/internal/config"
	"github.com/polyglothq/adaptive-srs/migrations"
)

func main() {
	flag.Parse()

	command := "up"
	if flag.NArg() > 0 {
		command = flag.Arg(0)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	db, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("ping database: %v", err)
	}

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		log.Fatalf("create goose provider: %v", err)
	}

	if err := run(ctx, provider, command); err != nil {
		log.Fatalf("migrate %s: %v", command, err)
	}
}

func run(ctx context.Context, provider *goose.Provider, command string) error {
	switch command {
	case "up":
		results, err := provider.Up(ctx)
		if err != nil {
			return err
		}
		for _, r := range results {
			log.Printf("applied %s", r.Source.Path)
		}
		log.Printf("up to date (%d applied)", len(results))
		return nil
	case "down":
		result, err := provider.Down(ctx)
		if err != nil {
			return err
		}
		log.Printf("rolled back %s", result.Source.Path)
		return nil
	case "status":
		statuses, err := provider.Status(ctx)
		if err != nil {
			return err
		}
		for _, s := range statuses {
			log.Printf("%-8s %s", s.State, s.Source.Path)
		}
		return nil
	case "version":
		version, err := provider.GetDBVersion(ctx)
		if err != nil {
			return err
		}
		log.Printf("version: %d", version)
		return nil
	default:
		return fmt.Errorf("unknown command %q (want up, down, status, or version)", command)
	}
}
