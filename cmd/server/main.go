// Command server runs the adaptive spaced-repetition HTTP API.
//
// Configuration is read from config.yaml (or CONFIG_PATH) with environment
// overrides; see internal/config. The server shuts down gracefully on
// SIGINT/SIGTERM.
//
// Exit codes: 0 = clean shutdown, 1 = error.
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/polyglothq/adaptive-srs/internal/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx); err != nil {
		log.Fatalf("application error: %v", err)
	}
}
