// Command server runs the datahub HTTP API.
//
// Configuration is read from CONFIG_PATH (YAML) and environment
// variables; see internal/config. The process stops cleanly on SIGINT
// or SIGTERM.
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/uzdatahub/datahub-backend/internal/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx); err != nil {
		log.Fatalf("run: %v", err)
	}
}
