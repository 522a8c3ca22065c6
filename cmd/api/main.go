// Package main provides the main entry point for the PantryMatch API server
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/fx"

	"github.com/pantrymatch/server/internal/infrastructure/config"
	"github.com/pantrymatch/server/internal/infrastructure/container"
)

func main() {
	// Load .env if present; real environment variables take precedence
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Failed to load .env: %v", err)
	}

	var shutdownTimeout time.Duration
	app := fx.New(
		fx.NopLogger, // Use our own logger instead of Fx's
		container.Module,
		fx.Invoke(func(cfg *config.Config) {
			shutdownTimeout = cfg.Server.ShutdownTimeout
		}),
	)
	if err := app.Err(); err != nil {
		log.Fatalf("Failed to build application: %v", err)
	}

	// Create context that cancels on interrupt
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	startCtx, startCancel := context.WithTimeout(ctx, app.StartTimeout())
	defer startCancel()
	if err := app.Start(startCtx); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	// Wait for interrupt signal
	<-ctx.Done()

	if shutdownTimeout <= 0 {
		shutdownTimeout = 30 * time.Second
	}
	stopCtx, stopCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stopCancel()

	if err := app.Stop(stopCtx); err != nil {
		log.Fatalf("Failed to stop application gracefully: %v", err)
	}
}
