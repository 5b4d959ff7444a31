package main

import (
	"chat-pulse/internal"
	"chat-pulse/repositories"
	"chat-pulse/rest"
	"chat-pulse/runtime"
	"chat-pulse/runtime/workers"
	"chat-pulse/stats"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and centralizes error reporting.
// This pattern is preferred over calling os.Exit or panic directly because:
// 1. It ensures all 'defer' statements (like database cleanup) are executed before the program exits.
// 2. It improves testability by decoupling the initialization logic from the main entry point.
// 3. It provides a structured way to handle graceful shutdowns for HTTP and background workers.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Database (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.INFO))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	//  Defer will be executed before run() returned anything to main()
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Setup Supervision & Orchestration
	sup := workers.NewSupervisor(log)
	registry := runtime.NewRegistry()
	messageRepository := repositories.NewMessageRepository(db, log, config.LimitMessages)

	orchestrator := runtime.NewOrchestrator(
		log, sup, registry, messageRepository,
		config.BufferSize, config.SinkTimeout,
		config.CleanupInterval, config.HealthInterval,
	)

	// 4. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 5. Start the Engine
	if err = orchestrator.Start(ctx); err != nil {
		return fmt.Errorf("orchestrator failed to start: %w", err)
	}

	// 6. HTTP Server Setup
	volumeService := stats.NewVolumeService(messageRepository, log)
	app := rest.NewApp(log)
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	protected := app.Group("", rest.RequireAuth([]byte(config.AuthSecret)))
	rest.InitRestVolume(protected, volumeService)
	rest.InitRestMessage(protected, orchestrator, config.MaxContentLength)
	rest.InitRestStream(protected, orchestrator, log, config.BufferSize, config.StreamKeepAlive)

	address := fmt.Sprintf("%s:%d", config.Host, config.Port)

	// Use an error channel to capture Listen() issues
	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "address", address, "at", time.Now().UTC())
		if err := app.Listen(address); err != nil {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// 7. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// 8. Final Cleanup
	_ = app.Shutdown()
	orchestrator.Stop()
	log.Info("Program stopped cleanly")

	return nil
}
