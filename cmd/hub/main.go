package main

import (
	"context"
	"fmt"
	"nfinite/infrastructure/server"
	"nfinite/infrastructure/storage"
	"nfinite/infrastructure/transport"
	"nfinite/internal"
	"nfinite/runtime"
	"nfinite/runtime/workers"
	"nfinite/services"
	"os"
	"os/signal"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

// Exit codes to provide meaningful status to the operating system or service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Hub terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run wires the hub and blocks until SIGINT/SIGTERM. Returning instead of exiting
// lets the deferred database close run.
func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	if err := config.Validate(); err != nil {
		return exitConfig, err
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Database (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Hub state
	registry := runtime.NewRegistry()
	hub := services.NewHubService(
		log,
		services.NewAuthService(log, storage.NewUserRepository(db)),
		storage.NewFileRepository(db, log),
		storage.NewBadgerFragmentStore(db, log),
		registry,
		config.FetchTimeout,
	)

	// 5. Supervision
	sup := workers.NewSupervisor(log, config.RestartInterval)
	sup.Add(workers.NewHeartbeatWorker(log, registry, config.HeartbeatInterval))
	supDone := make(chan struct{})
	go func() {
		sup.Run(ctx)
		close(supDone)
	}()

	// 6. Websocket server
	hubServer := server.NewHubServer(ctx, log, hub, config.Addr, config.WebsocketPath, transport.Options{
		ReadBufferSize:  config.ReadBufferSize,
		WriteBufferSize: config.WriteBufferSize,
		MaxFrameSize:    int64(config.MaxFrameSize),
	})
	if config.InspectPath != "" {
		hubServer.Handle(config.InspectPath, internal.InspectHandler(db, nil, "file:"))
		log.Info("Database inspection enabled", "path", config.InspectPath)
	}

	errChan := make(chan error, 1)
	go func() {
		if err := hubServer.ListenAndServe(); err != nil {
			errChan <- fmt.Errorf("hub server error: %w", err)
		}
	}()

	// 7. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		stop()
		<-supDone
		return exitRuntime, err
	}

	// 8. Final Cleanup
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	if err := hubServer.Shutdown(shutdownCtx); err != nil {
		log.Warn("Hub server shutdown incomplete", "error", err)
	}
	sup.Stop()
	<-supDone
	log.Info("Hub stopped cleanly")

	return exitOK, nil
}
