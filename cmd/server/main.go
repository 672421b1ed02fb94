package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quiz-arena/catalog"
	"quiz-arena/infrastructure/httpapi"
	"quiz-arena/infrastructure/ws"
	"quiz-arena/moderation"
	"quiz-arena/observability"
	"quiz-arena/repositories"
	"quiz-arena/runtime"
	"quiz-arena/runtime/workers"
	"quiz-arena/services"
	"quiz-arena/sink"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and
// centralizes error reporting, so every defer (database close included)
// executes before the process exits.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	replacement, err := CharacterRune(config.CharReplacement)
	if err != nil {
		return err
	}

	// 2. Database (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Question catalog, loaded once at boot under supervision
	countries := catalog.New()
	loader := catalog.NewLoader(countries, config.CountriesURL,
		&http.Client{Timeout: config.CountriesTimeout}, log)

	// 4. Supervision & orchestration
	supervisor := workers.NewSupervisor(log, config.RestartInterval)
	registry := runtime.NewRegistry()
	repository := repositories.NewGameRepository(db, log)

	orchestrator := runtime.NewOrchestrator(
		log, supervisor, registry, countries,
		config.BufferSize, config.SinkTimeout, config.RoundAdvanceDelay,
	)
	monitor := observability.NewMonitor(log)
	orchestrator.Add(sink.NewDiskSink(repository, log), monitor)
	supervisor.Add(loader, monitor)

	// 5. Context & signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err = orchestrator.Start(ctx); err != nil {
		return fmt.Errorf("orchestrator failed to start: %w", err)
	}

	// 6. Transports: analytics REST + game WebSocket
	moderator, err := moderation.Default(replacement)
	if err != nil {
		return fmt.Errorf("moderation setup failed: %w", err)
	}
	service := services.NewGameService(orchestrator, repository, moderator)

	router := httpapi.NewServer(log, service, monitor).Routes()
	router.Handle("/socket", ws.NewServer(log, service, config.ConnectionBufferSize))

	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	httpServer := &http.Server{Addr: address, Handler: router}

	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting server", "address", address, "at", time.Now().UTC())
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// 7. Wait for stop or error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// 8. Final cleanup
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(shutdownCtx)
	orchestrator.Stop()
	log.Info("Program stopped cleanly")

	return nil
}
