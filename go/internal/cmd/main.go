package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/dispatchhq/vacdraft/go/internal/draft/gateway"
	"github.com/dispatchhq/vacdraft/go/internal/draft/outbox"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	zlog.Logger = zlog.Output(zerolog.ConsoleWriter{Out: os.Stdout})

	cfg, err := loadConfig(getEnv("CONFIG_PATH", ""))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	database, err := setupDatabase()
	if err != nil {
		log.Fatalf("Failed to setup database: %v", err)
	}
	defer database.Close()

	services := setupServices(database, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Outbox relay: DB outbox table -> JetStream
	publisher, err := outbox.NewJetStreamPublisher(jetStreamConfig(cfg))
	if err != nil {
		log.Fatalf("Failed to setup JetStream publisher: %v", err)
	}
	defer publisher.Close()

	workerCfg := outbox.DefaultConfig()
	workerCfg.PollInterval = cfg.Outbox.PollInterval
	workerCfg.BatchSize = cfg.Outbox.BatchSize
	worker := outbox.NewWorker(database, services.Outbox, publisher, workerCfg, slog.Default())
	if err := worker.Start(ctx); err != nil {
		log.Fatalf("Failed to start outbox worker: %v", err)
	}
	defer worker.Stop()

	// WebSocket fan-out: JetStream -> connected clients
	connManager := gateway.NewConnectionManager(gateway.DefaultConnectionConfig())
	go connManager.Start(ctx)

	consumerCfg := gateway.DefaultJetStreamConsumerConfig()
	consumerCfg.URL = cfg.NATS.URL
	consumer, err := gateway.NewEventConsumer(connManager, consumerCfg)
	if err != nil {
		log.Fatalf("Failed to setup event consumer: %v", err)
	}
	defer consumer.Stop()
	go func() {
		if err := consumer.Start(ctx); err != nil {
			zlog.Error().Err(err).Msg("event consumer exited")
		}
	}()

	// Scheduled starts and turn timeouts
	services.Sweeper.Start(ctx)
	defer services.Sweeper.Stop()

	server := setupServer(services, gateway.NewWebSocketHandler(connManager), cfg)
	go func() {
		zlog.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	zlog.Info().Msg("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zlog.Error().Err(err).Msg("HTTP server shutdown failed")
	}
}

func jetStreamConfig(cfg *Config) outbox.JetStreamConfig {
	jsCfg := outbox.DefaultJetStreamConfig()
	jsCfg.URL = cfg.NATS.URL
	return jsCfg
}
