package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/eddowding/abelique-matching/internal/api"
	"github.com/eddowding/abelique-matching/internal/api/ws"
	"github.com/eddowding/abelique-matching/internal/config"
	"github.com/eddowding/abelique-matching/internal/embedding"
	"github.com/eddowding/abelique-matching/internal/matching"
	"github.com/eddowding/abelique-matching/internal/observability"
	"github.com/eddowding/abelique-matching/internal/queue"
	"github.com/eddowding/abelique-matching/internal/storage"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	observability.SetupLogger(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("starting matching API service", "port", cfg.Server.Port)

	// Connect to Postgres
	db, err := storage.NewPostgresStore(cfg.Database)
	if err != nil {
		slog.Error("connect to postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.EnsureSchema(context.Background()); err != nil {
		slog.Error("ensure schema", "error", err)
		os.Exit(1)
	}

	// Connect to MinIO
	photos, err := storage.NewPhotoStore(cfg.MinIO)
	if err != nil {
		slog.Error("connect to minio", "error", err)
		os.Exit(1)
	}
	if err := photos.EnsureBucket(context.Background()); err != nil {
		slog.Warn("ensure minio bucket", "error", err)
	}

	// Connect to NATS
	producer, err := queue.NewProducer(cfg.NATS.URL)
	if err != nil {
		slog.Error("connect to nats", "error", err)
		os.Exit(1)
	}
	defer producer.Close()

	if err := producer.EnsureStreams(context.Background()); err != nil {
		slog.Warn("ensure nats streams", "error", err)
	}

	// AI providers
	embedder, err := embedding.NewGeminiEmbedder(context.Background(), cfg.AI)
	if err != nil {
		slog.Error("init gemini embedder", "error", err)
		os.Exit(1)
	}

	var reasoner matching.ReasonGenerator
	generator, err := matching.NewGeminiGenerator(context.Background(), cfg.AI)
	if err != nil {
		slog.Warn("init gemini generator — match reasons will be unavailable", "error", err)
	} else {
		reasoner = matching.NewReasoner(generator, cfg.AI.ReasonTimeout)
	}

	// Services
	feedSvc := matching.NewFeedService(db, db, reasoner, cfg.Matching.Overfetch, cfg.Matching.ReasonLimit)
	profileSvc := matching.NewProfileService(db, embedder, producer)
	requestSvc := matching.NewRequestService(db)

	// WebSocket hub
	hub := ws.NewHub()
	go hub.Run()

	// Forward match events from NATS to connected WebSocket clients
	consumer, err := queue.NewConsumer(cfg.NATS.URL)
	if err != nil {
		slog.Error("create event consumer", "error", err)
		os.Exit(1)
	}
	defer consumer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err = consumer.ConsumeMatchEvents(ctx, "api-events", func(ctx context.Context, msg jetstream.Msg) error {
		hub.BroadcastRaw(msg.Data())
		return nil
	})
	if err != nil {
		slog.Warn("start match event consumer", "error", err)
	}

	// Setup router
	router := api.NewRouter(api.RouterConfig{
		TokenSecret: cfg.Server.TokenSecret,
		AdminAPIKey: cfg.Server.AdminAPIKey,
		Matching:    cfg.Matching,
		DB:          db,
		Photos:      photos,
		Producer:    producer,
		Hub:         hub,
		Feed:        feedSvc,
		Profiles:    profileSvc,
		Requests:    requestSvc,
	})

	// Start HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("API server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down API server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("API server stopped")
}
