package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/prometheus/client_golang/prometheus/promhttp"

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

	slog.Info("starting embedding backfill worker", "workers", cfg.Matching.WorkerCount)

	// Connect to Postgres
	db, err := storage.NewPostgresStore(cfg.Database)
	if err != nil {
		slog.Error("connect to postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Connect to NATS
	producer, err := queue.NewProducer(cfg.NATS.URL)
	if err != nil {
		slog.Error("connect to nats producer", "error", err)
		os.Exit(1)
	}
	defer producer.Close()

	if err := producer.EnsureStreams(context.Background()); err != nil {
		slog.Warn("ensure nats streams", "error", err)
	}

	// Embedding provider
	embedder, err := embedding.NewGeminiEmbedder(context.Background(), cfg.AI)
	if err != nil {
		slog.Error("init gemini embedder", "error", err)
		os.Exit(1)
	}

	profileSvc := matching.NewProfileService(db, embedder, nil)

	// Create NATS consumer
	consumer, err := queue.NewConsumer(cfg.NATS.URL)
	if err != nil {
		slog.Error("create consumer", "error", err)
		os.Exit(1)
	}
	defer consumer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start consuming backfill tasks
	err = consumer.ConsumeEmbeddings(ctx, "embedding-workers", func(ctx context.Context, msg jetstream.Msg) error {
		var task queue.EmbeddingTask
		if err := json.Unmarshal(msg.Data(), &task); err != nil {
			slog.Error("unmarshal embedding task", "error", err)
			return nil // Don't retry on unmarshal errors
		}

		member, err := db.GetMemberByID(ctx, task.MemberID)
		if err != nil {
			return fmt.Errorf("load member %s: %w", task.MemberID, err)
		}
		if member == nil {
			slog.Warn("member gone, dropping backfill task", "member_id", task.MemberID)
			return nil
		}

		if err := profileSvc.Reembed(ctx, member); err != nil {
			return fmt.Errorf("reembed member %s: %w", task.MemberID, err)
		}

		return nil
	}, cfg.Matching.WorkerCount)
	if err != nil {
		slog.Error("start embedding consumer", "error", err)
		os.Exit(1)
	}

	// Metrics endpoint
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		})
		slog.Info("worker metrics listening", "addr", ":8082")
		if err := http.ListenAndServe(":8082", mux); err != nil {
			slog.Error("metrics server error", "error", err)
		}
	}()

	// Periodically report queue depth
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				depth, err := producer.QueueDepth(ctx)
				if err == nil {
					observability.BackfillQueueDepth.Set(float64(depth))
				}
			}
		}
	}()

	// Periodically prune long-expired suppressions
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				pruned, err := db.PruneExpiredSuppressions(ctx, 24*time.Hour)
				if err != nil {
					slog.Warn("prune expired suppressions", "error", err)
				} else if pruned > 0 {
					slog.Info("pruned expired suppressions", "count", pruned)
				}
			}
		}
	}()

	// Wait for shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down worker...")
	cancel()
	time.Sleep(2 * time.Second)
	slog.Info("worker stopped")
}
