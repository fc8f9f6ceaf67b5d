package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const (
	EmbeddingsStreamName  = "EMBEDDINGS"
	EmbeddingsSubjectBase = "embeddings"
	EventsStreamName      = "MATCH_EVENTS"
	EventsSubjectBase     = "match-events"
)

// EmbeddingTask asks the backfill worker to regenerate one member's
// embedding.
type EmbeddingTask struct {
	MemberID uuid.UUID `json:"member_id"`
}

type Producer struct {
	nc *nats.Conn
	js jetstream.JetStream
}

func NewProducer(natsURL string) (*Producer, error) {
	nc, err := nats.Connect(natsURL,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		return nil, fmt.Errorf("create jetstream context: %w", err)
	}

	return &Producer{nc: nc, js: js}, nil
}

// EnsureStreams creates JetStream streams if they don't exist.
// Retries up to 30 times (1s apart) to handle NATS startup delay.
func (p *Producer) EnsureStreams(ctx context.Context) error {
	streams := []jetstream.StreamConfig{
		{
			Name:        EmbeddingsStreamName,
			Subjects:    []string{EmbeddingsSubjectBase + ".>"},
			Retention:   jetstream.WorkQueuePolicy,
			MaxAge:      24 * time.Hour,
			MaxMsgs:     100000,
			Storage:     jetstream.FileStorage,
			Discard:     jetstream.DiscardOld,
			Duplicates:  30 * time.Second,
			Description: "Embedding backfill tasks",
		},
		{
			Name:        EventsStreamName,
			Subjects:    []string{EventsSubjectBase + ".>"},
			Retention:   jetstream.InterestPolicy,
			MaxAge:      time.Hour,
			MaxMsgs:     100000,
			Storage:     jetstream.FileStorage,
			Description: "Match request / connection notification events",
		},
	}

	const maxAttempts = 30
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		allOK := true
		for _, cfg := range streams {
			opCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			_, err := p.js.CreateOrUpdateStream(opCtx, cfg)
			cancel()
			if err != nil {
				allOK = false
				if attempt == maxAttempts {
					return fmt.Errorf("create stream %s: %w (after %d attempts)", cfg.Name, err, maxAttempts)
				}
				slog.Warn("ensure NATS stream (retrying...)", "name", cfg.Name, "attempt", attempt, "error", err)
				break
			}
		}
		if allOK {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(1 * time.Second):
		}
	}
	return nil
}

// EnqueueEmbedding publishes a backfill task for one member. The
// subject carries the member id so the work-queue duplicate window
// collapses rapid re-edits into one task.
func (p *Producer) EnqueueEmbedding(ctx context.Context, memberID uuid.UUID) error {
	payload, err := json.Marshal(EmbeddingTask{MemberID: memberID})
	if err != nil {
		return fmt.Errorf("marshal embedding task: %w", err)
	}

	subject := fmt.Sprintf("%s.%s", EmbeddingsSubjectBase, memberID)
	if _, err := p.js.Publish(ctx, subject, payload, jetstream.WithMsgID(memberID.String())); err != nil {
		return fmt.Errorf("enqueue embedding task: %w", err)
	}
	return nil
}

// PublishMatchEvent publishes a notification event scoped to a group.
func (p *Producer) PublishMatchEvent(ctx context.Context, groupID uuid.UUID, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal match event: %w", err)
	}

	subject := fmt.Sprintf("%s.%s", EventsSubjectBase, groupID)
	if _, err := p.js.Publish(ctx, subject, payload); err != nil {
		return fmt.Errorf("publish match event: %w", err)
	}
	return nil
}

// QueueDepth returns the number of pending embedding tasks.
func (p *Producer) QueueDepth(ctx context.Context) (uint64, error) {
	stream, err := p.js.Stream(ctx, EmbeddingsStreamName)
	if err != nil {
		return 0, err
	}
	info, err := stream.Info(ctx)
	if err != nil {
		return 0, err
	}
	return info.State.Msgs, nil
}

func (p *Producer) Ping() error {
	if !p.nc.IsConnected() {
		return fmt.Errorf("nats not connected")
	}
	return nil
}

func (p *Producer) Close() {
	p.nc.Close()
}
