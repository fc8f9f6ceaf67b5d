package matching

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/eddowding/abelique-matching/internal/embedding"
	"github.com/eddowding/abelique-matching/internal/models"
	"github.com/eddowding/abelique-matching/internal/observability"
)

// ProfileStore persists the profile_data + embedding pair. The two are
// always written together; nothing else in the system writes
// embeddings.
type ProfileStore interface {
	UpdateMemberProfile(ctx context.Context, memberID uuid.UUID, profileData json.RawMessage, embedding []float32) (*models.Member, error)
}

// BackfillEnqueuer schedules a member for embedding regeneration after
// a provider failure. May be nil when no queue is wired.
type BackfillEnqueuer interface {
	EnqueueEmbedding(ctx context.Context, memberID uuid.UUID) error
}

// ProfileService owns the profile edit pipeline: merge fields, project
// to embedding text, embed, store.
type ProfileService struct {
	store    ProfileStore
	embedder embedding.Embedder
	backfill BackfillEnqueuer
}

func NewProfileService(store ProfileStore, embedder embedding.Embedder, backfill BackfillEnqueuer) *ProfileService {
	return &ProfileService{store: store, embedder: embedder, backfill: backfill}
}

// Update saves new profile fields and regenerates the embedding.
//
// An embedding provider failure never fails the save: the profile is
// persisted with a null embedding, the member is queued for backfill,
// and they simply stay out of similarity results until a vector
// exists. Empty profile text skips the provider entirely.
func (s *ProfileService) Update(ctx context.Context, member *models.Member, fields models.ProfileFields) (*models.Member, error) {
	merged, err := models.MergeProfile(member.ProfileData, fields)
	if err != nil {
		return nil, fmt.Errorf("merge profile data: %w", err)
	}

	var vec []float32
	text := embedding.ProfileText(models.ParseProfile(merged))
	if text != "" {
		vec, err = s.embedder.Embed(ctx, text)
		if err != nil {
			observability.EmbeddingFailures.Inc()
			slog.Warn("embedding unavailable, saving profile without vector",
				"member_id", member.ID, "error", err)
			vec = nil
			if s.backfill != nil {
				if qErr := s.backfill.EnqueueEmbedding(ctx, member.ID); qErr != nil {
					slog.Warn("enqueue embedding backfill", "member_id", member.ID, "error", qErr)
				}
			}
		} else {
			observability.EmbeddingsGenerated.Inc()
		}
	}

	updated, err := s.store.UpdateMemberProfile(ctx, member.ID, merged, vec)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrNotAMember
	}
	return updated, nil
}

// Reembed regenerates the embedding for an already-saved profile. Used
// by the backfill worker; a member whose profile text became empty is
// left without a vector.
func (s *ProfileService) Reembed(ctx context.Context, member *models.Member) error {
	text := embedding.ProfileText(models.ParseProfile(member.ProfileData))
	if text == "" {
		return nil
	}

	vec, err := s.embedder.Embed(ctx, text)
	if err != nil {
		observability.EmbeddingFailures.Inc()
		return fmt.Errorf("embed profile text: %w", err)
	}
	observability.EmbeddingsGenerated.Inc()

	if _, err := s.store.UpdateMemberProfile(ctx, member.ID, member.ProfileData, vec); err != nil {
		return err
	}
	return nil
}
