package matching

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/eddowding/abelique-matching/internal/models"
	"github.com/eddowding/abelique-matching/internal/observability"
)

// Candidate is one similarity-ranked member returned by the Ranker,
// ordered best-first.
type Candidate struct {
	UserID      uuid.UUID
	FullName    string
	Email       string
	LinkedInURL string
	ProfileData json.RawMessage
	Similarity  float64
}

// Ranker executes the group-scoped nearest-neighbor query. Results are
// ordered by descending similarity with a deterministic tie-break, are
// restricted to members with a non-null embedding, and never include
// the querying member's own row.
type Ranker interface {
	RankMembers(ctx context.Context, groupID, requesterID uuid.UUID, query []float32, limit int) ([]Candidate, error)
}

// ReasonGenerator produces the one-sentence rationale shown next to a
// top match. Failures are cosmetic: the caller drops the reason and
// keeps the candidate.
type ReasonGenerator interface {
	MatchReason(ctx context.Context, you, them models.ProfileFields) (string, error)
}

// Match is a feed entry: a ranked candidate plus its (possibly empty)
// generated reason.
type Match struct {
	Candidate
	Reason string
}

// Feed is the assembled response for one page of matches.
type Feed struct {
	Matches    []Match
	HasMore    bool
	LookingFor []string
	Offering   []string
	Offset     int
	Limit      int
}

// FeedService orchestrates exclusion resolution, similarity ranking,
// pagination, and selective reason generation.
type FeedService struct {
	ranker     Ranker
	exclusions ExclusionStore
	reasons    ReasonGenerator

	// overfetch is how many candidates the ranker is asked for, well
	// beyond any single page, because exclusion filtering happens after
	// the vector query. Filtering a narrow top-K instead would under-fill
	// pages whenever the exclusion set overlaps the head of the ranking.
	overfetch   int
	reasonLimit int
}

func NewFeedService(ranker Ranker, exclusions ExclusionStore, reasons ReasonGenerator, overfetch, reasonLimit int) *FeedService {
	return &FeedService{
		ranker:      ranker,
		exclusions:  exclusions,
		reasons:     reasons,
		overfetch:   overfetch,
		reasonLimit: reasonLimit,
	}
}

// Feed assembles one page of matches for the requesting member.
//
// Returns ErrProfileIncomplete if the requester has no embedding. A
// ranker failure is fatal to the request; a reason failure for one
// candidate only blanks that candidate's reason.
func (s *FeedService) Feed(ctx context.Context, requester *models.Member, offset, limit int) (*Feed, error) {
	if len(requester.Embedding) == 0 {
		observability.FeedRequests.WithLabelValues("profile_incomplete").Inc()
		return nil, ErrProfileIncomplete
	}

	start := time.Now()

	// Exclusion resolution and the vector query are independent reads;
	// issue both at once.
	var (
		wg         sync.WaitGroup
		excluded   map[uuid.UUID]struct{}
		exclErr    error
		candidates []Candidate
		rankErr    error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		excluded, exclErr = ResolveExclusions(ctx, s.exclusions, requester.GroupID, requester.UserID)
	}()
	go func() {
		defer wg.Done()
		candidates, rankErr = s.ranker.RankMembers(ctx, requester.GroupID, requester.UserID, requester.Embedding, s.overfetch)
	}()
	wg.Wait()

	if exclErr != nil {
		observability.FeedRequests.WithLabelValues("error").Inc()
		return nil, exclErr
	}
	if rankErr != nil {
		observability.FeedRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("rank members: %w", rankErr)
	}

	filtered := candidates[:0:0]
	for _, c := range candidates {
		if _, skip := excluded[c.UserID]; !skip {
			filtered = append(filtered, c)
		}
	}

	page := filtered
	if offset < len(page) {
		page = page[offset:]
	} else {
		page = nil
	}
	if limit < len(page) {
		page = page[:limit]
	}

	matches := make([]Match, len(page))
	for i, c := range page {
		matches[i] = Match{Candidate: c}
	}
	s.annotateReasons(ctx, requester, matches, offset)

	tags := models.ParseProfile(requester.ProfileData)

	observability.FeedRequests.WithLabelValues("ok").Inc()
	observability.FeedDuration.Observe(time.Since(start).Seconds())

	return &Feed{
		Matches:    matches,
		HasMore:    len(filtered) > offset+limit,
		LookingFor: tags.LookingFor,
		Offering:   tags.Offering,
		Offset:     offset,
		Limit:      limit,
	}, nil
}

// annotateReasons generates reasons for the first reasonLimit entries,
// first page only. Each call is a separate provider round trip, so they
// fan out concurrently; a slow or failing one never blocks the rest.
func (s *FeedService) annotateReasons(ctx context.Context, requester *models.Member, matches []Match, offset int) {
	if s.reasons == nil || offset != 0 {
		return
	}

	you := models.ParseProfile(requester.ProfileData)

	n := s.reasonLimit
	if n > len(matches) {
		n = len(matches)
	}

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			them := models.ParseProfile(matches[i].ProfileData)
			reason, err := s.reasons.MatchReason(ctx, you, them)
			if err != nil {
				observability.ReasonFailures.Inc()
				slog.Warn("generate match reason",
					"group_id", requester.GroupID,
					"candidate", matches[i].UserID,
					"error", err,
				)
				return
			}
			observability.ReasonsGenerated.Inc()
			matches[i].Reason = reason
		}(i)
	}
	wg.Wait()
}
