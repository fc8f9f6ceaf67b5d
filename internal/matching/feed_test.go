package matching

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/eddowding/abelique-matching/internal/models"
)

type stubRanker struct {
	candidates []Candidate
	err        error
}

func (s *stubRanker) RankMembers(context.Context, uuid.UUID, uuid.UUID, []float32, int) ([]Candidate, error) {
	return s.candidates, s.err
}

type stubReasonGen struct {
	mu      sync.Mutex
	calls   int
	failFor string // bio value that triggers an error
}

func (s *stubReasonGen) MatchReason(_ context.Context, _, them models.ProfileFields) (string, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.failFor != "" && them.Bio == s.failFor {
		return "", errors.New("provider down")
	}
	return "reason for " + them.Bio, nil
}

func (s *stubReasonGen) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func testRequester() *models.Member {
	return &models.Member{
		ID:          uuid.New(),
		GroupID:     uuid.New(),
		UserID:      uuid.New(),
		Embedding:   []float32{0.1, 0.2, 0.3},
		ProfileData: json.RawMessage(`{"looking_for":["funding"],"offering":["mentoring"]}`),
	}
}

func rankedCandidates(n int) []Candidate {
	out := make([]Candidate, n)
	for i := range out {
		out[i] = Candidate{
			UserID:      uuid.New(),
			FullName:    fmt.Sprintf("Member %d", i),
			ProfileData: json.RawMessage(fmt.Sprintf(`{"bio":"bio-%d"}`, i)),
			Similarity:  1.0 - float64(i)*0.01,
		}
	}
	return out
}

func TestFeedProfileIncomplete(t *testing.T) {
	svc := NewFeedService(&stubRanker{}, &stubExclusionStore{}, nil, 500, 5)

	requester := testRequester()
	requester.Embedding = nil

	_, err := svc.Feed(context.Background(), requester, 0, 20)
	if !errors.Is(err, ErrProfileIncomplete) {
		t.Fatalf("expected ErrProfileIncomplete, got %v", err)
	}
}

func TestFeedFiltersExclusionsPreservingOrder(t *testing.T) {
	candidates := rankedCandidates(5)
	store := &stubExclusionStore{
		hidden:    []uuid.UUID{candidates[1].UserID},
		connected: []uuid.UUID{candidates[3].UserID},
	}
	svc := NewFeedService(&stubRanker{candidates: candidates}, store, nil, 500, 5)

	feed, err := svc.Feed(context.Background(), testRequester(), 0, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(feed.Matches) != 3 {
		t.Fatalf("expected 3 matches, got %d", len(feed.Matches))
	}
	want := []uuid.UUID{candidates[0].UserID, candidates[2].UserID, candidates[4].UserID}
	for i, id := range want {
		if feed.Matches[i].UserID != id {
			t.Fatalf("match %d: expected %s, got %s", i, id, feed.Matches[i].UserID)
		}
	}
}

func TestFeedPagination(t *testing.T) {
	candidates := rankedCandidates(5)
	svc := NewFeedService(&stubRanker{candidates: candidates}, &stubExclusionStore{}, nil, 500, 5)

	feed, err := svc.Feed(context.Background(), testRequester(), 2, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(feed.Matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(feed.Matches))
	}
	if feed.Matches[0].UserID != candidates[2].UserID || feed.Matches[1].UserID != candidates[3].UserID {
		t.Fatalf("wrong page window")
	}
	if !feed.HasMore {
		t.Fatalf("expected has_more with one candidate remaining")
	}

	last, err := svc.Feed(context.Background(), testRequester(), 4, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(last.Matches) != 1 || last.HasMore {
		t.Fatalf("expected final partial page without has_more, got %d matches has_more=%v", len(last.Matches), last.HasMore)
	}
}

func TestFeedOffsetBeyondEnd(t *testing.T) {
	svc := NewFeedService(&stubRanker{candidates: rankedCandidates(3)}, &stubExclusionStore{}, nil, 500, 5)

	feed, err := svc.Feed(context.Background(), testRequester(), 50, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(feed.Matches) != 0 {
		t.Fatalf("expected empty page, got %d matches", len(feed.Matches))
	}
	if feed.HasMore {
		t.Fatalf("expected has_more false past the end")
	}
}

func TestFeedRankerErrorIsFatal(t *testing.T) {
	boom := errors.New("pgvector offline")
	svc := NewFeedService(&stubRanker{err: boom}, &stubExclusionStore{}, nil, 500, 5)

	_, err := svc.Feed(context.Background(), testRequester(), 0, 20)
	if !errors.Is(err, boom) {
		t.Fatalf("expected ranker error, got %v", err)
	}
}

func TestFeedReasonsFirstPageOnly(t *testing.T) {
	gen := &stubReasonGen{}
	svc := NewFeedService(&stubRanker{candidates: rankedCandidates(10)}, &stubExclusionStore{}, gen, 500, 5)

	feed, err := svc.Feed(context.Background(), testRequester(), 0, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gen.callCount() != 5 {
		t.Fatalf("expected 5 reason calls, got %d", gen.callCount())
	}
	for i := 0; i < 5; i++ {
		if feed.Matches[i].Reason == "" {
			t.Fatalf("match %d: expected a reason", i)
		}
	}
	for i := 5; i < 10; i++ {
		if feed.Matches[i].Reason != "" {
			t.Fatalf("match %d: unexpected reason %q", i, feed.Matches[i].Reason)
		}
	}

	// Second page: no reason calls at all.
	if _, err := svc.Feed(context.Background(), testRequester(), 10, 10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gen.callCount() != 5 {
		t.Fatalf("expected no additional reason calls on later pages, got %d total", gen.callCount())
	}
}

func TestFeedReasonFailureDoesNotFailFeed(t *testing.T) {
	candidates := rankedCandidates(3)
	gen := &stubReasonGen{failFor: "bio-1"}
	svc := NewFeedService(&stubRanker{candidates: candidates}, &stubExclusionStore{}, gen, 500, 5)

	feed, err := svc.Feed(context.Background(), testRequester(), 0, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if feed.Matches[0].Reason == "" || feed.Matches[2].Reason == "" {
		t.Fatalf("expected reasons for healthy candidates")
	}
	if feed.Matches[1].Reason != "" {
		t.Fatalf("expected blank reason for failing candidate, got %q", feed.Matches[1].Reason)
	}
}

func TestFeedSurfacesRequesterTags(t *testing.T) {
	svc := NewFeedService(&stubRanker{}, &stubExclusionStore{}, nil, 500, 5)

	feed, err := svc.Feed(context.Background(), testRequester(), 0, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(feed.LookingFor) != 1 || feed.LookingFor[0] != "funding" {
		t.Fatalf("unexpected looking_for: %v", feed.LookingFor)
	}
	if len(feed.Offering) != 1 || feed.Offering[0] != "mentoring" {
		t.Fatalf("unexpected offering: %v", feed.Offering)
	}
}
