package matching

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/eddowding/abelique-matching/internal/models"
)

type stubContentGenerator struct {
	response   string
	err        error
	lastPrompt string
}

func (s *stubContentGenerator) GenerateContent(_ context.Context, prompt string) (string, error) {
	s.lastPrompt = prompt
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func TestMatchReasonIncludesBothProfiles(t *testing.T) {
	stub := &stubContentGenerator{response: "They can help with your fundraising."}
	reasoner := NewReasoner(stub, time.Second)

	you := models.ProfileFields{
		Bio:        "First-time founder.",
		LookingFor: []string{"seed funding"},
	}
	them := models.ProfileFields{
		CurrentWork: "angel investing",
		Offering:    []string{"investor intros"},
	}

	reason, err := reasoner.MatchReason(context.Background(), you, them)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reason != "They can help with your fundraising." {
		t.Fatalf("unexpected reason: %q", reason)
	}

	for _, want := range []string{"First-time founder.", "seed funding", "angel investing", "investor intros"} {
		if !strings.Contains(stub.lastPrompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, stub.lastPrompt)
		}
	}
	if !strings.Contains(stub.lastPrompt, "second person") {
		t.Fatalf("prompt missing instruction block:\n%s", stub.lastPrompt)
	}
}

func TestMatchReasonTrimsResponse(t *testing.T) {
	stub := &stubContentGenerator{response: "  A good reason.\n"}
	reasoner := NewReasoner(stub, time.Second)

	reason, err := reasoner.MatchReason(context.Background(), models.ProfileFields{}, models.ProfileFields{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reason != "A good reason." {
		t.Fatalf("expected trimmed reason, got %q", reason)
	}
}

func TestMatchReasonPropagatesProviderError(t *testing.T) {
	boom := errors.New("quota exceeded")
	reasoner := NewReasoner(&stubContentGenerator{err: boom}, time.Second)

	_, err := reasoner.MatchReason(context.Background(), models.ProfileFields{}, models.ProfileFields{})
	if !errors.Is(err, boom) {
		t.Fatalf("expected provider error, got %v", err)
	}
}
