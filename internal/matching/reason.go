package matching

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/eddowding/abelique-matching/internal/models"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// Reasoner turns a pair of profiles into a one-sentence, second-person
// explanation of why the reader might want to connect.
type Reasoner struct {
	generator contentGenerator
	timeout   time.Duration
}

func NewReasoner(generator contentGenerator, timeout time.Duration) *Reasoner {
	return &Reasoner{generator: generator, timeout: timeout}
}

const reasonInstruction = `Generate a brief 1 sentence reason why YOU (the reader) should connect with this person. Write in second person (use "you" and "they"). Focus on what they offer that matches what you need, or shared interests. Be specific and warm. Example: "They could help with your fundraising - they have investor connections and you're looking for funding."`

// MatchReason asks the text-generation provider for a rationale. The
// call is bounded by the configured timeout; any failure means no
// reason, never a failed feed.
func (r *Reasoner) MatchReason(ctx context.Context, you, them models.ProfileFields) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	raw, err := r.generator.GenerateContent(ctx, buildReasonPrompt(you, them))
	if err != nil {
		return "", fmt.Errorf("generate match reason: %w", err)
	}

	return strings.TrimSpace(raw), nil
}

func buildReasonPrompt(you, them models.ProfileFields) string {
	var b strings.Builder
	b.WriteString(reasonInstruction)
	b.WriteString("\n\nYou: ")
	writeProfile(&b, you)
	b.WriteString("\n\nThem: ")
	writeProfile(&b, them)
	return b.String()
}

func writeProfile(b *strings.Builder, f models.ProfileFields) {
	b.WriteString(f.Bio)
	b.WriteString(" Working on: ")
	b.WriteString(f.CurrentWork)
	b.WriteString(" Looking for: ")
	b.WriteString(strings.Join(f.LookingFor, ", "))
	b.WriteString(" Offering: ")
	b.WriteString(strings.Join(f.Offering, ", "))
}
