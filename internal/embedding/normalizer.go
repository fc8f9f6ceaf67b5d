package embedding

import (
	"strings"

	"github.com/eddowding/abelique-matching/internal/models"
)

// ProfileText projects structured profile fields into the text blob
// that gets embedded. The field order and phrasing are load-bearing:
// changing them silently invalidates every stored embedding, so they
// must stay stable across releases. The output is never shown to users.
//
// Fields that are empty are omitted entirely. If every field is empty
// the result is the empty string, and callers must skip the embedding
// call altogether.
func ProfileText(f models.ProfileFields) string {
	var parts []string

	if bio := strings.TrimSpace(f.Bio); bio != "" {
		parts = append(parts, bio)
	}
	if work := strings.TrimSpace(f.CurrentWork); work != "" {
		parts = append(parts, "Currently working on: "+work)
	}
	if tags := joinTags(f.LookingFor); tags != "" {
		parts = append(parts, "Looking for: "+tags)
	}
	if tags := joinTags(f.Offering); tags != "" {
		parts = append(parts, "Can offer: "+tags)
	}

	return strings.Join(parts, "\n")
}

func joinTags(tags []string) string {
	kept := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			kept = append(kept, t)
		}
	}
	return strings.Join(kept, ", ")
}
