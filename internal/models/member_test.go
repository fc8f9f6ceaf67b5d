package models

import (
	"encoding/json"
	"testing"
)

func TestParseProfileEmpty(t *testing.T) {
	f := ParseProfile(nil)
	if f.Bio != "" || len(f.LookingFor) != 0 {
		t.Fatalf("expected zero value for nil blob")
	}
}

func TestMergeProfileOverlaysFields(t *testing.T) {
	existing := json.RawMessage(`{"bio":"old bio","offering":["advice"]}`)

	merged, err := MergeProfile(existing, ProfileFields{
		Bio:        "new bio",
		LookingFor: []string{"funding"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f := ParseProfile(merged)
	if f.Bio != "new bio" {
		t.Fatalf("expected overwritten bio, got %q", f.Bio)
	}
	if len(f.LookingFor) != 1 || f.LookingFor[0] != "funding" {
		t.Fatalf("expected looking_for set, got %v", f.LookingFor)
	}
	// offering was absent from the update, so it clears.
	if len(f.Offering) != 0 {
		t.Fatalf("expected offering cleared, got %v", f.Offering)
	}
}

func TestMergeProfilePreservesUnknownKeys(t *testing.T) {
	existing := json.RawMessage(`{"bio":"hello","timezone":"Europe/London"}`)

	merged, err := MergeProfile(existing, ProfileFields{Bio: "updated"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(merged, &doc); err != nil {
		t.Fatalf("unmarshal merged: %v", err)
	}
	if doc["timezone"] != "Europe/London" {
		t.Fatalf("expected unknown key preserved, got %v", doc["timezone"])
	}
	if doc["bio"] != "updated" {
		t.Fatalf("expected bio updated, got %v", doc["bio"])
	}
}

func TestMergeProfileTrimsWhitespace(t *testing.T) {
	merged, err := MergeProfile(nil, ProfileFields{Bio: "  padded  ", LinkedInURL: " "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f := ParseProfile(merged)
	if f.Bio != "padded" {
		t.Fatalf("expected trimmed bio, got %q", f.Bio)
	}
	if f.LinkedInURL != "" {
		t.Fatalf("expected whitespace-only url dropped, got %q", f.LinkedInURL)
	}
}
