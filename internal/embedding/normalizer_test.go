package embedding

import (
	"testing"

	"github.com/eddowding/abelique-matching/internal/models"
)

func TestProfileTextFullProfile(t *testing.T) {
	f := models.ProfileFields{
		Bio:         "Founder and coffee enthusiast.",
		CurrentWork: "building a climate data platform",
		LookingFor:  []string{"seed funding", "Go engineers"},
		Offering:    []string{"product feedback", "intros to VCs"},
	}

	got := ProfileText(f)
	want := "Founder and coffee enthusiast.\n" +
		"Currently working on: building a climate data platform\n" +
		"Looking for: seed funding, Go engineers\n" +
		"Can offer: product feedback, intros to VCs"

	if got != want {
		t.Fatalf("unexpected profile text:\ngot:  %q\nwant: %q", got, want)
	}
}

func TestProfileTextSkipsEmptyFields(t *testing.T) {
	f := models.ProfileFields{
		CurrentWork: "a side project",
		LookingFor:  []string{"  ", ""},
		Offering:    []string{"mentoring"},
	}

	got := ProfileText(f)
	want := "Currently working on: a side project\nCan offer: mentoring"

	if got != want {
		t.Fatalf("unexpected profile text:\ngot:  %q\nwant: %q", got, want)
	}
}

func TestProfileTextTrimsTagWhitespace(t *testing.T) {
	f := models.ProfileFields{
		LookingFor: []string{" design help ", "hiring advice"},
	}

	got := ProfileText(f)
	if got != "Looking for: design help, hiring advice" {
		t.Fatalf("unexpected profile text: %q", got)
	}
}

func TestProfileTextEmptyProfile(t *testing.T) {
	if got := ProfileText(models.ProfileFields{}); got != "" {
		t.Fatalf("expected empty string for empty profile, got %q", got)
	}

	f := models.ProfileFields{Bio: "   ", LookingFor: []string{""}}
	if got := ProfileText(f); got != "" {
		t.Fatalf("expected empty string for whitespace-only profile, got %q", got)
	}
}

func TestProfileTextIgnoresLinkedIn(t *testing.T) {
	// The LinkedIn URL is display-only metadata and must not influence
	// similarity.
	with := ProfileText(models.ProfileFields{Bio: "hi", LinkedInURL: "https://linkedin.com/in/x"})
	without := ProfileText(models.ProfileFields{Bio: "hi"})
	if with != without {
		t.Fatalf("linkedin url leaked into embedding text: %q vs %q", with, without)
	}
}
