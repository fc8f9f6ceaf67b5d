package models

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

type MemberRole string

const (
	RoleAdmin  MemberRole = "admin"
	RoleMember MemberRole = "member"
)

// Member is one user's profile scoped to one group. At most one row
// exists per (group, user) pair.
type Member struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	GroupID     uuid.UUID       `json:"group_id" db:"group_id"`
	UserID      uuid.UUID       `json:"user_id" db:"user_id"`
	FullName    string          `json:"full_name" db:"full_name"`
	Email       string          `json:"email" db:"email"`
	Role        MemberRole      `json:"role" db:"role"`
	ProfileData json.RawMessage `json:"profile_data" db:"profile_data"`
	// Embedding is nil until the member has non-empty profile text and
	// the embedding provider has succeeded at least once.
	Embedding []float32 `json:"-" db:"embedding"`
	PhotoKey  string    `json:"-" db:"photo_key"`
	JoinedAt  time.Time `json:"joined_at" db:"joined_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ProfileFields is the typed view of the known profile_data keys.
// profile_data itself stays raw JSON so keys added later round-trip
// through storage untouched.
type ProfileFields struct {
	Bio         string   `json:"bio,omitempty"`
	CurrentWork string   `json:"current_work,omitempty"`
	LookingFor  []string `json:"looking_for,omitempty"`
	Offering    []string `json:"offering,omitempty"`
	LinkedInURL string   `json:"linkedin_url,omitempty"`
}

// ParseProfile decodes the known fields out of a raw profile_data blob.
// A nil or empty blob yields the zero value.
func ParseProfile(raw json.RawMessage) ProfileFields {
	var f ProfileFields
	if len(raw) == 0 {
		return f
	}
	_ = json.Unmarshal(raw, &f)
	return f
}

// MergeProfile overlays the known fields onto an existing raw blob,
// preserving any keys it does not understand.
func MergeProfile(existing json.RawMessage, f ProfileFields) (json.RawMessage, error) {
	doc := map[string]any{}
	if len(existing) > 0 {
		if err := json.Unmarshal(existing, &doc); err != nil {
			doc = map[string]any{}
		}
	}

	setOrDelete := func(key string, present bool, value any) {
		if present {
			doc[key] = value
		} else {
			delete(doc, key)
		}
	}
	setOrDelete("bio", strings.TrimSpace(f.Bio) != "", strings.TrimSpace(f.Bio))
	setOrDelete("current_work", strings.TrimSpace(f.CurrentWork) != "", strings.TrimSpace(f.CurrentWork))
	setOrDelete("looking_for", len(f.LookingFor) > 0, f.LookingFor)
	setOrDelete("offering", len(f.Offering) > 0, f.Offering)
	setOrDelete("linkedin_url", strings.TrimSpace(f.LinkedInURL) != "", strings.TrimSpace(f.LinkedInURL))

	return json.Marshal(doc)
}
