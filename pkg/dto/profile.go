package dto

import (
	"encoding/json"

	"github.com/google/uuid"
)

type UpdateProfileRequest struct {
	Bio         string   `json:"bio"`
	CurrentWork string   `json:"current_work"`
	LookingFor  []string `json:"looking_for"`
	Offering    []string `json:"offering"`
	LinkedInURL string   `json:"linkedin_url"`
}

type ProfileResponse struct {
	MembershipID uuid.UUID       `json:"membership_id"`
	GroupID      uuid.UUID       `json:"group_id"`
	UserID       uuid.UUID       `json:"user_id"`
	FullName     string          `json:"full_name"`
	Email        string          `json:"email"`
	Role         string          `json:"role"`
	ProfileData  json.RawMessage `json:"profile_data"`
	HasEmbedding bool            `json:"has_embedding"`
	PhotoURL     string          `json:"photo_url,omitempty"`
	JoinedAt     string          `json:"joined_at"`
	UpdatedAt    string          `json:"updated_at"`
}
