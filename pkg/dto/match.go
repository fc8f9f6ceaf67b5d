package dto

import (
	"encoding/json"

	"github.com/google/uuid"
)

type MatchEntry struct {
	UserID      uuid.UUID       `json:"user_id"`
	FullName    string          `json:"full_name"`
	Email       string          `json:"email"`
	LinkedInURL string          `json:"linkedin_url,omitempty"`
	ProfileData json.RawMessage `json:"profile_data"`
	Similarity  float64         `json:"similarity"`
	MatchReason string          `json:"match_reason"`
}

type MatchFeedCurrentUser struct {
	LookingFor []string `json:"looking_for"`
	Offering   []string `json:"offering"`
}

type MatchFeedResponse struct {
	Matches     []MatchEntry         `json:"matches"`
	CurrentUser MatchFeedCurrentUser `json:"current_user"`
	Offset      int                  `json:"offset"`
	Limit       int                  `json:"limit"`
	HasMore     bool                 `json:"has_more"`
}

type SendMatchRequestRequest struct {
	TargetID uuid.UUID `json:"target_id" binding:"required"`
}

type MatchRequestResponse struct {
	ID          uuid.UUID `json:"id"`
	RequesterID uuid.UUID `json:"requester_id"`
	TargetID    uuid.UUID `json:"target_id"`
	Status      string    `json:"status"`
	CreatedAt   string    `json:"created_at"`
}

type SendMatchRequestResponse struct {
	Request    MatchRequestResponse `json:"request"`
	IsMutual   bool                 `json:"is_mutual"`
	Connection *ConnectionResponse  `json:"connection,omitempty"`
}

type IncomingRequestResponse struct {
	ID        uuid.UUID    `json:"id"`
	Status    string       `json:"status"`
	CreatedAt string       `json:"created_at"`
	Requester MemberSketch `json:"requester"`
}

// MemberSketch is the compact member view embedded in request and
// connection payloads.
type MemberSketch struct {
	UserID      uuid.UUID       `json:"user_id"`
	FullName    string          `json:"full_name"`
	Email       string          `json:"email"`
	ProfileData json.RawMessage `json:"profile_data"`
}

type HideRequest struct {
	HiddenID uuid.UUID `json:"hidden_id" binding:"required"`
	Days     int       `json:"days"`
}

type SuppressionResponse struct {
	GroupID     uuid.UUID `json:"group_id"`
	HiddenID    uuid.UUID `json:"hidden_id"`
	HiddenUntil string    `json:"hidden_until"`
}

type ConnectionResponse struct {
	ID          uuid.UUID     `json:"id"`
	MatchReason string        `json:"match_reason,omitempty"`
	CreatedAt   string        `json:"created_at"`
	OtherUser   *MemberSketch `json:"other_user,omitempty"`
}
