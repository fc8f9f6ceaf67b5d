package dto

import "github.com/google/uuid"

type CreateGroupRequest struct {
	Name        string `json:"name" binding:"required"`
	Slug        string `json:"slug" binding:"required"`
	Description string `json:"description"`
	AccessCode  string `json:"access_code"`
}

type GroupResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	InviteCode  string    `json:"invite_code,omitempty"`
	MemberCount int       `json:"member_count"`
	CreatedAt   string    `json:"created_at"`
}

// JoinGroupRequest joins by invite code, or by slug plus the group's
// access code when one is set.
type JoinGroupRequest struct {
	InviteCode string `json:"invite_code"`
	Slug       string `json:"slug"`
	AccessCode string `json:"access_code"`
	FullName   string `json:"full_name"`
	Email      string `json:"email"`
}

type JoinGroupResponse struct {
	GroupID       uuid.UUID `json:"group_id"`
	GroupName     string    `json:"group_name"`
	GroupSlug     string    `json:"group_slug"`
	MembershipID  uuid.UUID `json:"membership_id,omitempty"`
	Role          string    `json:"role,omitempty"`
	AlreadyMember bool      `json:"already_member,omitempty"`
}
