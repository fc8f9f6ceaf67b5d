package models

import (
	"time"

	"github.com/google/uuid"
)

type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestAccepted RequestStatus = "accepted"
)

// MatchRequest is a directed connect proposal within a group. At most
// one row exists per (group, requester, target) ordered pair.
type MatchRequest struct {
	ID          uuid.UUID     `json:"id" db:"id"`
	GroupID     uuid.UUID     `json:"group_id" db:"group_id"`
	RequesterID uuid.UUID     `json:"requester_id" db:"requester_id"`
	TargetID    uuid.UUID     `json:"target_id" db:"target_id"`
	Status      RequestStatus `json:"status" db:"status"`
	CreatedAt   time.Time     `json:"created_at" db:"created_at"`
}

// Connection is the materialized mutual match. UserA/UserB are stored
// in canonical order (UserA < UserB) so the unordered pair is unique.
type Connection struct {
	ID          uuid.UUID `json:"id" db:"id"`
	GroupID     uuid.UUID `json:"group_id" db:"group_id"`
	UserA       uuid.UUID `json:"user_a" db:"user_a"`
	UserB       uuid.UUID `json:"user_b" db:"user_b"`
	MatchReason string    `json:"match_reason,omitempty" db:"match_reason"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// OrderedPair returns the two user ids in canonical storage order.
func OrderedPair(a, b uuid.UUID) (uuid.UUID, uuid.UUID) {
	if a.String() < b.String() {
		return a, b
	}
	return b, a
}

// Suppression hides one member from another's feed until HiddenUntil.
// Expired rows have no filtering effect.
type Suppression struct {
	GroupID     uuid.UUID `json:"group_id" db:"group_id"`
	UserID      uuid.UUID `json:"user_id" db:"user_id"`
	HiddenID    uuid.UUID `json:"hidden_id" db:"hidden_id"`
	HiddenUntil time.Time `json:"hidden_until" db:"hidden_until"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
