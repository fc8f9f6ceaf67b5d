package dto

import "github.com/google/uuid"

const (
	EventMatchRequestCreated = "match_request.created"
	EventConnectionCreated   = "connection.created"
)

// WSEvent is the envelope broadcast to WebSocket clients when match
// state changes inside a group.
type WSEvent struct {
	Type    string    `json:"type"`
	GroupID uuid.UUID `json:"group_id"`
	Data    any       `json:"data,omitempty"`
}
