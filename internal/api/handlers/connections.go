package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eddowding/abelique-matching/internal/storage"
	"github.com/eddowding/abelique-matching/pkg/dto"
)

type ConnectionHandler struct {
	db *storage.PostgresStore
}

func NewConnectionHandler(db *storage.PostgresStore) *ConnectionHandler {
	return &ConnectionHandler{db: db}
}

// List returns the acting member's connections with the other party's
// profile attached, newest first.
func (h *ConnectionHandler) List(c *gin.Context) {
	member := requireMember(c, h.db)
	if member == nil {
		return
	}

	conns, err := h.db.ListConnections(c.Request.Context(), member.GroupID, member.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := make([]dto.ConnectionResponse, 0, len(conns))
	for _, mc := range conns {
		resp = append(resp, dto.ConnectionResponse{
			ID:          mc.Connection.ID,
			MatchReason: mc.Connection.MatchReason,
			CreatedAt:   mc.Connection.CreatedAt.Format(timeFormat),
			OtherUser: &dto.MemberSketch{
				UserID:      mc.Other.UserID,
				FullName:    mc.Other.FullName,
				Email:       mc.Other.Email,
				ProfileData: mc.Other.ProfileData,
			},
		})
	}

	c.JSON(http.StatusOK, gin.H{"connections": resp, "total": len(resp)})
}
