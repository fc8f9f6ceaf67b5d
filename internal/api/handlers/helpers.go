package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/eddowding/abelique-matching/internal/auth"
	"github.com/eddowding/abelique-matching/internal/models"
	"github.com/eddowding/abelique-matching/internal/storage"
)

const timeFormat = "2006-01-02T15:04:05Z"

// requireMember resolves the :id group param and the acting user's
// membership row. Writes the error response and returns nil when the
// caller is not a member.
func requireMember(c *gin.Context, db *storage.PostgresStore) *models.Member {
	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid group id"})
		return nil
	}

	member, err := db.GetMember(c.Request.Context(), groupID, auth.UserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return nil
	}
	if member == nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a member of this group"})
		return nil
	}
	return member
}
