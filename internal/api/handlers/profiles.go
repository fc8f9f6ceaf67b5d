package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/eddowding/abelique-matching/internal/matching"
	"github.com/eddowding/abelique-matching/internal/models"
	"github.com/eddowding/abelique-matching/internal/storage"
	"github.com/eddowding/abelique-matching/pkg/dto"
)

const maxPhotoBytes = 5 << 20

type ProfileHandler struct {
	db       *storage.PostgresStore
	profiles *matching.ProfileService
	photos   *storage.PhotoStore
}

func NewProfileHandler(db *storage.PostgresStore, profiles *matching.ProfileService, photos *storage.PhotoStore) *ProfileHandler {
	return &ProfileHandler{db: db, profiles: profiles, photos: photos}
}

func (h *ProfileHandler) Get(c *gin.Context) {
	member := requireMember(c, h.db)
	if member == nil {
		return
	}
	c.JSON(http.StatusOK, profileResponse(member))
}

// Update saves new profile fields and regenerates the embedding. An
// embedding provider outage degrades to a save without a vector, never
// to a failed request.
func (h *ProfileHandler) Update(c *gin.Context) {
	member := requireMember(c, h.db)
	if member == nil {
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.profiles.Update(c.Request.Context(), member, models.ProfileFields{
		Bio:         req.Bio,
		CurrentWork: req.CurrentWork,
		LookingFor:  req.LookingFor,
		Offering:    req.Offering,
		LinkedInURL: req.LinkedInURL,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, profileResponse(updated))
}

// UploadPhoto accepts a multipart profile photo and stores it in object
// storage. Only the object key lands in Postgres.
func (h *ProfileHandler) UploadPhoto(c *gin.Context) {
	member := requireMember(c, h.db)
	if member == nil {
		return
	}

	file, header, err := c.Request.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo file required"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxPhotoBytes+1))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "read photo failed"})
		return
	}
	if len(data) > maxPhotoBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "photo exceeds 5MB limit"})
		return
	}

	key := "photos/" + member.GroupID.String() + "/" + member.UserID.String()
	if err := h.photos.PutPhoto(c.Request.Context(), key, data, header.Header.Get("Content-Type")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "store photo failed"})
		return
	}

	if err := h.db.SetMemberPhotoKey(c.Request.Context(), member.ID, key); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"photo_url": photoURL(member.GroupID, member.UserID)})
}

// GetPhoto serves another member's profile photo. Callers must share
// the group.
func (h *ProfileHandler) GetPhoto(c *gin.Context) {
	member := requireMember(c, h.db)
	if member == nil {
		return
	}

	targetID, err := uuid.Parse(c.Param("userID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	target, err := h.db.GetMember(c.Request.Context(), member.GroupID, targetID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if target == nil || target.PhotoKey == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "photo not found"})
		return
	}

	data, contentType, err := h.photos.GetPhoto(c.Request.Context(), target.PhotoKey)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Data(http.StatusOK, contentType, data)
}

func profileResponse(m *models.Member) dto.ProfileResponse {
	resp := dto.ProfileResponse{
		MembershipID: m.ID,
		GroupID:      m.GroupID,
		UserID:       m.UserID,
		FullName:     m.FullName,
		Email:        m.Email,
		Role:         string(m.Role),
		ProfileData:  m.ProfileData,
		HasEmbedding: len(m.Embedding) > 0,
		JoinedAt:     m.JoinedAt.Format(timeFormat),
		UpdatedAt:    m.UpdatedAt.Format(timeFormat),
	}
	if m.PhotoKey != "" {
		resp.PhotoURL = photoURL(m.GroupID, m.UserID)
	}
	return resp
}

func photoURL(groupID, userID uuid.UUID) string {
	return "/v1/groups/" + groupID.String() + "/members/" + userID.String() + "/photo"
}
