package handlers

import (
	"crypto/rand"
	"encoding/base32"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/eddowding/abelique-matching/internal/auth"
	"github.com/eddowding/abelique-matching/internal/models"
	"github.com/eddowding/abelique-matching/internal/storage"
	"github.com/eddowding/abelique-matching/pkg/dto"
)

type GroupHandler struct {
	db *storage.PostgresStore
}

func NewGroupHandler(db *storage.PostgresStore) *GroupHandler {
	return &GroupHandler{db: db}
}

// Create makes a new group and enrolls the creator as its admin member.
func (h *GroupHandler) Create(c *gin.Context) {
	var req dto.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	existing, err := h.db.GroupBySlug(c.Request.Context(), req.Slug)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if existing != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "slug already taken"})
		return
	}

	group := &models.Group{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		InviteCode:  generateInviteCode(),
		AccessCode:  req.AccessCode,
		CreatorID:   auth.UserID(c),
	}
	if err := h.db.CreateGroup(c.Request.Context(), group); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	member := &models.Member{
		GroupID: group.ID,
		UserID:  group.CreatorID,
		Role:    models.RoleAdmin,
	}
	if err := h.db.CreateMember(c.Request.Context(), member); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, dto.GroupResponse{
		ID:          group.ID,
		Name:        group.Name,
		Slug:        group.Slug,
		Description: group.Description,
		InviteCode:  group.InviteCode,
		MemberCount: 1,
		CreatedAt:   group.CreatedAt.Format(timeFormat),
	})
}

// Get returns group details. The invite code is only shown to admins.
func (h *GroupHandler) Get(c *gin.Context) {
	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid group id"})
		return
	}

	group, err := h.db.GetGroup(c.Request.Context(), groupID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if group == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "group not found"})
		return
	}

	member, err := h.db.GetMember(c.Request.Context(), groupID, auth.UserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if member == nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a member of this group"})
		return
	}

	count, _ := h.db.CountMembers(c.Request.Context(), groupID)

	resp := dto.GroupResponse{
		ID:          group.ID,
		Name:        group.Name,
		Slug:        group.Slug,
		Description: group.Description,
		MemberCount: count,
		CreatedAt:   group.CreatedAt.Format(timeFormat),
	}
	if member.Role == models.RoleAdmin {
		resp.InviteCode = group.InviteCode
	}

	c.JSON(http.StatusOK, resp)
}

// Join enrolls the acting user into a group, either by invite code or
// by slug plus access code.
func (h *GroupHandler) Join(c *gin.Context) {
	var req dto.JoinGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var (
		group *models.Group
		err   error
	)
	switch {
	case req.InviteCode != "":
		group, err = h.db.GroupByInviteCode(c.Request.Context(), req.InviteCode)
	case req.Slug != "":
		group, err = h.db.GroupBySlug(c.Request.Context(), req.Slug)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invite_code or slug required"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if group == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "group not found"})
		return
	}

	// Joining by slug requires the group's access code when one is set.
	if req.InviteCode == "" && group.AccessCode != "" && req.AccessCode != group.AccessCode {
		c.JSON(http.StatusForbidden, gin.H{"error": "invalid access code"})
		return
	}

	userID := auth.UserID(c)
	existing, err := h.db.GetMember(c.Request.Context(), group.ID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if existing != nil {
		c.JSON(http.StatusOK, dto.JoinGroupResponse{
			GroupID:       group.ID,
			GroupName:     group.Name,
			GroupSlug:     group.Slug,
			MembershipID:  existing.ID,
			Role:          string(existing.Role),
			AlreadyMember: true,
		})
		return
	}

	member := &models.Member{
		GroupID:  group.ID,
		UserID:   userID,
		FullName: strings.TrimSpace(req.FullName),
		Email:    strings.TrimSpace(req.Email),
		Role:     models.RoleMember,
	}
	if err := h.db.CreateMember(c.Request.Context(), member); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, dto.JoinGroupResponse{
		GroupID:      group.ID,
		GroupName:    group.Name,
		GroupSlug:    group.Slug,
		MembershipID: member.ID,
		Role:         string(member.Role),
	})
}

func generateInviteCode() string {
	buf := make([]byte, 10)
	_, _ = rand.Read(buf)
	return strings.ToLower(base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(buf))
}
