package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/eddowding/abelique-matching/internal/config"
	"github.com/eddowding/abelique-matching/internal/matching"
	"github.com/eddowding/abelique-matching/internal/models"
	"github.com/eddowding/abelique-matching/internal/storage"
	"github.com/eddowding/abelique-matching/pkg/dto"
)

type MatchHandler struct {
	db   *storage.PostgresStore
	feed *matching.FeedService
	cfg  config.MatchingConfig
}

func NewMatchHandler(db *storage.PostgresStore, feed *matching.FeedService, cfg config.MatchingConfig) *MatchHandler {
	return &MatchHandler{db: db, feed: feed, cfg: cfg}
}

// Feed returns one page of similarity-ranked matches for the acting
// member.
func (h *MatchHandler) Feed(c *gin.Context) {
	member := requireMember(c, h.db)
	if member == nil {
		return
	}

	offset := intQuery(c, "offset", 0)
	limit := intQuery(c, "limit", h.cfg.DefaultPageSize)
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = h.cfg.DefaultPageSize
	}
	if limit > h.cfg.MaxPageSize {
		limit = h.cfg.MaxPageSize
	}

	feed, err := h.feed.Feed(c.Request.Context(), member, offset, limit)
	if err != nil {
		if errors.Is(err, matching.ErrProfileIncomplete) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error": "profile incomplete: fill in your profile to see matches",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	entries := make([]dto.MatchEntry, 0, len(feed.Matches))
	for _, m := range feed.Matches {
		entries = append(entries, dto.MatchEntry{
			UserID:      m.UserID,
			FullName:    m.FullName,
			Email:       m.Email,
			LinkedInURL: m.LinkedInURL,
			ProfileData: m.ProfileData,
			Similarity:  m.Similarity,
			MatchReason: m.Reason,
		})
	}

	c.JSON(http.StatusOK, dto.MatchFeedResponse{
		Matches: entries,
		CurrentUser: dto.MatchFeedCurrentUser{
			LookingFor: feed.LookingFor,
			Offering:   feed.Offering,
		},
		Offset:  feed.Offset,
		Limit:   feed.Limit,
		HasMore: feed.HasMore,
	})
}

// Hide suppresses one member from the caller's feed for a bounded
// window (the configured default when days is omitted).
func (h *MatchHandler) Hide(c *gin.Context) {
	member := requireMember(c, h.db)
	if member == nil {
		return
	}

	var req dto.HideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.HiddenID == member.UserID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot hide yourself"})
		return
	}

	days := req.Days
	if days <= 0 {
		days = h.cfg.DefaultHideDays
	}

	sup := &models.Suppression{
		GroupID:     member.GroupID,
		UserID:      member.UserID,
		HiddenID:    req.HiddenID,
		HiddenUntil: time.Now().Add(time.Duration(days) * 24 * time.Hour),
	}
	if err := h.db.UpsertSuppression(c.Request.Context(), sup); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, dto.SuppressionResponse{
		GroupID:     sup.GroupID,
		HiddenID:    sup.HiddenID,
		HiddenUntil: sup.HiddenUntil.UTC().Format(timeFormat),
	})
}

// Unhide removes a suppression before it expires.
func (h *MatchHandler) Unhide(c *gin.Context) {
	member := requireMember(c, h.db)
	if member == nil {
		return
	}

	hiddenID, err := uuid.Parse(c.Param("hiddenID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid hidden id"})
		return
	}

	if err := h.db.DeleteSuppression(c.Request.Context(), member.GroupID, member.UserID, hiddenID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "unhidden"})
}

func intQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
