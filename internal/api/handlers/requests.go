package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/eddowding/abelique-matching/internal/matching"
	"github.com/eddowding/abelique-matching/internal/models"
	"github.com/eddowding/abelique-matching/internal/queue"
	"github.com/eddowding/abelique-matching/internal/storage"
	"github.com/eddowding/abelique-matching/pkg/dto"
)

type RequestHandler struct {
	db       *storage.PostgresStore
	requests *matching.RequestService
	producer *queue.Producer
}

func NewRequestHandler(db *storage.PostgresStore, requests *matching.RequestService, producer *queue.Producer) *RequestHandler {
	return &RequestHandler{db: db, requests: requests, producer: producer}
}

// Send creates a directed match request. When the target already has a
// pending request the other way, both flip to accepted and a connection
// comes back in the response.
func (h *RequestHandler) Send(c *gin.Context) {
	member := requireMember(c, h.db)
	if member == nil {
		return
	}

	var req dto.SendMatchRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	target, err := h.db.GetMember(c.Request.Context(), member.GroupID, req.TargetID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if target == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "target is not a member of this group"})
		return
	}

	result, err := h.requests.Send(c.Request.Context(), member.GroupID, member.UserID, req.TargetID)
	if err != nil {
		switch {
		case errors.Is(err, matching.ErrSelfRequest):
			c.JSON(http.StatusBadRequest, gin.H{"error": "cannot request a match with yourself"})
		case errors.Is(err, matching.ErrDuplicateRequest):
			c.JSON(http.StatusConflict, gin.H{"error": "request already sent"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	h.publishEvent(c, member.GroupID, dto.EventMatchRequestCreated, gin.H{
		"request_id":   result.Request.ID,
		"requester_id": member.UserID,
		"target_id":    req.TargetID,
	})
	if result.IsMutual {
		h.publishEvent(c, member.GroupID, dto.EventConnectionCreated, gin.H{
			"connection_id": result.Connection.ID,
			"user_a":        result.Connection.UserA,
			"user_b":        result.Connection.UserB,
		})
	}

	resp := dto.SendMatchRequestResponse{
		Request:  requestResponse(result.Request),
		IsMutual: result.IsMutual,
	}
	if result.Connection != nil {
		resp.Connection = &dto.ConnectionResponse{
			ID:        result.Connection.ID,
			CreatedAt: result.Connection.CreatedAt.Format(timeFormat),
		}
	}

	c.JSON(http.StatusCreated, resp)
}

// ListIncoming returns pending requests addressed to the acting member,
// newest first.
func (h *RequestHandler) ListIncoming(c *gin.Context) {
	member := requireMember(c, h.db)
	if member == nil {
		return
	}

	incoming, err := h.db.IncomingRequests(c.Request.Context(), member.GroupID, member.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := make([]dto.IncomingRequestResponse, 0, len(incoming))
	for _, ir := range incoming {
		resp = append(resp, dto.IncomingRequestResponse{
			ID:        ir.Request.ID,
			Status:    string(ir.Request.Status),
			CreatedAt: ir.Request.CreatedAt.Format(timeFormat),
			Requester: dto.MemberSketch{
				UserID:      ir.Requester.UserID,
				FullName:    ir.Requester.FullName,
				Email:       ir.Requester.Email,
				ProfileData: ir.Requester.ProfileData,
			},
		})
	}

	c.JSON(http.StatusOK, gin.H{"requests": resp, "total": len(resp)})
}

// Accept completes a pending request addressed to the acting member.
func (h *RequestHandler) Accept(c *gin.Context) {
	member := requireMember(c, h.db)
	if member == nil {
		return
	}

	requestID, err := uuid.Parse(c.Param("requestID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request id"})
		return
	}

	conn, err := h.requests.Accept(c.Request.Context(), member.GroupID, member.UserID, requestID)
	if err != nil {
		if errors.Is(err, matching.ErrRequestNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "pending request not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.publishEvent(c, member.GroupID, dto.EventConnectionCreated, gin.H{
		"connection_id": conn.ID,
		"user_a":        conn.UserA,
		"user_b":        conn.UserB,
	})

	c.JSON(http.StatusOK, dto.ConnectionResponse{
		ID:        conn.ID,
		CreatedAt: conn.CreatedAt.Format(timeFormat),
	})
}

// publishEvent pushes a notification onto the event stream. Delivery is
// best effort; a broker outage never fails the request.
func (h *RequestHandler) publishEvent(c *gin.Context, groupID uuid.UUID, eventType string, data any) {
	if h.producer == nil {
		return
	}
	evt := dto.WSEvent{Type: eventType, GroupID: groupID, Data: data}
	if err := h.producer.PublishMatchEvent(c.Request.Context(), groupID, evt); err != nil {
		slog.Warn("publish match event", "type", eventType, "group_id", groupID, "error", err)
	}
}

func requestResponse(r *models.MatchRequest) dto.MatchRequestResponse {
	return dto.MatchRequestResponse{
		ID:          r.ID,
		RequesterID: r.RequesterID,
		TargetID:    r.TargetID,
		Status:      string(r.Status),
		CreatedAt:   r.CreatedAt.Format(timeFormat),
	}
}
