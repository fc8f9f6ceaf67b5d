package matching

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/eddowding/abelique-matching/internal/models"
	"github.com/eddowding/abelique-matching/internal/observability"
)

// RequestStore persists match requests and connections.
//
// CreateRequest must return ErrDuplicateRequest when a row already
// exists for the ordered (group, requester, target) triple.
// CreateConnection must be idempotent for the unordered user pair: the
// storage layer enforces a uniqueness constraint on the canonical pair,
// so concurrent mutual sends cannot race into two connections.
type RequestStore interface {
	CreateRequest(ctx context.Context, groupID, requesterID, targetID uuid.UUID) (*models.MatchRequest, error)
	PendingRequest(ctx context.Context, groupID, requesterID, targetID uuid.UUID) (*models.MatchRequest, error)
	RequestByID(ctx context.Context, groupID, requestID uuid.UUID) (*models.MatchRequest, error)
	AcceptRequests(ctx context.Context, ids []uuid.UUID) error
	CreateConnection(ctx context.Context, groupID, userA, userB uuid.UUID) (*models.Connection, error)
}

// SendResult is the outcome of sending a match request. Connection is
// non-nil exactly when the send completed a mutual match.
type SendResult struct {
	Request    *models.MatchRequest
	IsMutual   bool
	Connection *models.Connection
}

// RequestService owns the write paths for match requests and
// connections.
type RequestService struct {
	store RequestStore
}

func NewRequestService(store RequestStore) *RequestService {
	return &RequestService{store: store}
}

// Send creates a directed request and, if the reverse request is
// already pending, completes the mutual match: exactly one connection
// is created and both requests flip to accepted.
func (s *RequestService) Send(ctx context.Context, groupID, requesterID, targetID uuid.UUID) (*SendResult, error) {
	if requesterID == targetID {
		return nil, ErrSelfRequest
	}

	req, err := s.store.CreateRequest(ctx, groupID, requesterID, targetID)
	if err != nil {
		return nil, err
	}

	reverse, err := s.store.PendingRequest(ctx, groupID, targetID, requesterID)
	if err != nil {
		return nil, fmt.Errorf("check reverse request: %w", err)
	}
	if reverse == nil {
		return &SendResult{Request: req}, nil
	}

	conn, err := s.store.CreateConnection(ctx, groupID, requesterID, targetID)
	if err != nil {
		return nil, fmt.Errorf("create connection: %w", err)
	}
	if err := s.store.AcceptRequests(ctx, []uuid.UUID{req.ID, reverse.ID}); err != nil {
		return nil, fmt.Errorf("accept requests: %w", err)
	}
	req.Status = models.RequestAccepted

	observability.ConnectionsCreated.Inc()

	return &SendResult{Request: req, IsMutual: true, Connection: conn}, nil
}

// Accept completes a pending request addressed to targetID: a
// connection is created and the request flips to accepted.
func (s *RequestService) Accept(ctx context.Context, groupID, targetID, requestID uuid.UUID) (*models.Connection, error) {
	req, err := s.store.RequestByID(ctx, groupID, requestID)
	if err != nil {
		return nil, fmt.Errorf("load request: %w", err)
	}
	if req == nil || req.TargetID != targetID || req.Status != models.RequestPending {
		return nil, ErrRequestNotFound
	}

	conn, err := s.store.CreateConnection(ctx, groupID, req.RequesterID, req.TargetID)
	if err != nil {
		return nil, fmt.Errorf("create connection: %w", err)
	}
	if err := s.store.AcceptRequests(ctx, []uuid.UUID{req.ID}); err != nil {
		return nil, fmt.Errorf("accept request: %w", err)
	}

	observability.ConnectionsCreated.Inc()

	return conn, nil
}
