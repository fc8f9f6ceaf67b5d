package matching

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/eddowding/abelique-matching/internal/models"
)

type memRequestStore struct {
	requests    map[uuid.UUID]*models.MatchRequest
	connections []*models.Connection
}

func newMemRequestStore() *memRequestStore {
	return &memRequestStore{requests: map[uuid.UUID]*models.MatchRequest{}}
}

func (s *memRequestStore) CreateRequest(_ context.Context, groupID, requesterID, targetID uuid.UUID) (*models.MatchRequest, error) {
	for _, r := range s.requests {
		if r.GroupID == groupID && r.RequesterID == requesterID && r.TargetID == targetID {
			return nil, ErrDuplicateRequest
		}
	}
	req := &models.MatchRequest{
		ID:          uuid.New(),
		GroupID:     groupID,
		RequesterID: requesterID,
		TargetID:    targetID,
		Status:      models.RequestPending,
		CreatedAt:   time.Now(),
	}
	s.requests[req.ID] = req
	return req, nil
}

func (s *memRequestStore) PendingRequest(_ context.Context, groupID, requesterID, targetID uuid.UUID) (*models.MatchRequest, error) {
	for _, r := range s.requests {
		if r.GroupID == groupID && r.RequesterID == requesterID && r.TargetID == targetID && r.Status == models.RequestPending {
			return r, nil
		}
	}
	return nil, nil
}

func (s *memRequestStore) RequestByID(_ context.Context, groupID, requestID uuid.UUID) (*models.MatchRequest, error) {
	r, ok := s.requests[requestID]
	if !ok || r.GroupID != groupID {
		return nil, nil
	}
	return r, nil
}

func (s *memRequestStore) AcceptRequests(_ context.Context, ids []uuid.UUID) error {
	for _, id := range ids {
		if r, ok := s.requests[id]; ok {
			r.Status = models.RequestAccepted
		}
	}
	return nil
}

func (s *memRequestStore) CreateConnection(_ context.Context, groupID, userA, userB uuid.UUID) (*models.Connection, error) {
	low, high := models.OrderedPair(userA, userB)
	for _, c := range s.connections {
		if c.GroupID == groupID && c.UserA == low && c.UserB == high {
			return c, nil
		}
	}
	conn := &models.Connection{
		ID:        uuid.New(),
		GroupID:   groupID,
		UserA:     low,
		UserB:     high,
		CreatedAt: time.Now(),
	}
	s.connections = append(s.connections, conn)
	return conn, nil
}

func TestSendCreatesPendingRequest(t *testing.T) {
	store := newMemRequestStore()
	svc := NewRequestService(store)

	groupID, alice, bob := uuid.New(), uuid.New(), uuid.New()

	result, err := svc.Send(context.Background(), groupID, alice, bob)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsMutual {
		t.Fatalf("expected non-mutual send")
	}
	if result.Connection != nil {
		t.Fatalf("expected no connection")
	}
	if result.Request.Status != models.RequestPending {
		t.Fatalf("expected pending status, got %s", result.Request.Status)
	}
}

func TestSendToSelf(t *testing.T) {
	svc := NewRequestService(newMemRequestStore())

	user := uuid.New()
	_, err := svc.Send(context.Background(), uuid.New(), user, user)
	if !errors.Is(err, ErrSelfRequest) {
		t.Fatalf("expected ErrSelfRequest, got %v", err)
	}
}

func TestSendDuplicate(t *testing.T) {
	store := newMemRequestStore()
	svc := NewRequestService(store)

	groupID, alice, bob := uuid.New(), uuid.New(), uuid.New()
	if _, err := svc.Send(context.Background(), groupID, alice, bob); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err := svc.Send(context.Background(), groupID, alice, bob)
	if !errors.Is(err, ErrDuplicateRequest) {
		t.Fatalf("expected ErrDuplicateRequest, got %v", err)
	}
}

func TestSendMutualCreatesSingleConnection(t *testing.T) {
	store := newMemRequestStore()
	svc := NewRequestService(store)

	groupID, alice, bob := uuid.New(), uuid.New(), uuid.New()

	first, err := svc.Send(context.Background(), groupID, alice, bob)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second, err := svc.Send(context.Background(), groupID, bob, alice)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !second.IsMutual {
		t.Fatalf("expected mutual match")
	}
	if second.Connection == nil {
		t.Fatalf("expected a connection")
	}
	if len(store.connections) != 1 {
		t.Fatalf("expected exactly one connection, got %d", len(store.connections))
	}

	// Both requests must now be accepted.
	for _, id := range []uuid.UUID{first.Request.ID, second.Request.ID} {
		if store.requests[id].Status != models.RequestAccepted {
			t.Fatalf("request %s: expected accepted, got %s", id, store.requests[id].Status)
		}
	}

	// The stored pair is canonical regardless of send direction.
	low, high := models.OrderedPair(alice, bob)
	if store.connections[0].UserA != low || store.connections[0].UserB != high {
		t.Fatalf("connection pair not canonical")
	}
}

func TestAcceptCompletesRequest(t *testing.T) {
	store := newMemRequestStore()
	svc := NewRequestService(store)

	groupID, alice, bob := uuid.New(), uuid.New(), uuid.New()
	sent, err := svc.Send(context.Background(), groupID, alice, bob)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	conn, err := svc.Accept(context.Background(), groupID, bob, sent.Request.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if conn == nil {
		t.Fatalf("expected a connection")
	}
	if store.requests[sent.Request.ID].Status != models.RequestAccepted {
		t.Fatalf("expected request accepted")
	}
}

func TestAcceptRejectsWrongTarget(t *testing.T) {
	store := newMemRequestStore()
	svc := NewRequestService(store)

	groupID, alice, bob, mallory := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	sent, err := svc.Send(context.Background(), groupID, alice, bob)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = svc.Accept(context.Background(), groupID, mallory, sent.Request.ID)
	if !errors.Is(err, ErrRequestNotFound) {
		t.Fatalf("expected ErrRequestNotFound, got %v", err)
	}
}

func TestAcceptRejectsAlreadyAccepted(t *testing.T) {
	store := newMemRequestStore()
	svc := NewRequestService(store)

	groupID, alice, bob := uuid.New(), uuid.New(), uuid.New()
	sent, err := svc.Send(context.Background(), groupID, alice, bob)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Accept(context.Background(), groupID, bob, sent.Request.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = svc.Accept(context.Background(), groupID, bob, sent.Request.ID)
	if !errors.Is(err, ErrRequestNotFound) {
		t.Fatalf("expected ErrRequestNotFound on second accept, got %v", err)
	}
}

func TestAcceptUnknownRequest(t *testing.T) {
	svc := NewRequestService(newMemRequestStore())

	_, err := svc.Accept(context.Background(), uuid.New(), uuid.New(), uuid.New())
	if !errors.Is(err, ErrRequestNotFound) {
		t.Fatalf("expected ErrRequestNotFound, got %v", err)
	}
}
