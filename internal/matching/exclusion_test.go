package matching

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

type stubExclusionStore struct {
	hidden    []uuid.UUID
	requested []uuid.UUID
	connected []uuid.UUID

	hiddenErr    error
	requestedErr error
	connectedErr error
}

func (s *stubExclusionStore) HiddenTargets(context.Context, uuid.UUID, uuid.UUID) ([]uuid.UUID, error) {
	return s.hidden, s.hiddenErr
}

func (s *stubExclusionStore) RequestedTargets(context.Context, uuid.UUID, uuid.UUID) ([]uuid.UUID, error) {
	return s.requested, s.requestedErr
}

func (s *stubExclusionStore) ConnectedCounterparts(context.Context, uuid.UUID, uuid.UUID) ([]uuid.UUID, error) {
	return s.connected, s.connectedErr
}

func TestResolveExclusionsUnionsAllSources(t *testing.T) {
	self := uuid.New()
	hidden := uuid.New()
	requested := uuid.New()
	connected := uuid.New()
	both := uuid.New() // hidden and requested

	store := &stubExclusionStore{
		hidden:    []uuid.UUID{hidden, both},
		requested: []uuid.UUID{requested, both},
		connected: []uuid.UUID{connected},
	}

	excluded, err := ResolveExclusions(context.Background(), store, uuid.New(), self)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, id := range []uuid.UUID{self, hidden, requested, connected, both} {
		if _, ok := excluded[id]; !ok {
			t.Fatalf("expected %s in exclusion set", id)
		}
	}
	if len(excluded) != 5 {
		t.Fatalf("expected 5 excluded ids, got %d", len(excluded))
	}
}

func TestResolveExclusionsAlwaysIncludesSelf(t *testing.T) {
	self := uuid.New()
	excluded, err := ResolveExclusions(context.Background(), &stubExclusionStore{}, uuid.New(), self)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := excluded[self]; !ok {
		t.Fatalf("expected self in exclusion set")
	}
	if len(excluded) != 1 {
		t.Fatalf("expected only self, got %d ids", len(excluded))
	}
}

func TestResolveExclusionsPropagatesError(t *testing.T) {
	boom := errors.New("db down")
	store := &stubExclusionStore{requestedErr: boom}

	_, err := ResolveExclusions(context.Background(), store, uuid.New(), uuid.New())
	if err == nil {
		t.Fatalf("expected error")
	}
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped source error, got %v", err)
	}
}
