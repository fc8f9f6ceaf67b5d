package matching

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// ExclusionStore provides the three independent reads behind the
// exclusion set. Each is scoped to one group; HiddenTargets must only
// return suppressions whose expiry is still in the future.
type ExclusionStore interface {
	HiddenTargets(ctx context.Context, groupID, userID uuid.UUID) ([]uuid.UUID, error)
	RequestedTargets(ctx context.Context, groupID, userID uuid.UUID) ([]uuid.UUID, error)
	ConnectedCounterparts(ctx context.Context, groupID, userID uuid.UUID) ([]uuid.UUID, error)
}

// ResolveExclusions computes the set of user ids that must never appear
// in the given member's candidate feed: the member itself, actively
// hidden targets, targets of already-sent requests, and everyone the
// member is connected to. The three reads have no ordering dependency,
// so they are issued concurrently.
//
// The result is recomputed on every feed request. Exclusion state
// changes on every connect/hide action, and a stale set would leak or
// hide the wrong candidates.
func ResolveExclusions(ctx context.Context, store ExclusionStore, groupID, userID uuid.UUID) (map[uuid.UUID]struct{}, error) {
	queries := []struct {
		name string
		run  func(context.Context, uuid.UUID, uuid.UUID) ([]uuid.UUID, error)
	}{
		{"hidden targets", store.HiddenTargets},
		{"requested targets", store.RequestedTargets},
		{"connected counterparts", store.ConnectedCounterparts},
	}

	results := make([][]uuid.UUID, len(queries))
	errs := make([]error, len(queries))

	var wg sync.WaitGroup
	for i, q := range queries {
		wg.Add(1)
		go func(i int, name string, run func(context.Context, uuid.UUID, uuid.UUID) ([]uuid.UUID, error)) {
			defer wg.Done()
			ids, err := run(ctx, groupID, userID)
			if err != nil {
				errs[i] = fmt.Errorf("resolve %s: %w", name, err)
				return
			}
			results[i] = ids
		}(i, q.name, q.run)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	excluded := map[uuid.UUID]struct{}{userID: {}}
	for _, ids := range results {
		for _, id := range ids {
			excluded[id] = struct{}{}
		}
	}
	return excluded, nil
}
