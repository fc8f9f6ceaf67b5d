package matching

import "errors"

var (
	// ErrNotAMember means the acting user has no member row in the group.
	// Every group-scoped operation checks this before touching data.
	ErrNotAMember = errors.New("not a member of this group")

	// ErrProfileIncomplete means the requester has no stored embedding;
	// the feed request short-circuits before the ranker is ever called.
	ErrProfileIncomplete = errors.New("profile has no embedding yet")

	// ErrDuplicateRequest means a request already exists for this
	// (requester, target) pair in the group.
	ErrDuplicateRequest = errors.New("match request already sent")

	// ErrRequestNotFound means no pending request matches the given id
	// with the caller as target.
	ErrRequestNotFound = errors.New("match request not found or already processed")

	// ErrSelfRequest means a member tried to send a request to themselves.
	ErrSelfRequest = errors.New("cannot send a match request to yourself")
)
