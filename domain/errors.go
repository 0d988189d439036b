package domain

import "errors"

var (
	// ErrNotFound: project or bandit missing, or a project without bandits.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument: rejected before any state mutation.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrConcurrencyConflict: optimistic update on a bandit lost the race.
	ErrConcurrencyConflict = errors.New("concurrency conflict")
	// ErrStorage: the store is unreachable or failed; retryable by the caller.
	ErrStorage = errors.New("storage failure")
)
