package model

import "errors"

// Error taxonomy for client-facing operations. Handlers map these onto
// {ok:false, error} acknowledgments; federation failures never reach
// clients at all.
var (
	ErrNotJoined       = errors.New("not joined")
	ErrRateLimited     = errors.New("Slow down")
	ErrEmptyMessage    = errors.New("Empty message")
	ErrInvalidReaction = errors.New("invalid")
	ErrMissingMessage  = errors.New("missing")
	ErrSaveFailed      = errors.New("Failed to save")
	ErrReactionFailed  = errors.New("reaction failed")
)
