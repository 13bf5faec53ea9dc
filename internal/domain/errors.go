package domain

import "errors"

var (
	// ErrNotFound signals that no recipe exists under the requested id.
	ErrNotFound = errors.New("recipe not found")
	// ErrValidation signals a rejected recipe input.
	ErrValidation = errors.New("validation failed")
	// ErrStore signals a record store failure; the write was not applied.
	ErrStore = errors.New("record store failure")
	// ErrIndexWrite signals a failed index projection after a committed
	// store mutation. The catalog changed; search may be stale.
	ErrIndexWrite = errors.New("search index write failed")
	// ErrIndexQuery signals a failed search query.
	ErrIndexQuery = errors.New("search index query failed")
	// ErrIndexUnavailable signals that the search index could not be
	// reached in time.
	ErrIndexUnavailable = errors.New("search index unavailable")
	// ErrReindexInProgress signals a rejected concurrent reindex request.
	ErrReindexInProgress = errors.New("reindex already in progress")
)
