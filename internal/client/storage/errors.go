package storage

import "errors"

// Common client storage errors
var (
	// ErrAuthNotFound indicates that no authentication data exists
	ErrAuthNotFound = errors.New("authentication data not found")

	// ErrActionNotFound indicates that queued action was not found
	ErrActionNotFound = errors.New("queued action not found")

	// ErrCacheMiss indicates that no cache entry exists for the key
	ErrCacheMiss = errors.New("cache entry not found")

	// ErrStorageClosed indicates that storage is closed
	ErrStorageClosed = errors.New("storage is closed")
)
