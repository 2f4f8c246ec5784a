package storage

import "errors"

// Common client storage errors
var (
	// ErrRecordNotCached indicates that no snapshot exists for the record
	ErrRecordNotCached = errors.New("readiness record not cached")

	// ErrSessionNotFound indicates that no authentication session exists
	ErrSessionNotFound = errors.New("session not found")
)
