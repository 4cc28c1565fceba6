package storage

import "errors"

// Common client storage errors
var (
	// ErrNotFound indicates that the slot has no value
	ErrNotFound = errors.New("slot not found")

	// ErrStorageClosed indicates that storage is closed
	ErrStorageClosed = errors.New("storage is closed")
)
