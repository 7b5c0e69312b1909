// Package storage holds the errors shared by every store implementation.
package storage

import "errors"

var (
	// ErrConflict is returned when a create collides with an existing
	// (platform, identifier) record.
	ErrConflict = errors.New("storage: record already exists")
	ErrNotFound = errors.New("storage: record not found")
)
