package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrConflict indicates a storage-level uniqueness or exclusion
	// constraint rejected a write. It is the authoritative backstop for the
	// race between validation and commit.
	ErrConflict = errors.New("conflicting record exists")
)
