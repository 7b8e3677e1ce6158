package validation

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRequest indicates a structurally malformed change request
	// (missing payload, end before start, non-positive hours). The engine
	// fails fast and performs no storage queries.
	ErrInvalidRequest = errors.New("validation: invalid request")

	// ErrUnavailable indicates the engine could not reach a verdict because
	// a storage query failed or the context was cancelled. Callers must
	// treat it as "cannot determine validity", never as valid.
	ErrUnavailable = errors.New("validation: unavailable")
)

// ConflictError is returned by write paths when a verdict carries blocking
// findings. The full verdict rides along so callers can present every
// conflict at once.
type ConflictError struct {
	Verdict Verdict
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("validation rejected change: %d error(s), %d warning(s)",
		len(e.Verdict.Errors), len(e.Verdict.Warnings))
}
