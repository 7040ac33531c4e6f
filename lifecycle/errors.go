package lifecycle

import (
	"errors"
	"fmt"
)

// Failures returned by the Manager. Callers match them with errors.Is; the
// wrapped message carries the detail.
var (
	ErrValidation       = errors.New("validation error")
	ErrNotFound         = errors.New("not found")
	ErrForbidden        = errors.New("forbidden")
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrInvalidTransition is a validation error for a status move the state
	// machine does not allow
	ErrInvalidTransition = fmt.Errorf("%w: invalid status transition", ErrValidation)

	// ErrConflict is returned when the FIR was changed by another writer
	// between the read and the conditional write
	ErrConflict = errors.New("conflict")

	// ErrArchived is returned when a mutation targets a FIR that has already
	// been resolved and archived
	ErrArchived = fmt.Errorf("%w: fir is archived", ErrConflict)
)
