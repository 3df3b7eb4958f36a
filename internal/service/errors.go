package service

import (
	"errors"
	"fmt"
)

// Error taxonomy. Handlers map these to distinct status codes, and callers
// can tell a precondition failure from an I/O failure: validation and state
// conflicts never touch the store, so retrying them unchanged is pointless,
// while plain errors are transport failures that may be retried.
var (
	ErrValidation    = errors.New("validation error")
	ErrStateConflict = errors.New("state conflict")
	ErrPermission    = errors.New("permission denied")
	ErrNotFound      = errors.New("not found")
)

var (
	// ErrSessionAlreadyOpen: a session document already exists for the day —
	// the losing side of a concurrent double-open, or a plain retry.
	ErrSessionAlreadyOpen = fmt.Errorf("%w: a session already exists for this day", ErrStateConflict)
	// ErrSessionClosed: the day's session is closed; its ledger is immutable.
	ErrSessionClosed = fmt.Errorf("%w: session is closed", ErrStateConflict)
	// ErrSessionNotOpen: no open session exists for the day.
	ErrSessionNotOpen = fmt.Errorf("%w: no open session for this day", ErrStateConflict)
	// ErrJustificationRequired: opening balance deviates from the
	// carry-forward proposal without a justification.
	ErrJustificationRequired = fmt.Errorf("%w: opening balance differs from previous closing balance, justification required", ErrValidation)
)

func validationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrValidation}, args...)...)
}
