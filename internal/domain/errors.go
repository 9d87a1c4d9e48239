package domain

import "errors"

// Error taxonomy shared by every service in the module. Callers match with
// errors.Is; the HTTP layer maps each sentinel to a status code.
var (
	// ErrNotFound is returned when a session or record lookup finds nothing.
	ErrNotFound = errors.New("not found")

	// ErrInvalidData is returned for malformed entity type tokens and
	// unparseable stored JSON payloads.
	ErrInvalidData = errors.New("invalid data")

	// ErrConflict is returned for illegal session state transitions.
	ErrConflict = errors.New("conflict")

	// ErrFatal marks an unrecoverable import failure. The session is moved to
	// Failed and the message recorded; already-imported rows are not rolled back.
	ErrFatal = errors.New("fatal")
)
