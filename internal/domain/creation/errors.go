package creation

import "errors"

var (
	// ErrCreationNotFound is returned for unknown or malformed creation ids.
	ErrCreationNotFound = errors.New("creation not found")

	// ErrCreationIDRequired is returned when a toggle names no creation.
	ErrCreationIDRequired = errors.New("creation id is required")
)
