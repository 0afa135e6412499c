package identity

import "errors"

var (
	// ErrUnauthenticated is returned when the caller cannot be identified.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrIdentityUnavailable is returned when plan evidence cannot be read.
	ErrIdentityUnavailable = errors.New("identity provider unavailable")
)
