package entitlement

import (
	"errors"
	"fmt"
)

var (
	// ErrQuotaExceeded is returned when a free user has used up a bucket.
	ErrQuotaExceeded = errors.New("quota exceeded")

	// ErrLedgerUnavailable is returned when usage cannot be read or reserved.
	ErrLedgerUnavailable = errors.New("quota ledger unavailable")

	// ErrInvalidPolicy is returned when the policy table is inconsistent.
	ErrInvalidPolicy = errors.New("invalid quota policy")

	// ErrReservationLost is returned when a successful action's reservation had
	// already expired, so it could not be charged.
	ErrReservationLost = errors.New("quota reservation expired before commit")

	// ErrUnknownAction is returned when an action is neither metered nor declared unmetered.
	ErrUnknownAction = errors.New("action has no quota policy")
)

// DeniedError carries the gate's denial to the caller.
type DeniedError struct {
	Decision Decision
	Bucket   string
}

func (e *DeniedError) Error() string {
	return fmt.Sprintf("%s: %s", e.Bucket, e.Decision.Reason)
}

// Is makes a denial match ErrQuotaExceeded.
func (e *DeniedError) Is(target error) bool {
	return target == ErrQuotaExceeded
}
