package outbound

import (
	"context"
	"errors"
	"time"
)

// ErrReservationNotFound is returned by Commit when the reservation is no longer
// pending: it expired, was released, or was already committed.
var ErrReservationNotFound = errors.New("reservation not found")

// Reservation is the outcome of an atomic check-and-reserve.
type Reservation struct {
	Allowed bool
	// Used is the committed count at decision time.
	Used int64
	// InFlight is the number of live reservations, including this one when allowed.
	InFlight int64
}

// QuotaLedgerPort stores per-user, per-bucket usage counters.
type QuotaLedgerPort interface {
	// Get reads the committed count. found is false when no counter exists.
	Get(ctx context.Context, userID, bucket string) (used int64, found bool, err error)

	// Set overwrites the committed count.
	Set(ctx context.Context, userID, bucket string, used int64) error

	// Init creates the counter at zero when absent and leaves it untouched otherwise.
	Init(ctx context.Context, userID, bucket string) error

	// Reserve atomically admits one in-flight unit when used plus in-flight is below limit.
	Reserve(ctx context.Context, userID, bucket string, limit int64, reservationID string, ttl time.Duration) (*Reservation, error)

	// Commit turns a live reservation into one committed unit and returns the new
	// count. The count is untouched and ErrReservationNotFound returned otherwise.
	Commit(ctx context.Context, userID, bucket, reservationID string) (int64, error)

	// Release drops a reservation without charging it.
	Release(ctx context.Context, userID, bucket, reservationID string) error
}

// RateLimiterPort defines rate limiting operations.
type RateLimiterPort interface {
	// Allow checks if a request is allowed within rate limits.
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)

	// GetRemaining returns remaining requests in window.
	GetRemaining(ctx context.Context, key string, limit int, window time.Duration) (int, error)
}
