package payment

import "errors"

var (
	// ErrPaymentFailed is returned when the test charge or the grant could not be recorded.
	ErrPaymentFailed = errors.New("failed to process test payment")
)
