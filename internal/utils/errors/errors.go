package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Common error types.
var (
	ErrNotFound         = errors.New("resource not found")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrBadRequest       = errors.New("bad request")
	ErrInternal         = errors.New("internal error")
	ErrUpgradeRequired  = errors.New("upgrade required")
	ErrRateLimited      = errors.New("rate limited")
	ErrProviderFailed   = errors.New("provider failed")
	ErrTimeout          = errors.New("timeout")
	ErrServiceUnavail   = errors.New("service unavailable")
	ErrPaymentFailed    = errors.New("payment failed")
)

// GenericMessage is the only message an unexpected failure ever exposes.
const GenericMessage = "internal server error"

// AppError represents an application error with HTTP status and error code.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	// Upgrade marks a denial the caller can lift by switching plan.
	Upgrade bool `json:"-"`
	// Retryable marks a failure the caller may safely try again.
	Retryable bool  `json:"-"`
	Err       error `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is reports whether target matches this error.
func (e *AppError) Is(target error) bool {
	if t, ok := target.(*AppError); ok {
		return e.Code == t.Code
	}
	return errors.Is(e.Err, target)
}

// NewAppError creates a new application error.
func NewAppError(code string, message string, statusCode int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Err:        err,
	}
}

// NotFound creates a not found error.
func NotFound(resource string) *AppError {
	return &AppError{
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		StatusCode: http.StatusNotFound,
		Err:        ErrNotFound,
	}
}

// Unauthorized creates an unauthorized error.
func Unauthorized(message string) *AppError {
	if message == "" {
		message = "authentication required"
	}
	return &AppError{
		Code:       "UNAUTHORIZED",
		Message:    message,
		StatusCode: http.StatusUnauthorized,
		Err:        ErrUnauthorized,
	}
}

// BadRequest creates a validation error.
func BadRequest(message string) *AppError {
	return &AppError{
		Code:       "BAD_REQUEST",
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Err:        ErrBadRequest,
	}
}

// UpgradeRequired creates a quota denial that carries the upgrade hint.
func UpgradeRequired(message string) *AppError {
	if message == "" {
		message = "free usage limit reached, upgrade to premium to continue"
	}
	return &AppError{
		Code:       "UPGRADE_REQUIRED",
		Message:    message,
		StatusCode: http.StatusPaymentRequired,
		Upgrade:    true,
		Err:        ErrUpgradeRequired,
	}
}

// RateLimited creates a rate limited error.
func RateLimited(message string) *AppError {
	if message == "" {
		message = "too many requests"
	}
	return &AppError{
		Code:       "RATE_LIMITED",
		Message:    message,
		StatusCode: http.StatusTooManyRequests,
		Retryable:  true,
		Err:        ErrRateLimited,
	}
}

// ProviderFailed creates an upstream provider error.
func ProviderFailed(message string, err error) *AppError {
	if message == "" {
		message = "generation provider failed"
	}
	return &AppError{
		Code:       "PROVIDER_FAILED",
		Message:    message,
		StatusCode: http.StatusBadGateway,
		Err:        errors.Join(ErrProviderFailed, err),
	}
}

// ProviderTimeout creates a retryable upstream timeout error.
func ProviderTimeout(message string, err error) *AppError {
	if message == "" {
		message = "generation provider timed out, please retry"
	}
	return &AppError{
		Code:       "PROVIDER_TIMEOUT",
		Message:    message,
		StatusCode: http.StatusGatewayTimeout,
		Retryable:  true,
		Err:        errors.Join(ErrTimeout, err),
	}
}

// IdentityUnavailable creates a fail-closed error for identity or ledger outages.
func IdentityUnavailable(message string, err error) *AppError {
	if message == "" {
		message = "service temporarily unavailable"
	}
	return &AppError{
		Code:       "SERVICE_UNAVAILABLE",
		Message:    message,
		StatusCode: http.StatusServiceUnavailable,
		Retryable:  true,
		Err:        errors.Join(ErrServiceUnavail, err),
	}
}

// Internal creates an internal error. The message never reaches the client.
func Internal(message string, err error) *AppError {
	return &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Err:        errors.Join(ErrInternal, err),
	}
}

// GetStatusCode returns the appropriate HTTP status code for an error.
func GetStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrUpgradeRequired):
		return http.StatusPaymentRequired
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, ErrProviderFailed), errors.Is(err, ErrPaymentFailed):
		return http.StatusBadGateway
	case errors.Is(err, ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, ErrServiceUnavail):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// IsNotFound checks if the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsUpgradeRequired checks if the error is a quota denial.
func IsUpgradeRequired(err error) bool {
	return errors.Is(err, ErrUpgradeRequired)
}
