// Package requestctx carries per-request correlation data below the HTTP layer,
// where adapters only see a context.Context.
package requestctx

import "context"

type requestIDKey struct{}

// WithRequestID attaches the request correlation ID.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestID returns the correlation ID, or "" outside a request.
func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// IdempotencyKey derives a key for a side-effecting provider call. Replays of the
// same request (same X-Request-ID) for the same scope produce the same key.
// Returns "" when the context carries no request ID.
func IdempotencyKey(ctx context.Context, scope string) string {
	id := RequestID(ctx)
	if id == "" {
		return ""
	}
	return scope + ":" + id
}
