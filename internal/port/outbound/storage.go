package outbound

import (
	"context"
	"io"
	"time"
)

// ObjectStoragePort defines object storage operations.
type ObjectStoragePort interface {
	// Put uploads an object to storage.
	Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error

	// Delete removes an object from storage.
	Delete(ctx context.Context, key string) error

	// PresignedURL generates a presigned URL for temporary access.
	PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error)

	// DurableURL returns the public URL when one is configured, or a presigned one.
	DurableURL(ctx context.Context, key string) (string, error)
}
