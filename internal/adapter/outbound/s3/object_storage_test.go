package s3

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBucket struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
}

func (b *fakeBucket) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch r.Method {
	case http.MethodPut:
		data, _ := io.ReadAll(r.Body)
		b.objects[r.URL.Path] = data
		b.types[r.URL.Path] = r.Header.Get("Content-Type")
		w.Header().Set("ETag", `"etag"`)
		w.WriteHeader(http.StatusOK)
	case http.MethodDelete:
		delete(b.objects, r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newTestStorage(t *testing.T, publicBaseURL string) (*ObjectStorageAdapter, *fakeBucket) {
	t.Helper()
	bucket := &fakeBucket{objects: map[string][]byte{}, types: map[string]string{}}
	srv := httptest.NewServer(bucket)
	t.Cleanup(srv.Close)

	cfg := Config{
		Endpoint:        srv.URL,
		Region:          "auto",
		AccessKeyID:     "AKIDTEST",
		SecretAccessKey: "secret",
		Bucket:          "arix",
		PublicBaseURL:   publicBaseURL,
		SignedURLExpiry: time.Hour,
	}
	client, err := NewClient(context.Background(), cfg)
	require.NoError(t, err)
	return NewObjectStorageAdapter(client, cfg, nil), bucket
}

func TestObjectStorage_PutAndDelete(t *testing.T) {
	storage, bucket := newTestStorage(t, "")
	ctx := context.Background()

	body := "png-bytes"
	require.NoError(t, storage.Put(ctx, "images/u1/a.png", strings.NewReader(body), int64(len(body)), "image/png"))

	bucket.mu.Lock()
	assert.Equal(t, []byte(body), bucket.objects["/arix/images/u1/a.png"])
	assert.Equal(t, "image/png", bucket.types["/arix/images/u1/a.png"])
	bucket.mu.Unlock()

	require.NoError(t, storage.Delete(ctx, "images/u1/a.png"))
	bucket.mu.Lock()
	assert.Empty(t, bucket.objects)
	bucket.mu.Unlock()
}

func TestObjectStorage_PresignedURL(t *testing.T) {
	storage, _ := newTestStorage(t, "")

	u, err := storage.PresignedURL(context.Background(), "processed/u1/b.png", 10*time.Minute)
	require.NoError(t, err)
	assert.Contains(t, u, "/arix/processed/u1/b.png")
	assert.Contains(t, u, "X-Amz-Signature=")
	assert.Contains(t, u, "X-Amz-Expires=600")
}

func TestObjectStorage_DurableURL(t *testing.T) {
	t.Run("public base", func(t *testing.T) {
		storage, _ := newTestStorage(t, "https://cdn.example.com/")
		u, err := storage.DurableURL(context.Background(), "images/u 1/a.png")
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.example.com/images/u%201/a.png", u)
	})

	t.Run("falls back to presigned", func(t *testing.T) {
		storage, _ := newTestStorage(t, "")
		u, err := storage.DurableURL(context.Background(), "images/u1/a.png")
		require.NoError(t, err)
		assert.Contains(t, u, "X-Amz-Signature=")
	})
}

func TestObjectStorage_PutFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	cfg := Config{Endpoint: srv.URL, AccessKeyID: "a", SecretAccessKey: "b", Bucket: "arix"}
	client, err := NewClient(context.Background(), cfg)
	require.NoError(t, err)
	storage := NewObjectStorageAdapter(client, cfg, nil)

	err = storage.Put(context.Background(), "k", strings.NewReader("x"), 1, "image/png")
	assert.Error(t, err)
}

func TestNewClient_RequiresBucket(t *testing.T) {
	_, err := NewClient(context.Background(), Config{})
	assert.Error(t, err)
}
