package mediaprovider

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\nfake")

func newTestAdapter(t *testing.T, handler http.HandlerFunc) *ClipdropAdapter {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClipdropAdapter(ClipdropConfig{APIKey: "clip-key", BaseURL: srv.URL}, srv.Client(), nil)
}

func TestClipdrop_TextToImage(t *testing.T) {
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/text-to-image/v1", r.URL.Path)
		assert.Equal(t, "clip-key", r.Header.Get("x-api-key"))
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "a red fox", r.FormValue("prompt"))

		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(pngBytes)
	})

	img, err := adapter.TextToImage(context.Background(), "a red fox")
	require.NoError(t, err)
	assert.Equal(t, pngBytes, img.Data)
	assert.Equal(t, "image/png", img.ContentType)
}

func TestClipdrop_RemoveBackground(t *testing.T) {
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/remove-background/v1", r.URL.Path)
		file, header, err := r.FormFile("image_file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "cat.jpg", header.Filename)
		data, _ := io.ReadAll(file)
		assert.Equal(t, []byte("jpeg-bytes"), data)

		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(pngBytes)
	})

	img, err := adapter.RemoveBackground(context.Background(), bytes.NewReader([]byte("jpeg-bytes")), "cat.jpg")
	require.NoError(t, err)
	assert.Equal(t, pngBytes, img.Data)
}

func TestClipdrop_Errors(t *testing.T) {
	t.Run("rejected input", func(t *testing.T) {
		adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"prompt is missing"}`))
		})
		_, err := adapter.TextToImage(context.Background(), "")
		assert.ErrorIs(t, err, ErrRejected)
		assert.Contains(t, err.Error(), "prompt is missing")
	})

	t.Run("server error", func(t *testing.T) {
		adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
		_, err := adapter.TextToImage(context.Background(), "x")
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrRejected)
	})
}

func TestClipdrop_OversizedResponse(t *testing.T) {
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(bytes.Repeat([]byte("x"), 17))
	})
	adapter.maxBytes = 16

	img, err := adapter.TextToImage(context.Background(), "a red fox")
	assert.ErrorIs(t, err, ErrResponseTooLarge)
	assert.Nil(t, img)

	adapter.maxBytes = 17
	img, err = adapter.TextToImage(context.Background(), "a red fox")
	require.NoError(t, err)
	assert.Len(t, img.Data, 17)
}

func TestClipdrop_RejectedPromptsKeepProviderAvailable(t *testing.T) {
	var calls atomic.Int32
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		if r.FormValue("prompt") == "bad" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"unsafe prompt"}`))
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(pngBytes)
	})

	// More rejections than the default failure threshold.
	for i := 0; i < 8; i++ {
		_, err := adapter.TextToImage(context.Background(), "bad")
		require.ErrorIs(t, err, ErrRejected)
	}

	img, err := adapter.TextToImage(context.Background(), "a red fox")
	require.NoError(t, err)
	assert.Equal(t, pngBytes, img.Data)
	assert.Equal(t, int32(9), calls.Load())
}
