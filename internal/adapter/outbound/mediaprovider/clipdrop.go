package mediaprovider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/arix/server/internal/infra/resilience"
	"github.com/arix/server/internal/port/outbound"
)

const maxImageBytes = 32 << 20

var (
	// ErrRejected is returned when Clipdrop refuses the input itself.
	ErrRejected = outbound.ErrInputRejected

	// ErrResponseTooLarge is returned when Clipdrop sends back more than the image limit.
	ErrResponseTooLarge = errors.New("clipdrop response exceeds size limit")
)

// ClipdropConfig holds Clipdrop adapter configuration.
type ClipdropConfig struct {
	APIKey  string
	BaseURL string
}

// ClipdropAdapter implements image synthesis and background removal on Clipdrop.
type ClipdropAdapter struct {
	client  *http.Client
	apiKey  string
	baseURL string
	guard   *resilience.Guard
	// maxBytes caps both uploads and provider responses.
	maxBytes int64
}

// NewClipdropAdapter creates a new Clipdrop adapter with the given HTTP client.
func NewClipdropAdapter(cfg ClipdropConfig, client *http.Client, guard *resilience.Guard) *ClipdropAdapter {
	if client == nil {
		client = http.DefaultClient
	}
	if guard == nil {
		guard = resilience.NewGuard("clipdrop", resilience.DefaultConfig(), nil, nil)
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://clipdrop-api.co"
	}
	return &ClipdropAdapter{
		client:   client,
		apiKey:   cfg.APIKey,
		baseURL:  baseURL,
		guard:    guard,
		maxBytes: maxImageBytes,
	}
}

// clipdropError is the provider's error body.
type clipdropError struct {
	Error string `json:"error"`
}

// TextToImage generates a PNG from a prompt.
func (a *ClipdropAdapter) TextToImage(ctx context.Context, prompt string) (*outbound.GeneratedImage, error) {
	return resilience.Execute(ctx, a.guard, func(ctx context.Context) (*outbound.GeneratedImage, error) {
		return a.post(ctx, "/text-to-image/v1", func(w *multipart.Writer) error {
			return w.WriteField("prompt", prompt)
		})
	})
}

// RemoveBackground returns the image with its background made transparent.
func (a *ClipdropAdapter) RemoveBackground(ctx context.Context, image io.Reader, filename string) (*outbound.GeneratedImage, error) {
	// The body is buffered once so the breaker call owns a complete request.
	data, err := io.ReadAll(io.LimitReader(image, a.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if int64(len(data)) > a.maxBytes {
		return nil, fmt.Errorf("%w: image exceeds %d bytes", ErrRejected, a.maxBytes)
	}

	return resilience.Execute(ctx, a.guard, func(ctx context.Context) (*outbound.GeneratedImage, error) {
		return a.post(ctx, "/remove-background/v1", func(w *multipart.Writer) error {
			part, err := w.CreateFormFile("image_file", filename)
			if err != nil {
				return err
			}
			_, err = part.Write(data)
			return err
		})
	})
}

func (a *ClipdropAdapter) post(ctx context.Context, path string, build func(*multipart.Writer) error) (*outbound.GeneratedImage, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if err := build(w); err != nil {
		return nil, fmt.Errorf("build form: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+path, &body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("x-api-key", a.apiKey)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("clipdrop %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr clipdropError
		_ = json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&apiErr)
		msg := apiErr.Error
		if msg == "" {
			msg = resp.Status
		}
		if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusRequestEntityTooLarge {
			return nil, fmt.Errorf("%w: %s", ErrRejected, msg)
		}
		return nil, fmt.Errorf("clipdrop %s returned status %d: %s", path, resp.StatusCode, msg)
	}

	// One byte past the limit tells a full image from a truncated one.
	data, err := io.ReadAll(io.LimitReader(resp.Body, a.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if int64(len(data)) > a.maxBytes {
		return nil, fmt.Errorf("%w: %s: more than %d bytes", ErrResponseTooLarge, path, a.maxBytes)
	}
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return &outbound.GeneratedImage{Data: data, ContentType: contentType}, nil
}

// Compile-time checks
var (
	_ outbound.ImageGeneratorPort    = (*ClipdropAdapter)(nil)
	_ outbound.BackgroundRemoverPort = (*ClipdropAdapter)(nil)
)
