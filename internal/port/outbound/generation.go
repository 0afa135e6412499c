package outbound

import (
	"context"
	"errors"
	"io"
)

// ErrInputRejected is returned by providers that refuse the input itself,
// as opposed to failing to process it.
var ErrInputRejected = errors.New("provider rejected the input")

// TextGenerationRequest is a single-shot text completion request.
type TextGenerationRequest struct {
	Prompt      string
	MaxTokens   int32
	Temperature float32
}

// TextGeneratorPort produces text from a prompt.
type TextGeneratorPort interface {
	Generate(ctx context.Context, req *TextGenerationRequest) (string, error)
}

// GeneratedImage is raw image output from a provider.
type GeneratedImage struct {
	Data        []byte
	ContentType string
}

// ImageGeneratorPort synthesizes an image from a prompt.
type ImageGeneratorPort interface {
	TextToImage(ctx context.Context, prompt string) (*GeneratedImage, error)
}

// BackgroundRemoverPort strips the background from an image.
type BackgroundRemoverPort interface {
	RemoveBackground(ctx context.Context, image io.Reader, filename string) (*GeneratedImage, error)
}
