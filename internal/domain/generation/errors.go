package generation

import "errors"

var (
	// ErrPromptRequired is returned when a text or image prompt is empty.
	ErrPromptRequired = errors.New("prompt is required")

	// ErrImageRequired is returned when no image was uploaded.
	ErrImageRequired = errors.New("image file is required")

	// ErrUnsupportedMedia is returned when an upload is not an image.
	ErrUnsupportedMedia = errors.New("uploaded file is not an image")

	// ErrUploadTooLarge is returned when an upload exceeds the size limit.
	ErrUploadTooLarge = errors.New("uploaded file is too large")

	// ErrInputRejected is returned when the provider refuses the input itself.
	ErrInputRejected = errors.New("input rejected by provider")

	// ErrProviderFailed is returned when a generation provider call fails.
	ErrProviderFailed = errors.New("generation provider failed")

	// ErrProviderTimeout is returned when a provider call exceeds its deadline.
	ErrProviderTimeout = errors.New("generation provider timed out")

	// ErrProviderUnavailable is returned while a provider's breaker is open.
	ErrProviderUnavailable = errors.New("generation provider unavailable")

	// ErrStorageFailed is returned when a generated artifact cannot be stored.
	ErrStorageFailed = errors.New("artifact storage failed")
)
