package model

// Response shapes below document the wire envelope. Every body carries success.

// ContentResponse carries generated text.
type ContentResponse struct {
	Success bool   `json:"success" example:"true"`
	Content string `json:"content"`
}

// ImageResponse carries a durable or signed asset URL.
type ImageResponse struct {
	Success   bool   `json:"success" example:"true"`
	SecureURL string `json:"secure_url"`
}

// CreationsResponse lists a user's creations.
type CreationsResponse struct {
	Success   bool        `json:"success" example:"true"`
	Creations []*Creation `json:"creations"`
}

// PublishedCreationsResponse lists community creations.
type PublishedCreationsResponse struct {
	Success   bool                 `json:"success" example:"true"`
	Creations []*PublishedCreation `json:"creations"`
}

// MessageResponse carries a human readable outcome.
type MessageResponse struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message"`
}

// UsageResponse reports quota usage.
type UsageResponse struct {
	Success bool           `json:"success" example:"true"`
	Plan    Plan           `json:"plan"`
	Quotas  []*BucketUsage `json:"quotas"`
}

// ErrorResponse is the failure envelope.
type ErrorResponse struct {
	Success   bool   `json:"success" example:"false"`
	Message   string `json:"message"`
	Code      string `json:"code,omitempty"`
	Upgrade   bool   `json:"upgrade,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
}
