package model

// ArticleRequest is the body of an article generation call.
type ArticleRequest struct {
	Prompt string `json:"prompt"`
	// Length is the requested article size, used as the output token budget.
	Length int `json:"length"`
}

// BlogTitleRequest is the body of a blog title generation call.
type BlogTitleRequest struct {
	Prompt string `json:"prompt"`
}

// ImageRequest is the body of an image generation call.
type ImageRequest struct {
	Prompt  string `json:"prompt"`
	Publish bool   `json:"publish"`
}

// ToggleLikeRequest is the body of a like toggle call.
type ToggleLikeRequest struct {
	ID string `json:"id"`
}
