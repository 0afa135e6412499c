package inbound

import (
	"context"
	"io"

	"github.com/arix/server/internal/model"
)

// RemoveBackgroundInput is an uploaded image awaiting background removal.
type RemoveBackgroundInput struct {
	File     io.Reader
	Filename string
}

// GenerationDomain defines the generation dispatcher.
// Every call is admitted by the entitlement gate before a provider is contacted.
type GenerationDomain interface {
	GenerateArticle(ctx context.Context, identity *model.Identity, in *model.ArticleRequest) (string, error)
	GenerateBlogTitle(ctx context.Context, identity *model.Identity, in *model.BlogTitleRequest) (string, error)
	// GenerateImage returns the durable URL of the stored image.
	GenerateImage(ctx context.Context, identity *model.Identity, in *model.ImageRequest) (string, error)
	// RemoveBackground returns a signed URL of the processed image.
	RemoveBackground(ctx context.Context, identity *model.Identity, in *RemoveBackgroundInput) (string, error)
}
