package inbound

import (
	"context"

	"github.com/arix/server/internal/model"
)

// CreationDomain defines the creation catalog and like toggler.
type CreationDomain interface {
	ListByOwner(ctx context.Context, userID string) ([]*model.Creation, error)
	ListPublished(ctx context.Context) ([]*model.PublishedCreation, error)
	ToggleLike(ctx context.Context, userID, creationID string) (model.LikeResult, error)
}
