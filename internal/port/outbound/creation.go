package outbound

import (
	"context"

	"github.com/arix/server/internal/model"
)

// CreationDatabasePort defines creation persistence.
type CreationDatabasePort interface {
	// Create stores a new creation. The backend assigns ID when empty.
	Create(ctx context.Context, creation *model.Creation) error

	// FindByOwner lists a user's creations, newest first.
	FindByOwner(ctx context.Context, userID string) ([]*model.Creation, error)

	// FindPublished lists published creations, newest first.
	FindPublished(ctx context.Context) ([]*model.Creation, error)

	// ToggleLike flips userID's membership in the like set with a conditional update.
	// found is false when the creation does not exist.
	ToggleLike(ctx context.Context, id, userID string) (result model.LikeResult, found bool, err error)
}
