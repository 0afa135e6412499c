package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/arix/server/internal/model"
	"github.com/arix/server/internal/port/outbound"
	"github.com/google/uuid"
)

// creationStore implements outbound.CreationDatabasePort in process memory.
type creationStore struct {
	mu        sync.RWMutex
	creations map[string]*model.Creation
}

// NewCreationStore creates an in-memory creation store.
func NewCreationStore() outbound.CreationDatabasePort {
	return &creationStore{creations: make(map[string]*model.Creation)}
}

func clone(c *model.Creation) *model.Creation {
	out := *c
	out.Likes = append([]string{}, c.Likes...)
	return &out
}

func (s *creationStore) Create(_ context.Context, creation *model.Creation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if creation.ID == "" {
		creation.ID = uuid.NewString()
	}
	if creation.CreatedAt.IsZero() {
		creation.CreatedAt = time.Now().UTC()
	}
	if creation.Likes == nil {
		creation.Likes = []string{}
	}
	s.creations[creation.ID] = clone(creation)
	return nil
}

func (s *creationStore) FindByOwner(_ context.Context, userID string) ([]*model.Creation, error) {
	return s.filter(func(c *model.Creation) bool { return c.UserID == userID }), nil
}

func (s *creationStore) FindPublished(_ context.Context) ([]*model.Creation, error) {
	return s.filter(func(c *model.Creation) bool { return c.Publish }), nil
}

func (s *creationStore) filter(keep func(*model.Creation) bool) []*model.Creation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.Creation, 0)
	for _, c := range s.creations {
		if keep(c) {
			out = append(out, clone(c))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (s *creationStore) ToggleLike(_ context.Context, id, userID string) (model.LikeResult, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.creations[id]
	if !ok {
		return "", false, nil
	}
	for i, liker := range c.Likes {
		if liker == userID {
			c.Likes = append(c.Likes[:i], c.Likes[i+1:]...)
			return model.LikeResultUnliked, true, nil
		}
	}
	c.Likes = append(c.Likes, userID)
	return model.LikeResultLiked, true, nil
}

// Compile-time check
var _ outbound.CreationDatabasePort = (*creationStore)(nil)
