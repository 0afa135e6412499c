package memory

import (
	"context"
	"sync"

	"github.com/arix/server/internal/model"
	"github.com/arix/server/internal/port/outbound"
)

// premiumGrantStore implements outbound.PremiumGrantPort in process memory.
type premiumGrantStore struct {
	mu     sync.RWMutex
	grants map[string]model.PremiumGrant
}

// NewPremiumGrantStore creates an in-memory premium grant store.
func NewPremiumGrantStore() outbound.PremiumGrantPort {
	return &premiumGrantStore{grants: make(map[string]model.PremiumGrant)}
}

func (s *premiumGrantStore) Grant(_ context.Context, grant *model.PremiumGrant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.grants[grant.UserID] = *grant
	return nil
}

func (s *premiumGrantStore) Find(_ context.Context, userID string) (*model.PremiumGrant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.grants[userID]
	if !ok {
		return nil, nil
	}
	return &g, nil
}

// Compile-time check
var _ outbound.PremiumGrantPort = (*premiumGrantStore)(nil)
