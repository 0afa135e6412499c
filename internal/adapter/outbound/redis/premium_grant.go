package redis

import (
	"context"
	"fmt"
	"strconv"

	"github.com/arix/server/internal/model"
	"github.com/arix/server/internal/port/outbound"
	"github.com/redis/go-redis/v9"
)

const premiumGrantKeyPrefix = "premium:grant:"

// premiumGrantStore implements outbound.PremiumGrantPort.
type premiumGrantStore struct {
	client *redis.Client
}

// NewPremiumGrantStore creates a Redis-backed premium grant store.
func NewPremiumGrantStore(client *redis.Client) outbound.PremiumGrantPort {
	return &premiumGrantStore{client: client}
}

func (s *premiumGrantStore) Grant(ctx context.Context, grant *model.PremiumGrant) error {
	key := premiumGrantKeyPrefix + grant.UserID
	return s.client.HSet(ctx, key,
		"method", grant.Method,
		"reference", grant.Reference,
		"granted_at", grant.GrantedAt,
	).Err()
}

func (s *premiumGrantStore) Find(ctx context.Context, userID string) (*model.PremiumGrant, error) {
	fields, err := s.client.HGetAll(ctx, premiumGrantKeyPrefix+userID).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, nil
	}

	grantedAt, err := strconv.ParseInt(fields["granted_at"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse granted_at: %w", err)
	}
	return &model.PremiumGrant{
		UserID:    userID,
		Method:    fields["method"],
		Reference: fields["reference"],
		GrantedAt: grantedAt,
	}, nil
}

// Compile-time check
var _ outbound.PremiumGrantPort = (*premiumGrantStore)(nil)
