package outbound

import (
	"context"

	"github.com/arix/server/internal/model"
)

// TokenClaims is the verified content of a session token.
type TokenClaims struct {
	Subject string
	// PlanMarker is the raw plan claim, for example "u:premium".
	PlanMarker string
}

// TokenVerifierPort verifies session tokens issued by the identity provider.
type TokenVerifierPort interface {
	// Verify validates the token and returns its claims.
	// Invalid, expired or malformed tokens return an error.
	Verify(ctx context.Context, token string) (*TokenClaims, error)
}

// UserDirectoryPort reads user records held by the identity provider.
type UserDirectoryPort interface {
	// GetUser returns the user profile. A missing user returns nil, nil.
	GetUser(ctx context.Context, userID string) (*model.UserProfile, error)
}

// PremiumGrantPort stores premium upgrades recorded by this service.
type PremiumGrantPort interface {
	// Grant records a premium grant, overwriting any earlier one.
	Grant(ctx context.Context, grant *model.PremiumGrant) error

	// Find returns the grant for a user, or nil when none exists.
	Find(ctx context.Context, userID string) (*model.PremiumGrant, error)
}
