package inbound

import (
	"context"

	"github.com/arix/server/internal/model"
)

// IdentityDomain resolves bearer tokens to identities.
type IdentityDomain interface {
	Resolve(ctx context.Context, token string) (*model.Identity, error)
}

// EntitlementDomain reports quota usage.
type EntitlementDomain interface {
	Usage(ctx context.Context, identity *model.Identity) (*model.UsageSummary, error)
}

// PaymentDomain processes test payments that upgrade a user to premium.
type PaymentDomain interface {
	ProcessTestPayment(ctx context.Context, identity *model.Identity) error
}
