package identity

import (
	"context"
	"fmt"

	"github.com/arix/server/internal/model"
	"github.com/arix/server/internal/port/inbound"
	"github.com/arix/server/internal/port/outbound"
	"go.uber.org/zap"
)

// Plan sources.
const (
	PlanSourceClaim     = "claim"
	PlanSourceDirectory = "directory"
)

// Config holds identity resolution configuration.
type Config struct {
	PlanSource  string
	PremiumPlan string
}

// DefaultConfig returns default identity configuration.
func DefaultConfig() *Config {
	return &Config{
		PlanSource:  PlanSourceClaim,
		PremiumPlan: string(model.PlanPremium),
	}
}

// Resolver turns a bearer token into an identity with a plan tier.
type Resolver struct {
	verifier  outbound.TokenVerifierPort
	directory outbound.UserDirectoryPort
	grants    outbound.PremiumGrantPort
	config    *Config
	logger    *zap.Logger
}

// NewResolver creates a new identity resolver.
// directory may be nil when the plan comes from the token claim.
func NewResolver(
	verifier outbound.TokenVerifierPort,
	directory outbound.UserDirectoryPort,
	grants outbound.PremiumGrantPort,
	config *Config,
	logger *zap.Logger,
) *Resolver {
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		verifier:  verifier,
		directory: directory,
		grants:    grants,
		config:    config,
		logger:    logger,
	}
}

// Resolve verifies the token and determines the caller's plan.
// Plan evidence that cannot be read fails closed with ErrIdentityUnavailable.
func (r *Resolver) Resolve(ctx context.Context, token string) (*model.Identity, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}

	claims, err := r.verifier.Verify(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: token has no subject", ErrUnauthenticated)
	}

	plan, err := r.resolvePlan(ctx, claims)
	if err != nil {
		return nil, err
	}

	if !plan.IsPremium() && r.grants != nil {
		grant, err := r.grants.Find(ctx, claims.Subject)
		if err != nil {
			r.logger.Error("Premium grant lookup failed",
				zap.String("user_id", claims.Subject),
				zap.Error(err),
			)
			return nil, fmt.Errorf("%w: grant lookup: %v", ErrIdentityUnavailable, err)
		}
		if grant != nil {
			plan = model.PlanPremium
		}
	}

	return &model.Identity{UserID: claims.Subject, Plan: plan}, nil
}

func (r *Resolver) resolvePlan(ctx context.Context, claims *outbound.TokenClaims) (model.Plan, error) {
	if r.config.PlanSource != PlanSourceDirectory || r.directory == nil {
		return model.ParsePlan(claims.PlanMarker, r.config.PremiumPlan), nil
	}

	profile, err := r.directory.GetUser(ctx, claims.Subject)
	if err != nil {
		r.logger.Error("Directory lookup failed",
			zap.String("user_id", claims.Subject),
			zap.Error(err),
		)
		return "", fmt.Errorf("%w: directory: %v", ErrIdentityUnavailable, err)
	}
	if profile == nil {
		return "", fmt.Errorf("%w: user not found in directory", ErrUnauthenticated)
	}
	if profile.PremiumMarker {
		return model.PlanPremium, nil
	}
	return model.PlanFree, nil
}

// Compile-time check
var _ inbound.IdentityDomain = (*Resolver)(nil)
