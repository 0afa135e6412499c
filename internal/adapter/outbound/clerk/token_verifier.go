package clerk

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/arix/server/internal/port/outbound"
	"github.com/golang-jwt/jwt/v5"
)

// ErrNoVerificationKey is returned when neither a secret nor a public key is configured.
var ErrNoVerificationKey = errors.New("no token verification key configured")

// VerifierConfig holds session token verification configuration.
type VerifierConfig struct {
	// Secret verifies HS256 tokens.
	Secret string
	// PublicKeyPEM verifies RS256 tokens and takes precedence over Secret.
	PublicKeyPEM string
	Issuer       string
	PlanClaim    string
	Leeway       time.Duration
}

// tokenVerifier implements outbound.TokenVerifierPort.
type tokenVerifier struct {
	key       any
	methods   []string
	issuer    string
	planClaim string
	leeway    time.Duration
}

// NewTokenVerifier creates a new session token verifier.
func NewTokenVerifier(cfg *VerifierConfig) (outbound.TokenVerifierPort, error) {
	v := &tokenVerifier{
		issuer:    cfg.Issuer,
		planClaim: cfg.PlanClaim,
		leeway:    cfg.Leeway,
	}
	if v.planClaim == "" {
		v.planClaim = "pla"
	}

	switch {
	case cfg.PublicKeyPEM != "":
		key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(cfg.PublicKeyPEM))
		if err != nil {
			return nil, fmt.Errorf("parse public key: %w", err)
		}
		v.key = key
		v.methods = []string{jwt.SigningMethodRS256.Alg()}
	case cfg.Secret != "":
		v.key = []byte(cfg.Secret)
		v.methods = []string{jwt.SigningMethodHS256.Alg()}
	default:
		return nil, ErrNoVerificationKey
	}
	return v, nil
}

// Verify validates a session token.
func (v *tokenVerifier) Verify(_ context.Context, tokenString string) (*outbound.TokenClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods(v.methods),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(v.leeway),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return v.key, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, fmt.Errorf("invalid subject in token")
	}
	plan, _ := claims[v.planClaim].(string)

	return &outbound.TokenClaims{
		Subject:    sub,
		PlanMarker: plan,
	}, nil
}

// Compile-time check
var _ outbound.TokenVerifierPort = (*tokenVerifier)(nil)
