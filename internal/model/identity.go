package model

import "strings"

// Plan is a user's entitlement tier.
type Plan string

const (
	PlanFree    Plan = "free"
	PlanPremium Plan = "premium"
)

// IsPremium reports whether the plan lifts free-tier quotas.
func (p Plan) IsPremium() bool {
	return p == PlanPremium
}

// ParsePlan maps a raw plan marker to a Plan.
// Markers such as "premium" or "u:premium" resolve to premium when they contain premiumValue.
func ParsePlan(raw, premiumValue string) Plan {
	if premiumValue == "" {
		premiumValue = string(PlanPremium)
	}
	if raw != "" && strings.Contains(strings.ToLower(raw), strings.ToLower(premiumValue)) {
		return PlanPremium
	}
	return PlanFree
}

// Identity is the resolved caller of a request.
type Identity struct {
	UserID string `json:"userId"`
	Plan   Plan   `json:"plan"`
}

// UserProfile is the directory view of a user.
type UserProfile struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatarUrl"`
	// PremiumMarker carries the raw plan evidence found in directory metadata.
	PremiumMarker bool `json:"-"`
}

// DisplayName returns the name shown next to community creations.
func (p *UserProfile) DisplayName() string {
	name := strings.TrimSpace(p.FirstName + " " + p.LastName)
	if name != "" {
		return name
	}
	return p.Username
}

// PremiumGrant records a premium upgrade made outside the identity provider.
type PremiumGrant struct {
	UserID string `json:"userId"`
	Method string `json:"method"`
	// Reference is the payment provider's id for the confirming charge, if any.
	Reference string `json:"reference,omitempty"`
	GrantedAt int64  `json:"grantedAt"`
}
