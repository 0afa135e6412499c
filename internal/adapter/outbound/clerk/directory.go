package clerk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	clerksdk "github.com/clerk/clerk-sdk-go/v2"
	clerkuser "github.com/clerk/clerk-sdk-go/v2/user"

	"github.com/arix/server/internal/infra/resilience"
	"github.com/arix/server/internal/model"
	"github.com/arix/server/internal/port/outbound"
)

// DirectoryConfig holds user directory configuration.
type DirectoryConfig struct {
	// BaseURL is the backend API origin; the SDK adds the version path.
	BaseURL   string
	SecretKey string
	// PremiumPlan is the subscription plan name that grants premium.
	PremiumPlan string
}

type subscription struct {
	Plan   string `json:"plan"`
	Status string `json:"status"`
}

type publicMetadata struct {
	Subscriptions []subscription `json:"subscriptions"`
}

type privateMetadata struct {
	TestPayment   bool   `json:"testPayment"`
	PaymentMethod string `json:"paymentMethod"`
}

// directory implements outbound.UserDirectoryPort with the Clerk SDK users client.
type directory struct {
	users       *clerkuser.Client
	premiumPlan string
	guard       *resilience.Guard
}

// NewDirectory creates a new user directory adapter.
func NewDirectory(cfg *DirectoryConfig, client *http.Client, guard *resilience.Guard) outbound.UserDirectoryPort {
	if client == nil {
		client = http.DefaultClient
	}
	if guard == nil {
		guard = resilience.NewGuard("clerk", resilience.DefaultConfig(), nil, nil)
	}
	backend := clerksdk.BackendConfig{
		HTTPClient: client,
		Key:        clerksdk.String(cfg.SecretKey),
	}
	if base := strings.TrimRight(cfg.BaseURL, "/"); base != "" {
		backend.URL = clerksdk.String(base)
	}
	premium := cfg.PremiumPlan
	if premium == "" {
		premium = string(model.PlanPremium)
	}
	return &directory{
		users:       clerkuser.NewClient(&clerksdk.ClientConfig{BackendConfig: backend}),
		premiumPlan: premium,
		guard:       guard,
	}
}

// GetUser fetches a user record. Lookups are reads, so one retry is allowed.
func (d *directory) GetUser(ctx context.Context, userID string) (*model.UserProfile, error) {
	if userID == "" || strings.Contains(userID, "/") {
		return nil, nil
	}
	return resilience.ExecuteIdempotent(ctx, d.guard, func(ctx context.Context) (*model.UserProfile, error) {
		return d.fetch(ctx, userID)
	})
}

func (d *directory) fetch(ctx context.Context, userID string) (*model.UserProfile, error) {
	usr, err := d.users.Get(ctx, userID)
	if err != nil {
		var apiErr *clerksdk.APIErrorResponse
		if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return d.toProfile(usr)
}

func (d *directory) toProfile(usr *clerksdk.User) (*model.UserProfile, error) {
	var pub publicMetadata
	if len(usr.PublicMetadata) > 0 {
		if err := json.Unmarshal(usr.PublicMetadata, &pub); err != nil {
			return nil, fmt.Errorf("decode public metadata: %w", err)
		}
	}
	var priv privateMetadata
	if len(usr.PrivateMetadata) > 0 {
		if err := json.Unmarshal(usr.PrivateMetadata, &priv); err != nil {
			return nil, fmt.Errorf("decode private metadata: %w", err)
		}
	}

	premium := priv.TestPayment || priv.PaymentMethod == "test_card"
	for _, sub := range pub.Subscriptions {
		if sub.Status == "active" && strings.EqualFold(sub.Plan, d.premiumPlan) {
			premium = true
		}
	}
	return &model.UserProfile{
		ID:            usr.ID,
		FirstName:     deref(usr.FirstName),
		LastName:      deref(usr.LastName),
		Username:      deref(usr.Username),
		AvatarURL:     deref(usr.ImageURL),
		PremiumMarker: premium,
	}, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Compile-time check
var _ outbound.UserDirectoryPort = (*directory)(nil)
