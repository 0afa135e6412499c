package stripe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/arix/server/internal/infra/resilience"
	"github.com/arix/server/internal/port/outbound"
	"github.com/arix/server/internal/utils/requestctx"
	stripego "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
)

// testCardMethod is Stripe's always-succeeding test card.
const testCardMethod = "pm_card_visa"

// ErrNotSucceeded is returned when a confirmed intent did not settle.
var ErrNotSucceeded = errors.New("payment intent did not succeed")

// Config holds Stripe configuration.
type Config struct {
	SecretKey string
	// BackendURL overrides the API endpoint, used against stripe-mock.
	BackendURL string
}

// paymentProvider implements outbound.PaymentProviderPort.
type paymentProvider struct {
	intents *paymentintent.Client
	guard   *resilience.Guard
}

// NewPaymentProvider creates a Stripe payment provider.
func NewPaymentProvider(cfg *Config, guard *resilience.Guard) outbound.PaymentProviderPort {
	if guard == nil {
		guard = resilience.NewGuard("stripe", resilience.DefaultConfig(), nil, nil)
	}

	backendCfg := &stripego.BackendConfig{MaxNetworkRetries: stripego.Int64(0)}
	if cfg.BackendURL != "" {
		backendCfg.URL = stripego.String(strings.TrimRight(cfg.BackendURL, "/"))
	}
	return &paymentProvider{
		intents: &paymentintent.Client{
			B:   stripego.GetBackendWithConfig(stripego.APIBackend, backendCfg),
			Key: cfg.SecretKey,
		},
		guard: guard,
	}
}

// ConfirmTestPayment creates and confirms a PaymentIntent charged to the test card.
// The call creates a charge, so it is never retried here. A client replaying the
// same request ID gets the original intent back through the idempotency key.
func (p *paymentProvider) ConfirmTestPayment(ctx context.Context, req *outbound.TestPaymentRequest) (string, error) {
	return resilience.Execute(ctx, p.guard, func(ctx context.Context) (string, error) {
		params := &stripego.PaymentIntentParams{
			Amount:             stripego.Int64(req.Amount),
			Currency:           stripego.String(strings.ToLower(req.Currency)),
			PaymentMethod:      stripego.String(testCardMethod),
			PaymentMethodTypes: stripego.StringSlice([]string{"card"}),
			Confirm:            stripego.Bool(true),
		}
		params.Context = ctx
		params.AddMetadata("user_id", req.UserID)
		params.AddMetadata("purpose", "premium_test_payment")
		if key := requestctx.IdempotencyKey(ctx, "test-payment:"+req.UserID); key != "" {
			params.SetIdempotencyKey(key)
			params.AddMetadata("request_id", requestctx.RequestID(ctx))
		}

		pi, err := p.intents.New(params)
		if err != nil {
			return "", fmt.Errorf("create payment intent: %w", err)
		}
		if pi.Status != stripego.PaymentIntentStatusSucceeded {
			return pi.ID, fmt.Errorf("%w: status %s", ErrNotSucceeded, pi.Status)
		}
		return pi.ID, nil
	})
}

// Compile-time check
var _ outbound.PaymentProviderPort = (*paymentProvider)(nil)
