package payment

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/arix/server/internal/model"
	"github.com/arix/server/internal/port/inbound"
	"github.com/arix/server/internal/port/outbound"
	"github.com/arix/server/internal/utils/logger"
)

// MethodTestCard marks grants made through the test payment flow.
const MethodTestCard = "test_card"

// Config holds test payment configuration.
type Config struct {
	Amount   int64
	Currency string
}

// DefaultConfig returns default payment configuration.
func DefaultConfig() *Config {
	return &Config{Amount: 1000, Currency: "usd"}
}

// Domain implements the test payment flow that upgrades a user to premium.
type Domain struct {
	provider outbound.PaymentProviderPort
	grants   outbound.PremiumGrantPort
	config   *Config
	logger   *zap.Logger
	now      func() time.Time
}

// NewDomain creates a new payment domain.
// provider may be nil, in which case the grant is recorded without a charge.
func NewDomain(
	provider outbound.PaymentProviderPort,
	grants outbound.PremiumGrantPort,
	config *Config,
	logger *zap.Logger,
) *Domain {
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Domain{
		provider: provider,
		grants:   grants,
		config:   config,
		logger:   logger,
		now:      time.Now,
	}
}

// ProcessTestPayment charges the test card when a provider is configured and
// records a premium grant for the caller.
func (d *Domain) ProcessTestPayment(ctx context.Context, identity *model.Identity) error {
	log := logger.FromContext(ctx, d.logger)

	var reference string
	if d.provider != nil {
		ref, err := d.provider.ConfirmTestPayment(ctx, &outbound.TestPaymentRequest{
			UserID:   identity.UserID,
			Amount:   d.config.Amount,
			Currency: d.config.Currency,
		})
		if err != nil {
			log.Error("Test payment charge failed", zap.String("user_id", identity.UserID), zap.Error(err))
			return fmt.Errorf("%w: charge: %v", ErrPaymentFailed, err)
		}
		reference = ref
	}

	grant := &model.PremiumGrant{
		UserID:    identity.UserID,
		Method:    MethodTestCard,
		Reference: reference,
		GrantedAt: d.now().Unix(),
	}
	if err := d.grants.Grant(context.WithoutCancel(ctx), grant); err != nil {
		log.Error("Failed to record premium grant",
			zap.String("user_id", identity.UserID),
			zap.String("reference", reference),
			zap.Error(err),
		)
		return fmt.Errorf("%w: grant: %v", ErrPaymentFailed, err)
	}

	log.Info("Premium granted by test payment",
		zap.String("user_id", identity.UserID),
		zap.String("reference", reference),
	)
	return nil
}

// Compile-time check
var _ inbound.PaymentDomain = (*Domain)(nil)
