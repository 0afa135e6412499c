package entitlement

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/arix/server/internal/model"
	"github.com/arix/server/internal/port/inbound"
	"github.com/arix/server/internal/port/outbound"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Decision is the gate's verdict on a single action.
type Decision struct {
	Allowed       bool
	Reason        string
	UpgradePrompt string
}

const upgradePrompt = "Upgrade to premium for unlimited generations."

// Decide applies the entitlement rule. Premium always passes; free passes while used < limit.
func Decide(plan model.Plan, used, limit int64) Decision {
	if plan.IsPremium() || limit == model.Unlimited {
		return Decision{Allowed: true}
	}
	if used < limit {
		return Decision{Allowed: true}
	}
	return Decision{
		Allowed:       false,
		Reason:        fmt.Sprintf("Free usage limit of %d reached.", limit),
		UpgradePrompt: upgradePrompt,
	}
}

// DecisionRecorder receives gate outcomes for metrics.
type DecisionRecorder interface {
	RecordDecision(bucket string, allowed bool)
}

// Config holds gate configuration.
type Config struct {
	ReservationTTL time.Duration
	// CommitRetryBackoff is the pause before the single commit retry.
	CommitRetryBackoff time.Duration
}

// DefaultConfig returns default gate configuration.
func DefaultConfig() *Config {
	return &Config{
		ReservationTTL:     5 * time.Minute,
		CommitRetryBackoff: 100 * time.Millisecond,
	}
}

// Gate authorizes billable actions against the quota ledger.
type Gate struct {
	ledger   outbound.QuotaLedgerPort
	policy   *Policy
	recorder DecisionRecorder
	config   *Config
	logger   *zap.Logger
}

// NewGate creates a new entitlement gate.
func NewGate(
	ledger outbound.QuotaLedgerPort,
	policy *Policy,
	recorder DecisionRecorder,
	config *Config,
	logger *zap.Logger,
) *Gate {
	if config == nil {
		config = DefaultConfig()
	}
	if policy == nil {
		policy = DefaultPolicy()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gate{
		ledger:   ledger,
		policy:   policy,
		recorder: recorder,
		config:   config,
		logger:   logger,
	}
}

// Authorize admits one action for the identity or returns a *DeniedError.
// The returned ticket must be settled with Commit or Release.
func (g *Gate) Authorize(ctx context.Context, identity *model.Identity, action model.Action) (*Ticket, error) {
	bucket, err := g.policy.BucketFor(action)
	if err != nil {
		return nil, err
	}
	if bucket == nil || identity.Plan.IsPremium() {
		if bucket != nil {
			g.record(bucket.Name, true)
		}
		return &Ticket{gate: g, identity: identity, action: action}, nil
	}

	if err := g.ledger.Init(ctx, identity.UserID, bucket.Name); err != nil {
		return nil, fmt.Errorf("%w: init: %v", ErrLedgerUnavailable, err)
	}

	id := uuid.NewString()
	res, err := g.ledger.Reserve(ctx, identity.UserID, bucket.Name, bucket.FreeLimit, id, g.config.ReservationTTL)
	if err != nil {
		return nil, fmt.Errorf("%w: reserve: %v", ErrLedgerUnavailable, err)
	}

	if !res.Allowed {
		g.record(bucket.Name, false)
		decision := Decide(identity.Plan, res.Used+res.InFlight, bucket.FreeLimit)
		g.logger.Info("Entitlement denied",
			zap.String("user_id", identity.UserID),
			zap.String("action", string(action)),
			zap.String("bucket", bucket.Name),
			zap.Int64("used", res.Used),
			zap.Int64("in_flight", res.InFlight),
		)
		return nil, &DeniedError{Decision: decision, Bucket: bucket.Name}
	}

	g.record(bucket.Name, true)
	return &Ticket{
		gate:          g,
		identity:      identity,
		action:        action,
		bucket:        bucket.Name,
		reservationID: id,
	}, nil
}

// Usage reports per-bucket usage. Premium users see unlimited buckets.
func (g *Gate) Usage(ctx context.Context, identity *model.Identity) (*model.UsageSummary, error) {
	summary := &model.UsageSummary{Plan: identity.Plan, Quotas: make([]*model.BucketUsage, 0)}

	for _, b := range g.policy.Buckets() {
		u := &model.BucketUsage{
			Bucket:  b.Name,
			Actions: append([]model.Action{}, b.Actions...),
		}
		if identity.Plan.IsPremium() {
			u.Limit = model.Unlimited
			u.Remaining = model.Unlimited
			summary.Quotas = append(summary.Quotas, u)
			continue
		}

		if err := g.ledger.Init(ctx, identity.UserID, b.Name); err != nil {
			return nil, fmt.Errorf("%w: init: %v", ErrLedgerUnavailable, err)
		}
		used, _, err := g.ledger.Get(ctx, identity.UserID, b.Name)
		if err != nil {
			return nil, fmt.Errorf("%w: get: %v", ErrLedgerUnavailable, err)
		}
		u.Limit = b.FreeLimit
		u.Used = used
		u.Remaining = max(b.FreeLimit-used, 0)
		summary.Quotas = append(summary.Quotas, u)
	}
	return summary, nil
}

func (g *Gate) record(bucket string, allowed bool) {
	if g.recorder != nil {
		g.recorder.RecordDecision(bucket, allowed)
	}
}

// Ticket is an admitted action awaiting its outcome.
type Ticket struct {
	gate          *Gate
	identity      *model.Identity
	action        model.Action
	bucket        string
	reservationID string
	settled       atomic.Bool
}

// Metered reports whether the ticket holds a quota reservation.
func (t *Ticket) Metered() bool {
	return t.reservationID != ""
}

// Commit charges the reservation after the action succeeded. It is idempotent.
// Settlement ignores caller cancellation so a disconnect cannot leak a reservation.
// A ledger error is retried once; the ledger only charges a live reservation,
// so the retry cannot count the action twice.
func (t *Ticket) Commit(ctx context.Context) error {
	if !t.Metered() || !t.settled.CompareAndSwap(false, true) {
		return nil
	}
	ctx = context.WithoutCancel(ctx)
	log := t.gate.logger.With(
		zap.String("user_id", t.identity.UserID),
		zap.String("bucket", t.bucket),
	)

	used, err := t.gate.ledger.Commit(ctx, t.identity.UserID, t.bucket, t.reservationID)
	if err != nil && !errors.Is(err, outbound.ErrReservationNotFound) {
		log.Warn("Retrying quota commit", zap.Error(err))
		time.Sleep(t.gate.config.CommitRetryBackoff)

		used, err = t.gate.ledger.Commit(ctx, t.identity.UserID, t.bucket, t.reservationID)
		if errors.Is(err, outbound.ErrReservationNotFound) {
			// The first attempt reached the ledger before its reply was lost.
			log.Info("Quota commit already applied")
			return nil
		}
	}

	switch {
	case errors.Is(err, outbound.ErrReservationNotFound):
		log.Error("Quota reservation expired before commit", zap.Duration("ttl", t.gate.config.ReservationTTL))
		return ErrReservationLost
	case err != nil:
		log.Error("Failed to commit quota", zap.Error(err))
		return fmt.Errorf("%w: commit: %v", ErrLedgerUnavailable, err)
	}
	log.Debug("Quota committed", zap.Int64("used", used))
	return nil
}

// Release drops the reservation after the action failed. It is idempotent.
func (t *Ticket) Release(ctx context.Context) error {
	if !t.Metered() || !t.settled.CompareAndSwap(false, true) {
		return nil
	}
	ctx = context.WithoutCancel(ctx)
	if err := t.gate.ledger.Release(ctx, t.identity.UserID, t.bucket, t.reservationID); err != nil {
		// The reservation still expires after its TTL.
		t.gate.logger.Warn("Failed to release quota reservation",
			zap.String("user_id", t.identity.UserID),
			zap.String("bucket", t.bucket),
			zap.Error(err),
		)
		return fmt.Errorf("%w: release: %v", ErrLedgerUnavailable, err)
	}
	return nil
}

// Compile-time check
var _ inbound.EntitlementDomain = (*Gate)(nil)
