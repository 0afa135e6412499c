package resilience

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/arix/server/internal/port/outbound"
)

var (
	// ErrTimeout is returned when a provider call exceeds its deadline.
	ErrTimeout = errors.New("provider call timed out")

	// ErrUnavailable is returned while the provider's breaker is open.
	ErrUnavailable = errors.New("provider unavailable")
)

// Recorder receives provider call telemetry.
type Recorder interface {
	RecordProviderCall(provider string, err error, duration time.Duration)
	SetBreakerState(provider string, state int)
}

// Config holds guard configuration.
type Config struct {
	Timeout          time.Duration
	FailureThreshold uint32
	OpenTimeout      time.Duration
	Interval         time.Duration
	// Retries applies to idempotent calls only.
	Retries      int
	RetryBackoff time.Duration
}

// DefaultConfig returns default guard configuration.
func DefaultConfig() Config {
	return Config{
		Timeout:          60 * time.Second,
		FailureThreshold: 5,
		OpenTimeout:      30 * time.Second,
		Interval:         time.Minute,
		Retries:          1,
		RetryBackoff:     200 * time.Millisecond,
	}
}

// Guard wraps calls to one external provider with a timeout and a circuit breaker.
type Guard struct {
	name     string
	config   Config
	breaker  *gobreaker.CircuitBreaker[any]
	recorder Recorder
	logger   *zap.Logger
}

// NewGuard creates a guard for the named provider.
func NewGuard(name string, cfg Config, recorder Recorder, logger *zap.Logger) *Guard {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = DefaultConfig().FailureThreshold
	}

	g := &Guard{
		name:     name,
		config:   cfg,
		recorder: recorder,
		logger:   logger,
	}
	g.breaker = gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    cfg.Interval,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Provider breaker state changed",
				zap.String("provider", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			if recorder != nil {
				recorder.SetBreakerState(name, int(to))
			}
		},
		IsSuccessful: countsAsHealthy,
	})
	return g
}

// Name returns the provider name.
func (g *Guard) Name() string {
	return g.name
}

// State returns the breaker state.
func (g *Guard) State() gobreaker.State {
	return g.breaker.State()
}

// Do runs fn once. Generation calls use Do so they are never repeated.
func (g *Guard) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	_, err := Execute(ctx, g, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// Execute runs fn once under the guard.
func Execute[T any](ctx context.Context, g *Guard, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	start := time.Now()

	callCtx := ctx
	if g.config.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, g.config.Timeout)
		defer cancel()
	}

	out, err := g.breaker.Execute(func() (any, error) {
		return fn(callCtx)
	})
	if g.recorder != nil {
		g.recorder.RecordProviderCall(g.name, err, time.Since(start))
	}
	if err != nil {
		return zero, g.classify(ctx, callCtx, err)
	}
	if out == nil {
		return zero, nil
	}
	return out.(T), nil
}

// ExecuteIdempotent runs a read-style fn with a bounded number of retries.
func ExecuteIdempotent[T any](ctx context.Context, g *Guard, fn func(ctx context.Context) (T, error)) (T, error) {
	var (
		out T
		err error
	)
	for attempt := 0; attempt <= g.config.Retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return out, ctx.Err()
			case <-time.After(g.config.RetryBackoff):
			}
			g.logger.Debug("Retrying provider call",
				zap.String("provider", g.name),
				zap.Int("attempt", attempt+1),
				zap.Error(err),
			)
		}
		out, err = Execute(ctx, g, fn)
		if err == nil || errors.Is(err, ErrUnavailable) || errors.Is(err, outbound.ErrInputRejected) || ctx.Err() != nil {
			return out, err
		}
	}
	return out, err
}

// countsAsHealthy reports whether a call outcome leaves the breaker's failure
// count alone. A caller that gave up, or a provider refusing one user's input,
// says nothing about provider health.
func countsAsHealthy(err error) bool {
	return err == nil ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, outbound.ErrInputRejected)
}

func (g *Guard) classify(parent, callCtx context.Context, err error) error {
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return fmt.Errorf("%w: %s: %v", ErrUnavailable, g.name, err)
	case parent.Err() == nil && errors.Is(callCtx.Err(), context.DeadlineExceeded):
		return fmt.Errorf("%w: %s: %v", ErrTimeout, g.name, err)
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %s: %v", ErrTimeout, g.name, err)
	default:
		return err
	}
}
