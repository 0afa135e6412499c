package resilience

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arix/server/internal/port/outbound"
)

type recorder struct {
	mu     sync.Mutex
	calls  int
	states map[string]int
}

func (r *recorder) RecordProviderCall(string, error, time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
}

func (r *recorder) SetBreakerState(provider string, state int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.states == nil {
		r.states = make(map[string]int)
	}
	r.states[provider] = state
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Timeout = 50 * time.Millisecond
	cfg.FailureThreshold = 2
	cfg.OpenTimeout = time.Minute
	cfg.RetryBackoff = time.Millisecond
	return cfg
}

func TestExecute_Success(t *testing.T) {
	rec := &recorder{}
	g := NewGuard("gemini", testConfig(), rec, nil)

	out, err := Execute(context.Background(), g, func(ctx context.Context) (string, error) {
		_, ok := ctx.Deadline()
		assert.True(t, ok, "call context carries the per-call timeout")
		return "hello", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "hello", out)
	assert.Equal(t, 1, rec.calls)
}

func TestExecute_Timeout(t *testing.T) {
	g := NewGuard("clipdrop", testConfig(), nil, nil)

	_, err := Execute(context.Background(), g, func(ctx context.Context) ([]byte, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestExecute_BreakerOpens(t *testing.T) {
	rec := &recorder{}
	g := NewGuard("clipdrop", testConfig(), rec, nil)
	boom := errors.New("500 from provider")

	for i := 0; i < 2; i++ {
		err := g.Do(context.Background(), func(context.Context) error { return boom })
		assert.ErrorIs(t, err, boom)
	}
	assert.Equal(t, gobreaker.StateOpen, g.State())
	assert.Equal(t, int(gobreaker.StateOpen), rec.states["clipdrop"])

	called := false
	err := g.Do(context.Background(), func(context.Context) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.False(t, called)
}

func TestExecute_CallerCancellationDoesNotTrip(t *testing.T) {
	g := NewGuard("gemini", testConfig(), nil, nil)

	for i := 0; i < 5; i++ {
		_ = g.Do(context.Background(), func(context.Context) error { return context.Canceled })
	}
	assert.Equal(t, gobreaker.StateClosed, g.State())
}

func TestExecute_RejectedInputDoesNotTrip(t *testing.T) {
	g := NewGuard("clipdrop", testConfig(), nil, nil)
	rejected := fmt.Errorf("%w: status 400: bad prompt", outbound.ErrInputRejected)

	for i := 0; i < 5; i++ {
		err := g.Do(context.Background(), func(context.Context) error { return rejected })
		assert.ErrorIs(t, err, outbound.ErrInputRejected)
	}
	assert.Equal(t, gobreaker.StateClosed, g.State())

	called := false
	err := g.Do(context.Background(), func(context.Context) error {
		called = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, called)
}

func TestExecuteIdempotent_DoesNotRetryRejectedInput(t *testing.T) {
	g := NewGuard("directory", testConfig(), nil, nil)
	attempts := 0

	_, err := ExecuteIdempotent(context.Background(), g, func(context.Context) (int, error) {
		attempts++
		return 0, outbound.ErrInputRejected
	})
	assert.ErrorIs(t, err, outbound.ErrInputRejected)
	assert.Equal(t, 1, attempts)
}

func TestDo_NeverRetries(t *testing.T) {
	g := NewGuard("gemini", testConfig(), nil, nil)
	attempts := 0

	err := g.Do(context.Background(), func(context.Context) error {
		attempts++
		return errors.New("transient")
	})
	assert.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestExecuteIdempotent_RetriesOnce(t *testing.T) {
	cfg := testConfig()
	cfg.FailureThreshold = 10
	g := NewGuard("directory", cfg, nil, nil)

	attempts := 0
	out, err := ExecuteIdempotent(context.Background(), g, func(context.Context) (int, error) {
		attempts++
		if attempts == 1 {
			return 0, errors.New("transient")
		}
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, out)
	assert.Equal(t, 2, attempts)

	attempts = 0
	_, err = ExecuteIdempotent(context.Background(), g, func(context.Context) (int, error) {
		attempts++
		return 0, errors.New("still failing")
	})
	assert.Error(t, err)
	assert.Equal(t, 2, attempts, "one bounded retry")
}
