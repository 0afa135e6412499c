package memory

import (
	"context"
	"sync"
	"time"

	"github.com/arix/server/internal/port/outbound"
)

type counter struct {
	used    int64
	pending map[string]time.Time // reservation id -> expiry
}

// quotaLedger implements outbound.QuotaLedgerPort in process memory.
type quotaLedger struct {
	mu       sync.Mutex
	counters map[string]*counter
	now      func() time.Time
}

// NewQuotaLedger creates an in-memory quota ledger.
func NewQuotaLedger() outbound.QuotaLedgerPort {
	return &quotaLedger{
		counters: make(map[string]*counter),
		now:      time.Now,
	}
}

func ledgerKey(userID, bucket string) string {
	return userID + "\x00" + bucket
}

// counterLocked returns the counter, creating it when create is set. Caller holds mu.
func (l *quotaLedger) counterLocked(userID, bucket string, create bool) *counter {
	key := ledgerKey(userID, bucket)
	c, ok := l.counters[key]
	if !ok && create {
		c = &counter{pending: make(map[string]time.Time)}
		l.counters[key] = c
	}
	return c
}

func (l *quotaLedger) Get(_ context.Context, userID, bucket string) (int64, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	c := l.counterLocked(userID, bucket, false)
	if c == nil {
		return 0, false, nil
	}
	return c.used, true, nil
}

func (l *quotaLedger) Set(_ context.Context, userID, bucket string, used int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.counterLocked(userID, bucket, true).used = used
	return nil
}

func (l *quotaLedger) Init(_ context.Context, userID, bucket string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.counterLocked(userID, bucket, true)
	return nil
}

func (l *quotaLedger) Reserve(_ context.Context, userID, bucket string, limit int64, reservationID string, ttl time.Duration) (*outbound.Reservation, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	c := l.counterLocked(userID, bucket, true)
	now := l.now()
	for id, exp := range c.pending {
		if !exp.After(now) {
			delete(c.pending, id)
		}
	}

	inFlight := int64(len(c.pending))
	if c.used+inFlight >= limit {
		return &outbound.Reservation{Allowed: false, Used: c.used, InFlight: inFlight}, nil
	}
	c.pending[reservationID] = now.Add(ttl)
	return &outbound.Reservation{Allowed: true, Used: c.used, InFlight: inFlight + 1}, nil
}

func (l *quotaLedger) Commit(_ context.Context, userID, bucket, reservationID string) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	c := l.counterLocked(userID, bucket, false)
	if c == nil {
		return 0, outbound.ErrReservationNotFound
	}
	expiry, ok := c.pending[reservationID]
	delete(c.pending, reservationID)
	if !ok || !expiry.After(l.now()) {
		return 0, outbound.ErrReservationNotFound
	}
	c.used++
	return c.used, nil
}

func (l *quotaLedger) Release(_ context.Context, userID, bucket, reservationID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if c := l.counterLocked(userID, bucket, false); c != nil {
		delete(c.pending, reservationID)
	}
	return nil
}

// Compile-time check
var _ outbound.QuotaLedgerPort = (*quotaLedger)(nil)
