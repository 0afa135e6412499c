package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/arix/server/internal/port/outbound"
	"github.com/redis/go-redis/v9"
)

const (
	quotaUsedKeyPrefix    = "quota:used:"
	quotaPendingKeyPrefix = "quota:pending:"
)

// reserveScript admits a reservation only while used + live reservations stay below the limit.
// KEYS[1] used counter, KEYS[2] pending zset. ARGV: now ms, limit, ttl ms, reservation id.
var reserveScript = redis.NewScript(`
local used = tonumber(redis.call('GET', KEYS[1]) or '0')
local now = tonumber(ARGV[1])
redis.call('ZREMRANGEBYSCORE', KEYS[2], '-inf', now)
local inflight = redis.call('ZCARD', KEYS[2])
if used + inflight >= tonumber(ARGV[2]) then
  return {0, used, inflight}
end
redis.call('ZADD', KEYS[2], now + tonumber(ARGV[3]), ARGV[4])
redis.call('PEXPIRE', KEYS[2], ARGV[3])
return {1, used, inflight + 1}
`)

// commitScript settles a live reservation as one committed unit. It returns -1
// without charging when the reservation is missing or past its expiry.
// KEYS[1] used counter, KEYS[2] pending zset. ARGV: reservation id, now ms.
var commitScript = redis.NewScript(`
local expiry = redis.call('ZSCORE', KEYS[2], ARGV[1])
if not expiry then
  return -1
end
redis.call('ZREM', KEYS[2], ARGV[1])
if tonumber(expiry) <= tonumber(ARGV[2]) then
  return -1
end
return redis.call('INCR', KEYS[1])
`)

// quotaLedger implements outbound.QuotaLedgerPort.
type quotaLedger struct {
	client *redis.Client
	now    func() time.Time
}

// NewQuotaLedger creates a Redis-backed quota ledger.
func NewQuotaLedger(client *redis.Client) outbound.QuotaLedgerPort {
	return &quotaLedger{client: client, now: time.Now}
}

// Both keys share the {userID} hash tag so scripts stay on one cluster slot.
func (l *quotaLedger) usedKey(userID, bucket string) string {
	return fmt.Sprintf("%s{%s}:%s", quotaUsedKeyPrefix, userID, bucket)
}

func (l *quotaLedger) pendingKey(userID, bucket string) string {
	return fmt.Sprintf("%s{%s}:%s", quotaPendingKeyPrefix, userID, bucket)
}

func (l *quotaLedger) Get(ctx context.Context, userID, bucket string) (int64, bool, error) {
	val, err := l.client.Get(ctx, l.usedKey(userID, bucket)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return val, true, nil
}

func (l *quotaLedger) Set(ctx context.Context, userID, bucket string, used int64) error {
	return l.client.Set(ctx, l.usedKey(userID, bucket), used, 0).Err()
}

func (l *quotaLedger) Init(ctx context.Context, userID, bucket string) error {
	return l.client.SetNX(ctx, l.usedKey(userID, bucket), 0, 0).Err()
}

func (l *quotaLedger) Reserve(ctx context.Context, userID, bucket string, limit int64, reservationID string, ttl time.Duration) (*outbound.Reservation, error) {
	keys := []string{l.usedKey(userID, bucket), l.pendingKey(userID, bucket)}
	vals, err := reserveScript.Run(ctx, l.client, keys,
		l.now().UnixMilli(),
		limit,
		ttl.Milliseconds(),
		reservationID,
	).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("reserve quota: %w", err)
	}
	if len(vals) != 3 {
		return nil, fmt.Errorf("reserve quota: unexpected reply length %d", len(vals))
	}
	return &outbound.Reservation{
		Allowed:  vals[0] == 1,
		Used:     vals[1],
		InFlight: vals[2],
	}, nil
}

func (l *quotaLedger) Commit(ctx context.Context, userID, bucket, reservationID string) (int64, error) {
	keys := []string{l.usedKey(userID, bucket), l.pendingKey(userID, bucket)}
	used, err := commitScript.Run(ctx, l.client, keys, reservationID, l.now().UnixMilli()).Int64()
	if err != nil {
		return 0, fmt.Errorf("commit quota: %w", err)
	}
	if used < 0 {
		return 0, outbound.ErrReservationNotFound
	}
	return used, nil
}

func (l *quotaLedger) Release(ctx context.Context, userID, bucket, reservationID string) error {
	return l.client.ZRem(ctx, l.pendingKey(userID, bucket), reservationID).Err()
}

// Compile-time check
var _ outbound.QuotaLedgerPort = (*quotaLedger)(nil)
