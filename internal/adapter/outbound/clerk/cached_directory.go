package clerk

import (
	"context"
	"time"

	"github.com/arix/server/internal/model"
	"github.com/arix/server/internal/port/outbound"
	"github.com/patrickmn/go-cache"
)

const profileCacheName = "user_profile"

// CacheRecorder receives cache hit and miss counts.
type CacheRecorder interface {
	RecordCacheHit(cache string)
	RecordCacheMiss(cache string)
}

// cachedDirectory serves profiles from an in-process TTL cache.
// Only found profiles are cached; misses always reach the directory.
type cachedDirectory struct {
	next     outbound.UserDirectoryPort
	cache    *cache.Cache
	recorder CacheRecorder
}

// NewCachedDirectory wraps a directory with a TTL cache.
func NewCachedDirectory(next outbound.UserDirectoryPort, ttl time.Duration, recorder CacheRecorder) outbound.UserDirectoryPort {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &cachedDirectory{
		next:     next,
		cache:    cache.New(ttl, 2*ttl),
		recorder: recorder,
	}
}

func (c *cachedDirectory) GetUser(ctx context.Context, userID string) (*model.UserProfile, error) {
	if v, ok := c.cache.Get(userID); ok {
		c.hit()
		p := *v.(*model.UserProfile)
		return &p, nil
	}
	c.miss()

	profile, err := c.next.GetUser(ctx, userID)
	if err != nil || profile == nil {
		return profile, err
	}
	stored := *profile
	c.cache.SetDefault(userID, &stored)
	return profile, nil
}

func (c *cachedDirectory) hit() {
	if c.recorder != nil {
		c.recorder.RecordCacheHit(profileCacheName)
	}
}

func (c *cachedDirectory) miss() {
	if c.recorder != nil {
		c.recorder.RecordCacheMiss(profileCacheName)
	}
}

// Compile-time check
var _ outbound.UserDirectoryPort = (*cachedDirectory)(nil)
