// Package infocache provides the process-wide extraction result cache.
//
// The cache is a bounded, access-ordered map from (service id, url) to a previously
// extracted domain.Info. Every entry carries its own expiry computed from a per-service
// TTL policy. Expired entries are removed the moment a Get observes them, and Trim sweeps
// the rest. There is no background expiry goroutine.
package infocache

import (
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/simplelru"
	"go.uber.org/zap"

	"media-queue-service/internal/domain"
)

// Default capacity values.
const (
	DefaultMaxItems   = 60
	DefaultTrimTarget = 30
)

// Config holds cache configuration.
type Config struct {
	MaxItems   int
	TrimTarget int
	TTL        TTLPolicy

	// Now is the clock used to compute and check expiry. Defaults to time.Now.
	Now func() time.Time
}

// DefaultConfig returns the stock capacity and TTL policy.
func DefaultConfig() Config {
	return Config{
		MaxItems:   DefaultMaxItems,
		TrimTarget: DefaultTrimTarget,
		TTL:        DefaultServiceTTL(),
	}
}

type entry struct {
	info      *domain.Info
	expiresAt time.Time
}

func (e *entry) expired(now time.Time) bool {
	return now.After(e.expiresAt)
}

// Cache implements domain.InfoCache.
// All operations are serialized by one mutex; none of them performs I/O.
type Cache struct {
	mu         sync.Mutex
	lru        *simplelru.LRU[key, *entry]
	maxItems   int
	trimTarget int
	ttl        TTLPolicy
	now        func() time.Time
	logger     *zap.Logger
}

// New creates a new Cache. TrimTarget must be smaller than MaxItems.
func New(cfg Config, logger *zap.Logger) (*Cache, error) {
	if cfg.MaxItems <= 0 {
		return nil, fmt.Errorf("max items must be positive, got %d", cfg.MaxItems)
	}
	if cfg.TrimTarget < 0 || cfg.TrimTarget >= cfg.MaxItems {
		return nil, fmt.Errorf("trim target must be in [0, %d), got %d", cfg.MaxItems, cfg.TrimTarget)
	}
	if cfg.TTL == nil {
		cfg.TTL = DefaultServiceTTL()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	lru, err := simplelru.NewLRU[key, *entry](cfg.MaxItems, nil)
	if err != nil {
		return nil, fmt.Errorf("creating lru: %w", err)
	}

	return &Cache{
		lru:        lru,
		maxItems:   cfg.MaxItems,
		trimTarget: cfg.TrimTarget,
		ttl:        cfg.TTL,
		now:        cfg.Now,
		logger:     logger,
	}, nil
}

// Get returns the cached info for the given key.
// A hit marks the key as most recently used. An expired entry is removed and reported
// as a miss.
func (c *Cache) Get(serviceID int, url string) (*domain.Info, bool) {
	k := keyOf(serviceID, url)

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.lru.Get(k)
	if !ok {
		cacheMissesTotal.Inc()
		c.logger.Debug("cache miss",
			zap.Int("service_id", serviceID),
			zap.String("url", k.url),
		)

		return nil, false
	}

	if e.expired(c.now()) {
		c.lru.Remove(k)
		cacheExpiredTotal.Inc()
		cacheMissesTotal.Inc()
		c.logger.Debug("cache entry expired",
			zap.Int("service_id", serviceID),
			zap.String("url", k.url),
			zap.Time("expired_at", e.expiresAt),
		)

		return nil, false
	}

	cacheHitsTotal.Inc()
	c.logger.Debug("cache hit",
		zap.Int("service_id", serviceID),
		zap.String("url", k.url),
	)

	return e.info, true
}

// Put stores info under the given key, replacing any previous entry.
// When the cache is full the least recently used entry is evicted, expired or not.
func (c *Cache) Put(serviceID int, url string, info *domain.Info) {
	k := keyOf(serviceID, url)
	ttl := c.ttl.TTL(serviceID)

	c.mu.Lock()
	defer c.mu.Unlock()

	e := &entry{
		info:      info,
		expiresAt: c.now().Add(ttl),
	}

	if evicted := c.lru.Add(k, e); evicted {
		cacheEvictionsTotal.Inc()
		c.logger.Debug("cache evicted least recently used entry",
			zap.Int("size", c.lru.Len()),
		)
	}

	c.logger.Debug("cache put",
		zap.Int("service_id", serviceID),
		zap.String("url", k.url),
		zap.Duration("ttl", ttl),
	)
}

// Remove deletes the entry for the given key. It is a no-op if the key is absent.
func (c *Cache) Remove(serviceID int, url string) {
	k := keyOf(serviceID, url)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.lru.Remove(k) {
		c.logger.Debug("cache remove",
			zap.Int("service_id", serviceID),
			zap.String("url", k.url),
		)
	}
}

// Clear removes all entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := c.lru.Len()
	c.lru.Purge()

	c.logger.Info("cache cleared", zap.Int("key_count", n))
}

// Trim removes every expired entry, then evicts least recently used entries until
// the cache holds at most the trim target.
func (c *Cache) Trim() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	before := c.lru.Len()

	// Keys are ordered oldest to newest.
	expired := 0
	for _, k := range c.lru.Keys() {
		if e, ok := c.lru.Peek(k); ok && e.expired(now) {
			c.lru.Remove(k)
			expired++
		}
	}
	cacheExpiredTotal.Add(float64(expired))

	evicted := 0
	for c.lru.Len() > c.trimTarget {
		if _, _, ok := c.lru.RemoveOldest(); !ok {
			break
		}
		evicted++
	}
	cacheEvictionsTotal.Add(float64(evicted))

	c.logger.Info("cache trimmed",
		zap.Int("before", before),
		zap.Int("expired", expired),
		zap.Int("evicted", evicted),
		zap.Int("size", c.lru.Len()),
	)
}

// Size returns the current number of entries. Entries that expired but were not yet
// observed are included.
func (c *Cache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.lru.Len()
}

// Limits returns the capacity and the trim target.
func (c *Cache) Limits() (maxItems, trimTarget int) {
	return c.maxItems, c.trimTarget
}
