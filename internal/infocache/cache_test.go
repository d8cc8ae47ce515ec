package infocache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"media-queue-service/internal/domain"
)

// fakeClock is a manually advanced clock for expiry tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
}

func newTestCache(t *testing.T, clock *fakeClock, ttl TTLPolicy) *Cache {
	t.Helper()

	cache, err := New(Config{
		MaxItems:   DefaultMaxItems,
		TrimTarget: DefaultTrimTarget,
		TTL:        ttl,
		Now:        clock.Now,
	}, zap.NewNop())
	require.NoError(t, err)

	return cache
}

func testInfo(serviceID int, url string) *domain.Info {
	return &domain.Info{
		ServiceID: serviceID,
		URL:       url,
		Name:      "info " + url,
		Kind:      domain.InfoKindPlaylist,
	}
}

func urlN(i int) string {
	return fmt.Sprintf("https://example.com/playlist/%d", i)
}

// TestNew_InvalidConfig tests capacity validation.
func TestNew_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero max items", Config{MaxItems: 0, TrimTarget: 0}},
		{"trim target equals max", Config{MaxItems: 10, TrimTarget: 10}},
		{"trim target above max", Config{MaxItems: 10, TrimTarget: 20}},
		{"negative trim target", Config{MaxItems: 10, TrimTarget: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache, err := New(tt.cfg, zap.NewNop())
			require.Error(t, err)
			assert.Nil(t, cache)
		})
	}
}

// TestCache_PutThenGet tests that a fresh entry is returned unchanged.
func TestCache_PutThenGet(t *testing.T) {
	clock := newFakeClock()
	cache := newTestCache(t, clock, FixedTTL(time.Second))

	resultA := testInfo(1, "https://a")
	cache.Put(1, "https://a", resultA)

	got, ok := cache.Get(1, "https://a")
	require.True(t, ok)
	assert.Same(t, resultA, got)
	assert.Equal(t, 1, cache.Size())
}

// TestCache_Get_Expired tests the TTL scenario: hit before expiry, absent and removed after.
func TestCache_Get_Expired(t *testing.T) {
	clock := newFakeClock()
	cache := newTestCache(t, clock, FixedTTL(1000*time.Millisecond))

	resultA := testInfo(1, "https://a")
	cache.Put(1, "https://a", resultA)

	got, ok := cache.Get(1, "https://a")
	require.True(t, ok)
	assert.Same(t, resultA, got)

	// Exactly at the expiry instant the entry is still fresh
	clock.Advance(1000 * time.Millisecond)
	_, ok = cache.Get(1, "https://a")
	assert.True(t, ok)

	clock.Advance(time.Millisecond)
	got, ok = cache.Get(1, "https://a")
	assert.False(t, ok)
	assert.Nil(t, got)
	assert.Equal(t, 0, cache.Size(), "expired entry should be removed on observation")
}

// TestCache_Get_Miss tests lookups of unknown keys.
func TestCache_Get_Miss(t *testing.T) {
	cache := newTestCache(t, newFakeClock(), FixedTTL(time.Hour))
	cache.Put(0, "https://a", testInfo(0, "https://a"))

	_, ok := cache.Get(1, "https://a")
	assert.False(t, ok, "same url on another service is a different key")

	_, ok = cache.Get(0, "https://b")
	assert.False(t, ok)
}

// TestCache_Get_NormalizedURL tests that equivalent URLs share an entry.
func TestCache_Get_NormalizedURL(t *testing.T) {
	cache := newTestCache(t, newFakeClock(), FixedTTL(time.Hour))
	info := testInfo(0, "https://example.com/watch?v=1")
	cache.Put(0, "https://example.com/watch?v=1", info)

	got, ok := cache.Get(0, "  HTTPS://Example.COM/watch?v=1#t=10 ")
	require.True(t, ok)
	assert.Same(t, info, got)
}

// TestCache_Put_Overwrites tests last-write-wins and TTL refresh.
func TestCache_Put_Overwrites(t *testing.T) {
	clock := newFakeClock()
	cache := newTestCache(t, clock, FixedTTL(time.Minute))

	first := testInfo(0, "https://a")
	second := testInfo(0, "https://a")
	cache.Put(0, "https://a", first)

	clock.Advance(50 * time.Second)
	cache.Put(0, "https://a", second)

	clock.Advance(50 * time.Second)
	got, ok := cache.Get(0, "https://a")
	require.True(t, ok, "overwrite should recompute expiry")
	assert.Same(t, second, got)
	assert.Equal(t, 1, cache.Size())
}

// TestCache_Put_EvictsLeastRecentlyUsed tests capacity eviction by access order.
func TestCache_Put_EvictsLeastRecentlyUsed(t *testing.T) {
	cache := newTestCache(t, newFakeClock(), FixedTTL(time.Hour))

	for i := 0; i < DefaultMaxItems; i++ {
		cache.Put(0, urlN(i), testInfo(0, urlN(i)))
	}

	// Touch the oldest insertion so the second one becomes least recently used
	_, ok := cache.Get(0, urlN(0))
	require.True(t, ok)

	cache.Put(0, urlN(DefaultMaxItems), testInfo(0, urlN(DefaultMaxItems)))

	assert.Equal(t, DefaultMaxItems, cache.Size())

	_, ok = cache.Get(0, urlN(0))
	assert.True(t, ok, "recently accessed key should survive")

	_, ok = cache.Get(0, urlN(1))
	assert.False(t, ok, "least recently used key should be evicted")

	_, ok = cache.Get(0, urlN(DefaultMaxItems))
	assert.True(t, ok)
}

// TestCache_Put_EvictsRegardlessOfExpiry tests that eviction ignores freshness.
func TestCache_Put_EvictsRegardlessOfExpiry(t *testing.T) {
	clock := newFakeClock()
	cache, err := New(Config{
		MaxItems:   2,
		TrimTarget: 1,
		TTL: ServiceTTL{
			Default:   time.Hour,
			Overrides: map[int]time.Duration{1: time.Second},
		},
		Now: clock.Now,
	}, zap.NewNop())
	require.NoError(t, err)

	cache.Put(0, "https://long-lived", testInfo(0, "https://long-lived"))
	cache.Put(1, "https://short-lived", testInfo(1, "https://short-lived"))
	clock.Advance(2 * time.Second)

	cache.Put(0, "https://new", testInfo(0, "https://new"))

	assert.Equal(t, 2, cache.Size())
	_, ok := cache.Get(0, "https://long-lived")
	assert.False(t, ok, "oldest entry is evicted even though it is still fresh")
}

// TestCache_Remove tests explicit invalidation.
func TestCache_Remove(t *testing.T) {
	cache := newTestCache(t, newFakeClock(), FixedTTL(time.Hour))
	cache.Put(0, "https://a", testInfo(0, "https://a"))
	cache.Put(0, "https://b", testInfo(0, "https://b"))

	cache.Remove(0, "https://a")
	cache.Remove(0, "https://missing")

	assert.Equal(t, 1, cache.Size())
	_, ok := cache.Get(0, "https://a")
	assert.False(t, ok)
	_, ok = cache.Get(0, "https://b")
	assert.True(t, ok)
}

// TestCache_Clear tests removing all entries.
func TestCache_Clear(t *testing.T) {
	cache := newTestCache(t, newFakeClock(), FixedTTL(time.Hour))
	for i := 0; i < 10; i++ {
		cache.Put(0, urlN(i), testInfo(0, urlN(i)))
	}

	cache.Clear()

	assert.Equal(t, 0, cache.Size())
	_, ok := cache.Get(0, urlN(3))
	assert.False(t, ok)
}

// TestCache_Trim_MixedExpiry tests that trim drops expired entries first, then LRU.
func TestCache_Trim_MixedExpiry(t *testing.T) {
	clock := newFakeClock()
	cache := newTestCache(t, clock, ServiceTTL{
		Default:   time.Hour,
		Overrides: map[int]time.Duration{domain.ServiceSoundCloud: time.Minute},
	})

	// 20 short-lived and 40 long-lived entries
	for i := 0; i < 20; i++ {
		cache.Put(domain.ServiceSoundCloud, urlN(i), testInfo(domain.ServiceSoundCloud, urlN(i)))
	}
	for i := 20; i < 60; i++ {
		cache.Put(domain.ServiceYouTube, urlN(i), testInfo(domain.ServiceYouTube, urlN(i)))
	}
	require.Equal(t, 60, cache.Size())

	clock.Advance(2 * time.Minute)
	cache.Trim()

	assert.Equal(t, DefaultTrimTarget, cache.Size())
	for i := 0; i < 20; i++ {
		_, ok := cache.Get(domain.ServiceSoundCloud, urlN(i))
		assert.False(t, ok, "expired entry %d should be gone", i)
	}
	// The 10 least recently used live entries were evicted
	for i := 20; i < 30; i++ {
		_, ok := cache.Get(domain.ServiceYouTube, urlN(i))
		assert.False(t, ok, "lru entry %d should be evicted", i)
	}
	for i := 30; i < 60; i++ {
		_, ok := cache.Get(domain.ServiceYouTube, urlN(i))
		assert.True(t, ok, "recent entry %d should survive", i)
	}
}

// TestCache_Trim_BelowTarget tests that trim only sweeps when already small.
func TestCache_Trim_BelowTarget(t *testing.T) {
	clock := newFakeClock()
	cache := newTestCache(t, clock, ServiceTTL{
		Default:   time.Hour,
		Overrides: map[int]time.Duration{1: time.Second},
	})

	cache.Put(0, "https://live", testInfo(0, "https://live"))
	cache.Put(1, "https://stale", testInfo(1, "https://stale"))
	clock.Advance(5 * time.Second)

	cache.Trim()

	assert.Equal(t, 1, cache.Size())
	_, ok := cache.Get(0, "https://live")
	assert.True(t, ok)
}

// TestCache_ConcurrentAccess exercises the lock under the race detector.
func TestCache_ConcurrentAccess(t *testing.T) {
	cache := newTestCache(t, newFakeClock(), FixedTTL(time.Hour))

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				u := urlN((worker*200 + i) % 90)
				cache.Put(worker%2, u, testInfo(worker%2, u))
				cache.Get(worker%2, u)
				if i%50 == 0 {
					cache.Trim()
				}
			}
		}(w)
	}
	wg.Wait()

	assert.LessOrEqual(t, cache.Size(), DefaultMaxItems)
}

// TestServiceTTL tests the per-service policy.
func TestServiceTTL(t *testing.T) {
	policy := DefaultServiceTTL()

	assert.Equal(t, time.Hour, policy.TTL(domain.ServiceYouTube))
	assert.Equal(t, 5*time.Minute, policy.TTL(domain.ServiceSoundCloud))
	assert.Equal(t, time.Hour, policy.TTL(42))

	empty := ServiceTTL{}
	assert.Equal(t, DefaultTTL, empty.TTL(0))
}

// TestNormalizeURL tests cache key canonicalization.
func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		expected string
	}{
		{"unchanged", "https://example.com/a?b=1", "https://example.com/a?b=1"},
		{"whitespace", "  https://example.com/a ", "https://example.com/a"},
		{"scheme and host case", "HTTPS://WWW.Example.com/Path", "https://www.example.com/Path"},
		{"fragment dropped", "https://example.com/a#frag", "https://example.com/a"},
		{"not absolute", " some-id ", "some-id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeURL(tt.in))
		})
	}
}
