package docfill

import (
	"bytes"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
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

func newTestCache(size int, ttl time.Duration) (*TemplateCache, *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	cache := NewTemplateCacheWithConfig(CacheConfig{MaxSize: size, TTL: ttl})
	cache.now = clock.Now
	return cache, clock
}

func TestTemplateCache_GetSet(t *testing.T) {
	cache, _ := newTestCache(4, 0)
	tmpl := &PreparedTemplate{}

	_, ok := cache.Get("a")
	assert.False(t, ok)

	cache.Set("a", tmpl)
	got, ok := cache.Get("a")
	require.True(t, ok)
	assert.Same(t, tmpl, got)
	assert.Equal(t, 1, cache.Size())

	replacement := &PreparedTemplate{}
	cache.Set("a", replacement)
	got, _ = cache.Get("a")
	assert.Same(t, replacement, got)
	assert.Equal(t, 1, cache.Size())
}

func TestTemplateCache_Disabled(t *testing.T) {
	cache, _ := newTestCache(0, 0)
	assert.False(t, cache.Enabled())

	cache.Set("a", &PreparedTemplate{})
	_, ok := cache.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 0, cache.Size())

	var nilCache *TemplateCache
	assert.False(t, nilCache.Enabled())
}

func TestTemplateCache_EvictsLeastRecentlyUsed(t *testing.T) {
	cache, _ := newTestCache(2, 0)
	a, b, c := &PreparedTemplate{}, &PreparedTemplate{}, &PreparedTemplate{}

	cache.Set("a", a)
	cache.Set("b", b)
	_, ok := cache.Get("a")
	require.True(t, ok)

	cache.Set("c", c)

	_, ok = cache.Get("b")
	assert.False(t, ok, "b was least recently used")
	_, ok = cache.Get("a")
	assert.True(t, ok)
	_, ok = cache.Get("c")
	assert.True(t, ok)
	assert.Equal(t, 2, cache.Size())
}

func TestTemplateCache_EvictionKeepsTemplateUsable(t *testing.T) {
	cache, _ := newTestCache(1, 0)
	tmpl, err := New(WithConfig(DefaultConfig())).Prepare(bytes.NewReader(createDOCXBytes(t, para("${name}"), nil)))
	require.NoError(t, err)

	cache.Set("a", tmpl)
	cache.Set("b", &PreparedTemplate{})

	_, ok := cache.Get("a")
	require.False(t, ok)

	_, err = tmpl.Render(Data{"name": "still open"})
	assert.NoError(t, err)
}

func TestTemplateCache_TTL(t *testing.T) {
	cache, clock := newTestCache(4, time.Minute)
	cache.Set("a", &PreparedTemplate{})

	clock.Advance(30 * time.Second)
	_, ok := cache.Get("a")
	assert.True(t, ok)

	clock.Advance(31 * time.Second)
	_, ok = cache.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 0, cache.Size(), "expired entry is dropped on access")
}

func TestTemplateCache_RemoveAndClear(t *testing.T) {
	cache, _ := newTestCache(4, 0)
	for i := 0; i < 3; i++ {
		cache.Set(fmt.Sprintf("k%d", i), &PreparedTemplate{})
	}

	cache.Remove("k1")
	cache.Remove("missing")
	assert.Equal(t, 2, cache.Size())

	require.NoError(t, cache.Close())
	assert.Equal(t, 0, cache.Size())

	cache.Set("k0", &PreparedTemplate{})
	assert.Equal(t, 1, cache.Size(), "cache is usable after Clear")
}

func TestTemplateCache_Concurrent(t *testing.T) {
	cache, _ := newTestCache(8, 0)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("k%d", i%10)
			cache.Set(key, &PreparedTemplate{})
			cache.Get(key)
		}(i)
	}
	wg.Wait()
	assert.LessOrEqual(t, cache.Size(), 8)
}
