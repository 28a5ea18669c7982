package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMemoryCache(t *testing.T, maxSize int) *MemoryCache {
	t.Helper()
	c := NewMemoryCache(MemoryCacheOptions{DefaultTTL: time.Hour, MaxSize: maxSize})
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestMemoryCacheRoundTrip(t *testing.T) {
	c := newTestMemoryCache(t, 0)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "languages:site:1", []byte("en,nl"), 0))
	val, err := c.Get(ctx, "languages:site:1")
	require.NoError(t, err)
	assert.Equal(t, "en,nl", string(val))

	has, err := c.Has(ctx, "languages:site:1")
	require.NoError(t, err)
	assert.True(t, has)

	require.NoError(t, c.Delete(ctx, "languages:site:1"))
	_, err = c.Get(ctx, "languages:site:1")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := newTestMemoryCache(t, 0)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "short", []byte("x"), 20*time.Millisecond))
	require.NoError(t, c.Set(ctx, "long", []byte("y"), time.Hour))
	time.Sleep(40 * time.Millisecond)

	_, err := c.Get(ctx, "short")
	assert.ErrorIs(t, err, ErrCacheMiss)
	has, err := c.Has(ctx, "long")
	require.NoError(t, err)
	assert.True(t, has)
}

func TestMemoryCacheMaxSizeEvictsLeastRecentlyUsed(t *testing.T) {
	c := newTestMemoryCache(t, 2)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", []byte("1"), 0))
	require.NoError(t, c.Set(ctx, "b", []byte("2"), 0))
	_, err := c.Get(ctx, "a")
	require.NoError(t, err)
	require.NoError(t, c.Set(ctx, "c", []byte("3"), 0))

	assert.Equal(t, 2, c.Stats().Items)
	_, err = c.Get(ctx, "b")
	assert.ErrorIs(t, err, ErrCacheMiss)

	// Overwriting an existing key never evicts.
	require.NoError(t, c.Set(ctx, "a", []byte("11"), 0))
	val, err := c.Get(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, "3", string(val))
	assert.Equal(t, int64(3), c.Stats().Size)
}

func TestMemoryCacheMaxSizePrefersExpired(t *testing.T) {
	c := newTestMemoryCache(t, 2)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "old", []byte("1"), 0))
	require.NoError(t, c.Set(ctx, "short", []byte("2"), 10*time.Millisecond))
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, c.Set(ctx, "new", []byte("3"), 0))

	has, err := c.Has(ctx, "old")
	require.NoError(t, err)
	assert.True(t, has, "an expired entry is dropped before a live one")
}

func TestMemoryCacheDeleteByPrefix(t *testing.T) {
	c := newTestMemoryCache(t, 0)
	ctx := context.Background()
	for _, key := range []string{"languages:site:1", "languages:site:2", "other"} {
		require.NoError(t, c.Set(ctx, key, []byte(key), 0))
	}

	require.NoError(t, c.DeleteByPrefix(ctx, "languages:"))
	assert.Equal(t, 1, c.Stats().Items)
	has, err := c.Has(ctx, "other")
	require.NoError(t, err)
	assert.True(t, has)

	require.NoError(t, c.Clear(ctx))
	assert.Equal(t, 0, c.Stats().Items)
	assert.Equal(t, int64(0), c.Stats().Size)
}

func TestMemoryCacheStats(t *testing.T) {
	c := newTestMemoryCache(t, 0)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("abcd"), 0))
	_, _ = c.Get(ctx, "k")
	_, _ = c.Get(ctx, "k")
	_, _ = c.Get(ctx, "missing")

	stats := c.Stats()
	assert.Equal(t, int64(2), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, int64(1), stats.Sets)
	assert.Equal(t, int64(4), stats.Size)
	assert.InDelta(t, 66.67, stats.HitRate, 0.01)

	has, err := c.Has(ctx, "k")
	require.NoError(t, err)
	assert.True(t, has)
	assert.Equal(t, int64(2), c.Stats().Hits, "Has does not count as a hit")
}

func TestMemoryCacheReturnsCopies(t *testing.T) {
	c := newTestMemoryCache(t, 0)
	ctx := context.Background()

	value := []byte("en")
	require.NoError(t, c.Set(ctx, "k", value, 0))
	value[0] = 'x'

	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	got[1] = 'x'

	again, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "en", string(again))
}

func TestMemoryCacheConcurrentAccess(t *testing.T) {
	c := newTestMemoryCache(t, 0)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := fmt.Sprintf("k%d", n%5)
			for j := 0; j < 50; j++ {
				_ = c.Set(ctx, key, []byte("v"), 0)
				_, _ = c.Get(ctx, key)
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 5, c.Stats().Items)
}

func TestMemoryCacheClosed(t *testing.T) {
	c := NewMemoryCache(MemoryCacheOptions{DefaultTTL: time.Hour, CleanupInterval: time.Millisecond})
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())

	ctx := context.Background()
	assert.ErrorIs(t, c.Set(ctx, "k", []byte("v"), 0), ErrCacheClosed)
	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheClosed)
	_, err = c.Has(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheClosed)
}
