package cache

import (
	"container/list"
	"context"
	"strings"
	"sync"
	"time"
)

// MemoryCache keeps entries in process memory. Entries are ordered by last
// use; when MaxSize is reached, expired entries go first and then the least
// recently used one.
type MemoryCache struct {
	mu         sync.Mutex
	entries    map[string]*list.Element
	lru        *list.List // front is most recently used
	defaultTTL time.Duration
	maxSize    int
	stop       chan struct{}
	closed     bool

	hits, misses, sets, bytes int64
}

type memoryEntry struct {
	key       string
	value     []byte
	expiresAt time.Time
}

// MemoryCacheOptions configures a MemoryCache. Zero MaxSize means unbounded,
// zero CleanupInterval disables the background sweep.
type MemoryCacheOptions struct {
	DefaultTTL      time.Duration
	MaxSize         int
	CleanupInterval time.Duration
}

// NewMemoryCache creates a memory cache.
func NewMemoryCache(opts MemoryCacheOptions) *MemoryCache {
	c := &MemoryCache{
		entries:    make(map[string]*list.Element),
		lru:        list.New(),
		defaultTTL: opts.DefaultTTL,
		maxSize:    opts.MaxSize,
		stop:       make(chan struct{}),
	}
	if opts.CleanupInterval > 0 {
		go c.sweepEvery(opts.CleanupInterval)
	}
	return c
}

// NewSimpleMemoryCache creates an unbounded memory cache swept every minute.
func NewSimpleMemoryCache(ttl time.Duration) *MemoryCache {
	return NewMemoryCache(MemoryCacheOptions{DefaultTTL: ttl, CleanupInterval: time.Minute})
}

// lookup returns the live element for key, dropping it if it has expired.
// The caller holds mu.
func (c *MemoryCache) lookup(key string, now time.Time) *list.Element {
	el, ok := c.entries[key]
	if !ok {
		return nil
	}
	if now.After(el.Value.(*memoryEntry).expiresAt) {
		c.remove(el)
		return nil
	}
	return el
}

func (c *MemoryCache) remove(el *list.Element) {
	e := c.lru.Remove(el).(*memoryEntry)
	delete(c.entries, e.key)
	c.bytes -= int64(len(e.value))
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrCacheClosed
	}

	el := c.lookup(key, time.Now())
	if el == nil {
		c.misses++
		return nil, ErrCacheMiss
	}
	c.hits++
	c.lru.MoveToFront(el)
	return append([]byte(nil), el.Value.(*memoryEntry).value...), nil
}

func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrCacheClosed
	}
	if ttl == 0 {
		ttl = c.defaultTTL
	}
	now := time.Now()
	e := &memoryEntry{key: key, value: append([]byte(nil), value...), expiresAt: now.Add(ttl)}
	c.sets++

	if el := c.lookup(key, now); el != nil {
		c.bytes += int64(len(e.value) - len(el.Value.(*memoryEntry).value))
		el.Value = e
		c.lru.MoveToFront(el)
		return nil
	}

	if c.maxSize > 0 && c.lru.Len() >= c.maxSize {
		c.sweep(now)
		for c.lru.Len() >= c.maxSize {
			c.remove(c.lru.Back())
		}
	}
	c.entries[key] = c.lru.PushFront(e)
	c.bytes += int64(len(e.value))
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrCacheClosed
	}
	if el, ok := c.entries[key]; ok {
		c.remove(el)
	}
	return nil
}

// DeleteByPrefix removes every key starting with prefix.
func (c *MemoryCache) DeleteByPrefix(_ context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrCacheClosed
	}
	for key, el := range c.entries {
		if strings.HasPrefix(key, prefix) {
			c.remove(el)
		}
	}
	return nil
}

func (c *MemoryCache) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrCacheClosed
	}
	c.entries = make(map[string]*list.Element)
	c.lru.Init()
	c.bytes = 0
	return nil
}

// Has reports whether key holds a live entry without counting a hit or
// changing its recency.
func (c *MemoryCache) Has(_ context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false, ErrCacheClosed
	}
	return c.lookup(key, time.Now()) != nil, nil
}

// Close stops the sweeper. Further calls fail with ErrCacheClosed.
func (c *MemoryCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.stop)
	}
	return nil
}

func (c *MemoryCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Hits:    c.hits,
		Misses:  c.misses,
		Sets:    c.sets,
		Items:   c.lru.Len(),
		HitRate: hitRate(c.hits, c.misses),
		Size:    c.bytes,
	}
}

// sweep drops expired entries. The caller holds mu.
func (c *MemoryCache) sweep(now time.Time) {
	for el := c.lru.Back(); el != nil; {
		prev := el.Prev()
		if now.After(el.Value.(*memoryEntry).expiresAt) {
			c.remove(el)
		}
		el = prev
	}
}

func (c *MemoryCache) sweepEvery(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case now := <-ticker.C:
			c.mu.Lock()
			c.sweep(now)
			c.mu.Unlock()
		case <-c.stop:
			return
		}
	}
}

var (
	_ Cache         = (*MemoryCache)(nil)
	_ StatsProvider = (*MemoryCache)(nil)
)
