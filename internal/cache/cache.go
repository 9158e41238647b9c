package cache

import (
	"context"
	"crypto/sha1" //nolint:gosec // G505: sha1 for cache keys, not security
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"modelsagent/internal/core"
)

// LRUCache is a thread-safe LRU cache with per-entry expiry and a background sweeper.
type LRUCache struct {
	capacity int
	entries  map[string]*entry
	mu       sync.Mutex
	head     *entry
	tail     *entry
	ctx      context.Context
	cancel   context.CancelFunc
}

type entry struct {
	key       string
	value     any
	expiresAt int64
	prev      *entry
	next      *entry
}

var _ core.Cache = (*LRUCache)(nil)

// NewCache creates an LRU cache with the default capacity.
func NewCache() *LRUCache {
	return NewCacheWithCapacity(core.CacheDefaultCapacity)
}

// NewCacheWithCapacity creates an LRU cache holding at most capacity entries.
func NewCacheWithCapacity(capacity int) *LRUCache {
	if capacity <= 0 {
		capacity = core.CacheDefaultCapacity
	}
	ctx, cancel := context.WithCancel(context.Background())
	c := &LRUCache{
		capacity: capacity,
		entries:  make(map[string]*entry),
		head:     &entry{},
		tail:     &entry{},
		ctx:      ctx,
		cancel:   cancel,
	}
	c.head.next = c.tail
	c.tail.prev = c.head

	go c.sweepLoop()
	return c
}

func (c *LRUCache) sweepLoop() {
	ticker := time.NewTicker(core.CacheCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.sweepExpired()
		case <-c.ctx.Done():
			return
		}
	}
}

// Stop terminates the sweeper goroutine. The cache stays usable.
func (c *LRUCache) Stop() {
	if c.cancel != nil {
		c.cancel()
	}
}

// Set stores value under key for ttl. A non-positive ttl stores an already expired entry.
func (c *LRUCache) Set(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := time.Now().Add(ttl).UnixNano()
	if e, ok := c.entries[key]; ok {
		e.value = value
		e.expiresAt = expiresAt
		c.unlink(e)
		c.pushFront(e)
		return
	}

	e := &entry{key: key, value: value, expiresAt: expiresAt}
	c.pushFront(e)
	c.entries[key] = e

	if len(c.entries) > c.capacity {
		c.evictOldest()
	}
}

// Get returns the live value under key. Expired entries are dropped on read.
func (c *LRUCache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if time.Now().UnixNano() >= e.expiresAt {
		c.unlink(e)
		delete(c.entries, key)
		return nil, false
	}

	c.unlink(e)
	c.pushFront(e)
	return e.value, true
}

// Delete removes key if present.
func (c *LRUCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		c.unlink(e)
		delete(c.entries, key)
	}
}

// Len returns the number of stored entries, expired or not.
func (c *LRUCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Clear drops every entry.
func (c *LRUCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.head.next = c.tail
	c.tail.prev = c.head
	c.entries = make(map[string]*entry)
}

func (c *LRUCache) pushFront(e *entry) {
	e.next = c.head.next
	e.prev = c.head
	c.head.next.prev = e
	c.head.next = e
}

func (c *LRUCache) unlink(e *entry) {
	e.prev.next = e.next
	e.next.prev = e.prev
}

func (c *LRUCache) evictOldest() {
	if c.tail.prev == c.head {
		return
	}
	oldest := c.tail.prev
	c.unlink(oldest)
	delete(c.entries, oldest.key)
}

func (c *LRUCache) sweepExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now().UnixNano()
	for key, e := range c.entries {
		if now >= e.expiresAt {
			c.unlink(e)
			delete(c.entries, key)
		}
	}
}

// KeySetCacheKey derives the cache key of the public key set served by keysURL.
func KeySetCacheKey(keysURL string) string {
	h := sha1.Sum([]byte(keysURL)) //nolint:gosec // G401: sha1 for cache keys, not security
	return fmt.Sprintf("keys:%s:%s", core.CacheKeyVersion, hex.EncodeToString(h[:8]))
}

// TruncateCacheKey safely truncates cache key for log display
func TruncateCacheKey(key string, maxLen int) string {
	if len(key) <= maxLen {
		return key
	}
	return key[:maxLen]
}
