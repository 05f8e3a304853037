package research

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

// cacheEntry holds one cached route success.
type cacheEntry struct {
	result    RouteResult
	createdAt time.Time
	expiresAt time.Time
}

// Cache is an in-memory TTL cache for successful route results. It reduces
// redundant API calls when the same query recurs within a session.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*cacheEntry
	maxSize int
	ttl     time.Duration
}

// NewCache creates a cache with the given size limit and TTL.
func NewCache(maxSize int, ttl time.Duration) *Cache {
	return &Cache{
		entries: make(map[string]*cacheEntry),
		maxSize: maxSize,
		ttl:     ttl,
	}
}

// Get retrieves a cached result by key.
func (c *Cache) Get(key string) (RouteResult, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok {
		return RouteResult{}, false
	}

	// Check expiration
	if time.Now().After(entry.expiresAt) {
		return RouteResult{}, false
	}

	return entry.result, true
}

// Set stores a result, evicting the oldest entry at capacity.
func (c *Cache) Set(key string, result RouteResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) >= c.maxSize {
		c.evictOldest()
	}

	now := time.Now()
	c.entries[key] = &cacheEntry{
		result:    result,
		createdAt: now,
		expiresAt: now.Add(c.ttl),
	}
}

// Size returns the number of entries, expired ones included.
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Clear removes all entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cacheEntry)
}

func (c *Cache) evictOldest() {
	var oldestKey string
	var oldestTime time.Time

	for key, entry := range c.entries {
		if oldestKey == "" || entry.createdAt.Before(oldestTime) {
			oldestKey = key
			oldestTime = entry.createdAt
		}
	}

	if oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}

// cacheKey derives the cache/singleflight key for a query.
func cacheKey(q Query) string {
	h := sha256.New()
	h.Write([]byte(q.Text))
	h.Write([]byte{0})
	h.Write([]byte(q.Intent))
	return hex.EncodeToString(h.Sum(nil))[:16]
}
