package validation

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/upb/ciw-intake/repositories"
)

// lookupKind separates the reference tables sharing one cache
type lookupKind string

const (
	lookupBuilding lookupKind = "building"
	lookupEmail    lookupKind = "email"
	lookupState    lookupKind = "state"
)

// CacheKey represents a unique key for a cached reference lookup
type CacheKey struct {
	Kind  lookupKind
	Value string
	Scope string
}

// String returns a string representation of the cache key
func (k CacheKey) String() string {
	if k.Scope != "" {
		return string(k.Kind) + ":" + k.Scope + ":" + k.Value
	}
	return string(k.Kind) + ":" + k.Value
}

// cacheEntry represents a single cache entry with TTL
type cacheEntry struct {
	key        CacheKey
	valid      bool
	insertedAt time.Time
	element    *list.Element
}

func (e *cacheEntry) isExpired(ttl time.Duration) bool {
	return time.Since(e.insertedAt) > ttl
}

// LookupCache is an in-memory LRU cache with TTL for reference lookups
// (buildings, government emails, states). Only answers are cached, never
// errors. Safe for concurrent use.
type LookupCache struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry
	lruList *list.List
	maxSize int
	ttl     time.Duration
	hits    uint64
	misses  uint64
}

// NewLookupCache creates a new LookupCache with specified max size and TTL
func NewLookupCache(maxSize int, ttl time.Duration) *LookupCache {
	return &LookupCache{
		entries: make(map[string]*cacheEntry),
		lruList: list.New(),
		maxSize: maxSize,
		ttl:     ttl,
	}
}

// Get returns the cached answer for key and whether one was found
func (c *LookupCache) Get(key CacheKey) (valid, found bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	keyStr := key.String()
	entry, exists := c.entries[keyStr]

	if !exists || entry.isExpired(c.ttl) {
		c.misses++
		if exists {
			c.removeEntry(keyStr)
		}
		return false, false
	}

	c.lruList.MoveToFront(entry.element)
	c.hits++
	return entry.valid, true
}

// Set stores an answer
func (c *LookupCache) Set(key CacheKey, valid bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	keyStr := key.String()

	if entry, exists := c.entries[keyStr]; exists {
		entry.valid = valid
		entry.insertedAt = time.Now()
		c.lruList.MoveToFront(entry.element)
		return
	}

	if c.lruList.Len() >= c.maxSize {
		c.evictLRU()
	}

	entry := &cacheEntry{
		key:        key,
		valid:      valid,
		insertedAt: time.Now(),
	}
	entry.element = c.lruList.PushFront(keyStr)
	c.entries[keyStr] = entry
}

// Clear removes all entries from the cache
func (c *LookupCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*cacheEntry)
	c.lruList.Init()
}

// Stats returns cache statistics
func (c *LookupCache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return CacheStats{
		Size:    c.lruList.Len(),
		MaxSize: c.maxSize,
		Hits:    c.hits,
		Misses:  c.misses,
		HitRate: c.calculateHitRate(),
	}
}

// CacheStats represents cache statistics
type CacheStats struct {
	Size    int
	MaxSize int
	Hits    uint64
	Misses  uint64
	HitRate float64
}

func (c *LookupCache) calculateHitRate() float64 {
	total := c.hits + c.misses
	if total == 0 {
		return 0
	}
	return float64(c.hits) / float64(total)
}

// removeEntry must be called with lock held
func (c *LookupCache) removeEntry(keyStr string) {
	if entry, exists := c.entries[keyStr]; exists {
		c.lruList.Remove(entry.element)
		delete(c.entries, keyStr)
	}
}

// evictLRU must be called with lock held
func (c *LookupCache) evictLRU() {
	back := c.lruList.Back()
	if back == nil {
		return
	}
	keyStr := back.Value.(string)
	c.lruList.Remove(back)
	delete(c.entries, keyStr)
}

// CleanupExpired removes all expired entries
func (c *LookupCache) CleanupExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiredKeys := make([]string, 0)
	for keyStr, entry := range c.entries {
		if entry.isExpired(c.ttl) {
			expiredKeys = append(expiredKeys, keyStr)
		}
	}
	for _, keyStr := range expiredKeys {
		c.removeEntry(keyStr)
	}
	return len(expiredKeys)
}

// StartCleanupWorker periodically removes expired entries until stopCh closes
func (c *LookupCache) StartCleanupWorker(interval time.Duration, stopCh <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.CleanupExpired()
		case <-stopCh:
			return
		}
	}
}

// CachedLookups serves the reference-table queries of a LookupRepository
// from a LookupCache. Duplicate checks and country resolution always reach
// the repository.
type CachedLookups struct {
	repositories.LookupRepository
	cache *LookupCache
}

// NewCachedLookups wraps lookups with cache
func NewCachedLookups(lookups repositories.LookupRepository, cache *LookupCache) *CachedLookups {
	return &CachedLookups{LookupRepository: lookups, cache: cache}
}

// ValidBuilding reports whether the building number exists
func (c *CachedLookups) ValidBuilding(ctx context.Context, buildingID string) (bool, error) {
	return c.cached(CacheKey{Kind: lookupBuilding, Value: buildingID}, func() (bool, error) {
		return c.LookupRepository.ValidBuilding(ctx, buildingID)
	})
}

// ValidEmail reports whether the address belongs to a known government user
func (c *CachedLookups) ValidEmail(ctx context.Context, email string) (bool, error) {
	return c.cached(CacheKey{Kind: lookupEmail, Value: email}, func() (bool, error) {
		return c.LookupRepository.ValidEmail(ctx, email)
	})
}

// ValidateState reports whether the state/province belongs to the country
func (c *CachedLookups) ValidateState(ctx context.Context, stateCode, countryCode string) (bool, error) {
	return c.cached(CacheKey{Kind: lookupState, Value: stateCode, Scope: countryCode}, func() (bool, error) {
		return c.LookupRepository.ValidateState(ctx, stateCode, countryCode)
	})
}

func (c *CachedLookups) cached(key CacheKey, load func() (bool, error)) (bool, error) {
	if valid, ok := c.cache.Get(key); ok {
		return valid, nil
	}
	valid, err := load()
	if err != nil {
		return false, err
	}
	c.cache.Set(key, valid)
	return valid, nil
}
