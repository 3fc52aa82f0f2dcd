package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/AnshRaj112/luna-backend/internal/database"
)

const (
	// CacheKeyPrefix is the Redis key prefix for cached data
	CacheKeyPrefix = "cache:"
	// DefaultCacheTTL is used by Set
	DefaultCacheTTL = 1 * time.Hour
	MinCacheTTL     = 1 * time.Minute
	MaxCacheTTL     = 24 * time.Hour

	maxMemoryEntries = 1000
)

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// CacheService stores JSON values in Redis when it is connected and in an
// in-process map otherwise. Summaries, translations and search results go here.
type CacheService struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewCacheService() *CacheService {
	return &CacheService{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Get retrieves a value from cache. A miss is (false, nil).
func (c *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	cacheKey := CacheKeyPrefix + key

	var data []byte
	if database.RedisClient != nil {
		val, err := database.RedisClient.Get(ctx, cacheKey).Bytes()
		if err != nil {
			return false, nil // Cache miss, not an error
		}
		data = val
	} else {
		c.mu.Lock()
		entry, ok := c.entries[cacheKey]
		if ok && c.now().After(entry.expiresAt) {
			delete(c.entries, cacheKey)
			ok = false
		}
		c.mu.Unlock()
		if !ok {
			return false, nil
		}
		data = entry.data
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, err
	}
	return true, nil
}

// Set stores a value in cache with default TTL
func (c *CacheService) Set(ctx context.Context, key string, value interface{}) error {
	return c.SetWithTTL(ctx, key, value, DefaultCacheTTL)
}

// SetWithTTL stores a value in cache with custom TTL (clamped to 1m-24h)
func (c *CacheService) SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if ttl < MinCacheTTL {
		ttl = MinCacheTTL
	}
	if ttl > MaxCacheTTL {
		ttl = MaxCacheTTL
	}

	cacheKey := CacheKeyPrefix + key
	jsonData, err := json.Marshal(value)
	if err != nil {
		return err
	}

	if database.RedisClient != nil {
		return database.RedisClient.Set(ctx, cacheKey, jsonData, ttl).Err()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.entries) >= maxMemoryEntries {
		c.evictLocked()
	}
	c.entries[cacheKey] = memoryEntry{data: jsonData, expiresAt: c.now().Add(ttl)}
	return nil
}

// evictLocked drops expired entries, then arbitrary ones until there is room.
func (c *CacheService) evictLocked() {
	now := c.now()
	for k, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, k)
		}
	}
	for k := range c.entries {
		if len(c.entries) < maxMemoryEntries {
			break
		}
		delete(c.entries, k)
	}
}

// Delete removes a value from cache
func (c *CacheService) Delete(ctx context.Context, key string) error {
	cacheKey := CacheKeyPrefix + key
	if database.RedisClient != nil {
		return database.RedisClient.Del(ctx, cacheKey).Err()
	}
	c.mu.Lock()
	delete(c.entries, cacheKey)
	c.mu.Unlock()
	return nil
}

// FlushPrefix removes every key under the given resource prefix (e.g. "summary")
// and returns how many were removed. An empty prefix clears the whole cache.
func (c *CacheService) FlushPrefix(ctx context.Context, prefix string) (int, error) {
	pattern := CacheKeyPrefix + prefix

	if database.RedisClient != nil {
		removed := 0
		iter := database.RedisClient.Scan(ctx, 0, pattern+"*", 100).Iterator()
		for iter.Next(ctx) {
			if err := database.RedisClient.Del(ctx, iter.Val()).Err(); err != nil {
				return removed, err
			}
			removed++
		}
		if err := iter.Err(); err != nil {
			return removed, err
		}
		log.Printf("🧹 Flushed %d cache keys matching %s*", removed, pattern)
		return removed, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for k := range c.entries {
		if strings.HasPrefix(k, pattern) {
			delete(c.entries, k)
			removed++
		}
	}
	return removed, nil
}

// Backend names the store currently serving the cache.
func (c *CacheService) Backend() string {
	if database.RedisClient != nil {
		return "redis"
	}
	return "memory"
}

// CacheKey generates a cache key for a specific resource
func CacheKey(resource string, identifier string) string {
	return fmt.Sprintf("%s:%s", resource, identifier)
}

