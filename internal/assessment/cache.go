package assessment

import (
	"crypto/md5"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// Cache keeps provider answers for identical inputs for a limited time.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
	now     func() time.Time
}

type cacheEntry struct {
	score     Score
	timestamp time.Time
}

// NewCache creates a new cache with specified TTL
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get retrieves a cached score if available and not expired
func (c *Cache) Get(key string) (Score, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok || c.now().Sub(entry.timestamp) > c.ttl {
		return Score{}, false
	}
	return entry.score, true
}

func (c *Cache) Set(key string, s Score) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{score: s, timestamp: c.now()}
}

// CleanExpired removes expired entries (call periodically)
func (c *Cache) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	now := c.now()
	for key, entry := range c.entries {
		if now.Sub(entry.timestamp) > c.ttl {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// cacheKey hashes the assessment type, the requisition profile and the resume.
// Skill order does not matter.
func cacheKey(kind, title string, skills []string, resume string) string {
	sorted := make([]string, len(skills))
	for i, s := range skills {
		sorted[i] = strings.ToLower(strings.TrimSpace(s))
	}
	sort.Strings(sorted)

	data := kind + "|" + title + "|" + strings.Join(sorted, ",") + "|" + resume
	hash := md5.Sum([]byte(data))
	return fmt.Sprintf("%x", hash)
}
