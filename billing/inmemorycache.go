package billing

import (
	"sync"
	"time"
)

// InMemoryRulesCache is a simple in-memory implementation of RulesCache,
// safe for concurrent access.
type InMemoryRulesCache struct {
	rules    []*Rule
	cachedAt time.Time
	config   CacheConfig
	mu       sync.RWMutex
	isValid  bool
}

// NewInMemoryRulesCache creates a new in-memory rules cache.
func NewInMemoryRulesCache(config CacheConfig) *InMemoryRulesCache {
	return &InMemoryRulesCache{
		config:  config,
		isValid: false,
	}
}

// Get retrieves the cached snapshot. Returns nil if the cache is invalid
// or expired. Rules come back cloned so a calculation in flight never sees
// a later edit.
func (c *InMemoryRulesCache) Get() []*Rule {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.isValid {
		return nil
	}

	if c.config.TTL > 0 && time.Since(c.cachedAt) > c.config.TTL {
		return nil
	}

	snapshot := make([]*Rule, len(c.rules))
	for i, r := range c.rules {
		snapshot[i] = r.Clone()
	}
	return snapshot
}

// Set stores a snapshot in the cache.
func (c *InMemoryRulesCache) Set(rules []*Rule) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.rules = make([]*Rule, len(rules))
	for i, r := range rules {
		c.rules[i] = r.Clone()
	}
	c.cachedAt = time.Now()
	c.isValid = true
}

// Invalidate clears the cache.
func (c *InMemoryRulesCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.isValid = false
	c.rules = nil
}

// IsValid returns true if the cache contains unexpired data.
func (c *InMemoryRulesCache) IsValid() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.isValid {
		return false
	}

	if c.config.TTL > 0 {
		return time.Since(c.cachedAt) <= c.config.TTL
	}

	return true
}
