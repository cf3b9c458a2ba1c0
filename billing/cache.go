package billing

import "time"

// RulesCache provides an abstraction for caching the active-rule snapshot
// between calculations, so the store is not hit on every invoice. Swappable
// between in-memory and Redis implementations.
type RulesCache interface {
	// Get retrieves the cached snapshot, nil on miss or expiry
	Get() []*Rule

	// Set stores a snapshot
	Set(rules []*Rule)

	// Invalidate clears the cache, forcing a refresh on next Get
	Invalidate()

	// IsValid returns true if the cache has valid data
	IsValid() bool
}

// CacheConfig holds configuration for cache behavior.
type CacheConfig struct {
	// TTL is the time-to-live for the cached snapshot.
	// Zero means no expiration (manual invalidation only).
	TTL time.Duration
}

// DefaultCacheConfig returns sensible defaults for rule caching.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		TTL: 0, // invalidate on rule mutations only
	}
}
