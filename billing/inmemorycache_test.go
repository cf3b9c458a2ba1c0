package billing

import (
	"testing"
	"time"
)

func TestCacheStartsInvalid(t *testing.T) {
	cache := NewInMemoryRulesCache(DefaultCacheConfig())

	if cache.IsValid() {
		t.Error("Expected fresh cache to be invalid")
	}
	if got := cache.Get(); got != nil {
		t.Errorf("Expected nil from invalid cache, got %v", got)
	}
}

func TestCacheSetAndGet(t *testing.T) {
	cache := NewInMemoryRulesCache(DefaultCacheConfig())
	cache.Set([]*Rule{percentDiscount("r1", "Promo", 1, 10)})

	if !cache.IsValid() {
		t.Error("Expected cache to be valid after Set")
	}
	got := cache.Get()
	if len(got) != 1 || got[0].ID != "r1" {
		t.Errorf("Expected cached rule back, got %v", got)
	}
}

func TestCacheInvalidate(t *testing.T) {
	cache := NewInMemoryRulesCache(DefaultCacheConfig())
	cache.Set([]*Rule{percentDiscount("r1", "Promo", 1, 10)})

	cache.Invalidate()
	if cache.IsValid() {
		t.Error("Expected cache invalid after Invalidate")
	}
	if got := cache.Get(); got != nil {
		t.Errorf("Expected nil after Invalidate, got %v", got)
	}
}

func TestCacheTTLExpiry(t *testing.T) {
	cache := NewInMemoryRulesCache(CacheConfig{TTL: 10 * time.Millisecond})
	cache.Set([]*Rule{percentDiscount("r1", "Promo", 1, 10)})

	if !cache.IsValid() {
		t.Error("Expected cache valid before TTL elapses")
	}

	time.Sleep(20 * time.Millisecond)

	if cache.IsValid() {
		t.Error("Expected cache expired after TTL")
	}
	if got := cache.Get(); got != nil {
		t.Errorf("Expected nil after expiry, got %v", got)
	}
}

func TestCacheHandsOutCopies(t *testing.T) {
	cache := NewInMemoryRulesCache(DefaultCacheConfig())
	cache.Set([]*Rule{percentDiscount("r1", "Promo", 1, 10)})

	got := cache.Get()
	got[0].Name = "Tampered"

	fresh := cache.Get()
	if fresh[0].Name != "Promo" {
		t.Errorf("Expected cache unaffected by caller mutation, got %q", fresh[0].Name)
	}
}
