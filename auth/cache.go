package auth

import (
	"sync"
	"time"
)

// TokenCache holds at most one access token.
// Get returns the stored token only while it is unexpired; a stale token stays stored until overwritten.
type TokenCache interface {
	Get() (AccessToken, bool)
	Set(token AccessToken)
}

// MemoryCache is a TokenCache kept in process memory. It is safe for concurrent use.
type MemoryCache struct {
	mu    sync.RWMutex
	token *AccessToken
	now   func() time.Time
}

// NewMemoryCache creates an empty in-memory cache using the wall clock.
func NewMemoryCache() *MemoryCache {
	return NewMemoryCacheWithClock(time.Now)
}

// NewMemoryCacheWithClock creates an empty in-memory cache that checks expiry against now.
func NewMemoryCacheWithClock(now func() time.Time) *MemoryCache {
	if now == nil {
		now = time.Now
	}
	return &MemoryCache{now: now}
}

func (c *MemoryCache) Get() (AccessToken, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.token == nil || !c.token.ValidAt(c.now()) {
		return AccessToken{}, false
	}
	return *c.token, true
}

func (c *MemoryCache) Set(token AccessToken) {
	c.mu.Lock()
	c.token = &token
	c.mu.Unlock()
}

// Peek returns the stored token regardless of its expiry.
func (c *MemoryCache) Peek() (AccessToken, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.token == nil {
		return AccessToken{}, false
	}
	return *c.token, true
}

// Clear drops the stored token.
func (c *MemoryCache) Clear() {
	c.mu.Lock()
	c.token = nil
	c.mu.Unlock()
}
