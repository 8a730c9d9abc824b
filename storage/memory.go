package storage

import (
	"sync"
	"time"

	"egovlaw-backend/models"
)

type cacheEntry struct {
	value     models.StatuteText
	fetchedAt time.Time
}

// MemoryCache implements TextCache with a map and a freshness window
type MemoryCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]cacheEntry
	now     func() time.Time
}

// NewMemoryCache creates a new in-memory cache with the given freshness window
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

// Get returns a copy of the cached text, dropping it if stale
func (c *MemoryCache) Get(lawID string) (*models.StatuteText, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[lawID]
	if !ok {
		return nil, false
	}
	if c.now().Sub(entry.fetchedAt) >= c.ttl {
		delete(c.entries, lawID)
		return nil, false
	}

	value := entry.value
	return &value, true
}

// Put stores a copy of text
func (c *MemoryCache) Put(text *models.StatuteText) {
	if text == nil || text.LawID == "" {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	value := *text
	if value.FetchedAt.IsZero() {
		value.FetchedAt = now
	}
	c.entries[text.LawID] = cacheEntry{value: value, fetchedAt: now}
}

// Delete removes a cached entry
func (c *MemoryCache) Delete(lawID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, lawID)
}

// Len returns the number of entries, fresh or not
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
