package storage

import (
	"fmt"
	"time"

	"egovlaw-backend/models"
)

// TextCache stores extracted statute text keyed by law ID
type TextCache interface {
	// Get returns the cached text if present and still fresh
	Get(lawID string) (*models.StatuteText, bool)

	// Put stores text under its LawID, stamping the fetch time
	Put(text *models.StatuteText)

	// Delete removes a cached entry
	Delete(lawID string)
}

// CacheType represents the cache backend type
type CacheType string

const (
	CacheTypeMemory CacheType = "memory"
	CacheTypeNone   CacheType = "none"
)

// CacheConfig holds configuration for the text cache
type CacheConfig struct {
	Type CacheType
	TTL  time.Duration
}

// NewTextCache creates a cache instance based on configuration
func NewTextCache(cfg CacheConfig) (TextCache, error) {
	switch cfg.Type {
	case CacheTypeMemory, "":
		if cfg.TTL <= 0 {
			return nil, fmt.Errorf("cache ttl must be positive, got %s", cfg.TTL)
		}
		return NewMemoryCache(cfg.TTL), nil
	case CacheTypeNone:
		return noopCache{}, nil
	default:
		return nil, fmt.Errorf("unknown cache type: %s", cfg.Type)
	}
}

// noopCache never hits; used when caching is disabled
type noopCache struct{}

func (noopCache) Get(string) (*models.StatuteText, bool) { return nil, false }
func (noopCache) Put(*models.StatuteText)                {}
func (noopCache) Delete(string)                          {}
