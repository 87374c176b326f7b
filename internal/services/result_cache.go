package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"sustainers/pkg/contracts/domain"
)

// Download is a rendered monthly CSV waiting to be fetched
type Download struct {
	ID        string       `json:"id"`
	Filename  string       `json:"filename"`
	Month     domain.Month `json:"month"`
	Records   int          `json:"records"`
	Data      []byte       `json:"-"`
	CachedAt  time.Time    `json:"cached_at"`
	ExpiresAt time.Time    `json:"expires_at"`
	HitCount  int          `json:"hit_count"`
}

// ResultCache keeps rendered downloads in memory for a bounded time. It is
// the only state shared between requests.
type ResultCache struct {
	entries   map[string]Download
	mutex     sync.RWMutex
	ttl       time.Duration
	maxSize   int
	hitCount  int64
	missCount int64
	now       func() time.Time
}

// NewResultCache creates a cache holding at most maxSize downloads for ttl
func NewResultCache(ttl time.Duration, maxSize int) *ResultCache {
	return &ResultCache{
		entries: make(map[string]Download),
		ttl:     ttl,
		maxSize: maxSize,
		now:     time.Now,
	}
}

// Put stores data and returns the download ID. An empty ID is returned when
// the cache has no capacity.
func (c *ResultCache) Put(filename string, month domain.Month, records int, data []byte) string {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.maxSize <= 0 {
		return ""
	}

	if len(c.entries) >= c.maxSize {
		c.evictOldest()
	}

	now := c.now()
	id := uuid.NewString()
	c.entries[id] = Download{
		ID:        id,
		Filename:  filename,
		Month:     month,
		Records:   records,
		Data:      data,
		CachedAt:  now,
		ExpiresAt: now.Add(c.ttl),
	}
	return id
}

// Get retrieves a download that has not expired
func (c *ResultCache) Get(id string) (*Download, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	entry, exists := c.entries[id]
	if !exists || c.now().After(entry.ExpiresAt) {
		c.missCount++
		return nil, false
	}

	entry.HitCount++
	c.entries[id] = entry
	c.hitCount++

	return &entry, true
}

// Invalidate removes a download from cache
func (c *ResultCache) Invalidate(id string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	delete(c.entries, id)
}

// Len returns the number of stored downloads, expired or not
func (c *ResultCache) Len() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.entries)
}

// Stats returns cache statistics
func (c *ResultCache) Stats() map[string]interface{} {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	totalRequests := c.hitCount + c.missCount
	hitRatio := float64(0)
	if totalRequests > 0 {
		hitRatio = float64(c.hitCount) / float64(totalRequests)
	}

	var bytes int
	for _, entry := range c.entries {
		bytes += len(entry.Data)
	}

	return map[string]interface{}{
		"entries":     len(c.entries),
		"max_size":    c.maxSize,
		"bytes":       bytes,
		"hit_count":   c.hitCount,
		"miss_count":  c.missCount,
		"hit_ratio":   hitRatio,
		"ttl_seconds": c.ttl.Seconds(),
	}
}

// Sweep deletes expired downloads and returns how many were removed
func (c *ResultCache) Sweep() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := c.now()
	removed := 0
	for id, entry := range c.entries {
		if now.After(entry.ExpiresAt) {
			delete(c.entries, id)
			removed++
		}
	}
	return removed
}

// Run sweeps expired downloads every interval until ctx is done
func (c *ResultCache) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.Sweep()
		case <-ctx.Done():
			return nil
		}
	}
}

func (c *ResultCache) evictOldest() {
	var oldestKey string
	var oldestTime time.Time

	for key, entry := range c.entries {
		if oldestKey == "" || entry.CachedAt.Before(oldestTime) {
			oldestKey = key
			oldestTime = entry.CachedAt
		}
	}

	if oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}
