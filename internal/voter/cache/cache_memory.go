// Package cache provides the optional accelerator in front of the Record
// Store. A miss is reported as sentinel.ErrNotFound; callers treat any other
// error as a degraded cache, never as a lookup failure.
package cache

import (
	"context"
	"sync"
	"time"

	"voterdata/internal/voter/models"
	id "voterdata/pkg/domain"
	"voterdata/pkg/platform/sentinel"
)

// DefaultTTL bounds how long a snapshot may be served.
const DefaultTTL = time.Hour

type cachedRecord struct {
	record   *models.VoterRecord
	storedAt time.Time
}

// InMemoryCache keeps record snapshots in process with TTL expiration.
type InMemoryCache struct {
	mu      sync.RWMutex
	records map[string]cachedRecord
	ttl     time.Duration
	now     func() time.Time
}

type InMemoryOption func(*InMemoryCache)

// WithClock overrides time.Now for expiration checks.
func WithClock(now func() time.Time) InMemoryOption {
	return func(c *InMemoryCache) {
		if now != nil {
			c.now = now
		}
	}
}

// NewInMemoryCache creates a new in-memory cache with the specified TTL.
func NewInMemoryCache(ttl time.Duration, opts ...InMemoryOption) *InMemoryCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &InMemoryCache{
		records: make(map[string]cachedRecord),
		ttl:     ttl,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached snapshot for epic.
// Returns sentinel.ErrNotFound if absent or expired past the TTL.
func (c *InMemoryCache) Get(_ context.Context, epic id.EPICNumber) (*models.VoterRecord, error) {
	c.mu.RLock()
	cached, ok := c.records[epic.CacheKey()]
	c.mu.RUnlock()
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if c.now().Sub(cached.storedAt) >= c.ttl {
		c.mu.Lock()
		if current, still := c.records[epic.CacheKey()]; still && current.storedAt.Equal(cached.storedAt) {
			delete(c.records, epic.CacheKey())
		}
		c.mu.Unlock()
		return nil, sentinel.ErrNotFound
	}
	return cached.record.Clone(), nil
}

// Set stores a snapshot keyed by the record's identifier.
// If record is nil, the operation is a no-op and returns nil.
func (c *InMemoryCache) Set(_ context.Context, record *models.VoterRecord) error {
	if record == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records[record.EPICNo.CacheKey()] = cachedRecord{record: record.Clone(), storedAt: c.now()}
	return nil
}

// Delete evicts the snapshot for epic. Evicting an absent key is not an error.
func (c *InMemoryCache) Delete(_ context.Context, epic id.EPICNumber) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.records, epic.CacheKey())
	return nil
}

// Len reports the number of entries, expired ones included.
func (c *InMemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.records)
}
