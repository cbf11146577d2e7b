package service

import (
	"context"
	"sync"
	"time"

	"github.com/hausmate/hausmate/internal/domain"
)

// InterestStore provides read access to the interest vocabulary.
type InterestStore interface {
	List(ctx context.Context) ([]domain.Interest, error)
}

// VocabularyCache is a read-through cache of the interest vocabulary
// snapshot. The snapshot is only ever replaced wholesale, never mutated, so
// concurrent readers may hold a snapshot across an entire ranking pass.
// Admin vocabulary changes call Invalidate; the TTL bounds staleness when
// they forget.
type VocabularyCache struct {
	store InterestStore
	ttl   time.Duration

	mu       sync.RWMutex
	snapshot *Vocabulary
	loadedAt time.Time
}

// NewVocabularyCache creates a vocabulary cache. A non-positive ttl disables
// time-based expiry, leaving Invalidate as the only refresh path.
func NewVocabularyCache(store InterestStore, ttl time.Duration) *VocabularyCache {
	return &VocabularyCache{store: store, ttl: ttl}
}

// Snapshot returns the current vocabulary snapshot, loading it from the
// store when empty or expired.
func (c *VocabularyCache) Snapshot(ctx context.Context) (*Vocabulary, error) {
	c.mu.RLock()
	snapshot := c.snapshot
	fresh := snapshot != nil && (c.ttl <= 0 || time.Since(c.loadedAt) < c.ttl)
	c.mu.RUnlock()

	if fresh {
		return snapshot, nil
	}

	interests, err := c.store.List(ctx)
	if err != nil {
		// Serve the stale snapshot if there is one; an aged vocabulary
		// beats failing the whole discovery request.
		if snapshot != nil {
			return snapshot, nil
		}
		return nil, err
	}

	rebuilt := NewVocabulary(interests)

	c.mu.Lock()
	c.snapshot = rebuilt
	c.loadedAt = time.Now()
	c.mu.Unlock()

	return rebuilt, nil
}

// Invalidate drops the cached snapshot; the next Snapshot call reloads.
func (c *VocabularyCache) Invalidate() {
	c.mu.Lock()
	c.snapshot = nil
	c.loadedAt = time.Time{}
	c.mu.Unlock()
}
