package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type entry struct {
	data      []byte
	expiresAt time.Time
}

// InMemoryReportCache implements ReportCache with a map guarded by a mutex.
// It is suitable for single-instance deployments and tests.
type InMemoryReportCache struct {
	mu          sync.RWMutex
	ttl         time.Duration
	entries     map[uuid.UUID]map[string]entry
	generations map[uuid.UUID]int64
	now         func() time.Time
	stopChan    chan struct{}
	wg          sync.WaitGroup
	closeOnce   sync.Once
}

// NewInMemoryReportCache creates an in-memory cache and starts a background
// goroutine that sweeps expired entries
func NewInMemoryReportCache(ttl time.Duration) *InMemoryReportCache {
	c := &InMemoryReportCache{
		ttl:         ttl,
		entries:     make(map[uuid.UUID]map[string]entry),
		generations: make(map[uuid.UUID]int64),
		now:         time.Now,
		stopChan:    make(chan struct{}),
	}

	c.wg.Add(1)
	go c.cleanupLoop(cleanupInterval(ttl))

	return c
}

// Get decodes the entry for key into dest. Expired entries are misses.
func (c *InMemoryReportCache) Get(ctx context.Context, pharmacyID uuid.UUID, key string, dest any) (bool, error) {
	c.mu.RLock()
	e, ok := c.entries[pharmacyID][key]
	c.mu.RUnlock()

	if !ok || !c.now().Before(e.expiresAt) {
		return false, nil
	}
	if err := decode(e.data, dest); err != nil {
		return false, err
	}
	return true, nil
}

// Generation returns the number of times the pharmacy was invalidated
func (c *InMemoryReportCache) Generation(ctx context.Context, pharmacyID uuid.UUID) (int64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generations[pharmacyID], nil
}

// Set stores value under key for the cache TTL. Writes for a superseded
// generation are dropped.
func (c *InMemoryReportCache) Set(ctx context.Context, pharmacyID uuid.UUID, gen int64, key string, value any) error {
	data, err := encode(value)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generations[pharmacyID] {
		return nil
	}

	bucket, ok := c.entries[pharmacyID]
	if !ok {
		bucket = make(map[string]entry)
		c.entries[pharmacyID] = bucket
	}
	bucket[key] = entry{data: data, expiresAt: c.now().Add(c.ttl)}
	return nil
}

// InvalidatePharmacy drops every entry of the pharmacy
func (c *InMemoryReportCache) InvalidatePharmacy(ctx context.Context, pharmacyID uuid.UUID) error {
	c.mu.Lock()
	delete(c.entries, pharmacyID)
	c.generations[pharmacyID]++
	c.mu.Unlock()
	return nil
}

// Len returns the number of live entries
func (c *InMemoryReportCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	now := c.now()
	n := 0
	for _, bucket := range c.entries {
		for _, e := range bucket {
			if now.Before(e.expiresAt) {
				n++
			}
		}
	}
	return n
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (c *InMemoryReportCache) Close() error {
	c.closeOnce.Do(func() {
		close(c.stopChan)
		c.wg.Wait()
	})
	return nil
}

func (c *InMemoryReportCache) cleanupLoop(interval time.Duration) {
	defer c.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopChan:
			return
		case <-ticker.C:
			c.cleanup()
		}
	}
}

func (c *InMemoryReportCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for pharmacyID, bucket := range c.entries {
		for key, e := range bucket {
			if !now.Before(e.expiresAt) {
				delete(bucket, key)
			}
		}
		if len(bucket) == 0 {
			delete(c.entries, pharmacyID)
		}
	}
}

func cleanupInterval(ttl time.Duration) time.Duration {
	switch {
	case ttl <= 0:
		return time.Minute
	case ttl < time.Minute:
		return ttl
	case ttl > 5*time.Minute:
		return 5 * time.Minute
	default:
		return ttl
	}
}

var _ ReportCache = (*InMemoryReportCache)(nil)
