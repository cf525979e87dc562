package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryCounter keeps counters inside the process. Limits are only enforced
// per instance, so it suits single-instance deployments and tests.
type MemoryCounter struct {
	mu         sync.Mutex
	entries    map[string]*memoryEntry
	now        func() time.Time
	sweepEvery time.Duration
	nextSweep  time.Time
}

type memoryEntry struct {
	count     int64
	expiresAt time.Time
}

type MemoryOption func(*MemoryCounter)

func WithMemoryClock(now func() time.Time) MemoryOption {
	return func(c *MemoryCounter) { c.now = now }
}

func NewMemoryCounter(opts ...MemoryOption) *MemoryCounter {
	c := &MemoryCounter{
		entries:    make(map[string]*memoryEntry),
		now:        time.Now,
		sweepEvery: time.Minute,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *MemoryCounter) Incr(_ context.Context, key string, ttl time.Duration) (int64, error) {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	if now.After(c.nextSweep) {
		c.sweepLocked(now)
		c.nextSweep = now.Add(c.sweepEvery)
	}

	ent, ok := c.entries[key]
	if !ok || !now.Before(ent.expiresAt) {
		ent = &memoryEntry{expiresAt: now.Add(ttl)}
		c.entries[key] = ent
	}
	ent.count++
	return ent.count, nil
}

// Len reports how many live counters are held.
func (c *MemoryCounter) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Sweep drops expired counters.
func (c *MemoryCounter) Sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sweepLocked(c.now())
}

func (c *MemoryCounter) sweepLocked(now time.Time) {
	for k, ent := range c.entries {
		if !now.Before(ent.expiresAt) {
			delete(c.entries, k)
		}
	}
}
