package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Throttle is a per-key token bucket used to slow down credential guessing on
// the login and registration endpoints. Idle keys are dropped by Cleanup.
type Throttle struct {
	mu      sync.Mutex
	entries map[string]*throttleEntry
	rps     rate.Limit
	burst   int
	idleTTL time.Duration
}

type throttleEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

func NewThrottle(rps float64, burst int) *Throttle {
	if burst <= 0 {
		burst = 1
	}
	return &Throttle{
		entries: make(map[string]*throttleEntry),
		rps:     rate.Limit(rps),
		burst:   burst,
		idleTTL: 15 * time.Minute,
	}
}

func (t *Throttle) Allow(key string) bool {
	return t.limiter(key).Allow()
}

func (t *Throttle) limiter(key string) *rate.Limiter {
	now := time.Now()

	t.mu.Lock()
	defer t.mu.Unlock()

	if ent, ok := t.entries[key]; ok {
		ent.lastSeen = now
		return ent.lim
	}
	lim := rate.NewLimiter(t.rps, t.burst)
	t.entries[key] = &throttleEntry{lim: lim, lastSeen: now}
	return lim
}

func (t *Throttle) Cleanup() {
	cutoff := time.Now().Add(-t.idleTTL)

	t.mu.Lock()
	defer t.mu.Unlock()

	for k, ent := range t.entries {
		if ent.lastSeen.Before(cutoff) {
			delete(t.entries, k)
		}
	}
}

// StartJanitor runs Cleanup every interval until ctx is done.
func (t *Throttle) StartJanitor(ctx context.Context, every time.Duration) {
	if every <= 0 {
		return
	}
	ticker := time.NewTicker(every)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				t.Cleanup()
			}
		}
	}()
}
