package ssgate

import (
	"net/netip"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter provides per-client-IP limiting of connection attempts.
type RateLimiter struct {
	limiters map[netip.Addr]*rate.Limiter
	lastUsed map[netip.Addr]time.Time
	mu       sync.RWMutex
	r        rate.Limit
	b        int
	cleanup  time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewRateLimiter creates a new rate limiter. r is the sustained rate of
// attempts per second, b is the burst size and cleanup is how often
// idle per-IP buckets are dropped.
func NewRateLimiter(r rate.Limit, b int, cleanup time.Duration) *RateLimiter {
	rl := &RateLimiter{
		limiters: make(map[netip.Addr]*rate.Limiter),
		lastUsed: make(map[netip.Addr]time.Time),
		r:        r,
		b:        b,
		cleanup:  cleanup,
		stopCh:   make(chan struct{}),
	}

	go rl.cleanupLoop()

	return rl
}

// Allow checks if a connection attempt from the given IP fits into its
// budget.
func (rl *RateLimiter) Allow(ip netip.Addr) bool {
	// Fast path: an existing IP only needs a read lock. lastUsed is not
	// refreshed here; worst case an active bucket is recreated by the
	// cleanup loop and the client gets more budget, not less.
	rl.mu.RLock()
	limiter, exists := rl.limiters[ip]
	rl.mu.RUnlock()

	if exists {
		return limiter.Allow()
	}

	rl.mu.Lock()
	// Double-check after lock escalation, another goroutine could have
	// added the bucket already.
	limiter, exists = rl.limiters[ip]
	if !exists {
		limiter = rate.NewLimiter(rl.r, rl.b)
		rl.limiters[ip] = limiter
	}
	rl.lastUsed[ip] = time.Now()
	rl.mu.Unlock()

	return limiter.Allow()
}

// Size returns the number of tracked IPs.
func (rl *RateLimiter) Size() int {
	rl.mu.RLock()
	defer rl.mu.RUnlock()

	return len(rl.limiters)
}

// Stop terminates the cleanup goroutine. Idempotent.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() {
		close(rl.stopCh)
	})
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.cleanup)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stopCh:
			return
		case <-ticker.C:
			rl.mu.Lock()
			now := time.Now()
			for ip, lastUsed := range rl.lastUsed {
				if now.Sub(lastUsed) > rl.cleanup*2 {
					delete(rl.limiters, ip)
					delete(rl.lastUsed, ip)
				}
			}
			rl.mu.Unlock()
		}
	}
}
