// Package server implements a token bucket limiter for per-connection
// inbound message throttling.
package server

import (
	"sync"
	"time"
)

// tokenBucket admits up to burst messages immediately, then refills at
// burst tokens per refill interval. The clock is injectable for tests.
type tokenBucket struct {
	mu       sync.Mutex
	capacity float64
	tokens   float64
	perSec   float64
	last     time.Time
	now      func() time.Time
}

func newTokenBucket(burst int, interval time.Duration) *tokenBucket {
	if burst <= 0 {
		burst = 1
	}
	if interval <= 0 {
		interval = time.Second
	}
	return &tokenBucket{
		capacity: float64(burst),
		tokens:   float64(burst),
		perSec:   float64(burst) / interval.Seconds(),
		last:     time.Now(),
		now:      time.Now,
	}
}

// allow consumes one token if available.
func (tb *tokenBucket) allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := tb.now()
	if elapsed := now.Sub(tb.last).Seconds(); elapsed > 0 {
		tb.tokens = min(tb.capacity, tb.tokens+elapsed*tb.perSec)
	}
	tb.last = now

	if tb.tokens < 1 {
		return false
	}
	tb.tokens--
	return true
}
