package common

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// RateLimiter is a token bucket refilled one token at a time.
type RateLimiter struct {
	stopCh     chan struct{}
	tokens     int
	capacity   int
	refillRate int
	mu         sync.Mutex
	once       sync.Once
}

// NewRateLimiter allows requestsPerMinute calls per minute, 60 when not positive.
func NewRateLimiter(requestsPerMinute int) *RateLimiter {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 60
	}

	rl := &RateLimiter{
		tokens:     requestsPerMinute,
		capacity:   requestsPerMinute,
		refillRate: requestsPerMinute,
		stopCh:     make(chan struct{}),
	}

	go rl.refill()

	return rl
}

// Wait blocks until a token is available or the context is canceled.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		if rl.TryAcquire() {
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("rate limiter canceled: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}

// TryAcquire takes a token without blocking.
func (rl *RateLimiter) TryAcquire() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if rl.tokens > 0 {
		rl.tokens--
		return true
	}
	return false
}

func (rl *RateLimiter) refill() {
	ticker := time.NewTicker(time.Minute / time.Duration(rl.refillRate))
	defer ticker.Stop()

	for {
		select {
		case <-rl.stopCh:
			return
		case <-ticker.C:
			rl.mu.Lock()
			if rl.tokens < rl.capacity {
				rl.tokens++
			}
			rl.mu.Unlock()
		}
	}
}

// Close stops the refill goroutine.
func (rl *RateLimiter) Close() {
	rl.once.Do(func() { close(rl.stopCh) })
}
