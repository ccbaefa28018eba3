package client

import (
	"context"
	"math"
	"sync"
	"time"
)

// RateLimiter is a token bucket that paces outgoing requests.
// The bucket holds at most one second worth of requests, and never less than one.
type RateLimiter struct {
	mu     sync.Mutex
	rate   float64 // requests per second
	tokens float64 // current available tokens
	last   time.Time
	now    func() time.Time
}

// NewRateLimiter returns a limiter allowing requestsPerSecond, or nil when the rate is not positive.
func NewRateLimiter(requestsPerSecond float64) *RateLimiter {
	if requestsPerSecond <= 0 {
		return nil
	}
	return &RateLimiter{rate: requestsPerSecond, tokens: math.Max(requestsPerSecond, 1), last: time.Now(), now: time.Now}
}

// Wait blocks until a request may be sent or ctx is done.
// A nil limiter never blocks.
func (l *RateLimiter) Wait(ctx context.Context) error {
	if l == nil {
		return nil
	}
	for {
		delay := l.reserve()
		if delay <= 0 {
			return nil
		}
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// reserve takes a token if one is available and otherwise reports how long until the next refill.
func (l *RateLimiter) reserve() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	// Refill tokens
	now := l.now()
	elapsed := now.Sub(l.last).Seconds()
	if elapsed > 0 {
		l.tokens += elapsed * l.rate
		maxTokens := math.Max(l.rate, 1)
		if l.tokens > maxTokens {
			l.tokens = maxTokens
		}
		l.last = now
	}

	if l.tokens >= 1 {
		l.tokens--
		return 0
	}
	missing := 1 - l.tokens
	return time.Duration(missing / l.rate * float64(time.Second))
}
