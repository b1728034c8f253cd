package scraper

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"sync"
	"time"
)

// refillWindow is the period over which a full token bucket refills.
// With N workers the refill rate is N/refillWindow tokens per second.
const refillWindow = 15.0

// RateLimiter is a token bucket with a jittered politeness delay between
// requests. Tokens bound the burst size; the random delay spreads requests
// out so scraped sites see human-ish pacing.
type RateLimiter struct {
	mu         sync.Mutex
	tokens     float64
	maxTokens  float64
	refillRate float64 // tokens per second
	lastRefill time.Time

	minDelay time.Duration
	maxDelay time.Duration
}

// NewRateLimiter creates a rate limiter sized for the given worker count.
func NewRateLimiter(workers int, minDelay, maxDelay time.Duration) *RateLimiter {
	return &RateLimiter{
		tokens:     float64(workers),
		maxTokens:  float64(workers),
		refillRate: float64(workers) / refillWindow,
		lastRefill: time.Now(),
		minDelay:   minDelay,
		maxDelay:   maxDelay,
	}
}

// Wait blocks until a token is available, then applies the politeness delay.
// Returns the context error if ctx is canceled while waiting.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		rl.mu.Lock()
		rl.refill()
		if rl.tokens >= 1 {
			rl.tokens--
			rl.mu.Unlock()
			return Sleep(ctx, rl.randomDelay())
		}

		// Time until the next whole token accrues
		wait := time.Duration((1 - rl.tokens) / rl.refillRate * float64(time.Second))
		rl.mu.Unlock()

		if err := Sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// refill adds tokens accrued since the last refill. Caller must hold mu.
func (rl *RateLimiter) refill() {
	now := time.Now()
	elapsed := now.Sub(rl.lastRefill).Seconds()
	rl.lastRefill = now

	rl.tokens += elapsed * rl.refillRate
	if rl.tokens > rl.maxTokens {
		rl.tokens = rl.maxTokens
	}
}

// randomDelay returns a uniform random duration in [minDelay, maxDelay].
func (rl *RateLimiter) randomDelay() time.Duration {
	spread := int64(rl.maxDelay - rl.minDelay)
	if spread <= 0 {
		return rl.minDelay
	}

	var b [8]byte
	_, _ = rand.Read(b[:])
	n := int64(binary.LittleEndian.Uint64(b[:]) % uint64(spread+1))
	return rl.minDelay + time.Duration(n)
}
