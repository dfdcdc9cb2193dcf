package shopify

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	callLimitHeader = "X-Shopify-Shop-Api-Call-Limit"

	// Shopify's REST leaky bucket: 40 requests, drained at 2 per second.
	defaultRatePerSecond = 2.0
	defaultRateBurst     = 40
)

// CallLimit is the bucket state reported by X-Shopify-Shop-Api-Call-Limit.
type CallLimit struct {
	Used  int
	Limit int
}

// Remaining returns the number of calls left in the bucket.
func (c CallLimit) Remaining() int {
	if c.Used >= c.Limit {
		return 0
	}
	return c.Limit - c.Used
}

// ParseCallLimit parses a "used/limit" header value.
func ParseCallLimit(value string) (CallLimit, bool) {
	usedRaw, limitRaw, ok := strings.Cut(strings.TrimSpace(value), "/")
	if !ok {
		return CallLimit{}, false
	}
	used, err := strconv.Atoi(strings.TrimSpace(usedRaw))
	if err != nil || used < 0 {
		return CallLimit{}, false
	}
	limit, err := strconv.Atoi(strings.TrimSpace(limitRaw))
	if err != nil || limit <= 0 {
		return CallLimit{}, false
	}
	return CallLimit{Used: used, Limit: limit}, true
}

// RateLimiter paces outgoing calls with a token bucket sized like the
// Shopify bucket, and records the last bucket state the server reported.
type RateLimiter struct {
	limiter *rate.Limiter
	nowFunc func() time.Time

	mu         sync.Mutex
	last       CallLimit
	observedAt time.Time
}

// RateLimiterOption configures the RateLimiter.
type RateLimiterOption func(*RateLimiter)

// WithRateLimiterNowFunc overrides the time function for testing.
func WithRateLimiterNowFunc(f func() time.Time) RateLimiterOption {
	return func(r *RateLimiter) {
		r.nowFunc = f
	}
}

// NewRateLimiter creates a rate limiter. Non-positive values fall back to
// 2 calls per second with a burst of 40.
func NewRateLimiter(perSecond float64, burst int, opts ...RateLimiterOption) *RateLimiter {
	if perSecond <= 0 {
		perSecond = defaultRatePerSecond
	}
	if burst <= 0 {
		burst = defaultRateBurst
	}
	r := &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
		nowFunc: time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Wait blocks until the limiter allows a call or ctx is canceled.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if err := r.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait: %w", err)
	}
	return nil
}

// Observe records the bucket state from a response.
func (r *RateLimiter) Observe(limit CallLimit) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.last = limit
	r.observedAt = r.nowFunc()
}

// LastCallLimit returns the most recent bucket state and when it was seen.
// The zero time means nothing has been observed.
func (r *RateLimiter) LastCallLimit() (CallLimit, time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last, r.observedAt
}

func parseRetryAfter(value string) time.Duration {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return 0
	}
	seconds, err := strconv.ParseFloat(raw, 64)
	if err != nil || seconds <= 0 {
		return 0
	}
	return time.Duration(seconds * float64(time.Second))
}
