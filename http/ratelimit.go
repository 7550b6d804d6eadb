package http

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// HostLimiter provides per-host rate limiting using token buckets.
// It creates a separate rate limiter for each host, allowing concurrent
// requests to different hosts while enforcing rate limits within each host.
type HostLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      float64
}

// NewHostLimiter creates a new HostLimiter with the specified requests per
// second limit. Each host gets its own limiter with a burst of 1.
// A non-positive rps disables limiting.
func NewHostLimiter(rps float64) *HostLimiter {
	return &HostLimiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rps,
	}
}

// Wait blocks until the rate limit allows a request to the host.
// Returns an error if the context is canceled before the wait completes.
func (l *HostLimiter) Wait(ctx context.Context, host string) error {
	l.mu.Lock()
	limiter, ok := l.limiters[host]
	if !ok {
		limit := rate.Inf
		if l.rps > 0 {
			limit = rate.Limit(l.rps)
		}
		limiter = rate.NewLimiter(limit, 1)
		l.limiters[host] = limiter
	}
	l.mu.Unlock()

	return limiter.Wait(ctx)
}

// wait applies the limit for the host of rawURL. A nil limiter never blocks.
func (l *HostLimiter) wait(ctx context.Context, rawURL string) error {
	if l == nil {
		return ctx.Err()
	}
	host, err := hostOf(rawURL)
	if err != nil {
		return err
	}
	return l.Wait(ctx, host)
}
