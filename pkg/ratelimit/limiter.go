// Package ratelimit spaces out requests to upstream portals.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// PolitenessLimiter enforces a fixed pause between the end of one request and
// the start of the next. Callers pair every successful Wait with Done.
type PolitenessLimiter struct {
	mu       sync.Mutex
	limit    rate.Limit
	limiter  *rate.Limiter
	delay    time.Duration
	requests int64
	errors   int64
	waited   time.Duration
	last     time.Time
}

// NewPolitenessLimiter creates a limiter allowing one request per delay.
// A delay of zero or less disables waiting.
func NewPolitenessLimiter(delay time.Duration) *PolitenessLimiter {
	limit := rate.Inf
	if delay > 0 {
		limit = rate.Every(delay)
	}
	return &PolitenessLimiter{
		limit:   limit,
		limiter: rate.NewLimiter(limit, 1),
		delay:   delay,
	}
}

// Delay returns the configured inter-request delay.
func (p *PolitenessLimiter) Delay() time.Duration {
	return p.delay
}

// Wait blocks until the delay has passed since the last Done.
func (p *PolitenessLimiter) Wait(ctx context.Context) error {
	p.mu.Lock()
	limiter := p.limiter
	p.mu.Unlock()

	start := time.Now()
	if err := limiter.Wait(ctx); err != nil {
		return err
	}
	now := time.Now()

	p.mu.Lock()
	p.requests++
	p.waited += now.Sub(start)
	p.last = now
	p.mu.Unlock()
	return nil
}

// Done marks the current request finished. The next Wait is held for the full
// delay from this point, however long the request took.
func (p *PolitenessLimiter) Done() {
	now := time.Now()
	limiter := rate.NewLimiter(p.limit, 1)
	limiter.AllowN(now, 1)

	p.mu.Lock()
	p.limiter = limiter
	p.mu.Unlock()
}

// RecordError counts a failed request.
func (p *PolitenessLimiter) RecordError() {
	p.mu.Lock()
	p.errors++
	p.mu.Unlock()
}

// Stats contains limiter statistics
type Stats struct {
	RequestCount    int64         `json:"request_count"`
	ErrorCount      int64         `json:"error_count"`
	TotalWait       time.Duration `json:"total_wait"`
	LastRequestTime time.Time     `json:"last_request_time"`
}

// GetStats returns a snapshot of the limiter statistics
func (p *PolitenessLimiter) GetStats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Stats{
		RequestCount:    p.requests,
		ErrorCount:      p.errors,
		TotalWait:       p.waited,
		LastRequestTime: p.last,
	}
}
