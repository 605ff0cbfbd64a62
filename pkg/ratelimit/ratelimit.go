package ratelimit

import (
	"context"
	"math/rand"
	"time"
)

// Limiter paces fetches against the storefront and the search API. A zero
// rate limiter never blocks. Safe for concurrent use.
type Limiter struct {
	ticker   *time.Ticker
	ch       <-chan time.Time
	interval time.Duration
	jitter   float64 // 0.0 to 1.0
}

// NewLimiter returns a limiter that allows rps operations per second with
// up to jitter*interval of added random delay. rps <= 0 disables pacing.
func NewLimiter(rps, jitter float64) *Limiter {
	if rps <= 0 {
		return &Limiter{}
	}
	if jitter < 0 {
		jitter = 0
	} else if jitter > 1 {
		jitter = 1
	}

	interval := time.Duration(float64(time.Second) / rps)
	ticker := time.NewTicker(interval)
	return &Limiter{
		ticker:   ticker,
		ch:       ticker.C,
		interval: interval,
		jitter:   jitter,
	}
}

// Wait blocks until the next slot or until ctx is canceled.
func (l *Limiter) Wait(ctx context.Context) error {
	if l.ch == nil {
		return nil
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-l.ch:
	}

	if l.jitter == 0 {
		return nil
	}

	// Random extra delay in [-jitter, +jitter] * interval. The ticker
	// already enforces the minimum interval, so negative jitter means
	// "go now"; only positive jitter sleeps.
	extra := time.Duration(float64(l.interval) * l.jitter * ((rand.Float64() * 2) - 1))
	if extra <= 0 {
		return nil
	}
	select {
	case <-time.After(extra):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop releases the underlying ticker.
func (l *Limiter) Stop() {
	if l.ticker != nil {
		l.ticker.Stop()
	}
}
