// Package ratelimit provides the pause policies used between batch requests.
package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Limiter blocks until the next request may start or ctx is done.
type Limiter interface {
	Wait(ctx context.Context) error
}

// FixedDelay sleeps for a constant duration on every call.
type FixedDelay struct {
	Delay time.Duration
}

func NewFixedDelay(d time.Duration) *FixedDelay {
	return &FixedDelay{Delay: d}
}

func (f *FixedDelay) Wait(ctx context.Context) error {
	if f.Delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(f.Delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TokenBucket allows perMinute requests per minute with a burst of one.
// Wait is only called between requests, so the bucket starts empty: the first
// request has already spent the initial token.
type TokenBucket struct {
	limiter *rate.Limiter
}

func NewTokenBucket(perMinute float64) *TokenBucket {
	limiter := rate.NewLimiter(rate.Limit(perMinute/60), 1)
	limiter.Allow()
	return &TokenBucket{limiter: limiter}
}

func (t *TokenBucket) Wait(ctx context.Context) error {
	return t.limiter.Wait(ctx)
}

// None never waits.
type None struct{}

func (None) Wait(ctx context.Context) error {
	return ctx.Err()
}
