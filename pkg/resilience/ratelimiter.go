// Package resilience wraps the upstream NHTSA and fuel-price calls with a
// rate limiter and a circuit breaker, exposed both as plain call guards and
// as fn.Stage decorators for the collector pipelines.
package resilience

import (
	"context"
	"errors"

	"golang.org/x/time/rate"

	"github.com/LemonScout/lemonscout-mvp/pkg/fn"
)

var ErrRateLimited = errors.New("rate limited")

// Limiter is a token bucket over golang.org/x/time/rate with stage adapters.
type Limiter struct {
	rl *rate.Limiter
}

// NewLimiter allows rps requests per second with the given burst capacity.
func NewLimiter(rps float64, burst int) *Limiter {
	if burst <= 0 {
		burst = 1
	}
	return &Limiter{rl: rate.NewLimiter(rate.Limit(rps), burst)}
}

// Allow reports whether a token is available right now.
func (l *Limiter) Allow() bool { return l.rl.Allow() }

// Wait blocks until a token is available or the context ends.
func (l *Limiter) Wait(ctx context.Context) error { return l.rl.Wait(ctx) }

// Call runs f if a token is available, otherwise fails fast.
func (l *Limiter) Call(ctx context.Context, f func(context.Context) error) error {
	if !l.rl.Allow() {
		return ErrRateLimited
	}
	return f(ctx)
}

// CallWait waits for a token, then runs f.
func (l *Limiter) CallWait(ctx context.Context, f func(context.Context) error) error {
	if err := l.rl.Wait(ctx); err != nil {
		return err
	}
	return f(ctx)
}

// LimiterStage fails fast with ErrRateLimited when no token is available.
func LimiterStage[In, Out any](l *Limiter, stage fn.Stage[In, Out]) fn.Stage[In, Out] {
	return func(ctx context.Context, in In) fn.Result[Out] {
		if !l.Allow() {
			return fn.Err[Out](ErrRateLimited)
		}
		return stage(ctx, in)
	}
}

// LimiterStageWait blocks for a token before running the stage.
func LimiterStageWait[In, Out any](l *Limiter, stage fn.Stage[In, Out]) fn.Stage[In, Out] {
	return func(ctx context.Context, in In) fn.Result[Out] {
		if err := l.Wait(ctx); err != nil {
			return fn.Err[Out](err)
		}
		return stage(ctx, in)
	}
}
