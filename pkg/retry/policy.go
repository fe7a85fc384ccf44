// Package retry provides the backoff policy shared by network calls and the mirroring loop.
package retry

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"time"
)

// Policy describes how many times an operation runs and how long to wait in between.
//
// Delays grow as BaseDelay × Multiplier^attempt up to MaxDelay. A Multiplier of 1 (or less)
// gives a fixed delay. JitterFraction is the total jitter width relative to the delay, so 0.1
// spreads waits over ±5%.
type Policy struct {
	MaxAttempts    int
	BaseDelay      time.Duration
	MaxDelay       time.Duration
	Multiplier     float64
	JitterFraction float64

	// FastAttempts is the number of consecutive failures tolerated before callers start waiting.
	FastAttempts int

	// Adaptive scaling: factor = clamp(scale/ScaleUnit, MinScale, MaxScale).
	ScaleUnit float64
	MinScale  float64
	MaxScale  float64

	// OnRetry is called before each wait, if set.
	OnRetry func(attempt int, err error, wait time.Duration)
}

// Fixed returns a policy with a constant delay and no jitter.
func Fixed(attempts int, delay time.Duration) Policy {
	return Policy{
		MaxAttempts: attempts,
		BaseDelay:   delay,
		MaxDelay:    delay,
		Multiplier:  1,
	}
}

// Exponential returns a doubling policy capped at maxDelay.
func Exponential(attempts int, base time.Duration, maxDelay time.Duration, jitter float64) Policy {
	return Policy{
		MaxAttempts:    attempts,
		BaseDelay:      base,
		MaxDelay:       maxDelay,
		Multiplier:     2,
		JitterFraction: jitter,
	}
}

// Delay returns the jittered wait after the given zero-based failed attempt.
func (p Policy) Delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}

	d := float64(p.BaseDelay)
	if p.Multiplier > 1 {
		d *= math.Pow(p.Multiplier, float64(attempt))
	}
	if p.MaxDelay > 0 && d > float64(p.MaxDelay) {
		d = float64(p.MaxDelay)
	}

	return p.Jitter(time.Duration(d))
}

// Adaptive returns a jittered BaseDelay scaled by the remaining work.
func (p Policy) Adaptive(scale float64) time.Duration {
	factor := 1.0
	if p.ScaleUnit > 0 {
		factor = scale / p.ScaleUnit
		if factor < p.MinScale {
			factor = p.MinScale
		}
		if p.MaxScale > 0 && factor > p.MaxScale {
			factor = p.MaxScale
		}
	}

	return p.Jitter(time.Duration(float64(p.BaseDelay) * factor))
}

// Jitter spreads d uniformly over ±JitterFraction/2.
func (p Policy) Jitter(d time.Duration) time.Duration {
	if d <= 0 || p.JitterFraction <= 0 {
		return d
	}

	offset := float64(d) * p.JitterFraction * (rand.Float64() - 0.5)
	return d + time.Duration(offset)
}

// Do runs op until it succeeds, returns a non-retryable error, or MaxAttempts is reached.
// A nil retryable treats every error as retryable.
func (p Policy) Do(ctx context.Context, op func(ctx context.Context) error, retryable func(error) bool) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		err = op(ctx)
		if err == nil {
			return nil
		}

		if retryable != nil && !retryable(err) {
			return err
		}

		if attempt == attempts-1 {
			break
		}

		wait := p.Delay(attempt)
		if p.OnRetry != nil {
			p.OnRetry(attempt+1, err, wait)
		}

		sleepErr := Sleep(ctx, wait)
		if sleepErr != nil {
			return fmt.Errorf("retry interrupted: %w", sleepErr)
		}
	}

	return fmt.Errorf("after %d attempts: %w", attempts, err)
}

// DoValue is Do for operations that produce a value.
func DoValue[T any](
	ctx context.Context,
	p Policy,
	op func(ctx context.Context) (T, error),
	retryable func(error) bool,
) (T, error) {
	var result T
	err := p.Do(ctx, func(ctx context.Context) error {
		v, opErr := op(ctx)
		if opErr != nil {
			return opErr
		}
		result = v
		return nil
	}, retryable)

	return result, err
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
