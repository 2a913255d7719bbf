// Package retry implements the exponential-backoff-with-jitter policy that
// the generation engine and every adapter's HTTP calls share.
package retry

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"

	provider_errors "github.com/digitallysavvy/go-ai/pkg/provider/errors"
)

// Policy configures retry behavior. Delay for attempt n (1-indexed) is
// min(MaxDelay, BaseDelay * ExpBase^(n-1)) scaled by a uniform random
// factor in [JitterLo, JitterHi].
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	ExpBase     float64
	JitterLo    float64
	JitterHi    float64

	// ShouldRetry decides whether err is worth another attempt. Defaults
	// to provider_errors.IsRetryable when nil.
	ShouldRetry func(error) bool
}

// DefaultPolicy mirrors the teacher's prior defaults.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 4,
		BaseDelay:   1 * time.Second,
		MaxDelay:    60 * time.Second,
		ExpBase:     2.0,
		JitterLo:    0.5,
		JitterHi:    1.0,
		ShouldRetry: provider_errors.IsRetryable,
	}
}

// Func is an operation Do retries.
type Func func(ctx context.Context) error

// Do runs fn, retrying per policy. A Retry-After hint carried on a
// provider_errors.Error (KindRateLimit) only ever extends the wait for that
// attempt: delay is max(computed backoff, Retry-After), so a vendor asking
// for a short pause never cuts short a later attempt's larger backoff.
// Before each sleep Do compares the delay with the time left before ctx's
// deadline; if the delay would overrun it, Do returns a KindTimeout error
// wrapping the last failure instead of sleeping.
func Do(ctx context.Context, policy Policy, fn Func) error {
	if policy.MaxAttempts <= 0 {
		policy = DefaultPolicy()
	}
	shouldRetry := policy.ShouldRetry
	if shouldRetry == nil {
		shouldRetry = provider_errors.IsRetryable
	}

	var lastErr error
	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return lastErr
			}
			return err
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if !shouldRetry(err) {
			return err
		}
		if attempt == policy.MaxAttempts {
			break
		}

		delay := backoffDelay(policy, attempt)
		if ra := retryAfter(err); ra != nil && *ra > delay {
			delay = *ra
		}
		if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < delay {
			return provider_errors.Wrap(provider_errors.KindTimeout, "", "next retry delay exceeds the remaining deadline", lastErr)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return lastErr
		case <-timer.C:
		}
	}

	return lastErr
}

func backoffDelay(p Policy, attempt int) time.Duration {
	base := float64(p.BaseDelay) * math.Pow(p.ExpBase, float64(attempt-1))
	if base > float64(p.MaxDelay) {
		base = float64(p.MaxDelay)
	}
	jitterRange := p.JitterHi - p.JitterLo
	factor := p.JitterLo + rand.Float64()*jitterRange
	return time.Duration(base * factor)
}

func retryAfter(err error) *time.Duration {
	var pe *provider_errors.Error
	if !errors.As(err, &pe) || pe.RetryAfter == nil {
		return nil
	}
	d := time.Duration(*pe.RetryAfter) * time.Second
	return &d
}
