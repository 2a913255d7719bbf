package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	provider_errors "github.com/digitallysavvy/go-ai/pkg/provider/errors"
)

func fastPolicy() Policy {
	return Policy{
		MaxAttempts: 4,
		BaseDelay:   1 * time.Millisecond,
		MaxDelay:    5 * time.Millisecond,
		ExpBase:     2.0,
		JitterLo:    1.0,
		JitterHi:    1.0,
	}
}

func TestDo_SucceedsFirstTry(t *testing.T) {
	t.Parallel()

	calls := 0
	err := Do(context.Background(), fastPolicy(), func(ctx context.Context) error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_SucceedsAfterTransientFailures(t *testing.T) {
	t.Parallel()

	calls := 0
	err := Do(context.Background(), fastPolicy(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return provider_errors.New(provider_errors.KindRateLimit, "openai", "slow down")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_StopsOnNonRetryableError(t *testing.T) {
	t.Parallel()

	calls := 0
	wantErr := provider_errors.NewValidationError("bad request", nil)
	err := Do(context.Background(), fastPolicy(), func(ctx context.Context) error {
		calls++
		return wantErr
	})

	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, err, wantErr)
}

func TestDo_ExhaustsMaxAttempts(t *testing.T) {
	t.Parallel()

	policy := fastPolicy()
	calls := 0
	err := Do(context.Background(), policy, func(ctx context.Context) error {
		calls++
		return provider_errors.New(provider_errors.KindTimeout, "anthropic", "slow")
	})

	assert.Error(t, err)
	assert.Equal(t, policy.MaxAttempts, calls)
}

func TestDo_RespectsContextCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := Do(ctx, fastPolicy(), func(ctx context.Context) error {
		calls++
		return nil
	})

	assert.Error(t, err)
	assert.Equal(t, 0, calls)
}

func TestDo_HonorsRetryAfterHint(t *testing.T) {
	t.Parallel()

	retryAfterSeconds := 0 // zero-second hint keeps the test fast while still exercising the path
	calls := 0
	start := time.Now()
	err := Do(context.Background(), fastPolicy(), func(ctx context.Context) error {
		calls++
		if calls == 1 {
			return provider_errors.NewRateLimitError("openai", "rate limited", &retryAfterSeconds, nil)
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Less(t, time.Since(start), time.Second)
}

func TestDo_RetryAfterNeverShortensALargerComputedBackoff(t *testing.T) {
	t.Parallel()

	// BaseDelay alone already exceeds the 0-second Retry-After hint, so the
	// wait must come from backoff, not collapse to the hint.
	policy := Policy{
		MaxAttempts: 2,
		BaseDelay:   30 * time.Millisecond,
		MaxDelay:    time.Second,
		ExpBase:     2.0,
		JitterLo:    1.0,
		JitterHi:    1.0,
	}

	retryAfterSeconds := 0
	calls := 0
	start := time.Now()
	err := Do(context.Background(), policy, func(ctx context.Context) error {
		calls++
		if calls == 1 {
			return provider_errors.NewRateLimitError("openai", "rate limited", &retryAfterSeconds, nil)
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.GreaterOrEqual(t, time.Since(start), policy.BaseDelay)
}

func TestIsRetryableDefault(t *testing.T) {
	t.Parallel()

	assert.True(t, provider_errors.IsRetryable(provider_errors.New(provider_errors.KindRateLimit, "x", "y")))
	assert.False(t, provider_errors.IsRetryable(errors.New("plain error")))
}
