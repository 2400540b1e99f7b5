package chain

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	walleterr "github.com/web3twenty/3twenty-wallet/pkg/errors"
)

// Sentinel errors for retry logic.
var (
	ErrRetryable = &walleterr.WalletError{
		Code:     "RETRYABLE_ERROR",
		Message:  "retryable error",
		ExitCode: walleterr.ExitGeneral,
	}

	ErrRateLimited = &walleterr.WalletError{
		Code:     "RATE_LIMITED",
		Message:  "rate limited",
		ExitCode: walleterr.ExitGeneral,
	}
)

// RetryPolicy configures retry behavior. One policy value is shared by every
// call site that talks to the same upstream, so backoff tuning lives in one
// place.
type RetryPolicy struct {
	MaxAttempts     int           // Maximum number of attempts (including initial)
	BaseDelay       time.Duration // Initial delay between retries
	MaxDelay        time.Duration // Maximum delay between retries
	RateLimitFactor int           // Extra delay multiplier applied per attempt after a rate-limit response
}

// DefaultRetryPolicy returns the default retry policy.
// 3 attempts total with delays 500ms, 1s; rate-limited attempts wait
// attempt*BaseDelay*RateLimitFactor instead.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:     3,
		BaseDelay:       500 * time.Millisecond,
		MaxDelay:        4 * time.Second,
		RateLimitFactor: 4,
	}
}

// Do executes the operation under the policy. Rate-limited errors wait longer
// than other retryable errors, scaling with the attempt number.
func Do[T any](ctx context.Context, p RetryPolicy, operation func() (T, error)) (T, error) {
	var result T
	var err error

	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		result, err = operation()
		if err == nil {
			return result, nil
		}

		if !IsRetryable(err) {
			return result, err
		}

		// Don't delay after the last attempt
		if attempt < p.MaxAttempts-1 {
			delay := p.delay(attempt, err)

			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return result, ctx.Err()
			case <-timer.C:
			}
		}
	}

	return result, fmt.Errorf("operation failed after %d attempts: %w", p.MaxAttempts, err)
}

// delay calculates the wait before the next attempt.
func (p RetryPolicy) delay(attempt int, err error) time.Duration {
	if errors.Is(err, ErrRateLimited) {
		// Rate limiting means the upstream wants us to slow down well past
		// the normal backoff curve.
		d := time.Duration(attempt+1) * p.BaseDelay * time.Duration(p.RateLimitFactor)
		if d > p.MaxDelay {
			d = p.MaxDelay
		}
		return d
	}

	delay := p.BaseDelay * (1 << attempt) // 2^attempt * BaseDelay
	if delay > p.MaxDelay {
		delay = p.MaxDelay
	}
	// Add jitter: random duration in [delay/2, delay).
	half := delay / 2
	if half <= 0 {
		return delay
	}
	return half + rand.N(half) //nolint:gosec // G404: Jitter does not require cryptographic randomness
}

// IsRetryable returns true if the error should trigger a retry.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrRetryable) ||
		errors.Is(err, ErrRateLimited) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	return false
}

// WrapRetryable wraps an error to mark it as retryable.
func WrapRetryable(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrRetryable, err)
}

// WrapRateLimited wraps an error to mark it as a rate-limit response.
func WrapRateLimited(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrRateLimited, err)
}
