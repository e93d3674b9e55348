package backoff

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math"
	"math/big"
	"time"
)

const maxShift = 62

// Exponential returns base * 2^attempt, saturating at math.MaxInt64.
// Negative attempts are treated as 0.
func Exponential(base time.Duration, attempt int) time.Duration {
	if base <= 0 {
		return 0
	}

	if attempt < 0 {
		attempt = 0
	} else if attempt > maxShift {
		attempt = maxShift
	}

	multiplier := int64(1 << attempt)

	baseInt := int64(base)
	if baseInt > math.MaxInt64/multiplier {
		return time.Duration(math.MaxInt64)
	}

	return time.Duration(baseInt * multiplier)
}

// FullJitter returns a random duration in [0, delay).
func FullJitter(delay time.Duration) time.Duration {
	if delay <= 0 {
		return 0
	}

	n, err := rand.Int(rand.Reader, big.NewInt(int64(delay)))
	if err != nil {
		return delay / 2
	}

	return time.Duration(n.Int64())
}

// ExponentialWithJitter returns a random duration in [0, base * 2^attempt).
func ExponentialWithJitter(base time.Duration, attempt int) time.Duration {
	return FullJitter(Exponential(base, attempt))
}

// SleepWithContext sleeps for duration unless ctx is done first.
func SleepWithContext(ctx context.Context, duration time.Duration) error {
	if duration <= 0 {
		return nil
	}

	timer := time.NewTimer(duration)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("context done: %w", ctx.Err())
	}
}

// Policy configures Retry.
type Policy struct {
	// Attempts is the total number of calls, including the first one.
	Attempts int
	// Base is the delay seed for the jittered exponential wait.
	Base time.Duration
	// Max caps a single wait. Zero means no cap.
	Max time.Duration
	// Retryable decides whether err is worth another attempt. Nil retries
	// every error except context cancellation.
	Retryable func(err error) bool
}

// DefaultPolicy is three attempts starting at 100ms, capped at 2s.
func DefaultPolicy() Policy {
	return Policy{Attempts: 3, Base: 100 * time.Millisecond, Max: 2 * time.Second}
}

// sleepFn is swapped in tests.
var sleepFn = SleepWithContext

// Retry calls fn until it succeeds, the policy is exhausted, the error is not
// retryable, or ctx is done. The last error from fn is returned.
func Retry(ctx context.Context, p Policy, fn func(ctx context.Context) error) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var err error

	for attempt := 0; attempt < attempts; attempt++ {
		if err = fn(ctx); err == nil {
			return nil
		}

		if !p.retryable(err) || attempt == attempts-1 {
			return err
		}

		delay := ExponentialWithJitter(p.Base, attempt)
		if p.Max > 0 && delay > p.Max {
			delay = p.Max
		}

		if sleepErr := sleepFn(ctx, delay); sleepErr != nil {
			return errors.Join(err, sleepErr)
		}
	}

	return err
}

func (p Policy) retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	if p.Retryable == nil {
		return true
	}

	return p.Retryable(err)
}
