package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrCancelled is returned when the surrounding context is cancelled while
// waiting between attempts.
var ErrCancelled = errors.New("retry: operation cancelled")

// LimitError reports that the attempt budget was exhausted. Cause holds the
// error from the final attempt so callers can still match on it.
type LimitError struct {
	Attempts int
	Cause    error
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("retry: limit reached after %d attempts: %v", e.Attempts, e.Cause)
}

func (e *LimitError) Unwrap() error {
	return e.Cause
}

// Policy bounds a retried operation: at most MaxAttempts invocations with a
// fixed Delay between them. The delay is deliberately not randomized or
// exponential; the target failure mode is eventual-consistency lag that
// resolves within a small constant number of seconds.
type Policy struct {
	MaxAttempts int
	Delay       time.Duration
}

// Do invokes task until it succeeds or the policy's attempt budget runs out.
// On exhaustion the last error is returned wrapped in a *LimitError. The
// inter-attempt sleep observes ctx and aborts with ErrCancelled.
func Do[T any](ctx context.Context, policy Policy, task func(context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		result, err := task(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if attempt == policy.MaxAttempts {
			break
		}

		timer := time.NewTimer(policy.Delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, fmt.Errorf("%w: %w", ErrCancelled, ctx.Err())
		case <-timer.C:
		}
	}

	return zero, &LimitError{Attempts: policy.MaxAttempts, Cause: lastErr}
}
