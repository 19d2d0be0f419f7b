package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestDoSucceedsFirstAttempt(t *testing.T) {
	calls := 0
	result, err := Do(context.Background(), Policy{MaxAttempts: 3, Delay: time.Millisecond}, func(context.Context) (string, error) {
		calls++
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if result != "ok" {
		t.Errorf("result = %q, want %q", result, "ok")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestDoSucceedsAfterFailures(t *testing.T) {
	calls := 0
	result, err := Do(context.Background(), Policy{MaxAttempts: 3, Delay: time.Millisecond}, func(context.Context) (int, error) {
		calls++
		if calls < 3 {
			return 0, errors.New("transient")
		}
		return 42, nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if result != 42 {
		t.Errorf("result = %d, want 42", result)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestDoExhaustionWrapsLastError(t *testing.T) {
	cause := errors.New("still broken")
	calls := 0
	_, err := Do(context.Background(), Policy{MaxAttempts: 3, Delay: time.Millisecond}, func(context.Context) (string, error) {
		calls++
		return "", cause
	})
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
	var limitErr *LimitError
	if !errors.As(err, &limitErr) {
		t.Fatalf("error = %v, want *LimitError", err)
	}
	if limitErr.Attempts != 3 {
		t.Errorf("Attempts = %d, want 3", limitErr.Attempts)
	}
	if !errors.Is(err, cause) {
		t.Errorf("cause not preserved through Unwrap: %v", err)
	}
}

func TestDoObservesCancellationDuringDelay(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0

	done := make(chan error, 1)
	go func() {
		_, err := Do(ctx, Policy{MaxAttempts: 5, Delay: 10 * time.Second}, func(context.Context) (string, error) {
			calls++
			return "", errors.New("transient")
		})
		done <- err
	}()

	// Give the first attempt time to fail and enter the sleep.
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, ErrCancelled) {
			t.Errorf("error = %v, want ErrCancelled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Do did not abort promptly after cancellation")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}
