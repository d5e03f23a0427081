package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/avast/retry-go/v4"
)

func TestDo_SucceedsAfterFailures(t *testing.T) {
	rc := &RetryConfig{Attempts: 5, Delay: time.Millisecond, MaxDelay: 5 * time.Millisecond}

	calls := 0
	err := Do(context.Background(), rc, func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("not yet")
		}
		return nil
	})

	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestDo_ReturnsLastError(t *testing.T) {
	rc := &RetryConfig{Attempts: 2, Delay: time.Millisecond, MaxDelay: time.Millisecond}

	calls := 0
	err := Do(context.Background(), rc, func(ctx context.Context) error {
		calls++
		return errors.New("down")
	})

	if err == nil || err.Error() != "down" {
		t.Fatalf("expected last error, got %v", err)
	}
	if calls != 2 {
		t.Errorf("expected 2 calls, got %d", calls)
	}
}

func TestDo_UnrecoverableStops(t *testing.T) {
	rc := DefaultRetryConfig()

	calls := 0
	err := Do(context.Background(), rc, func(ctx context.Context) error {
		calls++
		return retry.Unrecoverable(errors.New("fatal"))
	})

	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("unrecoverable error should stop retries, got %d calls", calls)
	}
}
