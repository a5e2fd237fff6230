package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"bighome_hub/platform/logger"
)

func TestDoSucceedsAfterFailures(t *testing.T) {
	p := Policy{Attempts: 3, BaseDelay: time.Millisecond}
	calls := 0

	err := p.Do(context.Background(), logger.Discard(), "database connection", func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("connection refused")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestDoWrapsLastError(t *testing.T) {
	p := Policy{Attempts: 2, BaseDelay: time.Millisecond}
	cause := errors.New("no route to host")

	err := p.Do(context.Background(), logger.Discard(), "redis connection", func(context.Context) error {
		return cause
	})
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
	if err.Error() != "redis connection: no route to host" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestDoStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0

	err := Startup.Do(ctx, logger.Discard(), "database migrations", func(context.Context) error {
		calls++
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 0 {
		t.Fatalf("expected no calls, got %d", calls)
	}
}

func TestDoRejectsZeroAttempts(t *testing.T) {
	if err := (Policy{}).Do(context.Background(), logger.Discard(), "x", func(context.Context) error { return nil }); err == nil {
		t.Fatal("expected error for zero attempts")
	}
}
