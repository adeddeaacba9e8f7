package janitor

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"
)

type fakePurger struct {
	purge func(ctx context.Context, now time.Time) (int, error)
}

func (f *fakePurger) PurgeExpiredTokens(ctx context.Context, now time.Time) (int, error) {
	return f.purge(ctx, now)
}

func TestRunCycle_PurgesWithCurrentTime(t *testing.T) {
	var captured time.Time
	j := New(&fakePurger{
		purge: func(_ context.Context, now time.Time) (int, error) {
			captured = now
			return 3, nil
		},
	}, slog.Default(), "*/10 * * * *")

	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	j.now = func() time.Time { return fixed }

	j.runCycle(context.Background())

	if !captured.Equal(fixed) {
		t.Errorf("purge called with %v, want %v", captured, fixed)
	}
}

func TestRunCycle_PurgeError_DoesNotPanic(t *testing.T) {
	j := New(&fakePurger{
		purge: func(_ context.Context, _ time.Time) (int, error) {
			return 0, errors.New("db down")
		},
	}, slog.Default(), "*/10 * * * *")

	j.runCycle(context.Background())
}

func TestStart_RejectsBadSchedule(t *testing.T) {
	j := New(&fakePurger{}, slog.Default(), "not a schedule")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := j.Start(ctx); err == nil {
		t.Error("expected error for malformed schedule")
	}
}
