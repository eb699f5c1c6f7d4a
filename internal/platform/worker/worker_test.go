package worker

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestLoop_StopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	cfg := Config{
		Name:         "test",
		PollInterval: time.Millisecond,
		Process: func(ctx context.Context) error {
			calls++
			if calls >= 3 {
				cancel()
			}

			return nil
		},
	}

	err := Loop(ctx, cfg)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Loop() error = %v, want context.Canceled", err)
	}

	if calls < 3 {
		t.Errorf("process calls = %d, want >= 3", calls)
	}
}

func TestLoop_OnErrorStops(t *testing.T) {
	boom := errors.New("boom")

	cfg := Config{
		Name:         "test",
		PollInterval: time.Millisecond,
		Process: func(ctx context.Context) error {
			return boom
		},
		OnError: func(err error) bool {
			return false
		},
	}

	err := Loop(context.Background(), cfg)
	if !errors.Is(err, boom) {
		t.Fatalf("Loop() error = %v, want boom", err)
	}
}

func TestWait_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := Wait(ctx, time.Minute); !errors.Is(err, context.Canceled) {
		t.Fatalf("Wait() error = %v, want context.Canceled", err)
	}
}

func TestWait_ZeroDuration(t *testing.T) {
	if err := Wait(context.Background(), 0); err != nil {
		t.Fatalf("Wait(0) error = %v, want nil", err)
	}
}
