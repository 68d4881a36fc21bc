package checkout

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestPollScheduleProgression(t *testing.T) {
	t.Parallel()

	schedule := DefaultPollSchedule()
	wantDelays := []time.Duration{
		0,
		time.Second,
		2 * time.Second,
		4 * time.Second,
		8 * time.Second,
		10 * time.Second,
		10 * time.Second,
		10 * time.Second,
	}

	state := schedule.Start()
	for i, want := range wantDelays {
		if state.GaveUp {
			t.Fatalf("gave up at attempt %d, want %d attempts", i, len(wantDelays))
		}
		if state.Attempt != i+1 {
			t.Fatalf("attempt = %d, want %d", state.Attempt, i+1)
		}
		if state.Delay != want {
			t.Fatalf("attempt %d delay = %s, want %s", state.Attempt, state.Delay, want)
		}
		state = schedule.Next(state)
	}
	if !state.GaveUp {
		t.Fatalf("expected terminal state after %d attempts", len(wantDelays))
	}
}

func TestPollScheduleZeroAttemptsIsTerminal(t *testing.T) {
	t.Parallel()

	state := PollSchedule{}.Start()
	if !state.GaveUp {
		t.Fatal("empty schedule should start terminal")
	}
}

func TestPollerExhaustsBudget(t *testing.T) {
	t.Parallel()

	var slept []time.Duration
	poller := Poller{
		Schedule: DefaultPollSchedule(),
		Sleep: func(ctx context.Context, d time.Duration) error {
			slept = append(slept, d)
			return nil
		},
	}

	calls := 0
	err := poller.Run(context.Background(), func(ctx context.Context, attempt int) (bool, error) {
		calls++
		return false, nil
	})
	if !errors.Is(err, ErrPollExhausted) {
		t.Fatalf("err = %v, want ErrPollExhausted", err)
	}
	if calls != 8 {
		t.Fatalf("calls = %d, want 8", calls)
	}
	// No sleep before the first attempt.
	if len(slept) != 7 {
		t.Fatalf("sleeps = %d, want 7", len(slept))
	}
}

func TestPollerStopsWhenDone(t *testing.T) {
	t.Parallel()

	poller := Poller{
		Sleep: func(ctx context.Context, d time.Duration) error { return nil },
	}

	calls := 0
	err := poller.Run(context.Background(), func(ctx context.Context, attempt int) (bool, error) {
		calls++
		return attempt == 3, nil
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
}

func TestPollerPropagatesError(t *testing.T) {
	t.Parallel()

	poller := Poller{
		Sleep: func(ctx context.Context, d time.Duration) error { return nil },
	}

	wantErr := fmt.Errorf("session lookup failed")
	err := poller.Run(context.Background(), func(ctx context.Context, attempt int) (bool, error) {
		return false, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want %v", err, wantErr)
	}
}

func TestPollerStopsOnCancelledSleep(t *testing.T) {
	t.Parallel()

	poller := Poller{
		Sleep: func(ctx context.Context, d time.Duration) error {
			return context.Canceled
		},
	}

	calls := 0
	err := poller.Run(context.Background(), func(ctx context.Context, attempt int) (bool, error) {
		calls++
		return false, nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1 (cancelled before second attempt)", calls)
	}
}
