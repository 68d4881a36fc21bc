package checkout

import (
	"context"
	"errors"
	"time"
)

// ErrPollExhausted is returned when the schedule runs out of attempts
// before the order appears. No order means no money moved; the caller
// surfaces "payment still processing" and stops.
var ErrPollExhausted = errors.New("poll budget exhausted")

// PollSchedule bounds how long a client keeps asking whether an order
// exists for a checkout session. The schedule is pure data: Start and
// Next walk it without touching a clock, so the progression is
// testable without timers.
type PollSchedule struct {
	InitialDelay time.Duration
	Multiplier   float64
	MaxDelay     time.Duration
	MaxAttempts  int
}

// DefaultPollSchedule covers roughly a minute: an immediate first try,
// then exponential waits capped at ten seconds.
func DefaultPollSchedule() PollSchedule {
	return PollSchedule{
		InitialDelay: time.Second,
		Multiplier:   2,
		MaxDelay:     10 * time.Second,
		MaxAttempts:  8,
	}
}

// PollState is one position in the schedule: the attempt about to run,
// the wait that precedes it, and whether the budget is spent.
type PollState struct {
	Attempt int
	Delay   time.Duration
	GaveUp  bool
}

// Start positions the state at the first attempt, which runs without a
// preceding wait.
func (s PollSchedule) Start() PollState {
	if s.MaxAttempts <= 0 {
		return PollState{GaveUp: true}
	}
	return PollState{Attempt: 1}
}

// Next advances to the following attempt, growing the wait by the
// multiplier and clamping it at MaxDelay. Past MaxAttempts the state is
// terminal.
func (s PollSchedule) Next(state PollState) PollState {
	if state.GaveUp || state.Attempt >= s.MaxAttempts {
		return PollState{Attempt: state.Attempt, GaveUp: true}
	}

	delay := state.Delay
	switch {
	case state.Attempt == 1:
		delay = s.InitialDelay
	case s.Multiplier > 1:
		delay = time.Duration(float64(delay) * s.Multiplier)
	}
	if s.MaxDelay > 0 && delay > s.MaxDelay {
		delay = s.MaxDelay
	}
	return PollState{Attempt: state.Attempt + 1, Delay: delay}
}

// PollFunc reports whether the awaited condition holds. Returning an
// error stops the poll immediately.
type PollFunc func(ctx context.Context, attempt int) (done bool, err error)

// Poller drives a PollFunc through a schedule. Sleep is injectable so
// the full loop runs in tests without real timers.
type Poller struct {
	Schedule PollSchedule
	Sleep    func(ctx context.Context, d time.Duration) error
}

// Run walks the schedule until fn reports done, fn errors, the context
// is cancelled, or the budget is exhausted.
func (p Poller) Run(ctx context.Context, fn PollFunc) error {
	schedule := p.Schedule
	if schedule.MaxAttempts <= 0 {
		schedule = DefaultPollSchedule()
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	for state := schedule.Start(); !state.GaveUp; state = schedule.Next(state) {
		if state.Delay > 0 {
			if err := sleep(ctx, state.Delay); err != nil {
				return err
			}
		}
		done, err := fn(ctx, state.Attempt)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
	return ErrPollExhausted
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
