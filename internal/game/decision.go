package game

import (
	"context"
	"time"
)

// Outcome tags how a wait for player input ended.
type Outcome int

const (
	Chosen Outcome = iota
	TimedOut
	Cancelled
)

func (o Outcome) String() string {
	switch o {
	case Chosen:
		return "chosen"
	case TimedOut:
		return "timed_out"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Decision is the result of waiting for a participant; Value is only meaningful
// when Outcome is Chosen.
type Decision[T any] struct {
	Outcome Outcome
	Value   T
}

// Await waits for the first value on ch, the deadline, or ctx cancellation.
// A value that is already available when the timer fires wins over the timeout.
// A closed channel is treated as Cancelled.
func Await[T any](ctx context.Context, timeout time.Duration, ch <-chan T) Decision[T] {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case v, ok := <-ch:
		return received(v, ok)
	case <-ctx.Done():
		return Decision[T]{Outcome: Cancelled}
	case <-timer.C:
		select {
		case v, ok := <-ch:
			return received(v, ok)
		default:
			return Decision[T]{Outcome: TimedOut}
		}
	}
}

// AwaitUntil is Await with an absolute deadline.
func AwaitUntil[T any](ctx context.Context, deadline time.Time, ch <-chan T) Decision[T] {
	return Await(ctx, time.Until(deadline), ch)
}

func received[T any](v T, ok bool) Decision[T] {
	if !ok {
		return Decision[T]{Outcome: Cancelled}
	}
	return Decision[T]{Outcome: Chosen, Value: v}
}
