package backoff

import (
	"context"
	"math"
	"time"
)

// Strategy returns the wait before attempt n+1, n counting the waits already done
type Strategy func(n int, start time.Duration) time.Duration

func Exponential(n int, start time.Duration) time.Duration {
	return time.Duration(math.Pow(2, float64(n))) * start
}

func Linear(n int, start time.Duration) time.Duration {
	return time.Duration(n+1) * start
}

// Backoff is not safe for concurrent use
type Backoff struct {
	strategy Strategy
	start    time.Duration
	limit    time.Duration
	count    int
}

// NewBackoff caps every wait at limit, a limit <= 0 means uncapped
func NewBackoff(strategy Strategy, start, limit time.Duration) *Backoff {
	return &Backoff{strategy: strategy, start: start, limit: limit}
}

func NewExponential(start, limit time.Duration) *Backoff {
	return NewBackoff(Exponential, start, limit)
}

func NewLinear(start, limit time.Duration) *Backoff {
	return NewBackoff(Linear, start, limit)
}

func (b *Backoff) Reset() {
	b.count = 0
}

// Count is the number of completed waits since the last Reset
func (b *Backoff) Count() int {
	return b.count
}

func (b *Backoff) Next() time.Duration {
	d := b.strategy(b.count, b.start)
	if b.limit > 0 && (d > b.limit || d < 0) {
		d = b.limit
	}
	return d
}

// Wait sleeps for Next, it returns early with the ctx error when ctx is done first
func (b *Backoff) Wait(ctx context.Context) error {
	timer := time.NewTimer(b.Next())
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		b.count++
		return nil
	}
}
