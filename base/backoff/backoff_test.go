package backoff

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNext(t *testing.T) {
	tests := []struct {
		name    string
		backoff *Backoff
		waits   int
		want    time.Duration
	}{
		{"exponential first", NewExponential(time.Second, time.Minute), 0, time.Second},
		{"exponential third", NewExponential(time.Second, time.Minute), 2, 4 * time.Second},
		{"exponential capped", NewExponential(time.Second, time.Minute), 10, time.Minute},
		{"exponential uncapped", NewExponential(time.Second, 0), 10, 1024 * time.Second},
		{"linear", NewLinear(time.Second, time.Minute), 2, 3 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.backoff.count = tt.waits
			require.Equal(t, tt.want, tt.backoff.Next())
		})
	}
}

func TestWait(t *testing.T) {
	b := NewExponential(time.Millisecond, 4*time.Millisecond)
	for i := 0; i < 4; i++ {
		require.NoError(t, b.Wait(context.Background()))
	}
	require.Equal(t, 4, b.Count())
	require.Equal(t, 4*time.Millisecond, b.Next())

	b.Reset()
	require.Equal(t, 0, b.Count())
	require.Equal(t, time.Millisecond, b.Next())
}

func TestWaitCancelled(t *testing.T) {
	b := NewExponential(time.Hour, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, b.Wait(ctx), context.Canceled)
	require.Equal(t, 0, b.Count())
}
