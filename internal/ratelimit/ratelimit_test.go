package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTokenBucket_BurstThenBlocks(t *testing.T) {
	t.Parallel()

	// Arrange: one token per hour with a burst of two.
	tb := NewTokenBucket(1.0/3600, 2)

	// Act + Assert: the burst is served immediately.
	require.NoError(t, tb.Wait(t.Context()))
	require.NoError(t, tb.Wait(t.Context()))

	// Assert: the third call waits and honours cancellation.
	ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, tb.Wait(ctx), context.DeadlineExceeded)
}

func TestTokenBucket_NilNeverBlocks(t *testing.T) {
	t.Parallel()

	var tb *TokenBucket
	require.NoError(t, tb.Wait(t.Context()))
}

func TestMinInterval_WaitsAfterMark(t *testing.T) {
	t.Parallel()

	m := &MinInterval{Interval: time.Hour}

	// Assert: nothing marked yet, no wait.
	require.NoError(t, m.Wait(t.Context()))

	m.Mark()

	ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, m.Wait(ctx), context.DeadlineExceeded)
}

func TestMinInterval_ShortIntervalElapses(t *testing.T) {
	t.Parallel()

	m := &MinInterval{Interval: 10 * time.Millisecond}
	m.Mark()

	start := time.Now()
	require.NoError(t, m.Wait(t.Context()))
	require.GreaterOrEqual(t, time.Since(start), 5*time.Millisecond)
}

func TestMinInterval_MarkAtKeepsLatest(t *testing.T) {
	t.Parallel()

	m := &MinInterval{Interval: time.Minute}
	m.MarkAt(time.Now().Add(-2 * time.Minute))
	m.MarkAt(time.Now().Add(-10 * time.Minute))

	// Assert: the older mark does not move the gate backwards; both are outside the interval.
	require.NoError(t, m.Wait(t.Context()))
}
