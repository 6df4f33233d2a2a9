package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPerMinute(t *testing.T) {
	assert.IsType(t, Unlimited{}, PerMinute(0))
	assert.IsType(t, Unlimited{}, PerMinute(-3))
	assert.IsType(t, &SlidingWindow{}, PerMinute(30))
}

func TestUnlimited(t *testing.T) {
	var l Unlimited
	for i := 0; i < 100; i++ {
		assert.NoError(t, l.Wait(context.Background()))
	}
	assert.NoError(t, l.Wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, l.Wait(ctx), context.Canceled)
}

func TestSlidingWindow(t *testing.T) {
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	sw := NewSlidingWindow(3, time.Second)
	sw.now = func() time.Time { return clock }

	for i := 0; i < 3; i++ {
		ok, _ := sw.reserve()
		assert.True(t, ok, "request %d", i+1)
	}
	ok, delay := sw.reserve()
	assert.False(t, ok)
	assert.Equal(t, time.Second, delay)

	clock = clock.Add(500 * time.Millisecond)
	ok, delay = sw.reserve()
	assert.False(t, ok)
	assert.Equal(t, 500*time.Millisecond, delay)

	clock = clock.Add(600 * time.Millisecond)
	ok, _ = sw.reserve()
	assert.True(t, ok)
	assert.Len(t, sw.requests, 1)
}

func TestSlidingWindowWait(t *testing.T) {
	sw := NewSlidingWindow(1, 50*time.Millisecond)
	require.NoError(t, sw.Wait(context.Background()))

	start := time.Now()
	require.NoError(t, sw.Wait(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestSlidingWindowWaitCancelled(t *testing.T) {
	sw := NewSlidingWindow(1, time.Hour)
	require.NoError(t, sw.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, sw.Wait(ctx), context.DeadlineExceeded)
}
