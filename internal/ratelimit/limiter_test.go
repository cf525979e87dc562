package ratelimit

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(t time.Time) *fakeClock { return &fakeClock{now: t} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type failingCounter struct{}

func (failingCounter) Incr(context.Context, string, time.Duration) (int64, error) {
	return 0, errors.New("connection refused")
}

func mustLimiter(t *testing.T, counter Counter, r Rate, opts ...Option) *Limiter {
	t.Helper()
	l, err := NewLimiter(counter, r, opts...)
	require.NoError(t, err)
	return l
}

func newTestLimiter(t *testing.T, clock *fakeClock, r Rate, opts ...Option) *Limiter {
	counter := NewMemoryCounter(WithMemoryClock(clock.Now))
	opts = append([]Option{WithClock(clock.Now)}, opts...)
	return mustLimiter(t, counter, r, opts...)
}

func TestLimiter_AdmitsFirstNThenRejects(t *testing.T) {
	clock := newFakeClock(time.Date(2024, 3, 1, 10, 5, 0, 0, time.UTC))
	l := newTestLimiter(t, clock, Rate{Limit: 3, Period: time.Hour})
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		d := l.Check(ctx, "10.0.0.1")
		require.True(t, d.Allowed, "attempt %d", i)
		assert.Equal(t, int64(i), d.Count)
		assert.Equal(t, 3-i, d.Remaining)
	}

	d := l.Check(ctx, "10.0.0.1")
	assert.False(t, d.Allowed)
	assert.Equal(t, int64(4), d.Count)
	assert.Equal(t, 0, d.Remaining)
	assert.Equal(t, time.Date(2024, 3, 1, 11, 0, 0, 0, time.UTC), d.ResetAt.UTC())
	assert.Equal(t, 55*time.Minute, d.RetryAfter)
}

func TestLimiter_KeysAreIndependent(t *testing.T) {
	clock := newFakeClock(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC))
	l := newTestLimiter(t, clock, Rate{Limit: 1, Period: time.Hour})
	ctx := context.Background()

	assert.True(t, l.Check(ctx, "a").Allowed)
	assert.False(t, l.Check(ctx, "a").Allowed)
	assert.True(t, l.Check(ctx, "b").Allowed)
}

func TestLimiter_WindowRolloverResets(t *testing.T) {
	clock := newFakeClock(time.Date(2024, 3, 1, 10, 59, 0, 0, time.UTC))
	l := newTestLimiter(t, clock, Rate{Limit: 2, Period: time.Hour})
	ctx := context.Background()

	assert.True(t, l.Check(ctx, "k").Allowed)
	assert.True(t, l.Check(ctx, "k").Allowed)
	assert.False(t, l.Check(ctx, "k").Allowed)

	clock.Advance(time.Minute)

	d := l.Check(ctx, "k")
	assert.True(t, d.Allowed)
	assert.Equal(t, int64(1), d.Count)
	assert.True(t, l.Check(ctx, "k").Allowed)
	assert.False(t, l.Check(ctx, "k").Allowed)
}

func TestLimiter_ConcurrentCallsAdmitExactlyLimit(t *testing.T) {
	l := mustLimiter(t, NewMemoryCounter(), Rate{Limit: 50, Period: time.Hour})
	ctx := context.Background()

	var allowed atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Check(ctx, "shared").Allowed {
				allowed.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(50), allowed.Load())
}

func TestLimiter_FailOpen(t *testing.T) {
	logger, hook := test.NewNullLogger()
	l := mustLimiter(t, failingCounter{}, Rate{Limit: 1, Period: time.Hour},
		WithFailOpen(true), WithLogger(logger))

	d := l.Check(context.Background(), "k")
	assert.True(t, d.Allowed)
	assert.Error(t, d.Err)

	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, true, hook.LastEntry().Data["fail_open"])
}

func TestLimiter_FailClosed(t *testing.T) {
	logger, _ := test.NewNullLogger()
	l := mustLimiter(t, failingCounter{}, Rate{Limit: 1, Period: time.Hour},
		WithFailOpen(false), WithLogger(logger))

	d := l.Check(context.Background(), "k")
	assert.False(t, d.Allowed)
	assert.Error(t, d.Err)
	assert.False(t, l.FailOpen())
}

func TestNewLimiter_RejectsUnusableRate(t *testing.T) {
	cases := []Rate{
		{Limit: 10, Period: 0},
		{Limit: 0, Period: time.Hour},
		{Limit: -1, Period: time.Hour},
		{Limit: 1, Period: -time.Second},
	}
	for _, r := range cases {
		l, err := NewLimiter(NewMemoryCounter(), r)
		assert.ErrorIs(t, err, ErrInvalidRate, "%+v", r)
		assert.Nil(t, l)
	}
}

func TestMemoryCounter_SweepDropsExpired(t *testing.T) {
	clock := newFakeClock(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC))
	c := NewMemoryCounter(WithMemoryClock(clock.Now))
	ctx := context.Background()

	_, _ = c.Incr(ctx, "a", time.Minute)
	_, _ = c.Incr(ctx, "b", time.Hour)
	assert.Equal(t, 2, c.Len())

	clock.Advance(2 * time.Minute)
	c.Sweep()
	assert.Equal(t, 1, c.Len())

	n, err := c.Incr(ctx, "a", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
