package ratelimiter

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

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

func TestNewBucket(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  Config
		err  string
	}{
		{"valid", Config{Capacity: 10, RefillRate: 1, RefillInterval: time.Second}, ""},
		{"zero capacity", Config{RefillRate: 1, RefillInterval: time.Second}, "capacity must be positive"},
		{"zero refill rate", Config{Capacity: 10, RefillInterval: time.Second}, "refill rate must be positive"},
		{"zero interval", Config{Capacity: 10, RefillRate: 1}, "refill interval must be positive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			store := NewMemoryStore(WithCleanupInterval(0))
			b, err := NewBucket(store, tt.cfg)
			if tt.err == "" {
				require.NoError(t, err)
				assert.NotNil(t, b)
				return
			}
			require.ErrorIs(t, err, ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.err)
		})
	}
}

func TestBucket_AllowAndRefill(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	store := NewMemoryStore(WithCleanupInterval(0), WithClock(clock.Now))
	b, err := NewBucket(store, Config{Capacity: 3, RefillRate: 1, RefillInterval: time.Second})
	require.NoError(t, err)
	ctx := context.Background()

	for i := range 3 {
		res, err := b.Allow(ctx, "192.0.2.1")
		require.NoError(t, err)
		assert.True(t, res.Allowed(), "request %d", i)
		assert.Equal(t, 3, res.Limit)
		assert.Equal(t, 2-i, res.Remaining)
	}

	res, err := b.Allow(ctx, "192.0.2.1")
	require.NoError(t, err)
	assert.False(t, res.Allowed())
	assert.Equal(t, clock.Now().Add(time.Second), res.ResetAt)

	other, err := b.Allow(ctx, "192.0.2.2")
	require.NoError(t, err)
	assert.True(t, other.Allowed(), "keys have separate buckets")

	clock.Advance(2 * time.Second)
	res, err = b.Allow(ctx, "192.0.2.1")
	require.NoError(t, err)
	assert.True(t, res.Allowed())
	assert.Equal(t, 1, res.Remaining, "two tokens refilled onto an empty bucket")

	clock.Advance(time.Hour)
	res, err = b.Allow(ctx, "192.0.2.1")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Remaining, "refill is capped at capacity")
}

func TestBucket_DeniedRequestsDoNotDrainBucket(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	store := NewMemoryStore(WithCleanupInterval(0), WithClock(clock.Now))
	b, err := NewBucket(store, Config{Capacity: 10, RefillRate: 2, RefillInterval: time.Second})
	require.NoError(t, err)
	ctx := context.Background()

	allowed := 0
	for range 200 {
		res, err := b.Allow(ctx, "198.51.100.7")
		require.NoError(t, err)
		if res.Allowed() {
			allowed++
		} else {
			assert.Equal(t, -1, res.Remaining)
		}
	}
	assert.Equal(t, 10, allowed)

	clock.Advance(time.Second)
	res, err := b.Allow(ctx, "198.51.100.7")
	require.NoError(t, err)
	assert.True(t, res.Allowed(), "one refill period after a burst")
	assert.Equal(t, 1, res.Remaining)

	clock.Advance(30 * time.Minute)
	res, err = b.Allow(ctx, "198.51.100.7")
	require.NoError(t, err)
	assert.Equal(t, 9, res.Remaining, "long idle refills to capacity")
}

func TestBucket_AllowN(t *testing.T) {
	t.Parallel()

	b, err := NewBucket(NewMemoryStore(WithCleanupInterval(0)), Config{Capacity: 5, RefillRate: 1, RefillInterval: time.Minute})
	require.NoError(t, err)

	_, err = b.AllowN(context.Background(), "k", 0)
	assert.ErrorIs(t, err, ErrInvalidTokenCount)

	res, err := b.AllowN(context.Background(), "k", 6)
	require.NoError(t, err)
	assert.False(t, res.Allowed())
	assert.Positive(t, res.RetryAfter())
}

func TestResult_RetryAfter(t *testing.T) {
	t.Parallel()

	assert.Zero(t, Result{Remaining: 0, ResetAt: time.Now().Add(time.Minute)}.RetryAfter())
	assert.Zero(t, Result{Remaining: -1, ResetAt: time.Now().Add(-time.Minute)}.RetryAfter())
}

func TestMemoryStore_RemoveStale(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	store := NewMemoryStore(WithCleanupInterval(0), WithClock(clock.Now), WithStaleAfter(time.Minute))
	cfg := Config{Capacity: 1, RefillRate: 1, RefillInterval: time.Second}

	_, _, err := store.ConsumeTokens(context.Background(), "old", 1, cfg)
	require.NoError(t, err)
	clock.Advance(2 * time.Minute)
	_, _, err = store.ConsumeTokens(context.Background(), "fresh", 1, cfg)
	require.NoError(t, err)

	store.removeStale()
	assert.Equal(t, 1, store.Len())

	store.Close()
	store.Close()
}
