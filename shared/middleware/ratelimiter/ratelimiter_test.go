package ratelimiter

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBucket_Allow(t *testing.T) {
	now := time.Now()

	t.Run("allows requests within the rate limit", func(t *testing.T) {
		b := &bucket{tokens: 10, capacity: 10, rate: 1, lastRefill: now}

		assert.True(t, b.allow(now))
		assert.Equal(t, 9.0, b.tokens)
	})

	t.Run("denies requests when tokens are depleted", func(t *testing.T) {
		b := &bucket{tokens: 0, capacity: 10, rate: 1, lastRefill: now}

		assert.False(t, b.allow(now))
	})

	t.Run("refills tokens over time", func(t *testing.T) {
		b := &bucket{tokens: 0, capacity: 10, rate: 1, lastRefill: now.Add(-2 * time.Second)}

		assert.True(t, b.allow(now))
		assert.InDelta(t, 1.0, b.tokens, 0.001)
	})

	t.Run("does not exceed capacity", func(t *testing.T) {
		b := &bucket{tokens: 9, capacity: 10, rate: 1, lastRefill: now.Add(-5 * time.Second)}

		b.allow(now)
		assert.Equal(t, 9.0, b.tokens)
	})
}

func TestKeyedRateLimiter(t *testing.T) {
	t.Run("keys are independent", func(t *testing.T) {
		l := New(0.001, 2, time.Hour)
		defer l.Stop()

		assert.True(t, l.Allow("10.0.0.1"))
		assert.True(t, l.Allow("10.0.0.1"))
		assert.False(t, l.Allow("10.0.0.1"))
		assert.True(t, l.Allow("10.0.0.2"))
	})

	t.Run("idle buckets expire", func(t *testing.T) {
		l := New(1, 1, 20*time.Millisecond)
		defer l.Stop()

		l.Allow("u-1")
		assert.Equal(t, 1, l.size())
		assert.Eventually(t, func() bool { return l.size() == 0 }, time.Second, 10*time.Millisecond)
	})

	t.Run("concurrent requests never exceed capacity", func(t *testing.T) {
		l := New(0.001, 10, time.Hour)
		defer l.Stop()

		var allowed int64
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if l.Allow("shared") {
					atomic.AddInt64(&allowed, 1)
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, int64(10), allowed)
	})
}
