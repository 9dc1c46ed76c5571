package worker

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestRun_PreservesOrder(t *testing.T) {
	pool := NewPool(3, 0, func(ctx context.Context, n int) string {
		// later inputs finish first
		time.Sleep(time.Duration(10-n) * time.Millisecond)
		return fmt.Sprintf("out-%d", n)
	})

	inputs := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	out := pool.Run(context.Background(), inputs)

	require.Len(t, out, len(inputs))
	for i, v := range out {
		assert.Equal(t, fmt.Sprintf("out-%d", i), v)
	}
}

func TestRun_BoundsConcurrency(t *testing.T) {
	var inFlight, peak atomic.Int32
	pool := NewPool(2, time.Millisecond, func(ctx context.Context, n int) int {
		cur := inFlight.Add(1)
		for {
			old := peak.Load()
			if cur <= old || peak.CompareAndSwap(old, cur) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		inFlight.Add(-1)
		return n * n
	})

	out := pool.Run(context.Background(), []int{1, 2, 3, 4, 5, 6})

	assert.Equal(t, []int{1, 4, 9, 16, 25, 36}, out)
	assert.LessOrEqual(t, peak.Load(), int32(2))
	assert.Equal(t, int32(0), inFlight.Load())
}

func TestRun_PacingHoldsSlot(t *testing.T) {
	pool := NewPool(1, 20*time.Millisecond, func(ctx context.Context, n int) int { return n })

	start := time.Now()
	pool.Run(context.Background(), []int{1, 2, 3})

	// a single slot pays the pacing delay after every call
	assert.GreaterOrEqual(t, time.Since(start), 60*time.Millisecond)
}

func TestRun_Empty(t *testing.T) {
	pool := NewPool(2, 0, func(ctx context.Context, n int) int { return n })
	assert.Empty(t, pool.Run(context.Background(), nil))
}

func TestRun_LimiterError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var ran atomic.Int32
	pool := NewPool(2, 0, func(ctx context.Context, n int) string {
		ran.Add(1)
		return "ran"
	})
	pool.Limiter = rate.NewLimiter(rate.Every(time.Hour), 1)
	pool.OnLimiterError = func(n int, err error) string { return "limited" }

	out := pool.Run(ctx, []int{1, 2, 3})

	assert.Equal(t, []string{"limited", "limited", "limited"}, out)
	assert.Equal(t, int32(0), ran.Load())
}

func TestLimiterPerMinute(t *testing.T) {
	assert.Nil(t, LimiterPerMinute(0))
	l := LimiterPerMinute(60)
	require.NotNil(t, l)
	assert.Equal(t, rate.Limit(1), l.Limit())
}
