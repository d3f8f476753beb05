package probes

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunAllPreservesOrderAndWidth(t *testing.T) {
	items := make([]int, 40)
	for i := range items {
		items[i] = i
	}

	var inFlight, peak atomic.Int32
	l := NewLimiter(5)
	results := RunAll(context.Background(), l, items, func(ctx context.Context, n int) int {
		cur := inFlight.Add(1)
		for {
			old := peak.Load()
			if cur <= old || peak.CompareAndSwap(old, cur) {
				break
			}
		}
		time.Sleep(2 * time.Millisecond)
		inFlight.Add(-1)
		return n * n
	})

	require.Len(t, results, len(items))
	for i, r := range results {
		assert.Equal(t, i*i, r)
	}
	assert.LessOrEqual(t, peak.Load(), int32(5))
	assert.Equal(t, 5, l.Width())
}

func TestRunAllSkipsAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls atomic.Int32
	results := RunAll(ctx, NewLimiter(2), []string{"a", "b", "c"}, func(ctx context.Context, s string) string {
		calls.Add(1)
		return s
	})

	assert.Equal(t, []string{"", "", ""}, results)
	assert.Zero(t, calls.Load())
}

func TestNewLimiterMinimumWidth(t *testing.T) {
	assert.Equal(t, 1, NewLimiter(0).Width())
	assert.Equal(t, 1, NewLimiter(-3).Width())
}
