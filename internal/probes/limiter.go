package probes

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Limiter runs independent tasks with at most width of them in flight.
type Limiter struct {
	width int
}

// NewLimiter creates a limiter. Width below one is treated as one.
func NewLimiter(width int) *Limiter {
	if width < 1 {
		width = 1
	}
	return &Limiter{width: width}
}

// Width returns the maximum number of concurrent tasks.
func (l *Limiter) Width() int {
	return l.width
}

// RunAll applies fn to every item and returns the results in input order.
// fn must not fail; per-item errors belong in R. Items not yet started when
// ctx is cancelled are skipped and keep their zero value.
func RunAll[T, R any](ctx context.Context, l *Limiter, items []T, fn func(context.Context, T) R) []R {
	results := make([]R, len(items))

	g := new(errgroup.Group)
	g.SetLimit(l.width)
	for i, item := range items {
		if ctx.Err() != nil {
			break
		}
		i, item := i, item
		g.Go(func() error {
			results[i] = fn(ctx, item)
			return nil
		})
	}
	g.Wait()

	return results
}
