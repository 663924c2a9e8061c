// Package concurrency provides bounded fan-out over independent work items.
package concurrency

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// ForEach calls fn for every index in [0, n) with at most limit calls in
// flight. The first error cancels the context passed to remaining calls and
// is returned once all started calls finish.
func ForEach(ctx context.Context, n, limit int, fn func(ctx context.Context, i int) error) error {
	if n == 0 {
		return nil
	}
	if limit <= 0 {
		limit = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			return fn(gctx, i)
		})
	}
	return g.Wait()
}

// Map applies fn to every element of in with bounded concurrency and returns
// the results in input order. fn must not fail; use ForEach for fallible work.
func Map[T, R any](ctx context.Context, in []T, limit int, fn func(ctx context.Context, v T) R) []R {
	out := make([]R, len(in))
	_ = ForEach(ctx, len(in), limit, func(ctx context.Context, i int) error {
		out[i] = fn(ctx, in[i])
		return nil
	})
	return out
}
