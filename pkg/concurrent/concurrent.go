package concurrent

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Map applies fn to every element of in with at most workers goroutines and
// returns the results in input order. fn never fails; per-element failures
// belong in R. Map returns ctx's error if ctx is cancelled before every
// element was scheduled.
func Map[T any, R any](ctx context.Context, in []T, workers int, fn func(context.Context, T) R) ([]R, error) {
	out := make([]R, len(in))
	if len(in) == 0 {
		return out, ctx.Err()
	}
	if workers <= 0 {
		workers = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, v := range in {
		if err := gctx.Err(); err != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = fn(gctx, v)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ForEach runs fn for every element with at most workers goroutines and
// returns the first error. Remaining work is cancelled through ctx.
func ForEach[T any](ctx context.Context, in []T, workers int, fn func(context.Context, T) error) error {
	if workers <= 0 {
		workers = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, v := range in {
		g.Go(func() error {
			return fn(gctx, v)
		})
	}
	return g.Wait()
}
