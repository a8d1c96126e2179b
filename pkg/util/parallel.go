package util

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Parallel calls fn for every input with at most workerLimit calls in flight.
// The first error cancels the context handed to the remaining calls and is
// returned after all of them finish. A cancelled parent context stops
// scheduling and its error is returned.
func Parallel[T any](ctx context.Context, inputs []T, workerLimit int, fn func(context.Context, T) error) error {
	if len(inputs) == 0 {
		return nil
	}
	if workerLimit <= 0 {
		workerLimit = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workerLimit)
	for _, in := range inputs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error { return fn(gctx, in) })
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
