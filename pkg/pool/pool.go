package pool

import (
	"context"
	"sync"
)

// MapFunc processes an item and produces a value.
type MapFunc[T, R any] func(ctx context.Context, item T) (R, error)

// Result pairs an input item with the value or error its worker produced.
type Result[T, R any] struct {
	Item    T
	Value   R
	Err     error
	Skipped bool // never started because ctx was cancelled
}

// Map processes items concurrently with at most numWorkers goroutines and returns one
// Result per item, in input order. Items not started before ctx is cancelled are marked
// Skipped and carry ctx.Err().
// A non-positive numWorkers runs a single worker.
func Map[T, R any](ctx context.Context, items []T, numWorkers int, fn MapFunc[T, R]) []Result[T, R] {
	results := make([]Result[T, R], len(items))
	for i, item := range items {
		results[i].Item = item
	}
	if len(items) == 0 {
		return results
	}
	if numWorkers < 1 {
		numWorkers = 1
	}
	if numWorkers > len(items) {
		numWorkers = len(items)
	}

	var wg sync.WaitGroup
	indexes := make(chan int, numWorkers)

	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				if err := ctx.Err(); err != nil {
					results[i].Skipped, results[i].Err = true, err
					continue
				}
				results[i].Value, results[i].Err = fn(ctx, items[i])
			}
		}()
	}

	fed := 0
OUT:
	for ; fed < len(items); fed++ {
		select {
		case indexes <- fed:
		case <-ctx.Done():
			// Stop feeding tasks if the context is cancelled
			break OUT
		}
	}
	close(indexes)
	wg.Wait()

	for i := fed; i < len(results); i++ {
		results[i].Skipped, results[i].Err = true, ctx.Err()
	}
	return results
}
