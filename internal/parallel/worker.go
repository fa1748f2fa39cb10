// Package parallel runs independent jobs on a bounded number of goroutines.
//
// Each job runs start to finish on one goroutine; the pool only decides how
// many run at once. Loads of several files use it so that every file is
// still read sequentially while separate files overlap.
package parallel

import (
	"context"
	"runtime"
	"sync"
)

// WorkerPool bounds the number of jobs running at the same time.
type WorkerPool struct {
	numWorkers int
	ctx        context.Context
	cancel     context.CancelFunc
}

// NewWorkerPool creates a pool of numWorkers goroutines. Non-positive
// values use runtime.GOMAXPROCS(0).
func NewWorkerPool(numWorkers int) *WorkerPool {
	return NewWorkerPoolContext(context.Background(), numWorkers)
}

// NewWorkerPoolContext creates a pool that stops handing out jobs once ctx
// is done.
func NewWorkerPoolContext(ctx context.Context, numWorkers int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}
	ctx, cancel := context.WithCancel(ctx)
	return &WorkerPool{
		numWorkers: numWorkers,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Workers returns the maximum number of concurrent jobs.
func (wp *WorkerPool) Workers() int {
	return wp.numWorkers
}

// Close stops the pool. Jobs already running finish; queued ones are skipped.
func (wp *WorkerPool) Close() {
	wp.cancel()
}

// ProcessIndexed calls worker for every item and returns the results in
// input order. If the pool is closed or its context ends before every item
// was started, the skipped slots keep their zero value and the context
// error is returned alongside the partial results.
func ProcessIndexed[T, R any](
	wp *WorkerPool,
	items []T,
	worker func(int, T) R,
) ([]R, error) {
	if len(items) == 0 {
		return nil, nil
	}

	results := make([]R, len(items))
	workers := min(wp.numWorkers, len(items))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				// Each goroutine owns distinct slots.
				results[i] = worker(i, items[i])
			}
		}()
	}

	var err error
dispatch:
	for i := range items {
		if err = wp.ctx.Err(); err != nil {
			break
		}
		select {
		case <-wp.ctx.Done():
			err = wp.ctx.Err()
			break dispatch
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	return results, err
}
