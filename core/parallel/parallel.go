// Package parallel provides chunked fork-join helpers for the marginal
// effects engine. Work units (effect terms, grid points, Jacobian columns)
// are independent and write to disjoint output ranges, so no synchronization
// beyond the final join is needed.
package parallel

import (
	"runtime"
	"sync"
)

// Parallelize splits items across the available CPU cores and runs fn on
// each contiguous range [start, end).
func Parallelize(items int, fn func(start, end int)) {
	if items == 0 {
		return
	}

	numWorkers := runtime.NumCPU()
	if numWorkers > items {
		numWorkers = items
	}

	// Ceiling division so every item is covered.
	chunkSize := (items + numWorkers - 1) / numWorkers

	var wg sync.WaitGroup

	for i := 0; i < numWorkers; i++ {
		start := i * chunkSize
		end := start + chunkSize
		if end > items {
			end = items
		}
		if start >= end {
			continue
		}

		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}

	wg.Wait()
}

// ParallelizeWithThreshold runs fn sequentially when items is at or below
// threshold, and in parallel otherwise. Small jobs are cheaper on one
// goroutine than across a fork-join.
func ParallelizeWithThreshold(items, threshold int, fn func(start, end int)) {
	if items <= threshold {
		fn(0, items)
		return
	}
	Parallelize(items, fn)
}

// ParallelizeWithError runs fn(i) for every i in [0, items) in parallel and
// returns the error from the lowest index that failed, or nil when all
// succeed. All units run to completion; the engine's units are side-effect
// free so there is nothing to cancel.
func ParallelizeWithError(items int, fn func(i int) error) error {
	if items == 0 {
		return nil
	}

	errs := make([]error, items)
	Parallelize(items, func(start, end int) {
		for i := start; i < end; i++ {
			errs[i] = fn(i)
		}
	})

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// ParallelizeWithThresholdError is the threshold-gated form of
// ParallelizeWithError.
func ParallelizeWithThresholdError(items, threshold int, fn func(i int) error) error {
	if items <= threshold {
		for i := 0; i < items; i++ {
			if err := fn(i); err != nil {
				return err
			}
		}
		return nil
	}
	return ParallelizeWithError(items, fn)
}
