// Package workpool runs independent per-item tasks on a bounded set of
// goroutines sized to the machine.
package workpool

import (
	"context"
	"runtime"
	"sync"

	"github.com/klauspost/cpuid/v2"
)

// DefaultWorkers returns the logical core count reported by the CPU, falling
// back to the Go runtime's view when detection is unavailable.
func DefaultWorkers() int {
	if n := cpuid.CPU.LogicalCores; n > 0 {
		return n
	}
	return runtime.NumCPU()
}

// Resolve turns a configured worker count into an effective one (0 = auto),
// never exceeding the number of items.
func Resolve(configured, items int) int {
	workers := configured
	if workers <= 0 {
		workers = DefaultWorkers()
	}
	if items > 0 && workers > items {
		workers = items
	}
	if workers < 1 {
		workers = 1
	}
	return workers
}

// ForEach calls body for every index in [0, length) using at most limit
// concurrent goroutines and waits for all of them. Once ctx is cancelled no
// further indices are dispatched; bodies already running finish normally.
// It returns ctx.Err() when dispatch stopped early.
func ForEach(ctx context.Context, length, limit int, body func(ctx context.Context, i int)) error {
	if length <= 0 {
		return nil
	}
	if limit <= 0 {
		limit = 1
	}

	sem := make(chan struct{}, limit)
	var wg sync.WaitGroup

	var stopErr error
dispatch:
	for i := 0; i < length; i++ {
		select {
		case <-ctx.Done():
			stopErr = ctx.Err()
			break dispatch
		case sem <- struct{}{}:
		}
		// A slot may free up at the same time as cancellation.
		if err := ctx.Err(); err != nil {
			<-sem
			stopErr = err
			break
		}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			body(ctx, i)
		}(i)
	}

	wg.Wait()
	return stopErr
}
