package workpool

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

func TestForEachVisitsEveryIndexOnce(t *testing.T) {
	const n = 100
	var seen [n]int32
	err := ForEach(context.Background(), n, 4, func(_ context.Context, i int) {
		atomic.AddInt32(&seen[i], 1)
	})
	if err != nil {
		t.Fatalf("ForEach: %v", err)
	}
	for i, count := range seen {
		if count != 1 {
			t.Fatalf("index %d visited %d times", i, count)
		}
	}
}

func TestForEachRespectsLimit(t *testing.T) {
	var (
		mu      sync.Mutex
		current int
		peak    int
	)
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- ForEach(context.Background(), 8, 2, func(_ context.Context, _ int) {
			mu.Lock()
			current++
			if current > peak {
				peak = current
			}
			mu.Unlock()
			<-release
			mu.Lock()
			current--
			mu.Unlock()
		})
	}()
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("ForEach: %v", err)
	}
	if peak > 2 {
		t.Fatalf("peak concurrency %d exceeds limit 2", peak)
	}
}

func TestForEachStopsDispatchAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls atomic.Int32
	err := ForEach(ctx, 50, 1, func(_ context.Context, i int) {
		calls.Add(1)
		if i == 2 {
			cancel()
		}
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if got := calls.Load(); got != 3 {
		t.Fatalf("expected 3 calls before dispatch stopped, got %d", got)
	}
}

func TestResolve(t *testing.T) {
	if got := Resolve(4, 2); got != 2 {
		t.Fatalf("Resolve(4, 2) = %d, want 2", got)
	}
	if got := Resolve(3, 10); got != 3 {
		t.Fatalf("Resolve(3, 10) = %d, want 3", got)
	}
	if got := Resolve(0, 0); got < 1 {
		t.Fatalf("Resolve(0, 0) = %d, want >= 1", got)
	}
}
