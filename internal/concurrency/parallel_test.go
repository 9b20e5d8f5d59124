package concurrency

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestProcessParallelEmpty(t *testing.T) {
	results, errs := ProcessParallel(context.Background(), []int{}, DefaultOptions(),
		func(ctx context.Context, i, item int) (string, error) { return "", nil })
	if len(results) != 0 || len(errs) != 0 {
		t.Fatalf("expected empty output, got %d results %d errs", len(results), len(errs))
	}
}

func TestProcessParallelOrderAndErrors(t *testing.T) {
	input := []int{5, 3, 1, 4, 2}
	results, errs := ProcessParallel(context.Background(), input, ParallelOptions{MaxWorkers: 3},
		func(ctx context.Context, i, item int) (int, error) {
			time.Sleep(time.Duration(item) * 5 * time.Millisecond)
			if item%2 == 0 {
				return 0, errors.New("even")
			}
			return item * 10, nil
		})

	if len(results) != len(input) || len(errs) != len(input) {
		t.Fatalf("output not index-aligned: %d results %d errs", len(results), len(errs))
	}
	for i, item := range input {
		if item%2 == 0 {
			if errs[i] == nil {
				t.Errorf("index %d: expected error", i)
			}
			continue
		}
		if errs[i] != nil {
			t.Errorf("index %d: unexpected error %v", i, errs[i])
		}
		if results[i] != item*10 {
			t.Errorf("index %d: got %d want %d", i, results[i], item*10)
		}
	}
}

func TestProcessParallelBound(t *testing.T) {
	const workers = 4
	var inflight, high int64
	var mu sync.Mutex

	items := make([]int, 40)
	_, errs := ProcessParallel(context.Background(), items, ParallelOptions{MaxWorkers: workers},
		func(ctx context.Context, i, item int) (struct{}, error) {
			n := atomic.AddInt64(&inflight, 1)
			mu.Lock()
			if n > high {
				high = n
			}
			mu.Unlock()
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt64(&inflight, -1)
			return struct{}{}, nil
		})

	for _, err := range errs {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if high > workers {
		t.Fatalf("high-water mark %d exceeds bound %d", high, workers)
	}
}

func TestProcessParallelCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var ran int64
	input := []int{1, 2, 3, 4, 5}
	_, errs := ProcessParallel(ctx, input, DefaultOptions(),
		func(ctx context.Context, i, item int) (int, error) {
			atomic.AddInt64(&ran, 1)
			return item, nil
		})

	if ran != 0 {
		t.Fatalf("expected no work after cancel, %d items ran", ran)
	}
	for i, err := range errs {
		if !errors.Is(err, context.Canceled) {
			t.Errorf("index %d: expected context.Canceled, got %v", i, err)
		}
	}
}

func TestForEach(t *testing.T) {
	input := []int{1, 2, 3}
	var sum int64
	errs := ForEach(context.Background(), input, DefaultOptions(),
		func(ctx context.Context, i, item int) error {
			atomic.AddInt64(&sum, int64(item))
			return nil
		})
	for _, err := range errs {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if sum != 6 {
		t.Fatalf("sum = %d, want 6", sum)
	}
}
