package util

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
)

func TestParallelVisitsAll(t *testing.T) {
	var sum atomic.Int64
	err := Parallel(context.Background(), []int{1, 2, 3, 4, 5}, 2, func(_ context.Context, n int) error {
		sum.Add(int64(n))
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if sum.Load() != 15 {
		t.Errorf("sum = %d, want 15", sum.Load())
	}
}

func TestParallelReturnsFirstError(t *testing.T) {
	boom := errors.New("boom")
	err := Parallel(context.Background(), []string{"a", "b", "c"}, 1, func(_ context.Context, s string) error {
		if s == "b" {
			return boom
		}
		return nil
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
}

func TestParallelEmpty(t *testing.T) {
	if err := Parallel(context.Background(), nil, 4, func(context.Context, int) error { return errors.New("x") }); err != nil {
		t.Fatal(err)
	}
}

func TestParallelRespectsLimit(t *testing.T) {
	var running, peak atomic.Int32
	err := Parallel(context.Background(), make([]int, 20), 3, func(context.Context, int) error {
		n := running.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		running.Add(-1)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if peak.Load() > 3 {
		t.Errorf("peak concurrency = %d, want <= 3", peak.Load())
	}
}

func TestParallelCancelledParent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Parallel(ctx, []int{1, 2}, 1, func(context.Context, int) error { return nil })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
