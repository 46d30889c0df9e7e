package parallel

import (
	"sync/atomic"
	"testing"

	"github.com/YuminosukeSato/margo/pkg/errors"
)

func TestParallelizeCoversAllItems(t *testing.T) {
	const items = 1000
	hits := make([]int32, items)

	Parallelize(items, func(start, end int) {
		for i := start; i < end; i++ {
			atomic.AddInt32(&hits[i], 1)
		}
	})

	for i, h := range hits {
		if h != 1 {
			t.Fatalf("item %d visited %d times", i, h)
		}
	}
}

func TestParallelizeZeroItems(t *testing.T) {
	called := false
	Parallelize(0, func(start, end int) { called = true })
	if called {
		t.Error("fn called for zero items")
	}
}

func TestParallelizeWithThresholdSequential(t *testing.T) {
	var calls int32
	ParallelizeWithThreshold(4, 10, func(start, end int) {
		atomic.AddInt32(&calls, 1)
		if start != 0 || end != 4 {
			t.Errorf("expected single range [0,4), got [%d,%d)", start, end)
		}
	})
	if calls != 1 {
		t.Errorf("expected 1 call below threshold, got %d", calls)
	}
}

func TestParallelizeWithErrorFirstWins(t *testing.T) {
	errA := errors.New("a")
	errB := errors.New("b")

	err := ParallelizeWithError(100, func(i int) error {
		switch i {
		case 30:
			return errB
		case 10:
			return errA
		}
		return nil
	})

	if !errors.Is(err, errA) {
		t.Errorf("expected lowest-index error, got %v", err)
	}
}

func TestParallelizeWithErrorNil(t *testing.T) {
	if err := ParallelizeWithError(50, func(i int) error { return nil }); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
}
