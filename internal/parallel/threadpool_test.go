package parallel

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestWorkerPool_RunSuccess(t *testing.T) {
	pool := NewWorkerPool(2)
	defer pool.Close()

	err := pool.Run(context.Background(), func(context.Context) error {
		return nil
	})
	if err != nil {
		t.Fatalf("Run() = %v, want nil", err)
	}
}

func TestWorkerPool_RunPropagatesError(t *testing.T) {
	pool := NewWorkerPool(2)
	defer pool.Close()

	want := errors.New("boom")
	err := pool.Run(context.Background(), func(context.Context) error {
		return want
	})
	if !errors.Is(err, want) {
		t.Errorf("Run() = %v, want %v", err, want)
	}
}

func TestWorkerPool_RunRespectsCancellation(t *testing.T) {
	pool := NewWorkerPool(1)
	defer pool.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	started := make(chan struct{})
	err := pool.Run(ctx, func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() = %v, want context.Canceled", err)
	}
}

func TestWorkerPool_RunOnClosedPool(t *testing.T) {
	pool := NewWorkerPool(1)
	pool.Close()

	err := pool.Run(context.Background(), func(context.Context) error { return nil })
	if !errors.Is(err, ErrPoolClosed) {
		t.Errorf("Run() = %v, want ErrPoolClosed", err)
	}
}

func TestWorkerPool_RunTimesOut(t *testing.T) {
	pool := NewWorkerPool(1)
	defer pool.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := pool.Run(ctx, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Run() = %v, want context.DeadlineExceeded", err)
	}
}

func TestWorkerPool_DefaultsToGOMAXPROCS(t *testing.T) {
	pool := NewWorkerPool(0)
	defer pool.Close()

	if pool.Workers() <= 0 {
		t.Errorf("Workers() = %d, want a positive default", pool.Workers())
	}
}

func TestWorkerPool_IsRunningReflectsClose(t *testing.T) {
	pool := NewWorkerPool(2)
	if !pool.IsRunning() {
		t.Fatal("IsRunning() = false before Close, want true")
	}
	pool.Close()
	if pool.IsRunning() {
		t.Error("IsRunning() = true after Close, want false")
	}
}

// TestWorkerPool_BoundsConcurrency exercises the semaphore that replaced
// the per-worker work-stealing queues: submitting more concurrent Run
// calls than the pool's worker count must still let every call finish,
// without ever letting more than Workers() run at once.
func TestWorkerPool_BoundsConcurrency(t *testing.T) {
	const workers = 3
	const tasks = 12

	pool := NewWorkerPool(workers)
	defer pool.Close()

	var inFlight atomic.Int64
	var maxObserved atomic.Int64
	var wg sync.WaitGroup
	wg.Add(tasks)

	for range tasks {
		go func() {
			defer wg.Done()
			_ = pool.Run(context.Background(), func(context.Context) error {
				n := inFlight.Add(1)
				defer inFlight.Add(-1)
				for {
					cur := maxObserved.Load()
					if n <= cur || maxObserved.CompareAndSwap(cur, n) {
						break
					}
				}
				time.Sleep(time.Millisecond)
				return nil
			})
		}()
	}
	wg.Wait()

	if maxObserved.Load() > workers {
		t.Errorf("observed %d concurrent tasks, want at most %d", maxObserved.Load(), workers)
	}
}
