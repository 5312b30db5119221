// Package parallel provides a default rendergraph ThreadPool capability
// for hosts that do not bring their own: a fixed-size goroutine pool built
// on golang.org/x/sync/errgroup, the same pattern internal/exec uses to
// fan out a batch of independent passes.
package parallel

import (
	"context"
	"errors"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// ErrPoolClosed is returned by Run when the pool is no longer accepting work.
var ErrPoolClosed = errors.New("parallel: worker pool is closed")

// WorkerPool is a fixed-size pool of goroutines that satisfies the
// rendergraph ThreadPool capability. Unlike a work-stealing queue, it
// bounds concurrency with a semaphore and leans on errgroup for error
// propagation and context cancellation, since every Run call here is a
// single submit-and-wait rather than a persistent queue of pending tasks.
//
// Thread safety: WorkerPool is safe for concurrent use.
type WorkerPool struct {
	workers int
	sem     chan struct{}
	closed  atomic.Bool
}

// NewWorkerPool creates a pool that runs at most workers goroutines'
// worth of submitted tasks concurrently. If workers is 0 or negative,
// GOMAXPROCS is used.
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &WorkerPool{
		workers: workers,
		sem:     make(chan struct{}, workers),
	}
}

// Run submits fn to the pool and blocks until it completes, ctx is
// cancelled, or the pool is closed. It satisfies the rendergraph
// ThreadPool capability, letting WorkerPool serve as the default pool for
// examples and tests without the root package importing this package's
// concrete type.
func (p *WorkerPool) Run(ctx context.Context, fn func(context.Context) error) error {
	if p.closed.Load() {
		return ErrPoolClosed
	}

	select {
	case p.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-p.sem }()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return fn(gctx)
	})
	return g.Wait()
}

// Close marks the pool closed; in-flight Run calls still complete, but
// Run rejects every call made afterward. Close is safe to call multiple
// times.
func (p *WorkerPool) Close() {
	p.closed.Store(true)
}

// Workers returns the pool's configured concurrency limit.
func (p *WorkerPool) Workers() int {
	return p.workers
}

// IsRunning returns true if the pool is still accepting work.
func (p *WorkerPool) IsRunning() bool {
	return !p.closed.Load()
}
