package rendergraph

import (
	"context"
	"log/slog"

	"github.com/gogpu/rendergraph/internal/exec"
)

// Graph is the compiled, scheduled output of a Builder's Build call. It
// owns every resource descriptor and pass for the remainder of the frame;
// the host typically returns it to an LRU cache (see the cache package) at
// frame end. Analyzers and the scheduler that produced it hold only
// non-owning references and must not outlive it.
type Graph struct {
	resources map[ResourceHandle]ResourceDescriptor
	passes    []*Pass

	order        []PassHandle
	dependencies map[PassHandle][]PassHandle
	queues       []Queue
	frameTimeMS  float64

	activeViews []ViewIndex
	views       []ViewInfo

	cost    func(PassHandle) (cpuUS, gpuUS, memoryBytes int64)
	cacheKey CacheKey

	validation *ValidationResult

	parallelEnabled bool
	logger          *slog.Logger
}

// IsValid reports whether the build pipeline completed without a
// structural error. An invalid graph can still be executed; when the
// error is a dependency cycle its execution order is empty, so no pass
// runs.
func (g *Graph) IsValid() bool { return g.validation.Valid }

// Validation returns the accumulated errors and warnings from Build.
func (g *Graph) Validation() *ValidationResult { return g.validation }

// CacheKey returns the structural identity computed during the finalize
// phase, suitable as a cache.Cache lookup key via its Combined() hash.
func (g *Graph) CacheKey() CacheKey { return g.cacheKey }

// ExecutionOrder returns the scheduled pass order.
func (g *Graph) ExecutionOrder() []PassHandle { return append([]PassHandle(nil), g.order...) }

// QueueAssignment returns the per-pass queue assignment, same length and
// order as ExecutionOrder.
func (g *Graph) QueueAssignment() []Queue { return append([]Queue(nil), g.queues...) }

// EstimatedFrameTimeMS returns the scheduler's frame-time estimate.
func (g *Graph) EstimatedFrameTimeMS() float64 { return g.frameTimeMS }

// Passes returns the final (post-expansion, post-promotion) pass set.
func (g *Graph) Passes() []*Pass { return g.passes }

// Resources returns the final resource descriptor set, keyed by handle.
func (g *Graph) Resources() map[ResourceHandle]ResourceDescriptor { return g.resources }

// Execute runs the graph for one frame: plan resource state transitions,
// build level-set batches, dispatch them serially or across frameCtx's
// thread pool, and schedule deferred reclaim of frame-local resources.
func (g *Graph) Execute(ctx context.Context, frameCtx FrameContext) error {
	var pool ThreadPool
	if frameCtx != nil {
		if p, ok := frameCtx.ThreadPool(); ok {
			pool = p
		}
	}

	var graphics GraphicsLayer
	if frameCtx != nil {
		if gl, ok := frameCtx.AcquireGraphics(); ok {
			graphics = gl
		}
	}

	var frameIndex int64
	if frameCtx != nil {
		frameIndex = frameCtx.FrameIndex()
	}

	plan := exec.Plan{
		Passes:       g.passes,
		Order:        g.order,
		Dependencies: g.dependencies,
		Cost:         g.cost,
		ActiveViews:  g.activeViews,
		FrameIndex:   frameIndex,
	}

	executor := exec.New(g.logger, g.parallelEnabled)
	return executor.Execute(ctx, plan, g.resources, pool, graphics)
}
