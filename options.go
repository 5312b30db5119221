package rendergraph

import (
	"log/slog"

	"github.com/gogpu/rendergraph/cache"
)

// BuilderOption configures a Builder at construction time.
type BuilderOption func(*Builder)

// WithLogger installs the logger used for diagnostic messages emitted
// during the build pipeline (dropped dependency edges) and by the built
// graph's executor (batch timing, batch cycles), overriding the package
// logger from Logger. A nil logger disables diagnostic logging.
func WithLogger(logger *slog.Logger) BuilderOption {
	return func(b *Builder) { b.logger = logger }
}

// WithParallelExecution toggles whether the executor may dispatch batches
// of more than one pass across the frame's thread pool. Disabled by
// default; passes still run, just serially.
func WithParallelExecution(enabled bool) BuilderOption {
	return func(b *Builder) { b.parallelEnabled = enabled }
}

// WithStrategy registers an additional optimization strategy that runs
// after the default shared-promotion strategy, in registration order.
func WithStrategy(strategy IGraphOptimization) BuilderOption {
	return func(b *Builder) { b.strategies = append(b.strategies, strategy) }
}

// WithCostProfiler installs a PassCostProfiler used for cost-aware level
// refinement and queue assignment instead of the synthetic cost model.
func WithCostProfiler(profiler PassCostProfiler) BuilderOption {
	return func(b *Builder) { b.costProfiler = profiler }
}

// WithGraphCache registers a process-local LRU that Build consults before
// running the full pipeline, keyed by a preliminary structural hash of the
// registered (pre-expansion) resources and passes. The lookup happens
// before phase 1, so a hit skips all ten phases and returns the cached
// graph.
func WithGraphCache(c *cache.Cache[*Graph]) BuilderOption {
	return func(b *Builder) { b.cache = c }
}
