// Package rendergraph compiles a declarative set of GPU resources and
// passes into a scheduled, executable frame graph.
//
// A Builder accumulates resource and pass declarations across a
// BeginGraph/Build call pair; Build runs the fixed ten-phase pipeline
// (view configuration, pass transfer, shared-promotion, validation,
// alias/lifetime collection, scheduling, lifetime finalization, descriptor
// allocation, dependency rebuild, finalize) and returns a Graph. Graph.Execute
// then plans resource-state transitions, batches independent passes by
// dependency level, and dispatches each batch serially or across a
// host-supplied thread pool.
//
// Resources and passes may be declared Shared (one instance regardless of
// view count), PerView (one instance per active view, expanded during
// Build), or Viewless. A default optimization strategy collapses read-only
// PerView resource clones back into a single Shared resource when every
// active view's variant is format-compatible and unwritten; additional
// strategies can be registered with WithStrategy.
//
// The host integrates by implementing FrameContext (view list, frame
// index, optional ThreadPool and GraphicsLayer capabilities) and passing
// it to BeginGraph and Execute. See the cache package for process-local
// graph caching across frames with identical structure, and backend/wgpu
// for a GraphicsLayer backed by a real wgpu device.
package rendergraph
