package model

// BuildContext exposes the in-progress build state to optimization
// strategies. Strategies mutate Passes and Resources in place; they must
// not retain ctx past their Apply call, since the builder owns it only for
// the duration of the shared-promotion phase.
type BuildContext struct {
	// Resources holds every resource descriptor registered so far, keyed
	// by its own handle.
	Resources map[ResourceHandle]ResourceDescriptor

	// Passes holds every pass transferred into the final graph so far.
	Passes []*Pass

	// PerViewMap records (base_handle, view) -> clone_handle, populated by
	// per-view expansion and consulted/rewritten by shared-promotion.
	PerViewMap map[ResourceHandle]map[ViewIndex]ResourceHandle

	// ActiveViews is the set of view indices determined by the view
	// configuration phase.
	ActiveViews []ViewIndex

	// Views is the host-supplied view info, indexed by ViewIndex.
	Views []ViewInfo
}

// NewBuildContext returns an empty, ready-to-populate context.
func NewBuildContext() *BuildContext {
	return &BuildContext{
		Resources:  make(map[ResourceHandle]ResourceDescriptor),
		PerViewMap: make(map[ResourceHandle]map[ViewIndex]ResourceHandle),
	}
}

// IGraphOptimization is a replaceable build-pipeline strategy. The default
// instance (shared read-only promotion) runs first during the
// shared-promotion phase; callers may register additional strategies that
// run after it.
type IGraphOptimization interface {
	Apply(ctx *BuildContext, sink DiagnosticsSink) error
}
