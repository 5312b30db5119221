package rendergraph

import (
	"github.com/gogpu/rendergraph/internal/alias"
	"github.com/gogpu/rendergraph/internal/model"
	"github.com/gogpu/rendergraph/internal/promote"
	"github.com/gogpu/rendergraph/internal/schedule"
	"github.com/gogpu/rendergraph/internal/view"
)

// Build runs the fixed ten-phase pipeline over the Builder's accumulated
// configuration and returns a scheduled Graph. An invalid builder state
// (BeginGraph never called) returns nil, per spec.md §4.1's failure
// semantics; every other structural problem is recorded in the returned
// graph's ValidationResult instead of aborting the pipeline.
func (b *Builder) Build() *Graph {
	if !b.began {
		return nil
	}

	views := b.frameCtx.Views()

	var preliminaryKey CacheKey
	if b.cache != nil {
		preliminaryKey = b.preliminaryCacheKey(views)
		if cached, ok := b.cache.Get(preliminaryKey.Combined()); ok {
			b.frameCtx = nil
			return cached
		}
	}

	expander := view.New(b.resAlloc, b.passAlloc, b.logger)

	// Phase 1: view configuration.
	activeViews := view.ActiveViews(b.iterateAll, b.restrictTo, b.hasRestrict, b.viewFilter, views)
	clones, resourceMapping := expander.CloneResources(b.resources, b.resourceOrder, activeViews, views)
	for _, c := range clones {
		b.resources[c.Handle()] = c
		b.resourceOrder = append(b.resourceOrder, c.Handle())
	}

	// Phase 2: pass transfer, expanding per-view passes.
	finalPasses, passCloneMap, expandedTemplates := expander.ExpandPasses(b.passes, activeViews, views, resourceMapping)

	result := NewValidationResult()
	sink := NewResultSink(result)

	ctx := NewBuildContext()
	ctx.Resources = b.resources
	ctx.Passes = finalPasses
	ctx.PerViewMap = resourceMapping
	ctx.ActiveViews = activeViews
	ctx.Views = views

	// Phase 3: shared-promotion. The default promoter runs first, then any
	// strategies registered on top of it.
	strategies := append([]IGraphOptimization{promote.New()}, b.strategies...)
	for _, s := range strategies {
		if err := s.Apply(ctx, sink); err != nil {
			result.AddError(NewValidationError(KindInternalError, "optimization strategy failed: %v", err))
		}
	}

	// Phase 4: validation.
	b.validateStructure(ctx, result)

	// Phase 5: alias/lifetime collection.
	analyzer := alias.New()
	for h, desc := range ctx.Resources {
		analyzer.RegisterResource(h, desc)
	}
	for _, p := range ctx.Passes {
		reads, readStates := p.Reads(), p.ReadStates()
		for i, r := range reads {
			analyzer.RegisterUsage(r, p.Handle(), readStates[i], false, p.View(), sink)
		}
		writes, writeStates := p.Writes(), p.WriteStates()
		for i, w := range writes {
			analyzer.RegisterUsage(w, p.Handle(), writeStates[i], true, p.View(), sink)
		}
	}

	// Phase 6: scheduling.
	scheduler := schedule.New()
	deps := scheduler.BuildDependencyGraph(ctx.Passes)

	handles := make([]model.PassHandle, len(ctx.Passes))
	for i, p := range ctx.Passes {
		handles[i] = p.Handle()
	}

	order, ok := scheduler.TopologicalSort(handles, deps)
	if !ok {
		result.AddError(NewValidationError(KindCircularDependency, "dependency graph contains a cycle"))
		order = nil
	}

	costFn := b.costFunc()
	if order != nil && b.costProfiler != nil {
		order = scheduler.RefineByCost(order, deps, costFn)
	}
	queues, frameTimeMS := scheduler.AssignQueues(order, costFn)

	// Phase 7: lifetime finalization.
	topo := make(map[model.PassHandle]int, len(order))
	for i, h := range order {
		topo[h] = i
	}
	analyzer.SetTopologicalOrder(topo)
	hazards, _ := analyzer.Finalize()
	for _, h := range hazards {
		if h.Severity == SeverityError {
			result.AddError(NewValidationError(KindResourceAliasHazard, "%s", h.Description))
		} else {
			result.AddWarning(NewValidationError(KindResourceAliasHazard, "%s", h.Description))
		}
	}

	// Phase 8: descriptor allocation.
	graphics := b.graphicsLayer()
	for _, h := range b.resourceOrder {
		desc, ok := ctx.Resources[h]
		if !ok {
			continue
		}
		if desc.DescriptorIndex() == InvalidBindlessIndex {
			desc.SetDescriptorIndex(graphics.AllocateDescriptor())
		}
	}

	// Phase 9: dependency rebuild.
	expander.RebuildDependencies(ctx.Passes, expandedTemplates, passCloneMap)

	// Phase 10: finalize.
	key := b.computeCacheKey(ctx, order, views)
	b.frameCtx = nil

	graph := &Graph{
		resources:       ctx.Resources,
		passes:          ctx.Passes,
		order:           order,
		dependencies:    deps,
		queues:          queues,
		frameTimeMS:     frameTimeMS,
		activeViews:     activeViews,
		views:           views,
		cost:            costFn,
		cacheKey:        key,
		validation:      result,
		parallelEnabled: b.parallelEnabled,
		logger:          b.logger,
	}

	if b.cache != nil && result.Valid {
		b.cache.Set(preliminaryKey.Combined(), graph, int64(len(ctx.Resources)))
	}

	return graph
}

func (b *Builder) validateStructure(ctx *BuildContext, result *ValidationResult) {
	if len(ctx.Passes) == 0 {
		result.AddWarning(NewValidationError(KindInvalidConfiguration, "graph has no passes"))
	}
	for _, p := range ctx.Passes {
		if !p.ArityValid() {
			result.AddError(NewValidationError(KindInvalidResourceState,
				"pass %s: read/write array length mismatch with their state arrays", p.Name()))
		}
	}
	if b.iterateAll && b.hasRestrict {
		result.AddWarning(NewValidationError(KindInvalidConfiguration,
			"iterate-all-views combined with restrict-to-view; iterate-all takes precedence"))
	}
	if b.hasRestrict && b.viewFilter != nil {
		result.AddWarning(NewValidationError(KindInvalidConfiguration,
			"restrict-to-view combined with a view filter; restrict-to-view takes precedence"))
	}
}

// costFunc returns the cost function the scheduler uses: the registered
// PassCostProfiler's GetUpdatedCost when present, else the synthetic
// static estimate.
func (b *Builder) costFunc() func(PassHandle) (int64, int64, int64) {
	if b.costProfiler != nil {
		return b.costProfiler.GetUpdatedCost
	}
	return schedule.StaticCostEstimate
}

func (b *Builder) graphicsLayer() GraphicsLayer {
	if b.frameCtx != nil {
		if gl, ok := b.frameCtx.AcquireGraphics(); ok {
			return gl
		}
	}
	return NewNullGraphicsLayer()
}

func (b *Builder) computeCacheKey(ctx *BuildContext, order []PassHandle, views []ViewInfo) CacheKey {
	resourceHandles := make([]ResourceHandle, 0, len(ctx.Resources))
	for h := range ctx.Resources {
		resourceHandles = append(resourceHandles, h)
	}
	return NewCacheKey(order, resourceHandles, views)
}

// preliminaryCacheKey hashes the pre-expansion resource and pass handles
// registered on the builder plus the frame's view list, before any of the
// ten phases run. It is a coarser approximation than the finalized
// CacheKey (it cannot see promotion or expansion) but is cheap enough to
// compute before committing to a full build.
func (b *Builder) preliminaryCacheKey(views []ViewInfo) CacheKey {
	passHandles := make([]PassHandle, len(b.passes))
	for i, p := range b.passes {
		passHandles[i] = p.Handle()
	}
	return NewCacheKey(passHandles, b.resourceOrder, views)
}
