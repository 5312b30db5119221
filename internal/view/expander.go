// Package view turns declarative "this resource / this pass is per-view"
// markers into concrete, fully-remapped clones, one per active view.
package view

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gogpu/rendergraph/internal/model"
)

// Expander mints handles for clones via the build's own allocators — one
// for resources, one for passes — so clone handles interleave with any
// handles the builder mints afterward without colliding with each other.
type Expander struct {
	resAlloc  *model.HandleAllocator
	passAlloc *model.HandleAllocator
	logger    *slog.Logger
}

// New returns an expander that mints new resource handles from resAlloc
// and new pass handles from passAlloc. A nil logger disables debug logging
// of dropped dependency edges.
func New(resAlloc, passAlloc *model.HandleAllocator, logger *slog.Logger) *Expander {
	if logger == nil {
		logger = slog.New(discardHandler{})
	}
	return &Expander{resAlloc: resAlloc, passAlloc: passAlloc, logger: logger}
}

// ActiveViews determines the active view set per spec.md §4.6: iterate-all
// wins if set; else a single restricted view; else a filter predicate;
// else every view (the default).
func ActiveViews(iterateAll bool, restrictTo model.ViewIndex, hasRestrict bool, filter func(model.ViewInfo) bool, views []model.ViewInfo) []model.ViewIndex {
	count := model.ViewIndex(len(views))

	if iterateAll {
		return allViews(count)
	}
	if hasRestrict {
		if restrictTo < count {
			return []model.ViewIndex{restrictTo}
		}
		return nil
	}
	if filter != nil {
		var out []model.ViewIndex
		for i, v := range views {
			if filter(v) {
				out = append(out, model.ViewIndex(i))
			}
		}
		return out
	}
	return allViews(count)
}

func allViews(count model.ViewIndex) []model.ViewIndex {
	out := make([]model.ViewIndex, count)
	for i := range out {
		out[i] = model.ViewIndex(i)
	}
	return out
}

// ResourceMapping records (base_handle, view) -> clone_handle.
type ResourceMapping map[model.ResourceHandle]map[model.ViewIndex]model.ResourceHandle

// CloneResources mints one clone per active view for every PerView-scope
// resource in order, deep-copying the descriptor and appending the view
// suffix to its debug name. Shared/External resources are left untouched
// and never appear in the returned clone list or mapping.
func (e *Expander) CloneResources(resources map[model.ResourceHandle]model.ResourceDescriptor, order []model.ResourceHandle, activeViews []model.ViewIndex, views []model.ViewInfo) ([]model.ResourceDescriptor, ResourceMapping) {
	mapping := make(ResourceMapping)
	var clones []model.ResourceDescriptor

	for _, base := range order {
		desc, ok := resources[base]
		if !ok || desc.Scope() != model.ScopePerView {
			continue
		}

		perView := make(map[model.ViewIndex]model.ResourceHandle, len(activeViews))
		for _, v := range activeViews {
			newHandle := e.resAlloc.AllocResource()
			clone := desc.Clone(newHandle)
			clone.SetName(desc.Name() + viewSuffix(views, v))
			clones = append(clones, clone)
			perView[v] = newHandle
		}
		mapping[base] = perView
	}

	return clones, mapping
}

// PassCloneMapping records (template_pass_handle, view) -> clone_pass_handle.
type PassCloneMapping map[model.PassHandle]map[model.ViewIndex]model.PassHandle

// ExpandPasses clones every PerView-scope pass once per active view when
// more than one view is active, rewriting its read/write resource handles
// through resourceMapping and installing a shared-executor wrapper so every
// clone invokes the same underlying callable. The template pass itself is
// never included in the returned slice and is never executed.
//
// When exactly one view is active (or none), no clone is minted: the
// original pass is kept, its view index is set directly, and its Scope
// remains PerView so a fallback executor can still replicate it correctly
// if asked to.
func (e *Expander) ExpandPasses(passes []*model.Pass, activeViews []model.ViewIndex, views []model.ViewInfo, resourceMapping ResourceMapping) (final []*model.Pass, passCloneMap PassCloneMapping, expandedTemplates map[model.PassHandle]bool) {
	passCloneMap = make(PassCloneMapping)
	expandedTemplates = make(map[model.PassHandle]bool)

	for _, p := range passes {
		if p.Scope() != model.ScopePerView {
			final = append(final, p)
			continue
		}

		if len(activeViews) <= 1 {
			if len(activeViews) == 1 {
				p.SetView(activeViews[0])
			}
			final = append(final, p)
			continue
		}

		expandedTemplates[p.Handle()] = true
		executor := p.Executor()
		wrapper := func(ctx *model.TaskExecutionContext) error { return executor(ctx) }

		perView := make(map[model.ViewIndex]model.PassHandle, len(activeViews))
		for _, v := range activeViews {
			clone := p.Clone(e.passAlloc.AllocPass())
			clone.SetView(v)
			// The clone now represents exactly one view; its scope is no
			// longer "per view" from the executor's perspective, it is a
			// single fixed-view instance, so it is invoked exactly once.
			clone.SetScope(model.ScopeViewless)
			clone.SetName(p.Name() + viewSuffix(views, v))
			if executor != nil {
				clone.SetExecutor(wrapper)
			}
			rewriteHandles(clone.MutableReads(), resourceMapping, v)
			rewriteHandles(clone.MutableWrites(), resourceMapping, v)

			perView[v] = clone.Handle()
			final = append(final, clone)
		}
		passCloneMap[p.Handle()] = perView
	}

	return final, passCloneMap, expandedTemplates
}

// RebuildDependencies rewrites the explicit dependency list of every pass
// in final so that edges reference clones rather than template pass
// handles, per spec.md §4.6. Edges to a template with no clone for this
// pass's view (filtered out) are dropped with a debug log; edges to a
// dropped, non-expanded pass are dropped silently. Order is deduplicated,
// preserving first-seen order.
func (e *Expander) RebuildDependencies(final []*model.Pass, expandedTemplates map[model.PassHandle]bool, passCloneMap PassCloneMapping) {
	finalSet := make(map[model.PassHandle]bool, len(final))
	for _, p := range final {
		finalSet[p.Handle()] = true
	}

	for _, p := range final {
		var rebuilt []model.PassHandle
		seen := make(map[model.PassHandle]bool)

		for _, dep := range p.Dependencies() {
			if expandedTemplates[dep] {
				clone, ok := passCloneMap[dep][p.View()]
				if !ok {
					e.logger.Debug("dropping dependency edge: no clone for view",
						"template", dep, "pass", p.Handle(), "view", p.View())
					continue
				}
				if !seen[clone] {
					seen[clone] = true
					rebuilt = append(rebuilt, clone)
				}
				continue
			}

			if !finalSet[dep] {
				continue
			}
			if !seen[dep] {
				seen[dep] = true
				rebuilt = append(rebuilt, dep)
			}
		}

		p.SetDependencies(rebuilt)
	}
}

func rewriteHandles(handles []model.ResourceHandle, mapping ResourceMapping, view model.ViewIndex) {
	for i, h := range handles {
		if perView, ok := mapping[h]; ok {
			if clone, ok := perView[view]; ok {
				handles[i] = clone
			}
		}
	}
}

func viewSuffix(views []model.ViewInfo, v model.ViewIndex) string {
	if int(v) < len(views) && views[v].Name != "" {
		return "_" + views[v].Name
	}
	return fmt.Sprintf("_view%d", v)
}

// discardHandler is a minimal slog.Handler that drops everything, used
// when the caller does not supply a logger.
type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (discardHandler) WithAttrs([]slog.Attr) slog.Handler         { return discardHandler{} }
func (discardHandler) WithGroup(string) slog.Handler              { return discardHandler{} }
