// Package promote implements the default shared read-only promotion
// optimizer: per-view resource clones that are never written and that
// cover every active view collapse into a single Shared resource.
package promote

import (
	"sort"

	"github.com/gogpu/rendergraph/internal/model"
)

// Promoter is the default model.IGraphOptimization. The builder always
// runs it first, before any strategies the caller registers; it cannot be
// replaced or removed.
type Promoter struct{}

// New returns a ready-to-use promoter. It holds no state between calls.
func New() *Promoter { return &Promoter{} }

var _ model.IGraphOptimization = (*Promoter)(nil)

// Apply runs only when at least two views are active; below that, per-view
// cloning never happened and there is nothing to collapse.
func (p *Promoter) Apply(ctx *model.BuildContext, sink model.DiagnosticsSink) error {
	if len(ctx.ActiveViews) < 2 {
		return nil
	}

	for base, group := range groupsByBase(ctx.PerViewMap) {
		baseDesc, ok := ctx.Resources[base]
		if !ok || baseDesc.Scope() != model.ScopePerView {
			continue
		}
		if !coversAllActiveViews(group, ctx.ActiveViews) {
			continue
		}
		if !variantsCompatible(ctx.Resources, baseDesc, group) {
			if sink != nil {
				sink.AddWarning(model.NewValidationError(model.KindResourceAliasHazard,
					"resource %d: per-view variants are not all format-compatible, skipping promotion", base))
			}
			continue
		}
		if anyPassWritesVariant(ctx.Passes, group) {
			continue
		}

		p.promoteGroup(ctx, base, baseDesc, group)
	}

	return nil
}

// viewVariant pairs a view with the variant handle it resolved to, used to
// keep iteration order deterministic (map range order is not).
type viewVariant struct {
	view    model.ViewIndex
	variant model.ResourceHandle
}

func groupsByBase(perViewMap map[model.ResourceHandle]map[model.ViewIndex]model.ResourceHandle) map[model.ResourceHandle][]viewVariant {
	groups := make(map[model.ResourceHandle][]viewVariant, len(perViewMap))
	for base, byView := range perViewMap {
		views := make([]model.ViewIndex, 0, len(byView))
		for v := range byView {
			views = append(views, v)
		}
		sort.Slice(views, func(i, j int) bool { return views[i] < views[j] })

		variants := make([]viewVariant, 0, len(views))
		for _, v := range views {
			variants = append(variants, viewVariant{view: v, variant: byView[v]})
		}
		groups[base] = variants
	}
	return groups
}

func coversAllActiveViews(group []viewVariant, activeViews []model.ViewIndex) bool {
	if len(group) != len(activeViews) {
		return false
	}
	have := make(map[model.ViewIndex]bool, len(group))
	for _, gv := range group {
		have[gv.view] = true
	}
	for _, v := range activeViews {
		if !have[v] {
			return false
		}
	}
	return true
}

func variantsCompatible(resources map[model.ResourceHandle]model.ResourceDescriptor, prototype model.ResourceDescriptor, group []viewVariant) bool {
	for _, gv := range group {
		variant, ok := resources[gv.variant]
		if !ok {
			return false
		}
		if !prototype.FormatCompatibleWith(variant) {
			return false
		}
	}
	return true
}

func anyPassWritesVariant(passes []*model.Pass, group []viewVariant) bool {
	variantSet := make(map[model.ResourceHandle]bool, len(group))
	for _, gv := range group {
		variantSet[gv.variant] = true
	}
	for _, pass := range passes {
		for _, w := range pass.Writes() {
			if variantSet[w] {
				return true
			}
		}
	}
	return false
}

// promoteGroup selects the first variant (by view index) as the canonical
// shared resource, rewrites every pass reference to the other variants onto
// it, erases the other descriptors (and the base descriptor unless it is
// itself the canonical), and updates the per-view mapping so subsequent
// lookups resolve to the canonical handle.
func (p *Promoter) promoteGroup(ctx *model.BuildContext, base model.ResourceHandle, baseDesc model.ResourceDescriptor, group []viewVariant) {
	canonical := group[0].variant
	canonicalDesc := ctx.Resources[canonical]
	canonicalDesc.SetScope(model.ScopeShared)

	obsolete := make(map[model.ResourceHandle]bool, len(group))
	for _, gv := range group {
		if gv.variant != canonical {
			obsolete[gv.variant] = true
		}
	}

	for _, pass := range ctx.Passes {
		rewrite(pass.MutableReads(), obsolete, canonical)
		rewrite(pass.MutableWrites(), obsolete, canonical)
	}

	for variant := range obsolete {
		delete(ctx.Resources, variant)
	}
	if base != canonical {
		delete(ctx.Resources, base)
	}

	updated := make(map[model.ViewIndex]model.ResourceHandle, len(group))
	for _, gv := range group {
		updated[gv.view] = canonical
	}
	ctx.PerViewMap[base] = updated

	_ = baseDesc // the base descriptor itself carries no state we still need
}

func rewrite(handles []model.ResourceHandle, obsolete map[model.ResourceHandle]bool, canonical model.ResourceHandle) {
	for i, h := range handles {
		if obsolete[h] {
			handles[i] = canonical
		}
	}
}
