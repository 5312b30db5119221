// Package alias computes resource lifetime intervals and derives alias
// hazards and safe alias candidates from them. The usage-recording shape —
// append a (pass, state, is-write) record per access, then derive
// intervals and conflicts from the recorded list — is adapted from the
// GL-replay dependency graph's read/write/modify behaviour tracking
// (other_examples' google-gapid dependency_graph.go), repurposed here from
// command-replay hazard detection to resource lifetime overlap.
package alias

import (
	"fmt"
	"sort"

	"github.com/gogpu/rendergraph/internal/model"
)

// Usage is a single recorded access of a resource by a pass.
type Usage struct {
	Pass    model.PassHandle
	State   model.ResourceState
	IsWrite bool
	View    model.ViewIndex
}

// LifetimeInfo is the analyzer's per-resource output: first/last pass
// handles, every recorded usage, byte estimate, write-conflict flag, and —
// when a topological order was supplied — linear interval indices.
type LifetimeInfo struct {
	Resource model.ResourceHandle
	Lifetime model.Lifetime
	Scope    model.Scope

	FirstPass model.PassHandle
	LastPass  model.PassHandle
	Usages    []Usage

	ByteEstimate      int64
	HasWriteConflicts bool

	// FirstIndex/LastIndex hold the topological position when a
	// topological order was supplied, else they are -1 and the interval
	// falls back to FirstPass/LastPass (as raw handle values).
	FirstIndex int
	LastIndex  int

	// Seq is the order in which this resource's first usage was recorded.
	// It is not part of spec.md's data model; it is an addition (see the
	// design notes) kept for callers. Finalize orders resource pairs by
	// handle value alone and does not read Seq.
	Seq int
}

func (l *LifetimeInfo) interval() (first, last int64) {
	if l.FirstIndex >= 0 && l.LastIndex >= 0 {
		return int64(l.FirstIndex), int64(l.LastIndex)
	}
	return int64(l.FirstPass), int64(l.LastPass)
}

func overlaps(a, b *LifetimeInfo) bool {
	af, al := a.interval()
	bf, bl := b.interval()
	return af <= bl && bf <= al
}

// Hazard flags an ordering or compatibility issue between two resources.
type Hazard struct {
	ResourceA          model.ResourceHandle
	ResourceB          model.ResourceHandle
	ConflictingPasses  []model.PassHandle
	Description        string
	Severity           model.Severity
}

// Candidate is an advisory record: two resources could safely share
// memory. The core never applies the aliasing itself.
type Candidate struct {
	ResourceA      model.ResourceHandle
	ResourceB      model.ResourceHandle
	CombinedMemory int64
	Description    string
}

// Analyzer accumulates resource registrations and usages, then derives
// hazards and candidates on Finalize.
type Analyzer struct {
	resources map[model.ResourceHandle]model.ResourceDescriptor
	info      map[model.ResourceHandle]*LifetimeInfo
	order     map[model.PassHandle]int
	seq       int

	debugFillWarned bool
}

// New returns an empty analyzer.
func New() *Analyzer {
	return &Analyzer{
		resources: make(map[model.ResourceHandle]model.ResourceDescriptor),
		info:      make(map[model.ResourceHandle]*LifetimeInfo),
	}
}

// SetTopologicalOrder supplies a pass -> linear-index map. Finalize
// derives FirstIndex/LastIndex from every recorded usage whose pass is in
// the map, whether the usage was registered before or after this call;
// without it, intervals fall back to raw pass handle values.
func (a *Analyzer) SetTopologicalOrder(order map[model.PassHandle]int) {
	a.order = order
}

// RegisterResource records a resource's descriptor so its lifetime and
// scope are available to hazard/candidate derivation.
func (a *Analyzer) RegisterResource(h model.ResourceHandle, desc model.ResourceDescriptor) {
	a.resources[h] = desc
}

// RegisterUsage appends a usage record for resource by pass. The
// debug-fill handle (0xBEBEBEBE) is recognised as an uninitialized-memory
// pattern: its first occurrence downgrades to a warning and subsequent
// occurrences are silently ignored. An unregistered resource handle
// otherwise produces a warning every time.
func (a *Analyzer) RegisterUsage(resource model.ResourceHandle, pass model.PassHandle, state model.ResourceState, isWrite bool, view model.ViewIndex, sink model.DiagnosticsSink) {
	if resource == model.DebugFillHandle {
		if !a.debugFillWarned {
			a.debugFillWarned = true
			if sink != nil {
				sink.AddWarning(model.NewValidationError(model.KindResourceNotFound,
					"resource usage saw debug-fill pattern 0xBEBEBEBE (pass %d)", pass))
			}
		}
		return
	}

	desc, known := a.resources[resource]
	if !known {
		if sink != nil {
			sink.AddWarning(model.NewValidationError(model.KindResourceNotFound,
				"pass %d used unknown resource handle %d", pass, resource))
		}
	}

	li, ok := a.info[resource]
	if !ok {
		li = &LifetimeInfo{
			Resource:  resource,
			FirstPass: pass,
			LastPass:  pass,
			FirstIndex: -1,
			LastIndex:  -1,
			Seq:        a.seq,
		}
		a.seq++
		if known {
			li.Lifetime = desc.Lifetime()
			li.Scope = desc.Scope()
			li.ByteEstimate = desc.ByteSize()
		}
		a.info[resource] = li
	}

	if pass < li.FirstPass {
		li.FirstPass = pass
	}
	if pass > li.LastPass {
		li.LastPass = pass
	}

	if a.order != nil {
		if idx, ok := a.order[pass]; ok {
			if li.FirstIndex < 0 || idx < li.FirstIndex {
				li.FirstIndex = idx
			}
			if li.LastIndex < 0 || idx > li.LastIndex {
				li.LastIndex = idx
			}
		}
	}

	li.Usages = append(li.Usages, Usage{Pass: pass, State: state, IsWrite: isWrite, View: view})

	if isWrite {
		for _, u := range li.Usages[:len(li.Usages)-1] {
			if u.IsWrite && u.Pass == pass && u.View == view {
				li.HasWriteConflicts = true
			}
		}
	}
}

// Finalize derives hazards and safe alias candidates over every pair of
// resources with at least one recorded usage, sorted by handle, per
// spec.md §4.3's hazard enumeration.
func (a *Analyzer) Finalize() (hazards []Hazard, candidates []Candidate) {
	if a.order != nil {
		for _, li := range a.info {
			li.FirstIndex, li.LastIndex = -1, -1
			for _, u := range li.Usages {
				if idx, ok := a.order[u.Pass]; ok {
					if li.FirstIndex < 0 || idx < li.FirstIndex {
						li.FirstIndex = idx
					}
					if li.LastIndex < 0 || idx > li.LastIndex {
						li.LastIndex = idx
					}
				}
			}
		}
	}

	handles := make([]model.ResourceHandle, 0, len(a.info))
	for h := range a.info {
		handles = append(handles, h)
	}
	sort.Slice(handles, func(i, j int) bool { return handles[i] < handles[j] })

	for i := 0; i < len(handles); i++ {
		for j := i + 1; j < len(handles); j++ {
			ha, hb := handles[i], handles[j]
			la, lb := a.info[ha], a.info[hb]

			compat := areCompatible(a.resources[ha], a.resources[hb], la, lb)
			ov := overlaps(la, lb)
			emittedHazard := false

			if la.Lifetime == model.LifetimeTransient && lb.Lifetime == model.LifetimeTransient && ov {
				hazards = append(hazards, Hazard{
					ResourceA:         ha,
					ResourceB:         hb,
					ConflictingPasses: conflictingPasses(la, lb),
					Description:       fmt.Sprintf("transient resources %d and %d overlap in lifetime", ha, hb),
					Severity:          model.SeverityError,
				})
				emittedHazard = true
			}

			if ov && la.Scope != lb.Scope {
				hazards = append(hazards, Hazard{
					ResourceA:         ha,
					ResourceB:         hb,
					ConflictingPasses: conflictingPasses(la, lb),
					Description:       fmt.Sprintf("resources %d (%s) and %d (%s) overlap with differing scope", ha, la.Scope, hb, lb.Scope),
					Severity:          model.SeverityWarning,
				})
				emittedHazard = true
			}

			if ov && hasWriter(la) && hasWriter(lb) && writeWriteOverlap(la, lb) {
				hazards = append(hazards, Hazard{
					ResourceA:         ha,
					ResourceB:         hb,
					ConflictingPasses: conflictingPasses(la, lb),
					Description:       fmt.Sprintf("write-write overlap between resources %d and %d", ha, hb),
					Severity:          model.SeverityError,
				})
				emittedHazard = true
			}

			bothTransient := la.Lifetime == model.LifetimeTransient && lb.Lifetime == model.LifetimeTransient
			if bothTransient && !ov && !compat {
				hazards = append(hazards, Hazard{
					ResourceA:   ha,
					ResourceB:   hb,
					Description: fmt.Sprintf("resources %d and %d cannot be aliased despite disjoint lifetimes (incompatible)", ha, hb),
					Severity:    model.SeverityWarning,
				})
				emittedHazard = true
			}

			if bothTransient && !ov && compat && !emittedHazard {
				candidates = append(candidates, Candidate{
					ResourceA:      ha,
					ResourceB:      hb,
					CombinedMemory: maxInt64(la.ByteEstimate, lb.ByteEstimate),
					Description:    fmt.Sprintf("resources %d and %d can safely share memory", ha, hb),
				})
			}
		}
	}

	return hazards, candidates
}

func areCompatible(da, db model.ResourceDescriptor, la, lb *LifetimeInfo) bool {
	if la.Lifetime != lb.Lifetime {
		return false
	}
	if da == nil || db == nil {
		return false
	}
	return da.FormatCompatibleWith(db) && db.FormatCompatibleWith(da)
}

func hasWriter(l *LifetimeInfo) bool {
	for _, u := range l.Usages {
		if u.IsWrite {
			return true
		}
	}
	return false
}

// writeWriteOverlap confirms either a same-pass write pair across the two
// resources, or a same-(view, pass) write on each side, per spec.md §4.3.
func writeWriteOverlap(la, lb *LifetimeInfo) bool {
	for _, ua := range la.Usages {
		if !ua.IsWrite {
			continue
		}
		for _, ub := range lb.Usages {
			if !ub.IsWrite {
				continue
			}
			if ua.Pass == ub.Pass {
				return true
			}
			if ua.Pass == ub.Pass && ua.View == ub.View {
				return true
			}
		}
	}
	return false
}

func conflictingPasses(la, lb *LifetimeInfo) []model.PassHandle {
	seen := make(map[model.PassHandle]bool)
	var out []model.PassHandle
	for _, u := range la.Usages {
		if !seen[u.Pass] {
			seen[u.Pass] = true
			out = append(out, u.Pass)
		}
	}
	for _, u := range lb.Usages {
		if !seen[u.Pass] {
			seen[u.Pass] = true
			out = append(out, u.Pass)
		}
	}
	return out
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
