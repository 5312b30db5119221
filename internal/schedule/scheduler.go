// Package schedule builds a dependency graph from explicit and
// hazard-derived edges, topologically sorts it with Kahn's algorithm,
// refines the order by cost when a profiler is available, assigns each
// pass to a queue, and estimates frame time and the critical path.
package schedule

import (
	"sort"

	"github.com/gogpu/rendergraph/internal/model"
)

// CostFunc returns (cpuUS, gpuUS, memoryBytes) for a pass. The builder
// supplies StaticCostEstimate by default; a PassCostProfiler's
// GetUpdatedCost overrides it when present on the graph.
type CostFunc func(model.PassHandle) (cpuUS, gpuUS, memoryBytes int64)

// StaticCostEstimate is the synthetic, handle-derived cost model described
// in the design notes. Any replacement must return three non-negative
// integers with the same units; the refinement and queue-assignment logic
// here must remain unchanged regardless of which CostFunc is supplied.
func StaticCostEstimate(h model.PassHandle) (cpuUS, gpuUS, memoryBytes int64) {
	id := int64(h)
	cpuUS = 100 + (id%10)*50
	gpuUS = 500 + (id%8)*200
	memoryBytes = 10240 + (id%20)*5120
	return
}

// Scheduler is stateless between calls; each method takes exactly the
// inputs it needs so it can be exercised without constructing a Graph.
type Scheduler struct{}

// New returns a ready-to-use scheduler.
func New() *Scheduler { return &Scheduler{} }

// BuildDependencyGraph starts from each pass's explicit dependency list
// and adds hazard-derived write-before-read / write-before-write edges,
// per spec.md §4.4. Passes are visited in ascending handle order so edge
// addition is deterministic.
func (s *Scheduler) BuildDependencyGraph(passes []*model.Pass) map[model.PassHandle][]model.PassHandle {
	deps := make(map[model.PassHandle][]model.PassHandle, len(passes))
	sorted := append([]*model.Pass(nil), passes...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Handle() < sorted[j].Handle() })

	for _, p := range sorted {
		deps[p.Handle()] = append([]model.PassHandle(nil), p.Dependencies()...)
	}

	has := func(h model.PassHandle, dep model.PassHandle) bool {
		for _, d := range deps[h] {
			if d == dep {
				return true
			}
		}
		return false
	}

	lastWriter := make(map[model.ResourceHandle]model.PassHandle)
	for _, p := range sorted {
		h := p.Handle()
		for _, r := range p.Reads() {
			if w, ok := lastWriter[r]; ok && w != h && !has(h, w) {
				deps[h] = append(deps[h], w)
			}
		}
		for _, w := range p.Writes() {
			if writer, ok := lastWriter[w]; ok && writer != h && !has(h, writer) {
				deps[h] = append(deps[h], writer)
			}
			lastWriter[w] = h
		}
	}

	return deps
}

// TopologicalSort runs Kahn's algorithm over deps (pass -> predecessors).
// It returns (order, true) on success, or (nil, false) if a cycle exists
// — emitted count fell short of the total pass count.
func (s *Scheduler) TopologicalSort(passes []model.PassHandle, deps map[model.PassHandle][]model.PassHandle) ([]model.PassHandle, bool) {
	inDegree := make(map[model.PassHandle]int, len(passes))
	dependents := make(map[model.PassHandle][]model.PassHandle)

	for _, p := range passes {
		inDegree[p] = len(deps[p])
	}
	for _, p := range passes {
		for _, d := range deps[p] {
			dependents[d] = append(dependents[d], p)
		}
	}

	var ready []model.PassHandle
	for _, p := range passes {
		if inDegree[p] == 0 {
			ready = append(ready, p)
		}
	}
	sort.Slice(ready, func(i, j int) bool { return ready[i] < ready[j] })

	order := make([]model.PassHandle, 0, len(passes))
	for len(ready) > 0 {
		p := ready[0]
		ready = ready[1:]
		order = append(order, p)

		var newlyReady []model.PassHandle
		for _, dep := range dependents[p] {
			inDegree[dep]--
			if inDegree[dep] == 0 {
				newlyReady = append(newlyReady, dep)
			}
		}
		sort.Slice(newlyReady, func(i, j int) bool { return newlyReady[i] < newlyReady[j] })
		ready = append(ready, newlyReady...)
	}

	if len(order) < len(passes) {
		return nil, false
	}
	return order, true
}

// RefineByCost assigns each pass a level (1 + max predecessor level, roots
// at 0) and stable-sorts within each level by descending GPU cost, then
// CPU cost, then ascending handle id for determinism, per spec.md §4.4.
func (s *Scheduler) RefineByCost(order []model.PassHandle, deps map[model.PassHandle][]model.PassHandle, cost CostFunc) []model.PassHandle {
	level := make(map[model.PassHandle]int, len(order))
	for _, p := range order {
		maxPred := -1
		for _, d := range deps[p] {
			if l, ok := level[d]; ok && l > maxPred {
				maxPred = l
			}
		}
		level[p] = maxPred + 1
	}

	maxLevel := 0
	for _, l := range level {
		if l > maxLevel {
			maxLevel = l
		}
	}

	byLevel := make([][]model.PassHandle, maxLevel+1)
	for _, p := range order {
		l := level[p]
		byLevel[l] = append(byLevel[l], p)
	}

	refined := make([]model.PassHandle, 0, len(order))
	for _, bucket := range byLevel {
		sort.SliceStable(bucket, func(i, j int) bool {
			_, gi, _ := cost(bucket[i])
			_, gj, _ := cost(bucket[j])
			if gi != gj {
				return gi > gj
			}
			ci, _, _ := cost(bucket[i])
			cj, _, _ := cost(bucket[j])
			if ci != cj {
				return ci > cj
			}
			return bucket[i] < bucket[j]
		})
		refined = append(refined, bucket...)
	}

	return refined
}

const (
	copyMemoryThreshold = 8 * 1024 * 1024
	copySpillFloor      = 4 * 1024 * 1024
	computeSpillMargin  = 1.2
)

func classify(cpuUS, gpuUS, memoryBytes int64) model.Queue {
	if memoryBytes > copyMemoryThreshold && gpuUS < 2*cpuUS {
		return model.QueueCopy
	}
	if gpuUS > 2*cpuUS {
		return model.QueueCompute
	}
	return model.QueueGraphics
}

// AssignQueues walks order maintaining cumulative load per queue (in
// milliseconds), classifies each pass, applies the spill rules from
// spec.md §4.4, and returns the per-pass queue assignment plus the
// estimated total frame time in milliseconds.
func (s *Scheduler) AssignQueues(order []model.PassHandle, cost CostFunc) (assignment []model.Queue, frameTimeMS float64) {
	var load [3]float64 // indexed by model.Queue
	assignment = make([]model.Queue, len(order))

	for i, p := range order {
		cpuUS, gpuUS, memoryBytes := cost(p)
		q := classify(cpuUS, gpuUS, memoryBytes)
		durationMS := float64(maxInt64(cpuUS, gpuUS)) / 1000.0

		switch q {
		case model.QueueGraphics:
			if least := leastLoaded(load); least != model.QueueGraphics && load[least] < load[model.QueueGraphics] {
				q = least
			}
		case model.QueueCompute:
			if load[model.QueueCompute]+durationMS > load[model.QueueGraphics]*computeSpillMargin {
				q = model.QueueGraphics
			}
		case model.QueueCopy:
			if memoryBytes < copySpillFloor {
				q = model.QueueGraphics
			}
		}

		assignment[i] = q
		load[q] += durationMS
		frameTimeMS += durationMS
	}

	return assignment, frameTimeMS
}

func leastLoaded(load [3]float64) model.Queue {
	best := model.Queue(0)
	for q := model.Queue(1); q < 3; q++ {
		if load[q] < load[best] {
			best = q
		}
	}
	return best
}

// CriticalPath computes longest[p] = cost(p) + max(longest[d] for d in
// deps(p)) over order (assumed topologically sorted), then reconstructs
// the path by repeatedly descending into the maximal-longest dependency
// from the pass with the overall maximum.
func (s *Scheduler) CriticalPath(order []model.PassHandle, deps map[model.PassHandle][]model.PassHandle, cost CostFunc) (tail model.PassHandle, path []model.PassHandle) {
	longest := make(map[model.PassHandle]float64, len(order))
	for _, p := range order {
		cpuUS, gpuUS, _ := cost(p)
		c := float64(maxInt64(cpuUS, gpuUS)) / 1000.0

		maxPred := 0.0
		for _, d := range deps[p] {
			if longest[d] > maxPred {
				maxPred = longest[d]
			}
		}
		longest[p] = c + maxPred
	}

	var best model.PassHandle
	bestVal := -1.0
	for _, p := range order {
		if longest[p] > bestVal {
			bestVal = longest[p]
			best = p
		}
	}

	cur := best
	path = []model.PassHandle{cur}
	for {
		d := deps[cur]
		if len(d) == 0 {
			break
		}
		next := d[0]
		nextVal := longest[next]
		for _, cand := range d[1:] {
			if longest[cand] > nextVal {
				next = cand
				nextVal = longest[cand]
			}
		}
		path = append(path, next)
		cur = next
	}

	// Reverse so the path reads root -> tail.
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}

	return best, path
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
