package schedule

import (
	"testing"

	"github.com/gogpu/rendergraph/internal/model"
)

func newPass(h model.PassHandle, deps ...model.PassHandle) *model.Pass {
	p := model.NewPass(h, "p", model.ScopeShared)
	p.SetDependencies(deps)
	return p
}

func TestScheduler_TopologicalSortLinearChain(t *testing.T) {
	s := New()
	passes := []*model.Pass{
		newPass(1),
		newPass(2, 1),
		newPass(3, 2),
	}
	deps := s.BuildDependencyGraph(passes)
	order, ok := s.TopologicalSort([]model.PassHandle{1, 2, 3}, deps)
	if !ok {
		t.Fatal("expected a valid topological order")
	}
	want := []model.PassHandle{1, 2, 3}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d] = %d, want %d", i, order[i], want[i])
		}
	}
}

func TestScheduler_CycleReturnsEmptyOrder(t *testing.T) {
	s := New()
	passes := []*model.Pass{
		newPass(1, 2),
		newPass(2, 1),
	}
	deps := s.BuildDependencyGraph(passes)
	_, ok := s.TopologicalSort([]model.PassHandle{1, 2}, deps)
	if ok {
		t.Fatal("expected cycle detection to fail the sort")
	}
}

// TestScheduler_WriteWriteHazardInsertsEdge exercises scenario 2 from
// spec.md §8: two passes writing the same resource with no explicit
// dependency get an implicit write-before-write edge.
func TestScheduler_WriteWriteHazardInsertsEdge(t *testing.T) {
	s := New()
	a := model.NewPass(1, "A", model.ScopeShared)
	a.AddWrite(100, model.StateRenderTarget)
	b := model.NewPass(2, "B", model.ScopeShared)
	b.AddWrite(100, model.StateRenderTarget)

	deps := s.BuildDependencyGraph([]*model.Pass{a, b})
	order, ok := s.TopologicalSort([]model.PassHandle{1, 2}, deps)
	if !ok {
		t.Fatal("expected valid order")
	}
	if order[0] != 1 || order[1] != 2 {
		t.Errorf("order = %v, want [1, 2] (A before B)", order)
	}
}

func TestScheduler_ReadAfterWriteEdge(t *testing.T) {
	s := New()
	writer := model.NewPass(1, "W", model.ScopeShared)
	writer.AddWrite(100, model.StateRenderTarget)
	reader := model.NewPass(2, "R", model.ScopeShared)
	reader.AddRead(100, model.StatePixelSRV)

	deps := s.BuildDependencyGraph([]*model.Pass{reader, writer})
	order, ok := s.TopologicalSort([]model.PassHandle{1, 2}, deps)
	if !ok {
		t.Fatal("expected valid order")
	}
	if order[0] != 1 || order[1] != 2 {
		t.Errorf("order = %v, want writer before reader", order)
	}
}

func TestScheduler_RefineByCostGroupsLevels(t *testing.T) {
	s := New()
	order := []model.PassHandle{1, 2, 3}
	deps := map[model.PassHandle][]model.PassHandle{1: {}, 2: {}, 3: {}}
	cost := func(h model.PassHandle) (int64, int64, int64) {
		switch h {
		case 1:
			return 100, 100, 0
		case 2:
			return 100, 900, 0
		default:
			return 100, 500, 0
		}
	}
	refined := s.RefineByCost(order, deps, cost)
	if refined[0] != 2 {
		t.Errorf("expected highest-GPU-cost pass first within level 0, got %v", refined)
	}
}

func TestScheduler_AssignQueuesSpillsFirstComputePassToGraphics(t *testing.T) {
	s := New()
	order := []model.PassHandle{1}
	cost := func(model.PassHandle) (int64, int64, int64) { return 100, 5000, 1024 }
	assignment, frameTime := s.AssignQueues(order, cost)
	// gpu_us > 2*cpu_us classifies the pass as compute, but with an empty
	// graphics queue any compute load exceeds 1.2x graphics, so it spills.
	if assignment[0] != model.QueueGraphics {
		t.Errorf("assignment = %v, want QueueGraphics (compute load 5 > 1.2 * graphics load 0)", assignment[0])
	}
	if frameTime <= 0 {
		t.Errorf("frameTime = %v, want > 0", frameTime)
	}
}

func TestScheduler_CriticalPathFollowsLongestChain(t *testing.T) {
	s := New()
	order := []model.PassHandle{1, 2, 3}
	deps := map[model.PassHandle][]model.PassHandle{
		1: {},
		2: {1},
		3: {1},
	}
	cost := func(h model.PassHandle) (int64, int64, int64) {
		if h == 2 {
			return 0, 10000, 0
		}
		return 0, 100, 0
	}
	tail, path := s.CriticalPath(order, deps, cost)
	if tail != 2 {
		t.Errorf("tail = %d, want 2 (highest cost)", tail)
	}
	if len(path) != 2 || path[0] != 1 || path[1] != 2 {
		t.Errorf("path = %v, want [1, 2]", path)
	}
}

func TestStaticCostEstimate_NonNegative(t *testing.T) {
	for h := model.PassHandle(0); h < 50; h++ {
		cpu, gpu, bytes := StaticCostEstimate(h)
		if cpu < 0 || gpu < 0 || bytes < 0 {
			t.Fatalf("StaticCostEstimate(%d) = (%d, %d, %d), want all non-negative", h, cpu, gpu, bytes)
		}
	}
}
