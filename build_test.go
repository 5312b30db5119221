package rendergraph

import (
	"context"
	"strings"
	"sync"
	"testing"
)

// multiViewFrame is a minimal FrameContext for driving Builder/Graph
// end-to-end: a fixed view list, no graphics capability (the builder falls
// back to NewNullGraphicsLayer), and an optional recording thread pool.
type multiViewFrame struct {
	views []ViewInfo
	pool  ThreadPool
}

func (f *multiViewFrame) Views() []ViewInfo         { return f.views }
func (f *multiViewFrame) FrameIndex() int64         { return 0 }
func (f *multiViewFrame) AcquireGraphics() (GraphicsLayer, bool) {
	return nil, false
}
func (f *multiViewFrame) ThreadPool() (ThreadPool, bool) {
	if f.pool == nil {
		return nil, false
	}
	return f.pool, true
}

// serialPool runs every submitted task inline, recording how many ran and
// in what order, so a test can assert the executor actually dispatched
// through frameCtx's pool rather than falling back to serial execution.
type serialPool struct {
	mu  sync.Mutex
	ran []string
}

func (p *serialPool) Run(ctx context.Context, fn func(context.Context) error) error {
	err := fn(ctx)
	p.mu.Lock()
	p.ran = append(p.ran, "ran")
	p.mu.Unlock()
	return err
}

// TestBuilder_TwoViewPromotion drives spec.md §8 scenario 1 end-to-end
// through the real public API: a PerView depth texture read by a single
// PerView pass across two views should come out of Build as one Shared
// resource, with both view clones of the pass reading that same handle.
func TestBuilder_TwoViewPromotion(t *testing.T) {
	frame := &multiViewFrame{views: []ViewInfo{{Name: "main"}, {Name: "shadow"}}}

	b := NewBuilder()
	b.BeginGraph(frame).IterateAllViews()

	depth := b.CreateTexture("depth", LifetimeFrameLocal, ScopePerView)
	depth.Width, depth.Height = 1920, 1080

	var seenReads []ResourceHandle
	var mu sync.Mutex
	b.AddRasterPass("clearDepth", ScopePerView).
		Read(depth.Handle(), StateDepthRead).
		Executor(func(ctx *TaskExecutionContext) error {
			mu.Lock()
			defer mu.Unlock()
			return nil
		})

	graph := b.Build()
	if graph == nil {
		t.Fatal("Build() returned nil")
	}
	if !graph.IsValid() {
		t.Fatalf("expected zero validation errors, got: %s", graph.Validation().GenerateReport(-1))
	}

	var depthResources []ResourceHandle
	for h, desc := range graph.Resources() {
		if strings.HasPrefix(desc.Name(), "depth") {
			depthResources = append(depthResources, h)
		}
	}
	if len(depthResources) != 1 {
		t.Fatalf("got %d resources matching depth*, want exactly 1 after promotion", len(depthResources))
	}
	if graph.Resources()[depthResources[0]].Scope() != ScopeShared {
		t.Errorf("promoted depth resource scope = %v, want Shared", graph.Resources()[depthResources[0]].Scope())
	}

	clones := 0
	for _, p := range graph.Passes() {
		for _, r := range p.Reads() {
			seenReads = append(seenReads, r)
		}
		clones++
	}
	if clones != 2 {
		t.Fatalf("got %d pass clones, want 2 (one per view)", clones)
	}
	for _, r := range seenReads {
		if r != depthResources[0] {
			t.Errorf("clone read handle = %d, want the single promoted depth handle %d", r, depthResources[0])
		}
	}

	if err := graph.Execute(context.Background(), frame); err != nil {
		t.Fatalf("Execute() = %v", err)
	}
}

// TestBuilder_PerViewPassRemap drives spec.md §8 scenario 3: a PerView
// pass reading a Shared resource and writing a PerView resource must, once
// expanded, keep its read pointed at the single Shared handle while each
// clone's write is remapped to its own view-specific resource clone.
func TestBuilder_PerViewPassRemap(t *testing.T) {
	frame := &multiViewFrame{views: []ViewInfo{{Name: "A"}, {Name: "B"}}}

	b := NewBuilder()
	b.BeginGraph(frame).IterateAllViews()

	sharedTable := b.CreateTexture("sharedTable", LifetimeExternal, ScopeShared)
	color := b.CreateTexture("color", LifetimeFrameLocal, ScopePerView)

	b.AddRasterPass("shade", ScopePerView).
		Read(sharedTable.Handle(), StateConstantSRV).
		Write(color.Handle(), StateRenderTarget).
		Executor(func(ctx *TaskExecutionContext) error { return nil })

	graph := b.Build()
	if graph == nil {
		t.Fatal("Build() returned nil")
	}
	if !graph.IsValid() {
		t.Fatalf("expected zero validation errors, got: %s", graph.Validation().GenerateReport(-1))
	}

	if len(graph.Passes()) != 2 {
		t.Fatalf("got %d passes, want 2 clones of shade", len(graph.Passes()))
	}

	writes := make(map[ResourceHandle]bool)
	for _, p := range graph.Passes() {
		if len(p.Reads()) != 1 || p.Reads()[0] != sharedTable.Handle() {
			t.Errorf("clone %s reads %v, want unchanged shared handle %d", p.Name(), p.Reads(), sharedTable.Handle())
		}
		if len(p.Writes()) != 1 {
			t.Fatalf("clone %s has %d writes, want 1", p.Name(), len(p.Writes()))
		}
		writes[p.Writes()[0]] = true
	}
	if len(writes) != 2 {
		t.Errorf("got %d distinct write targets across clones, want 2 (one per view)", len(writes))
	}
	for w := range writes {
		if w == color.Handle() {
			t.Error("a clone's write should never still point at the un-expanded base color handle")
		}
	}
}

// TestBuilder_ParallelBatchDispatchesThroughPool drives spec.md §8
// scenario 5: three independent Shared passes form one batch of width 3;
// with parallel execution enabled and a pool available, the executor must
// dispatch through frameCtx's pool rather than falling back to serial
// inline execution.
func TestBuilder_ParallelBatchDispatchesThroughPool(t *testing.T) {
	pool := &serialPool{}
	frame := &multiViewFrame{views: []ViewInfo{{Name: "main"}}, pool: pool}

	b := NewBuilder(WithParallelExecution(true))
	b.BeginGraph(frame)

	var ran sync.Map
	for _, name := range []string{"X", "Y", "Z"} {
		name := name
		b.AddRasterPass(name, ScopeShared).
			Executor(func(ctx *TaskExecutionContext) error {
				ran.Store(name, true)
				return nil
			})
	}

	graph := b.Build()
	if graph == nil {
		t.Fatal("Build() returned nil")
	}
	if len(graph.ExecutionOrder()) != 3 {
		t.Fatalf("got %d scheduled passes, want 3", len(graph.ExecutionOrder()))
	}

	if err := graph.Execute(context.Background(), frame); err != nil {
		t.Fatalf("Execute() = %v", err)
	}

	for _, name := range []string{"X", "Y", "Z"} {
		if _, ok := ran.Load(name); !ok {
			t.Errorf("pass %s did not run", name)
		}
	}
	pool.mu.Lock()
	dispatched := len(pool.ran)
	pool.mu.Unlock()
	if dispatched == 0 {
		t.Error("expected the executor to dispatch at least one task through frameCtx's thread pool")
	}
}

// TestBuilder_EmptyGraphBuildsWithWarnings exercises the boundary behavior
// for an empty builder: Build still returns a graph, validation carries
// warnings rather than errors, and Execute is a no-op.
func TestBuilder_EmptyGraphBuildsWithWarnings(t *testing.T) {
	frame := &multiViewFrame{views: []ViewInfo{{Name: "main"}}}

	b := NewBuilder()
	b.BeginGraph(frame)

	graph := b.Build()
	if graph == nil {
		t.Fatal("Build() returned nil")
	}
	if !graph.IsValid() {
		t.Errorf("an empty graph should still validate (warnings only), got: %s", graph.Validation().GenerateReport(-1))
	}
	if len(graph.Validation().Warnings) == 0 {
		t.Error("expected at least the 'no passes' warning")
	}
	if len(graph.Passes()) != 0 {
		t.Errorf("got %d passes, want 0", len(graph.Passes()))
	}

	if err := graph.Execute(context.Background(), frame); err != nil {
		t.Errorf("Execute() on an empty graph = %v, want nil", err)
	}
}

// TestBuilder_CircularDependencyFailsScheduling exercises the boundary
// behavior for a cyclic dependency graph: TopologicalSort must fail,
// producing a CircularDependency validation error and an empty execution
// order, per spec.md §8 scenario 2's cyclic variant.
func TestBuilder_CircularDependencyFailsScheduling(t *testing.T) {
	frame := &multiViewFrame{views: []ViewInfo{{Name: "main"}}}

	b := NewBuilder()
	b.BeginGraph(frame)

	rt := b.CreateTexture("rt", LifetimeTransient, ScopeShared)
	rt.Width, rt.Height = 512, 512

	a := b.AddRasterPass("A", ScopeShared).Write(rt.Handle(), StateRenderTarget)
	bPass := b.AddRasterPass("B", ScopeShared).Write(rt.Handle(), StateRenderTarget).DependsOn(a.Handle())
	a.DependsOn(bPass.Handle())

	graph := b.Build()
	if graph == nil {
		t.Fatal("Build() returned nil")
	}
	if graph.IsValid() {
		t.Fatal("a circular dependency should invalidate the graph")
	}
	if len(graph.ExecutionOrder()) != 0 {
		t.Errorf("got %d scheduled passes, want 0 on a cyclic graph", len(graph.ExecutionOrder()))
	}

	found := false
	for _, e := range graph.Validation().Errors {
		if e.Kind == KindCircularDependency {
			found = true
		}
	}
	if !found {
		t.Error("expected a KindCircularDependency validation error")
	}
}
