package rendergraph

import (
	"log/slog"

	"github.com/gogpu/rendergraph/cache"
)

// Builder provides a fluent API for constructing a render graph: register
// resources and passes, configure view scoping and strategies, then call
// Build to run the fixed ten-phase pipeline and obtain a scheduled Graph.
//
// A Builder is single-use per graph: BeginGraph resets its accumulated
// state and binds a frame context; Build consumes that state and clears
// the frame context reference.
type Builder struct {
	logger          *slog.Logger
	parallelEnabled bool
	strategies      []IGraphOptimization
	costProfiler    PassCostProfiler
	cache           *cache.Cache[*Graph]

	began    bool
	frameCtx FrameContext

	resAlloc  *handleAllocator
	passAlloc *handleAllocator

	resources     map[ResourceHandle]ResourceDescriptor
	resourceOrder []ResourceHandle
	passes        []*Pass

	iterateAll  bool
	restrictTo  ViewIndex
	hasRestrict bool
	viewFilter  func(ViewInfo) bool
}

// NewBuilder returns a Builder ready for BeginGraph.
func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{logger: Logger()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// BeginGraph resets the registered resources, passes, handle allocators and
// view configuration, and binds frameCtx, which supplies the view set,
// thread pool, and graphics capability consulted during Build. Strategies
// and the options given to NewBuilder are kept.
func (b *Builder) BeginGraph(frameCtx FrameContext) *Builder {
	b.began = true
	b.frameCtx = frameCtx
	b.resAlloc = newHandleAllocator()
	b.passAlloc = newHandleAllocator()
	b.resources = make(map[ResourceHandle]ResourceDescriptor)
	b.resourceOrder = nil
	b.passes = nil
	b.iterateAll = false
	b.hasRestrict = false
	b.viewFilter = nil
	return b
}

// CreateTexture mints a resource handle, registers a texture descriptor
// with the given name/lifetime/scope, and returns it for the caller to
// fill in dimensions, format, and usage before the pass graph references
// it.
func (b *Builder) CreateTexture(name string, lifetime Lifetime, scope Scope) *TextureDescriptor {
	h := b.resAlloc.AllocResource()
	desc := NewTextureDescriptor(h, name, lifetime, scope)
	b.register(h, desc)
	return desc
}

// CreateBuffer mints a resource handle and registers a buffer descriptor.
func (b *Builder) CreateBuffer(name string, lifetime Lifetime, scope Scope) *BufferDescriptor {
	h := b.resAlloc.AllocResource()
	desc := NewBufferDescriptor(h, name, lifetime, scope)
	b.register(h, desc)
	return desc
}

// CreateSurfaceTarget registers an externally owned swapchain-like texture:
// lifetime External, scope Shared, usable as a render attachment.
func (b *Builder) CreateSurfaceTarget(name string) *TextureDescriptor {
	desc := b.CreateTexture(name, LifetimeExternal, ScopeShared)
	desc.Usage |= TextureUsageRenderAttachment
	return desc
}

func (b *Builder) register(h ResourceHandle, desc ResourceDescriptor) {
	b.resources[h] = desc
	b.resourceOrder = append(b.resourceOrder, h)
}

// AddRasterPass begins configuring a raster pass via its sub-builder.
func (b *Builder) AddRasterPass(name string, scope Scope) *PassBuilder {
	return b.addPass(name, scope)
}

// AddComputePass begins configuring a compute pass via its sub-builder.
func (b *Builder) AddComputePass(name string, scope Scope) *PassBuilder {
	return b.addPass(name, scope)
}

// AddCopyPass begins configuring a copy pass via its sub-builder.
func (b *Builder) AddCopyPass(name string, scope Scope) *PassBuilder {
	return b.addPass(name, scope)
}

func (b *Builder) addPass(name string, scope Scope) *PassBuilder {
	h := b.passAlloc.AllocPass()
	p := NewPass(h, name, scope)
	b.passes = append(b.passes, p)
	return &PassBuilder{builder: b, pass: p}
}

// IterateAllViews configures the view-configuration phase to expand every
// view the frame context reports.
func (b *Builder) IterateAllViews() *Builder {
	b.iterateAll = true
	return b
}

// RestrictToView configures the view-configuration phase to expand only
// view index v.
func (b *Builder) RestrictToView(v ViewIndex) *Builder {
	b.restrictTo = v
	b.hasRestrict = true
	return b
}

// RestrictToViewsMatching configures the view-configuration phase to
// expand every view for which filter returns true.
func (b *Builder) RestrictToViewsMatching(filter func(ViewInfo) bool) *Builder {
	b.viewFilter = filter
	return b
}

// WithStrategy registers an additional optimization strategy, run after
// the default shared-promotion strategy. The registration stays on the
// Builder for every later build; BeginGraph does not clear it.
func (b *Builder) WithStrategy(strategy IGraphOptimization) *Builder {
	b.strategies = append(b.strategies, strategy)
	return b
}

// PassBuilder configures a single pass's reads, writes, dependencies, and
// executor, then hands control back to the parent Builder.
type PassBuilder struct {
	builder *Builder
	pass    *Pass
}

// Read declares that the pass accesses resource in the given state.
func (pb *PassBuilder) Read(h ResourceHandle, state ResourceState) *PassBuilder {
	pb.pass.AddRead(h, state)
	return pb
}

// Write declares that the pass writes resource in the given state.
func (pb *PassBuilder) Write(h ResourceHandle, state ResourceState) *PassBuilder {
	pb.pass.AddWrite(h, state)
	return pb
}

// DependsOn appends explicit predecessor passes.
func (pb *PassBuilder) DependsOn(deps ...PassHandle) *PassBuilder {
	for _, d := range deps {
		pb.pass.AddDependency(d)
	}
	return pb
}

// RequiresMainThread marks the pass as main-thread-only: the executor
// never dispatches it to the worker pool.
func (pb *PassBuilder) RequiresMainThread(required bool) *PassBuilder {
	pb.pass.SetRequiresMainThread(required)
	return pb
}

// Executor installs the callable invoked for this pass.
func (pb *PassBuilder) Executor(fn ExecutorFunc) *PassBuilder {
	pb.pass.SetExecutor(fn)
	return pb
}

// EndPass returns to the parent Builder to continue the fluent chain.
func (pb *PassBuilder) EndPass() *Builder {
	return pb.builder
}

// Handle returns the pass's own handle, useful for wiring DependsOn calls
// on later passes.
func (pb *PassBuilder) Handle() PassHandle {
	return pb.pass.Handle()
}
