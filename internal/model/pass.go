package model

import "context"

// TaskExecutionContext is handed to a pass executor for a single invocation.
// Every parallel invocation constructs its own context; it is never shared
// across invocations, so a pass's executor can treat it as exclusively
// owned for the duration of the call.
type TaskExecutionContext struct {
	Ctx      context.Context
	View     ViewIndex
	Parallel bool
}

// ExecutorFunc is the move-only callable a pass carries. "Move-only" in Go
// terms just means: do not copy a Pass and expect independent executor
// state: per-view clones share one underlying func via a thin wrapper
// rather than duplicating it.
type ExecutorFunc func(*TaskExecutionContext) error

// Pass is a unit of GPU work with declared read/write resources and an
// executor callable. Passes are owned by the Graph once Build completes;
// mutation is only valid through MutableReads/MutableWrites during the
// build pipeline.
type Pass struct {
	handle     PassHandle
	name       string
	scope      Scope
	view       ViewIndex
	mainThread bool

	dependencies []PassHandle

	reads      []ResourceHandle
	readStates []ResourceState

	writes      []ResourceHandle
	writeStates []ResourceState

	executor ExecutorFunc
}

// NewPass constructs a pass with no resources and no dependencies. The
// caller (via PassBuilder) fills in reads/writes/dependencies/executor
// before the pass is registered with a Builder.
func NewPass(handle PassHandle, name string, scope Scope) *Pass {
	return &Pass{handle: handle, name: name, scope: scope}
}

func (p *Pass) Handle() PassHandle  { return p.handle }
func (p *Pass) Name() string        { return p.name }
func (p *Pass) SetName(n string)    { p.name = n }
func (p *Pass) Scope() Scope        { return p.scope }
func (p *Pass) SetScope(s Scope)    { p.scope = s }
func (p *Pass) View() ViewIndex     { return p.view }
func (p *Pass) SetView(v ViewIndex) { p.view = v }

func (p *Pass) RequiresMainThread() bool    { return p.mainThread }
func (p *Pass) SetRequiresMainThread(b bool) { p.mainThread = b }

func (p *Pass) Dependencies() []PassHandle { return p.dependencies }
func (p *Pass) SetDependencies(deps []PassHandle) { p.dependencies = deps }
func (p *Pass) AddDependency(h PassHandle)  { p.dependencies = append(p.dependencies, h) }

func (p *Pass) Reads() []ResourceHandle           { return p.reads }
func (p *Pass) ReadStates() []ResourceState       { return p.readStates }
func (p *Pass) Writes() []ResourceHandle          { return p.writes }
func (p *Pass) WriteStates() []ResourceState      { return p.writeStates }

// MutableReads exposes the read-resource slice for in-place rewriting by
// per-view expansion and shared-promotion. Only valid during build; after
// Build returns, passes are observably immutable.
func (p *Pass) MutableReads() []ResourceHandle { return p.reads }

// MutableWrites exposes the write-resource slice for in-place rewriting.
func (p *Pass) MutableWrites() []ResourceHandle { return p.writes }

// AddRead appends a read with its required state.
func (p *Pass) AddRead(h ResourceHandle, state ResourceState) {
	p.reads = append(p.reads, h)
	p.readStates = append(p.readStates, state)
}

// AddWrite appends a write with its required state.
func (p *Pass) AddWrite(h ResourceHandle, state ResourceState) {
	p.writes = append(p.writes, h)
	p.writeStates = append(p.writeStates, state)
}

// SetExecutor installs the callable invoked for this pass.
func (p *Pass) SetExecutor(fn ExecutorFunc) { p.executor = fn }

// Executor returns the callable installed for this pass, or nil.
func (p *Pass) Executor() ExecutorFunc { return p.executor }

// ArityValid reports whether |reads| == |read_states| and
// |writes| == |write_states|, the invariant enforced during validation.
func (p *Pass) ArityValid() bool {
	return len(p.reads) == len(p.readStates) && len(p.writes) == len(p.writeStates)
}

// HasSelfWriteConflict reports whether this pass writes the same resource
// more than once, the self-write-conflict condition the alias analyzer
// checks for during usage registration.
func (p *Pass) HasSelfWriteConflict() bool {
	seen := make(map[ResourceHandle]bool, len(p.writes))
	for _, w := range p.writes {
		if seen[w] {
			return true
		}
		seen[w] = true
	}
	return false
}

// Clone returns a deep copy of p under a new handle: dependencies,
// read/write arrays and states are copied; the executor is deliberately
// NOT copied — callers install a shared-executor wrapper separately so
// that every per-view clone invokes the same underlying function without
// the template pass ever running itself.
func (p *Pass) Clone(newHandle PassHandle) *Pass {
	clone := &Pass{
		handle:     newHandle,
		name:       p.name,
		scope:      p.scope,
		view:       p.view,
		mainThread: p.mainThread,
	}
	clone.dependencies = append([]PassHandle(nil), p.dependencies...)
	clone.reads = append([]ResourceHandle(nil), p.reads...)
	clone.readStates = append([]ResourceState(nil), p.readStates...)
	clone.writes = append([]ResourceHandle(nil), p.writes...)
	clone.writeStates = append([]ResourceState(nil), p.writeStates...)
	return clone
}
