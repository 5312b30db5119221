package model

import "sync"

// ResourceHandle identifies a resource descriptor within a single build.
// Distinct from PassHandle and ViewIndex so the compiler rejects accidental
// mixing between the three handle spaces.
type ResourceHandle uint32

// PassHandle identifies a pass within a single build.
type PassHandle uint32

// ViewIndex identifies an active view (camera/perspective) within a frame.
type ViewIndex uint32

// InvalidResourceHandle marks an unallocated or unknown resource.
const InvalidResourceHandle ResourceHandle = 0xFFFFFFFF

// InvalidPassHandle marks an unallocated or unknown pass.
const InvalidPassHandle PassHandle = 0xFFFFFFFF

// InvalidViewIndex marks an unassigned view.
const InvalidViewIndex ViewIndex = 0xFFFFFFFF

// DebugFillHandle is the well-known uninitialized-memory pattern recognised
// by the alias analyzer. Seeing it as a resource handle in a usage record
// means the caller forgot to fill in a real handle; the first occurrence is
// downgraded to a warning and the rest are ignored.
const DebugFillHandle ResourceHandle = 0xBEBEBEBE

// IsValid reports whether h refers to an allocated resource.
func (h ResourceHandle) IsValid() bool { return h != InvalidResourceHandle }

// IsValid reports whether h refers to an allocated pass.
func (h PassHandle) IsValid() bool { return h != InvalidPassHandle }

// IsValid reports whether v identifies a real view.
func (v ViewIndex) IsValid() bool { return v != InvalidViewIndex }

// HandleAllocator mints dense, monotonically increasing handles for a
// single build. Handles start at 1 and are never reused within a frame, so
// unlike the reusing, free-list-backed allocators GPU trackers typically
// use, this one is deliberately one-way: Alloc only ever grows the counter.
type HandleAllocator struct {
	mu   sync.Mutex
	next uint32
}

// NewHandleAllocator returns an allocator whose first Alloc call returns 1.
func NewHandleAllocator() *HandleAllocator {
	return &HandleAllocator{next: 1}
}

// AllocResource mints the next resource handle.
func (a *HandleAllocator) AllocResource() ResourceHandle {
	a.mu.Lock()
	defer a.mu.Unlock()
	h := a.next
	a.next++
	return ResourceHandle(h)
}

// AllocPass mints the next pass handle. It draws from the same counter as
// AllocResource, so one allocator never hands out the same value to a
// resource and a pass. The builder keeps the two kinds independent by
// owning two allocators, one per handle kind, both rooted at 1.
func (a *HandleAllocator) AllocPass() PassHandle {
	a.mu.Lock()
	defer a.mu.Unlock()
	h := a.next
	a.next++
	return PassHandle(h)
}
