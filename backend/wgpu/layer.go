// Package wgpu adapts a github.com/gogpu/wgpu device to the
// rendergraph.GraphicsLayer capability. It is the reference backend for
// hosts that already own a wgpu.Device; other hosts implement the
// capability directly the way gogpu-gg's DeviceHandle doc comment
// describes (a small struct forwarding to their own context).
package wgpu

import (
	"sync"
	"sync/atomic"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu"

	"github.com/gogpu/rendergraph"
)

// Layer wraps a *wgpu.Device as a rendergraph.GraphicsLayer. It does not
// itself implement gpucontext.DeviceProvider's Device/Queue/Adapter trio
// with real values — github.com/gogpu/wgpu's own types do not satisfy
// gpucontext's interfaces, the same gap gogpu-gg's DeviceHandle
// documentation calls out as the host's responsibility to bridge — so
// those three accessors return nil here, same as model.NullGraphicsLayer.
// What this layer does provide for real is bindless descriptor bookkeeping
// and reclaim backed by actual texture release calls (only textures are
// registered and released; buffers are not tracked).
type Layer struct {
	device *wgpu.Device
	format gputypes.TextureFormat

	next atomic.Uint32

	mu       sync.Mutex
	textures map[rendergraph.ResourceHandle]*wgpu.Texture
	pending  int
}

// New wraps device. surfaceFormat is reported through SurfaceFormat for
// passes that need to match a swapchain's format.
func New(device *wgpu.Device, surfaceFormat gputypes.TextureFormat) *Layer {
	return &Layer{
		device:   device,
		format:   surfaceFormat,
		textures: make(map[rendergraph.ResourceHandle]*wgpu.Texture),
	}
}

// RegisterTexture associates a resource handle with the real texture a
// pass executor created for it, so ScheduleResourceReclaim can release the
// underlying GPU object instead of merely forgetting the handle.
func (l *Layer) RegisterTexture(handle rendergraph.ResourceHandle, tex *wgpu.Texture) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.textures[handle] = tex
}

func (l *Layer) Device() gpucontext.Device   { return nil }
func (l *Layer) Queue() gpucontext.Queue     { return nil }
func (l *Layer) Adapter() gpucontext.Adapter { return nil }

func (l *Layer) SurfaceFormat() gputypes.TextureFormat { return l.format }

// AllocateDescriptor mints sequential bindless indices, same scheme as
// model.NullGraphicsLayer, but backed by a real atomic counter since a
// wgpu-backed host may allocate descriptors from more than one goroutine
// across overlapping frames.
func (l *Layer) AllocateDescriptor() uint32 {
	return l.next.Add(1) - 1
}

// ScheduleResourceReclaim releases the registered texture for handle, if
// any, and drops it from the registry. There is no fence wait here: the
// frame-local lifetime contract only promises the resource is no longer
// read after this call, not that the GPU has finished with it, which
// matches how wgpu.Texture.Release defers actual destruction to the
// backend's own submission tracking.
func (l *Layer) ScheduleResourceReclaim(handle rendergraph.ResourceHandle, frameIndex int64, debugName string) {
	l.mu.Lock()
	tex, ok := l.textures[handle]
	if ok {
		delete(l.textures, handle)
	}
	l.mu.Unlock()

	if ok && tex != nil {
		tex.Release()
	}
}

// ValidateIntegrationState reports whether the device handle is still
// live; a released or nil device can never satisfy further allocation.
func (l *Layer) ValidateIntegrationState() bool {
	return l.device != nil
}

// GetIntegrationStats returns the number of textures still registered,
// the number of descriptor indices minted so far, and zero pending reclaims
// (reclaim here is synchronous, not deferred to a fence).
func (l *Layer) GetIntegrationStats() (activeResources, allocatedDescriptors, pendingReclaims int) {
	l.mu.Lock()
	activeResources = len(l.textures)
	l.mu.Unlock()
	return activeResources, int(l.next.Load()), 0
}

var _ rendergraph.GraphicsLayer = (*Layer)(nil)
