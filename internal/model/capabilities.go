package model

import (
	"context"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// ViewInfo describes a single camera/perspective for a frame.
type ViewInfo struct {
	Name     string
	Viewport struct{ Width, Height uint32 }
}

// FrameContext is the host-provided capability describing a frame: its
// active view set, frame index, and the optional worker pool / graphics
// layer it makes available to the graph.
type FrameContext interface {
	Views() []ViewInfo
	FrameIndex() int64
	ThreadPool() (ThreadPool, bool)
	AcquireGraphics() (GraphicsLayer, bool)
}

// GraphicsLayer is the opaque graphics-backend capability. The core never
// records real GPU commands; it only allocates bindless descriptor slots
// and schedules resource reclaim through this interface. GraphicsLayer
// embeds gpucontext.DeviceProvider so a real implementation also exposes
// device/queue/adapter access to pass executors for free.
type GraphicsLayer interface {
	gpucontext.DeviceProvider

	// AllocateDescriptor reserves the next bindless descriptor index.
	AllocateDescriptor() uint32
	// ScheduleResourceReclaim enqueues a frame-local resource for release
	// once its GPU fence (out of scope here) is known to have passed.
	ScheduleResourceReclaim(handle ResourceHandle, frameIndex int64, debugName string)
	// ValidateIntegrationState reports whether the layer's internal
	// bookkeeping is self-consistent.
	ValidateIntegrationState() bool
	// GetIntegrationStats returns (active resources, allocated descriptors,
	// pending reclaims).
	GetIntegrationStats() (activeResources, allocatedDescriptors, pendingReclaims int)
}

// ThreadPool is the host-supplied worker pool capability. Run dispatches
// fn and returns once it completes or ctx is cancelled.
type ThreadPool interface {
	Run(ctx context.Context, fn func(context.Context) error) error
}

// PassCostProfiler is an optional capability that, when present on the
// graph, drives cost-aware level refinement and queue assignment instead
// of the synthetic cost model.
type PassCostProfiler interface {
	BeginPass(PassHandle)
	EndPass(PassHandle)
	RecordCPUTime(h PassHandle, microseconds int64)
	RecordGPUTime(h PassHandle, microseconds int64)
	GetUpdatedCost(h PassHandle) (cpuUS, gpuUS int64, bytes int64)
}

// NullGraphicsLayer is a GraphicsLayer that mints sequential descriptor
// indices and otherwise does nothing. It is the builder's default when no
// capability is supplied, mirroring the teacher's NullDeviceHandle.
type NullGraphicsLayer struct {
	next uint32
}

// NewNullGraphicsLayer returns a ready-to-use no-op graphics layer.
func NewNullGraphicsLayer() *NullGraphicsLayer { return &NullGraphicsLayer{} }

func (n *NullGraphicsLayer) Device() gpucontext.Device   { return nil }
func (n *NullGraphicsLayer) Queue() gpucontext.Queue     { return nil }
func (n *NullGraphicsLayer) Adapter() gpucontext.Adapter { return nil }
func (n *NullGraphicsLayer) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatUndefined
}

func (n *NullGraphicsLayer) AllocateDescriptor() uint32 {
	idx := n.next
	n.next++
	return idx
}

func (n *NullGraphicsLayer) ScheduleResourceReclaim(ResourceHandle, int64, string) {}

func (n *NullGraphicsLayer) ValidateIntegrationState() bool { return true }

func (n *NullGraphicsLayer) GetIntegrationStats() (int, int, int) {
	return 0, int(n.next), 0
}

var _ GraphicsLayer = (*NullGraphicsLayer)(nil)
