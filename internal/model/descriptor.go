package model

import "github.com/gogpu/gputypes"

// TextureUsage is a combinable bitmask of how a texture will be used,
// mirroring gputypes' own usage bitmask pattern.
type TextureUsage uint32

const (
	TextureUsageCopySrc TextureUsage = 1 << iota
	TextureUsageCopyDst
	TextureUsageTextureBinding
	TextureUsageStorageBinding
	TextureUsageRenderAttachment
)

// BufferUsage is a combinable bitmask of how a buffer will be used.
type BufferUsage uint32

const (
	BufferUsageCopySrc BufferUsage = 1 << iota
	BufferUsageCopyDst
	BufferUsageVertex
	BufferUsageIndex
	BufferUsageUniform
	BufferUsageStorage
	BufferUsageIndirect
)

// ResourceDescriptor is the closed interface implemented by the two resource
// descriptor variants. Pointer receivers let the builder stamp a bindless
// descriptor index into the value in place during the descriptor-allocation
// phase, rather than re-inserting a copy.
type ResourceDescriptor interface {
	// Handle returns the resource's own handle.
	Handle() ResourceHandle
	// Name returns the debug name.
	Name() string
	// SetName overwrites the debug name (used by per-view cloning to append
	// the view suffix).
	SetName(string)
	// Lifetime returns the resource lifetime category.
	Lifetime() Lifetime
	// Scope returns the resource scope.
	Scope() Scope
	// SetScope overwrites the scope (used by shared-promotion).
	SetScope(Scope)
	// DescriptorIndex returns the allocated bindless descriptor index, or
	// InvalidBindlessIndex if not yet allocated.
	DescriptorIndex() uint32
	// SetDescriptorIndex stamps the allocated bindless descriptor index.
	SetDescriptorIndex(uint32)
	// ByteSize estimates the resource's footprint for lifetime/cache
	// accounting: texture is w*h*4, buffer is its declared size.
	ByteSize() int64
	// CompatibilityHash is an order-independent combination of shape and
	// usage, used as a cheap pre-filter before FormatCompatibleWith.
	CompatibilityHash() uint64
	// FormatCompatibleWith is the stronger compatibility predicate used by
	// the alias analyzer to decide whether two resources could share
	// memory.
	FormatCompatibleWith(other ResourceDescriptor) bool
	// Clone returns a deep copy with a new handle; used by per-view
	// expansion.
	Clone(newHandle ResourceHandle) ResourceDescriptor
}

// InvalidBindlessIndex marks a resource descriptor slot not yet allocated.
const InvalidBindlessIndex uint32 = 0xFFFFFFFF

// baseDescriptor holds the attributes common to every resource variant.
type baseDescriptor struct {
	handle          ResourceHandle
	name            string
	lifetime        Lifetime
	scope           Scope
	descriptorIndex uint32
}

func newBaseDescriptor(h ResourceHandle, name string, lifetime Lifetime, scope Scope) baseDescriptor {
	return baseDescriptor{
		handle:          h,
		name:            name,
		lifetime:        lifetime,
		scope:           scope,
		descriptorIndex: InvalidBindlessIndex,
	}
}

func (d *baseDescriptor) Handle() ResourceHandle        { return d.handle }
func (d *baseDescriptor) Name() string                  { return d.name }
func (d *baseDescriptor) SetName(n string)               { d.name = n }
func (d *baseDescriptor) Lifetime() Lifetime             { return d.lifetime }
func (d *baseDescriptor) Scope() Scope                   { return d.scope }
func (d *baseDescriptor) SetScope(s Scope)               { d.scope = s }
func (d *baseDescriptor) DescriptorIndex() uint32        { return d.descriptorIndex }
func (d *baseDescriptor) SetDescriptorIndex(idx uint32)  { d.descriptorIndex = idx }

// TextureDescriptor describes a GPU texture resource.
type TextureDescriptor struct {
	baseDescriptor

	Width, Height, Depth uint32
	MipLevelCount        uint32
	SampleCount          uint32
	SampleQuality        uint32
	Format               gputypes.TextureFormat
	Usage                TextureUsage
}

// NewTextureDescriptor constructs a texture descriptor with sensible
// single-sample, single-mip defaults; callers adjust fields before the
// resource is registered with a Builder.
func NewTextureDescriptor(h ResourceHandle, name string, lifetime Lifetime, scope Scope) *TextureDescriptor {
	return &TextureDescriptor{
		baseDescriptor: newBaseDescriptor(h, name, lifetime, scope),
		Depth:          1,
		MipLevelCount:  1,
		SampleCount:    1,
	}
}

// ByteSize estimates texture footprint as width*height*4, per spec.md §3.
func (t *TextureDescriptor) ByteSize() int64 {
	return int64(t.Width) * int64(t.Height) * 4
}

// CompatibilityHash combines shape and usage order-independently.
func (t *TextureDescriptor) CompatibilityHash() uint64 {
	h := uint64(t.Width)*1000003 + uint64(t.Height)
	h = h*1000003 + uint64(t.Depth)
	h = h*1000003 + uint64(t.Format)
	h ^= uint64(t.Usage) * 2654435761
	return h
}

// FormatCompatibleWith requires identical dimensions and either an
// identical format or the same size-class with identical usage.
func (t *TextureDescriptor) FormatCompatibleWith(other ResourceDescriptor) bool {
	o, ok := other.(*TextureDescriptor)
	if !ok {
		return false
	}
	if t.Width != o.Width || t.Height != o.Height || t.Depth != o.Depth {
		return false
	}
	if t.Format == o.Format {
		return true
	}
	return sizeClass(t.ByteSize()) == sizeClass(o.ByteSize()) && t.Usage == o.Usage
}

// Clone deep-copies the descriptor under a new handle, used by per-view
// expansion. The caller is responsible for appending the view suffix to
// the name.
func (t *TextureDescriptor) Clone(newHandle ResourceHandle) ResourceDescriptor {
	clone := *t
	clone.handle = newHandle
	clone.descriptorIndex = InvalidBindlessIndex
	return &clone
}

// BufferDescriptor describes a GPU buffer resource.
type BufferDescriptor struct {
	baseDescriptor

	SizeBytes int64
	Stride    uint32
	Usage     BufferUsage
}

// NewBufferDescriptor constructs a buffer descriptor.
func NewBufferDescriptor(h ResourceHandle, name string, lifetime Lifetime, scope Scope) *BufferDescriptor {
	return &BufferDescriptor{
		baseDescriptor: newBaseDescriptor(h, name, lifetime, scope),
	}
}

// ByteSize returns the declared buffer size.
func (b *BufferDescriptor) ByteSize() int64 { return b.SizeBytes }

// CompatibilityHash combines shape and usage order-independently.
func (b *BufferDescriptor) CompatibilityHash() uint64 {
	h := uint64(b.SizeBytes)*1000003 + uint64(b.Stride)
	h ^= uint64(b.Usage) * 2654435761
	return h
}

// FormatCompatibleWith requires either identical size+usage or a size
// ratio <= 2x with one usage being a superset of the other.
func (b *BufferDescriptor) FormatCompatibleWith(other ResourceDescriptor) bool {
	o, ok := other.(*BufferDescriptor)
	if !ok {
		return false
	}
	if b.SizeBytes == o.SizeBytes && b.Usage == o.Usage {
		return true
	}
	big, small := b.SizeBytes, o.SizeBytes
	if small > big {
		big, small = small, big
	}
	if small == 0 || big/small > 2 {
		return false
	}
	return usageSuperset(b.Usage, o.Usage) || usageSuperset(o.Usage, b.Usage)
}

// Clone deep-copies the descriptor under a new handle.
func (b *BufferDescriptor) Clone(newHandle ResourceHandle) ResourceDescriptor {
	clone := *b
	clone.handle = newHandle
	clone.descriptorIndex = InvalidBindlessIndex
	return &clone
}

func usageSuperset(a, b BufferUsage) bool { return a&b == b }

// sizeClass buckets a byte size into a coarse power-of-two class so
// cross-format texture compatibility can be judged without exact equality.
func sizeClass(bytes int64) int64 {
	class := int64(1)
	for class < bytes {
		class <<= 1
	}
	return class
}

var (
	_ ResourceDescriptor = (*TextureDescriptor)(nil)
	_ ResourceDescriptor = (*BufferDescriptor)(nil)
)
