package rendergraph

// This file re-exports the core data model from internal/model. The model
// lives in an internal package so that internal/tracker, internal/alias,
// internal/schedule, internal/view, internal/promote, and internal/exec
// can depend on it without importing this package back (which would create
// an import cycle, since this package calls into all of them).

import "github.com/gogpu/rendergraph/internal/model"

// Handle types, see internal/model/handle.go.
type (
	ResourceHandle = model.ResourceHandle
	PassHandle     = model.PassHandle
	ViewIndex      = model.ViewIndex
)

const (
	InvalidResourceHandle = model.InvalidResourceHandle
	InvalidPassHandle     = model.InvalidPassHandle
	InvalidViewIndex      = model.InvalidViewIndex
	DebugFillHandle       = model.DebugFillHandle
)

type handleAllocator = model.HandleAllocator

var newHandleAllocator = model.NewHandleAllocator

// Enums, see internal/model/enums.go.
type (
	ResourceState = model.ResourceState
	Scope         = model.Scope
	Lifetime      = model.Lifetime
	Queue         = model.Queue
	Severity      = model.Severity
	ErrorKind     = model.ErrorKind
)

const (
	StateUndefined       = model.StateUndefined
	StateCommon          = model.StateCommon
	StateVertexIndexSRV  = model.StateVertexIndexSRV
	StateConstantSRV     = model.StateConstantSRV
	StatePixelSRV        = model.StatePixelSRV
	StateNonPixelSRV     = model.StateNonPixelSRV
	StateAllShaderSRV    = model.StateAllShaderSRV
	StateCopySource      = model.StateCopySource
	StateRenderTarget    = model.StateRenderTarget
	StateDepthWrite      = model.StateDepthWrite
	StateDepthRead       = model.StateDepthRead
	StateUAV             = model.StateUAV
	StateCopyDestination = model.StateCopyDestination
	StatePresent         = model.StatePresent
)

const (
	ScopeShared   = model.ScopeShared
	ScopePerView  = model.ScopePerView
	ScopeViewless = model.ScopeViewless
)

const (
	LifetimeFrameLocal = model.LifetimeFrameLocal
	LifetimeTransient  = model.LifetimeTransient
	LifetimeExternal   = model.LifetimeExternal
)

const (
	QueueGraphics = model.QueueGraphics
	QueueCompute  = model.QueueCompute
	QueueCopy     = model.QueueCopy
)

const (
	SeverityWarning = model.SeverityWarning
	SeverityError   = model.SeverityError
)

const (
	KindCircularDependency        = model.KindCircularDependency
	KindMissingDependency         = model.KindMissingDependency
	KindInvalidDependencyOrder    = model.KindInvalidDependencyOrder
	KindResourceNotFound          = model.KindResourceNotFound
	KindInvalidResourceState      = model.KindInvalidResourceState
	KindResourceLifetimeViolation = model.KindResourceLifetimeViolation
	KindResourceAliasHazard       = model.KindResourceAliasHazard
	KindViewScopeViolation        = model.KindViewScopeViolation
	KindViewInfoMissing           = model.KindViewInfoMissing
	KindSuboptimalScheduling      = model.KindSuboptimalScheduling
	KindMemoryPressure            = model.KindMemoryPressure
	KindInvalidConfiguration      = model.KindInvalidConfiguration
	KindInternalError             = model.KindInternalError
)

// Resource descriptors, see internal/model/descriptor.go.
type (
	ResourceDescriptor = model.ResourceDescriptor
	TextureDescriptor  = model.TextureDescriptor
	BufferDescriptor   = model.BufferDescriptor
	TextureUsage       = model.TextureUsage
	BufferUsage        = model.BufferUsage
)

const (
	TextureUsageCopySrc          = model.TextureUsageCopySrc
	TextureUsageCopyDst          = model.TextureUsageCopyDst
	TextureUsageTextureBinding   = model.TextureUsageTextureBinding
	TextureUsageStorageBinding   = model.TextureUsageStorageBinding
	TextureUsageRenderAttachment = model.TextureUsageRenderAttachment
)

const (
	BufferUsageCopySrc  = model.BufferUsageCopySrc
	BufferUsageCopyDst  = model.BufferUsageCopyDst
	BufferUsageVertex   = model.BufferUsageVertex
	BufferUsageIndex    = model.BufferUsageIndex
	BufferUsageUniform  = model.BufferUsageUniform
	BufferUsageStorage  = model.BufferUsageStorage
	BufferUsageIndirect = model.BufferUsageIndirect
)

const InvalidBindlessIndex = model.InvalidBindlessIndex

var (
	NewTextureDescriptor = model.NewTextureDescriptor
	NewBufferDescriptor  = model.NewBufferDescriptor
)

// Pass model, see internal/model/pass.go.
type (
	Pass              = model.Pass
	ExecutorFunc      = model.ExecutorFunc
	TaskExecutionContext = model.TaskExecutionContext
)

var NewPass = model.NewPass

// Diagnostics, see internal/model/diagnostics.go.
type (
	ValidationError  = model.ValidationError
	ValidationResult = model.ValidationResult
	DiagnosticsSink  = model.DiagnosticsSink
)

var (
	NewValidationError  = model.NewValidationError
	NewValidationResult = model.NewValidationResult
	NewResultSink       = model.NewResultSink
)

// Cache key, see internal/model/cachekey.go.
type CacheKey = model.CacheKey

var NewCacheKey = model.NewCacheKey

// Capabilities, see internal/model/capabilities.go.
type (
	ViewInfo         = model.ViewInfo
	FrameContext     = model.FrameContext
	GraphicsLayer    = model.GraphicsLayer
	ThreadPool       = model.ThreadPool
	PassCostProfiler = model.PassCostProfiler
	NullGraphicsLayer = model.NullGraphicsLayer
)

var NewNullGraphicsLayer = model.NewNullGraphicsLayer

// Build strategy, see internal/model/strategy.go.
type (
	BuildContext       = model.BuildContext
	IGraphOptimization = model.IGraphOptimization
)

var NewBuildContext = model.NewBuildContext
