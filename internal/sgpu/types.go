package sgpu

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Limits.
const (
	MaxVertexBuffers      = 4
	MaxShaderStageUBs     = 4
	MaxShaderStageImages  = 12
	MaxColorAttachments   = 4
	MaxMipmaps            = 16
	CubeFaces             = 6
	uniformAlignment      = 256
	defaultUniformBufSize = 4 << 20
)

// Resource handles. The zero value of each is invalid.
type (
	Buffer   struct{ ID uint32 }
	Image    struct{ ID uint32 }
	Shader   struct{ ID uint32 }
	Pipeline struct{ ID uint32 }
)

// BufferType selects how a buffer is bound.
type BufferType uint8

// Buffer types.
const (
	BufferTypeDefault BufferType = iota // vertex
	BufferTypeVertex
	BufferTypeIndex
)

// Usage describes how often a resource's content changes.
type Usage uint8

// Usages.
const (
	UsageDefault Usage = iota // immutable
	UsageImmutable
	UsageDynamic
	UsageStream
)

// ImageType is the shape of an image.
type ImageType uint8

// Image types.
const (
	ImageTypeDefault ImageType = iota // 2D
	ImageType2D
	ImageTypeCube
	ImageType3D
	ImageTypeArray
)

// ShaderStage selects the vertex or fragment stage.
type ShaderStage uint8

// Shader stages.
const (
	StageVS ShaderStage = iota
	StageFS
)

// Action is a pass attachment load action.
type Action uint8

// Pass actions.
const (
	ActionDefault Action = iota // clear
	ActionClear
	ActionLoad
	ActionDontCare
)

// ColorMask selects which color channels a pipeline writes.
// The zero value writes all channels; use ColorMaskNone to write none.
type ColorMask uint8

// Color mask bits.
const (
	ColorMaskR    ColorMask = 1 << 0
	ColorMaskG    ColorMask = 1 << 1
	ColorMaskB    ColorMask = 1 << 2
	ColorMaskA    ColorMask = 1 << 3
	ColorMaskRGBA           = ColorMaskR | ColorMaskG | ColorMaskB | ColorMaskA
	ColorMaskNone ColorMask = 1 << 4
)

// Desc configures a Context.
type Desc struct {
	BufferPoolSize   int
	ImagePoolSize    int
	ShaderPoolSize   int
	PipelinePoolSize int

	// Size of the default framebuffer in pixels.
	Width, Height int

	SampleCount int
	ColorFormat gputypes.TextureFormat
	DepthFormat gputypes.TextureFormat

	// UniformBufferSize is the per-frame uniform ring size in bytes.
	UniformBufferSize int

	// ShaderCacheSize is the number of compiled WGSL sources kept for reuse.
	ShaderCacheSize int
}

func (d Desc) withDefaults() Desc {
	def := func(v, fallback int) int {
		if v <= 0 {
			return fallback
		}
		return v
	}
	d.BufferPoolSize = def(d.BufferPoolSize, 128)
	d.ImagePoolSize = def(d.ImagePoolSize, 128)
	d.ShaderPoolSize = def(d.ShaderPoolSize, 32)
	d.PipelinePoolSize = def(d.PipelinePoolSize, 64)
	d.Width = def(d.Width, 640)
	d.Height = def(d.Height, 480)
	d.SampleCount = def(d.SampleCount, 1)
	d.UniformBufferSize = def(d.UniformBufferSize, defaultUniformBufSize)
	d.ShaderCacheSize = def(d.ShaderCacheSize, 32)
	if d.ColorFormat == gputypes.TextureFormatUndefined {
		d.ColorFormat = gputypes.TextureFormatRGBA8Unorm
	}
	if d.DepthFormat == gputypes.TextureFormatUndefined {
		d.DepthFormat = gputypes.TextureFormatDepth24PlusStencil8
	}
	return d
}

// BufferDesc describes a vertex or index buffer.
type BufferDesc struct {
	Size    int
	Type    BufferType
	Usage   Usage
	Content []byte
	Label   string
}

// ImageContent holds initial pixel data per cube face (or array layer) and mip level.
type ImageContent struct {
	SubImage [CubeFaces][MaxMipmaps][]byte
}

// ImageDesc describes a texture.
type ImageDesc struct {
	Type         ImageType
	RenderTarget bool
	Width        int
	Height       int
	Depth        int // depth for 3D images, layers for array images
	NumMipmaps   int
	Usage        Usage
	PixelFormat  gputypes.TextureFormat
	SampleCount  int
	MinFilter    gputypes.FilterMode
	MagFilter    gputypes.FilterMode
	MipmapFilter gputypes.FilterMode
	WrapU        gputypes.AddressMode
	WrapV        gputypes.AddressMode
	WrapW        gputypes.AddressMode
	Content      ImageContent
	Label        string
}

// UniformBlockDesc declares one uniform block of a shader stage.
type UniformBlockDesc struct {
	Name string
	Size int
}

// ShaderImageDesc declares one texture binding of a shader stage.
type ShaderImageDesc struct {
	Name string
	Type ImageType
}

// ShaderStageDesc describes one stage of a shader.
type ShaderStageDesc struct {
	Entry         string
	UniformBlocks []UniformBlockDesc
	Images        []ShaderImageDesc
}

// ShaderDesc describes a shader. WGSL Source is compiled to SPIR-V unless
// SPIRV is already provided.
//
// Uniform block i of the vertex stage is bound at @group(0) @binding(i),
// fragment blocks at @binding(4+i). Image i of the vertex stage is bound at
// @group(1) @binding(2i) with its sampler at @binding(2i+1); fragment images
// start at @binding(24).
type ShaderDesc struct {
	Source string
	SPIRV  []uint32
	VS     ShaderStageDesc
	FS     ShaderStageDesc
	Label  string
}

// StencilState describes one face of the stencil test.
type StencilState struct {
	FailOp      hal.StencilOperation
	DepthFailOp hal.StencilOperation
	PassOp      hal.StencilOperation
	Compare     gputypes.CompareFunction
}

// DepthStencilState describes depth and stencil testing.
type DepthStencilState struct {
	StencilFront      StencilState
	StencilBack       StencilState
	DepthCompare      gputypes.CompareFunction
	DepthWriteEnabled bool
	StencilEnabled    bool
	StencilReadMask   uint8
	StencilWriteMask  uint8
	StencilRef        uint8
}

// BlendState describes color blending.
type BlendState struct {
	Enabled              bool
	SrcFactorRGB         gputypes.BlendFactor
	DstFactorRGB         gputypes.BlendFactor
	OpRGB                gputypes.BlendOperation
	SrcFactorAlpha       gputypes.BlendFactor
	DstFactorAlpha       gputypes.BlendFactor
	OpAlpha              gputypes.BlendOperation
	ColorWriteMask       ColorMask
	ColorAttachmentCount int
	ColorFormat          gputypes.TextureFormat
	DepthFormat          gputypes.TextureFormat
	BlendColor           gputypes.Color
}

// RasterizerState describes primitive rasterization.
type RasterizerState struct {
	AlphaToCoverageEnabled bool
	CullMode               gputypes.CullMode
	FaceWinding            gputypes.FrontFace
	SampleCount            int
	DepthBias              int32
	DepthBiasSlopeScale    float32
	DepthBiasClamp         float32
}

// PipelineDesc describes a render pipeline.
type PipelineDesc struct {
	Shader        Shader
	Layouts       []gputypes.VertexBufferLayout
	PrimitiveType gputypes.PrimitiveTopology
	IndexType     gputypes.IndexFormat // Undefined for non-indexed draws
	DepthStencil  DepthStencilState
	Blend         BlendState
	Rasterizer    RasterizerState
	Label         string
}

// ColorAttachmentAction is the load action of one color attachment.
type ColorAttachmentAction struct {
	Action Action
	Value  gputypes.Color
}

// DepthAttachmentAction is the load action of the depth attachment.
type DepthAttachmentAction struct {
	Action Action
	Value  float32
}

// StencilAttachmentAction is the load action of the stencil attachment.
type StencilAttachmentAction struct {
	Action Action
	Value  uint32
}

// PassAction describes what happens to attachments at the start of a pass.
type PassAction struct {
	Colors  [MaxColorAttachments]ColorAttachmentAction
	Depth   DepthAttachmentAction
	Stencil StencilAttachmentAction
}

// Bindings are the resources bound for the next draws.
type Bindings struct {
	VertexBuffers       [MaxVertexBuffers]Buffer
	VertexBufferOffsets [MaxVertexBuffers]int
	IndexBuffer         Buffer
	IndexBufferOffset   int
	VSImages            [MaxShaderStageImages]Image
	FSImages            [MaxShaderStageImages]Image
}

// ResourceState reports the lifecycle state of a handle.
type ResourceState uint8

// Resource states.
const (
	StateInvalid ResourceState = iota
	StateValid
)
