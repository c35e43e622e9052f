package gfx

import "strings"

// BufferType selects how a buffer is bound.
type BufferType uint8

// Buffer types.
const (
	VertexBuffer BufferType = iota
	IndexBuffer
)

// String returns the buffer type name.
func (t BufferType) String() string {
	switch t {
	case VertexBuffer:
		return "VertexBuffer"
	case IndexBuffer:
		return "IndexBuffer"
	default:
		return "Unknown"
	}
}

// Usage describes how often a resource's content changes.
type Usage uint8

// Resource usages.
const (
	UsageImmutable Usage = iota
	UsageDynamic
	UsageStream
)

// String returns the usage name.
func (u Usage) String() string {
	switch u {
	case UsageImmutable:
		return "Immutable"
	case UsageDynamic:
		return "Dynamic"
	case UsageStream:
		return "Stream"
	default:
		return "Unknown"
	}
}

// PrimitiveType is the topology of rendered primitives.
type PrimitiveType uint8

// Primitive types.
const (
	PrimitivePoints PrimitiveType = iota
	PrimitiveLines
	PrimitiveLineStrip
	PrimitiveTriangles
	PrimitiveTriangleStrip
)

// String returns the primitive type name.
func (p PrimitiveType) String() string {
	switch p {
	case PrimitivePoints:
		return "Points"
	case PrimitiveLines:
		return "Lines"
	case PrimitiveLineStrip:
		return "LineStrip"
	case PrimitiveTriangles:
		return "Triangles"
	case PrimitiveTriangleStrip:
		return "TriangleStrip"
	default:
		return "Unknown"
	}
}

// IndexType is the element type of an index buffer.
type IndexType uint8

// Index types.
const (
	IndexNone IndexType = iota
	IndexUInt16
	IndexUInt32
)

// String returns the index type name.
func (t IndexType) String() string {
	switch t {
	case IndexNone:
		return "None"
	case IndexUInt16:
		return "UInt16"
	case IndexUInt32:
		return "UInt32"
	default:
		return "Unknown"
	}
}

// ByteSize returns the size of one index, 0 for IndexNone.
func (t IndexType) ByteSize() int {
	switch t {
	case IndexUInt16:
		return 2
	case IndexUInt32:
		return 4
	default:
		return 0
	}
}

// StencilOp is the action taken on the stencil buffer.
type StencilOp uint8

// Stencil operations.
const (
	StencilKeep StencilOp = iota
	StencilZero
	StencilReplace
	StencilIncrClamp
	StencilDecrClamp
	StencilInvert
	StencilIncrWrap
	StencilDecrWrap
)

var stencilOpNames = [...]string{
	"Keep", "Zero", "Replace", "IncrClamp", "DecrClamp", "Invert", "IncrWrap", "DecrWrap",
}

// String returns the stencil operation name.
func (op StencilOp) String() string {
	if int(op) < len(stencilOpNames) {
		return stencilOpNames[op]
	}
	return "Unknown"
}

// CompareFunc is a depth or stencil comparison.
type CompareFunc uint8

// Comparison functions.
const (
	CompareNever CompareFunc = iota
	CompareLess
	CompareEqual
	CompareLessEqual
	CompareGreater
	CompareNotEqual
	CompareGreaterEqual
	CompareAlways
)

var compareNames = [...]string{
	"Never", "Less", "Equal", "LessEqual", "Greater", "NotEqual", "GreaterEqual", "Always",
}

// String returns the comparison name.
func (f CompareFunc) String() string {
	if int(f) < len(compareNames) {
		return compareNames[f]
	}
	return "Unknown"
}

// BlendFactor scales a blend source or destination.
type BlendFactor uint8

// Blend factors.
const (
	BlendZero BlendFactor = iota
	BlendOne
	BlendSrcColor
	BlendOneMinusSrcColor
	BlendSrcAlpha
	BlendOneMinusSrcAlpha
	BlendDstColor
	BlendOneMinusDstColor
	BlendDstAlpha
	BlendOneMinusDstAlpha
	BlendSrcAlphaSaturated
	BlendBlendColor
	BlendOneMinusBlendColor
	BlendBlendAlpha
	BlendOneMinusBlendAlpha
)

var blendFactorNames = [...]string{
	"Zero", "One", "SrcColor", "OneMinusSrcColor", "SrcAlpha", "OneMinusSrcAlpha",
	"DstColor", "OneMinusDstColor", "DstAlpha", "OneMinusDstAlpha", "SrcAlphaSaturated",
	"BlendColor", "OneMinusBlendColor", "BlendAlpha", "OneMinusBlendAlpha",
}

// String returns the blend factor name.
func (f BlendFactor) String() string {
	if int(f) < len(blendFactorNames) {
		return blendFactorNames[f]
	}
	return "Unknown"
}

// BlendOperation combines the scaled source and destination.
type BlendOperation uint8

// Blend operations.
const (
	BlendOpAdd BlendOperation = iota
	BlendOpSubtract
	BlendOpReverseSubtract
)

// String returns the blend operation name.
func (op BlendOperation) String() string {
	switch op {
	case BlendOpAdd:
		return "Add"
	case BlendOpSubtract:
		return "Subtract"
	case BlendOpReverseSubtract:
		return "ReverseSubtract"
	default:
		return "Unknown"
	}
}

// PixelChannel is a bit mask of color channels.
type PixelChannel uint8

// Pixel channel bits.
const (
	ChannelRed   PixelChannel = 1 << 0
	ChannelGreen PixelChannel = 1 << 1
	ChannelBlue  PixelChannel = 1 << 2
	ChannelAlpha PixelChannel = 1 << 3

	ChannelRGB  = ChannelRed | ChannelGreen | ChannelBlue
	ChannelRGBA = ChannelRGB | ChannelAlpha
)

// String lists the set channels, e.g. "RGB", or "None".
func (m PixelChannel) String() string {
	if m&ChannelRGBA == 0 {
		return "None"
	}
	var sb strings.Builder
	for _, c := range []struct {
		bit  PixelChannel
		name byte
	}{{ChannelRed, 'R'}, {ChannelGreen, 'G'}, {ChannelBlue, 'B'}, {ChannelAlpha, 'A'}} {
		if m&c.bit != 0 {
			sb.WriteByte(c.name)
		}
	}
	return sb.String()
}

// PixelFormat is the engine's pixel format vocabulary.
type PixelFormat uint8

// Pixel formats.
const (
	PixelFormatRGBA8 PixelFormat = iota
	PixelFormatRGB8
	PixelFormatRGBA4
	PixelFormatR5G6B5
	PixelFormatR5G5B5A1
	PixelFormatR10G10B10A2
	PixelFormatRGBA32F
	PixelFormatRGBA16F
	PixelFormatR32F
	PixelFormatL8
	PixelFormatDXT1
	PixelFormatDXT3
	PixelFormatDXT5
	PixelFormatDepth
	PixelFormatDepthStencil
	PixelFormatPVRTC2RGB
	PixelFormatPVRTC4RGB
	PixelFormatPVRTC2RGBA
	PixelFormatPVRTC4RGBA
	PixelFormatETC2RGB8
	PixelFormatETC2SRGB8
)

var pixelFormatNames = [...]string{
	"RGBA8", "RGB8", "RGBA4", "R5G6B5", "R5G5B5A1", "R10G10B10A2", "RGBA32F", "RGBA16F",
	"R32F", "L8", "DXT1", "DXT3", "DXT5", "DEPTH", "DEPTHSTENCIL", "PVRTC2_RGB",
	"PVRTC4_RGB", "PVRTC2_RGBA", "PVRTC4_RGBA", "ETC2_RGB8", "ETC2_SRGB8",
}

// String returns the pixel format name.
func (f PixelFormat) String() string {
	if int(f) < len(pixelFormatNames) {
		return pixelFormatNames[f]
	}
	return "Unknown"
}

// IsDepth reports whether f is a depth or depth-stencil format.
func (f PixelFormat) IsDepth() bool {
	return f == PixelFormatDepth || f == PixelFormatDepthStencil
}

// IsCompressed reports whether f is a block-compressed format.
func (f PixelFormat) IsCompressed() bool {
	switch f {
	case PixelFormatDXT1, PixelFormatDXT3, PixelFormatDXT5,
		PixelFormatPVRTC2RGB, PixelFormatPVRTC4RGB, PixelFormatPVRTC2RGBA, PixelFormatPVRTC4RGBA,
		PixelFormatETC2RGB8, PixelFormatETC2SRGB8:
		return true
	default:
		return false
	}
}

// Face selects triangle faces for culling.
type Face uint8

// Faces.
const (
	FaceFront Face = iota
	FaceBack
	FaceBoth
)

// String returns the face name.
func (f Face) String() string {
	switch f {
	case FaceFront:
		return "Front"
	case FaceBack:
		return "Back"
	case FaceBoth:
		return "Both"
	default:
		return "Unknown"
	}
}

// VertexFormat is the data type of one vertex component.
type VertexFormat uint8

// Vertex formats.
const (
	VertexFloat VertexFormat = iota
	VertexFloat2
	VertexFloat3
	VertexFloat4
	VertexByte4
	VertexByte4N
	VertexUByte4
	VertexUByte4N
	VertexShort2
	VertexShort2N
	VertexShort4
	VertexShort4N
	VertexUInt10N2
)

var vertexFormatNames = [...]string{
	"Float", "Float2", "Float3", "Float4", "Byte4", "Byte4N", "UByte4", "UByte4N",
	"Short2", "Short2N", "Short4", "Short4N", "UInt10_2N",
}

// String returns the vertex format name.
func (f VertexFormat) String() string {
	if int(f) < len(vertexFormatNames) {
		return vertexFormatNames[f]
	}
	return "Unknown"
}

// ByteSize returns the size of one component of format f in bytes.
func (f VertexFormat) ByteSize() int {
	switch f {
	case VertexFloat:
		return 4
	case VertexFloat2:
		return 8
	case VertexFloat3:
		return 12
	case VertexFloat4:
		return 16
	case VertexByte4, VertexByte4N, VertexUByte4, VertexUByte4N,
		VertexShort2, VertexShort2N, VertexUInt10N2:
		return 4
	case VertexShort4, VertexShort4N:
		return 8
	default:
		return 0
	}
}

// VertexStepFunction selects per-vertex or per-instance data.
type VertexStepFunction uint8

// Vertex step functions.
const (
	StepPerVertex VertexStepFunction = iota
	StepPerInstance
)

// String returns the step function name.
func (f VertexStepFunction) String() string {
	switch f {
	case StepPerVertex:
		return "PerVertex"
	case StepPerInstance:
		return "PerInstance"
	default:
		return "Unknown"
	}
}

// TextureType is the shape of a texture.
type TextureType uint8

// Texture types.
const (
	Texture2D TextureType = iota
	TextureCube
	Texture3D
	TextureArray
)

// String returns the texture type name.
func (t TextureType) String() string {
	switch t {
	case Texture2D:
		return "Texture2D"
	case TextureCube:
		return "TextureCube"
	case Texture3D:
		return "Texture3D"
	case TextureArray:
		return "TextureArray"
	default:
		return "Unknown"
	}
}

// TextureFilterMode is a texture sampling filter.
type TextureFilterMode uint8

// Texture filters.
const (
	FilterNearest TextureFilterMode = iota
	FilterLinear
	FilterNearestMipmapNearest
	FilterNearestMipmapLinear
	FilterLinearMipmapNearest
	FilterLinearMipmapLinear
)

var filterNames = [...]string{
	"Nearest", "Linear", "NearestMipmapNearest", "NearestMipmapLinear",
	"LinearMipmapNearest", "LinearMipmapLinear",
}

// String returns the filter name.
func (f TextureFilterMode) String() string {
	if int(f) < len(filterNames) {
		return filterNames[f]
	}
	return "Unknown"
}

// TextureWrapMode is a texture addressing mode.
type TextureWrapMode uint8

// Texture wrap modes.
const (
	WrapClampToEdge TextureWrapMode = iota
	WrapRepeat
	WrapMirroredRepeat
)

// String returns the wrap mode name.
func (w TextureWrapMode) String() string {
	switch w {
	case WrapClampToEdge:
		return "ClampToEdge"
	case WrapRepeat:
		return "Repeat"
	case WrapMirroredRepeat:
		return "MirroredRepeat"
	default:
		return "Unknown"
	}
}

// ShaderStage selects the vertex or fragment stage.
type ShaderStage uint8

// Shader stages.
const (
	StageVS ShaderStage = iota
	StageFS
)

// String returns the stage name.
func (s ShaderStage) String() string {
	switch s {
	case StageVS:
		return "VS"
	case StageFS:
		return "FS"
	default:
		return "Unknown"
	}
}

// Feature is an optional rendering capability queried with QueryFeature.
type Feature uint8

// Features.
const (
	FeatureTextureCompressionDXT Feature = iota
	FeatureTextureCompressionPVRTC
	FeatureTextureCompressionETC2
	FeatureTextureFloat
	FeatureTextureHalfFloat
	FeatureInstancing
	FeatureOriginBottomLeft
	FeatureOriginTopLeft
	FeatureMSAARenderTargets
	FeaturePackedVertexFormat10_2
	FeatureMultipleRenderTarget
	FeatureTexture3D
	FeatureTextureArray
)

var featureNames = [...]string{
	"TextureCompressionDXT", "TextureCompressionPVRTC", "TextureCompressionETC2",
	"TextureFloat", "TextureHalfFloat", "Instancing", "OriginBottomLeft", "OriginTopLeft",
	"MSAARenderTargets", "PackedVertexFormat_10_2", "MultipleRenderTarget",
	"Texture3D", "TextureArray",
}

// String returns the feature name.
func (f Feature) String() string {
	if int(f) < len(featureNames) {
		return featureNames[f]
	}
	return "Unknown"
}
