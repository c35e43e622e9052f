package gfx

import (
	"image/color"

	"github.com/gogpu/gfx/resource"
)

// Limits of the engine vocabulary.
const (
	MaxNumColorAttachments       = 4
	MaxNumVertexBuffers          = 4
	MaxNumVertexTextures         = 4
	MaxNumFragmentTextures       = 12
	MaxNumTextureFaces           = 6
	MaxNumTextureMipMaps         = 12
	MaxNumVertexLayoutComponents = 16
	MaxNumUniformBlocksPerStage  = 4
)

// BufferDesc describes a vertex or index buffer.
//
// Content holds the initial data; the buffer is filled from
// Content[Offset:Offset+Size]. Size defaults to len(Content)-Offset.
type BufferDesc struct {
	Locator resource.Locator
	Type    BufferType
	Usage   Usage
	Size    int
	Offset  int
	Content []byte
}

// ImageDataAttrs locates the surfaces of a texture inside one byte slice,
// indexed by cube face (or array layer) and mip level.
type ImageDataAttrs struct {
	NumFaces   int
	NumMipMaps int
	Offsets    [MaxNumTextureFaces][MaxNumTextureMipMaps]int
	Sizes      [MaxNumTextureFaces][MaxNumTextureMipMaps]int
}

// TextureDesc describes a texture. Surfaces listed in ImageData with a
// non-zero size are uploaded from Content.
type TextureDesc struct {
	Locator      resource.Locator
	Type         TextureType
	RenderTarget bool
	Width        int
	Height       int
	Depth        int
	NumMipMaps   int
	Usage        Usage
	Format       PixelFormat
	SampleCount  int
	MinFilter    TextureFilterMode
	MagFilter    TextureFilterMode
	WrapU        TextureWrapMode
	WrapV        TextureWrapMode
	WrapW        TextureWrapMode
	ImageData    ImageDataAttrs
	Content      []byte
}

// UniformBlockDesc declares a uniform block. ByteSize must be a multiple of 16.
type UniformBlockDesc struct {
	Name     string
	Stage    ShaderStage
	ByteSize int
}

// ShaderTextureDesc declares a texture binding.
type ShaderTextureDesc struct {
	Name  string
	Stage ShaderStage
	Type  TextureType
}

// ShaderDesc describes a WGSL shader with both stages in one module.
// Blocks and textures are bound in declaration order within their stage.
type ShaderDesc struct {
	Locator       resource.Locator
	Source        string
	SPIRV         []uint32
	VSEntry       string
	FSEntry       string
	UniformBlocks []UniformBlockDesc
	Textures      []ShaderTextureDesc
	Label         string
}

// VertexComponent is one attribute of a vertex layout.
type VertexComponent struct {
	Name   string
	Format VertexFormat
}

// VertexLayout describes the interleaved components of one vertex buffer.
type VertexLayout struct {
	Components   []VertexComponent
	StepFunction VertexStepFunction
	StepRate     int
}

// Add appends a component and returns l for chaining.
func (l *VertexLayout) Add(name string, format VertexFormat) *VertexLayout {
	l.Components = append(l.Components, VertexComponent{Name: name, Format: format})
	return l
}

// Empty reports whether l has no components.
func (l VertexLayout) Empty() bool { return len(l.Components) == 0 }

// ByteSize returns the stride of one vertex.
func (l VertexLayout) ByteSize() int {
	n := 0
	for _, c := range l.Components {
		n += c.Format.ByteSize()
	}
	return n
}

// ComponentByteOffset returns the offset of component i within a vertex.
func (l VertexLayout) ComponentByteOffset(i int) int {
	n := 0
	for _, c := range l.Components[:i] {
		n += c.Format.ByteSize()
	}
	return n
}

// ComponentIndexByName returns the index of the named component, or -1.
func (l VertexLayout) ComponentIndexByName(name string) int {
	for i, c := range l.Components {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// PipelineDesc describes a render pipeline. Use NewPipelineDesc for the
// usual defaults; the zero value writes no color and never passes depth.
//
// Components of all layouts are assigned shader locations in order, starting
// at @location(0) in the first layout.
type PipelineDesc struct {
	Locator   resource.Locator
	Shader    resource.ID
	PrimType  PrimitiveType
	IndexType IndexType
	Layouts   []VertexLayout

	DepthCmpFunc      CompareFunc
	DepthWriteEnabled bool

	StencilEnabled          bool
	StencilReadMask         uint8
	StencilWriteMask        uint8
	StencilRef              uint8
	StencilFrontFailOp      StencilOp
	StencilFrontDepthFailOp StencilOp
	StencilFrontPassOp      StencilOp
	StencilFrontCmpFunc     CompareFunc
	StencilBackFailOp       StencilOp
	StencilBackDepthFailOp  StencilOp
	StencilBackPassOp       StencilOp
	StencilBackCmpFunc      CompareFunc

	BlendEnabled        bool
	BlendSrcFactorRGB   BlendFactor
	BlendDstFactorRGB   BlendFactor
	BlendOpRGB          BlendOperation
	BlendSrcFactorAlpha BlendFactor
	BlendDstFactorAlpha BlendFactor
	BlendOpAlpha        BlendOperation
	ColorWriteMask      PixelChannel
	MRTCount            int
	// ColorFormat and DepthFormat select the target formats. A DepthFormat
	// that is not a depth format selects the framebuffer's.
	ColorFormat PixelFormat
	DepthFormat PixelFormat
	BlendColor  [4]float32

	CullFaceEnabled        bool
	CullFace               Face
	AlphaToCoverageEnabled bool
	SampleCount            int

	Label string
}

// NewPipelineDesc returns a triangle-list pipeline description for shader
// with depth test off, blending off and all channels written.
func NewPipelineDesc(shader resource.ID) PipelineDesc {
	return PipelineDesc{
		Locator:             resource.NonShared(),
		Shader:              shader,
		PrimType:            PrimitiveTriangles,
		IndexType:           IndexNone,
		DepthCmpFunc:        CompareAlways,
		StencilReadMask:     0xFF,
		StencilWriteMask:    0xFF,
		StencilFrontCmpFunc: CompareAlways,
		StencilBackCmpFunc:  CompareAlways,
		BlendSrcFactorRGB:   BlendOne,
		BlendDstFactorRGB:   BlendZero,
		BlendSrcFactorAlpha: BlendOne,
		BlendDstFactorAlpha: BlendZero,
		ColorWriteMask:      ChannelRGBA,
		MRTCount:            1,
		ColorFormat:         PixelFormatRGBA8,
		DepthFormat:         PixelFormatDepthStencil,
		CullFace:            FaceBack,
		SampleCount:         1,
	}
}

// PassDesc describes an offscreen render pass.
type PassDesc struct {
	Locator                resource.Locator
	ColorAttachments       [MaxNumColorAttachments]resource.ID
	DepthStencilAttachment resource.ID
}

// PassActionFlag selects per-attachment load actions.
type PassActionFlag uint16

// Pass action flags. An attachment with neither its Clear nor its Load flag
// set is left undefined.
const (
	ClearC0 PassActionFlag = 1 << iota
	ClearC1
	ClearC2
	ClearC3
	ClearDS
	LoadC0
	LoadC1
	LoadC2
	LoadC3
	LoadDS

	ClearAll = ClearC0 | ClearC1 | ClearC2 | ClearC3 | ClearDS
	LoadAll  = LoadC0 | LoadC1 | LoadC2 | LoadC3 | LoadDS
)

// PassAction describes what happens to the attachments when a pass begins.
type PassAction struct {
	Color   [MaxNumColorAttachments][4]float32
	Depth   float32
	Stencil uint8
	Flags   PassActionFlag
}

// Clear returns an action that clears all color attachments to c and the
// depth-stencil attachment to depth and stencil.
func Clear(c color.Color, depth float32, stencil uint8) PassAction {
	a := PassAction{Depth: depth, Stencil: stencil, Flags: ClearAll}
	rgba := Float4(c)
	for i := range a.Color {
		a.Color[i] = rgba
	}
	return a
}

// Load returns an action that keeps the previous attachment contents.
func Load() PassAction {
	return PassAction{Depth: 1, Flags: LoadAll}
}

// DontCare returns an action that leaves attachment contents undefined.
func DontCare() PassAction {
	return PassAction{Depth: 1}
}

// Float4 converts c to non-premultiplied RGBA components in [0, 1].
func Float4(c color.Color) [4]float32 {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return [4]float32{
		float32(n.R) / 255,
		float32(n.G) / 255,
		float32(n.B) / 255,
		float32(n.A) / 255,
	}
}

// Bindings are the resources bound for the next draws. Each list is read up
// to its first invalid ID; entries past the pipeline's needs are ignored.
type Bindings struct {
	VertexBuffers [MaxNumVertexBuffers]resource.ID
	IndexBuffer   resource.ID
	VSTexture     [MaxNumVertexTextures]resource.ID
	FSTexture     [MaxNumFragmentTextures]resource.ID
}

// NewBindings returns Bindings with every slot set to resource.InvalidID.
func NewBindings() Bindings {
	var b Bindings
	for i := range b.VertexBuffers {
		b.VertexBuffers[i] = resource.InvalidID()
	}
	b.IndexBuffer = resource.InvalidID()
	for i := range b.VSTexture {
		b.VSTexture[i] = resource.InvalidID()
	}
	for i := range b.FSTexture {
		b.FSTexture[i] = resource.InvalidID()
	}
	return b
}

// PrimitiveGroup is a range of elements drawn with one call.
type PrimitiveGroup struct {
	BaseElement int
	NumElements int
}

// DisplayAttrs describes the window and default framebuffer.
type DisplayAttrs struct {
	WindowWidth       int
	WindowHeight      int
	FramebufferWidth  int
	FramebufferHeight int
	ScaleFactor       float64
	SampleCount       int
	ColorFormat       PixelFormat
	DepthFormat       PixelFormat
}
