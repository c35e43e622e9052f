package gfx

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/gfx/internal/sgpu"
)

func convertBufferType(t BufferType) sgpu.BufferType {
	switch t {
	case VertexBuffer:
		return sgpu.BufferTypeVertex
	case IndexBuffer:
		return sgpu.BufferTypeIndex
	default:
		return sgpu.BufferTypeDefault
	}
}

func convertUsage(u Usage) sgpu.Usage {
	switch u {
	case UsageImmutable:
		return sgpu.UsageImmutable
	case UsageDynamic:
		return sgpu.UsageDynamic
	case UsageStream:
		return sgpu.UsageStream
	default:
		return sgpu.UsageDefault
	}
}

func convertPrimitiveType(p PrimitiveType) gputypes.PrimitiveTopology {
	switch p {
	case PrimitivePoints:
		return gputypes.PrimitiveTopologyPointList
	case PrimitiveLines:
		return gputypes.PrimitiveTopologyLineList
	case PrimitiveLineStrip:
		return gputypes.PrimitiveTopologyLineStrip
	case PrimitiveTriangles:
		return gputypes.PrimitiveTopologyTriangleList
	case PrimitiveTriangleStrip:
		return gputypes.PrimitiveTopologyTriangleStrip
	default:
		return gputypes.PrimitiveTopologyTriangleList
	}
}

func convertIndexType(t IndexType) gputypes.IndexFormat {
	switch t {
	case IndexNone:
		return gputypes.IndexFormatUndefined
	case IndexUInt16:
		return gputypes.IndexFormatUint16
	case IndexUInt32:
		return gputypes.IndexFormatUint32
	default:
		return gputypes.IndexFormatUndefined
	}
}

func convertStencilOp(op StencilOp) hal.StencilOperation {
	switch op {
	case StencilKeep:
		return hal.StencilOperationKeep
	case StencilZero:
		return hal.StencilOperationZero
	case StencilReplace:
		return hal.StencilOperationReplace
	case StencilIncrClamp:
		return hal.StencilOperationIncrementClamp
	case StencilDecrClamp:
		return hal.StencilOperationDecrementClamp
	case StencilInvert:
		return hal.StencilOperationInvert
	case StencilIncrWrap:
		return hal.StencilOperationIncrementWrap
	case StencilDecrWrap:
		return hal.StencilOperationDecrementWrap
	default:
		return hal.StencilOperationKeep
	}
}

func convertCompareFunc(f CompareFunc) gputypes.CompareFunction {
	switch f {
	case CompareNever:
		return gputypes.CompareFunctionNever
	case CompareLess:
		return gputypes.CompareFunctionLess
	case CompareEqual:
		return gputypes.CompareFunctionEqual
	case CompareLessEqual:
		return gputypes.CompareFunctionLessEqual
	case CompareGreater:
		return gputypes.CompareFunctionGreater
	case CompareNotEqual:
		return gputypes.CompareFunctionNotEqual
	case CompareGreaterEqual:
		return gputypes.CompareFunctionGreaterEqual
	case CompareAlways:
		return gputypes.CompareFunctionAlways
	default:
		return gputypes.CompareFunctionUndefined
	}
}

// convertBlendFactor maps the constant-alpha factors onto the constant color,
// the only blend constant the GPU exposes.
func convertBlendFactor(f BlendFactor) gputypes.BlendFactor {
	switch f {
	case BlendZero:
		return gputypes.BlendFactorZero
	case BlendOne:
		return gputypes.BlendFactorOne
	case BlendSrcColor:
		return gputypes.BlendFactorSrc
	case BlendOneMinusSrcColor:
		return gputypes.BlendFactorOneMinusSrc
	case BlendSrcAlpha:
		return gputypes.BlendFactorSrcAlpha
	case BlendOneMinusSrcAlpha:
		return gputypes.BlendFactorOneMinusSrcAlpha
	case BlendDstColor:
		return gputypes.BlendFactorDst
	case BlendOneMinusDstColor:
		return gputypes.BlendFactorOneMinusDst
	case BlendDstAlpha:
		return gputypes.BlendFactorDstAlpha
	case BlendOneMinusDstAlpha:
		return gputypes.BlendFactorOneMinusDstAlpha
	case BlendSrcAlphaSaturated:
		return gputypes.BlendFactorSrcAlphaSaturated
	case BlendBlendColor, BlendBlendAlpha:
		return gputypes.BlendFactorConstant
	case BlendOneMinusBlendColor, BlendOneMinusBlendAlpha:
		return gputypes.BlendFactorOneMinusConstant
	default:
		return gputypes.BlendFactorUndefined
	}
}

func convertBlendOp(op BlendOperation) gputypes.BlendOperation {
	switch op {
	case BlendOpAdd:
		return gputypes.BlendOperationAdd
	case BlendOpSubtract:
		return gputypes.BlendOperationSubtract
	case BlendOpReverseSubtract:
		return gputypes.BlendOperationReverseSubtract
	default:
		return gputypes.BlendOperationUndefined
	}
}

// convertColorMask maps channel bits one by one. An empty mask writes nothing.
func convertColorMask(m PixelChannel) sgpu.ColorMask {
	if m&ChannelRGBA == 0 {
		return sgpu.ColorMaskNone
	}
	var out sgpu.ColorMask
	if m&ChannelRed != 0 {
		out |= sgpu.ColorMaskR
	}
	if m&ChannelGreen != 0 {
		out |= sgpu.ColorMaskG
	}
	if m&ChannelBlue != 0 {
		out |= sgpu.ColorMaskB
	}
	if m&ChannelAlpha != 0 {
		out |= sgpu.ColorMaskA
	}
	return out
}

// convertPixelFormat returns TextureFormatUndefined for formats without a
// GPU equivalent (24-bit RGB, 16-bit packed and PVRTC formats).
func convertPixelFormat(f PixelFormat) gputypes.TextureFormat {
	switch f {
	case PixelFormatRGBA8:
		return gputypes.TextureFormatRGBA8Unorm
	case PixelFormatR10G10B10A2:
		return gputypes.TextureFormatRGB10A2Unorm
	case PixelFormatRGBA32F:
		return gputypes.TextureFormatRGBA32Float
	case PixelFormatRGBA16F:
		return gputypes.TextureFormatRGBA16Float
	case PixelFormatR32F:
		return gputypes.TextureFormatR32Float
	case PixelFormatL8:
		return gputypes.TextureFormatR8Unorm
	case PixelFormatDXT1:
		return gputypes.TextureFormatBC1RGBAUnorm
	case PixelFormatDXT3:
		return gputypes.TextureFormatBC2RGBAUnorm
	case PixelFormatDXT5:
		return gputypes.TextureFormatBC3RGBAUnorm
	case PixelFormatDepth:
		return gputypes.TextureFormatDepth32Float
	case PixelFormatDepthStencil:
		return gputypes.TextureFormatDepth24PlusStencil8
	case PixelFormatETC2RGB8:
		return gputypes.TextureFormatETC2RGB8Unorm
	case PixelFormatETC2SRGB8:
		return gputypes.TextureFormatETC2RGB8UnormSrgb
	case PixelFormatRGB8, PixelFormatRGBA4, PixelFormatR5G6B5, PixelFormatR5G5B5A1,
		PixelFormatPVRTC2RGB, PixelFormatPVRTC4RGB, PixelFormatPVRTC2RGBA, PixelFormatPVRTC4RGBA:
		return gputypes.TextureFormatUndefined
	default:
		return gputypes.TextureFormatUndefined
	}
}

// convertCullMode culls back faces for any enabled face other than Front.
func convertCullMode(enabled bool, face Face) gputypes.CullMode {
	switch {
	case !enabled:
		return gputypes.CullModeNone
	case face == FaceFront:
		return gputypes.CullModeFront
	default:
		return gputypes.CullModeBack
	}
}

func convertStepFunc(f VertexStepFunction) gputypes.VertexStepMode {
	switch f {
	case StepPerVertex:
		return gputypes.VertexStepModeVertex
	case StepPerInstance:
		return gputypes.VertexStepModeInstance
	default:
		return gputypes.VertexStepModeVertex
	}
}

func convertVertexFormat(f VertexFormat) gputypes.VertexFormat {
	switch f {
	case VertexFloat:
		return gputypes.VertexFormatFloat32
	case VertexFloat2:
		return gputypes.VertexFormatFloat32x2
	case VertexFloat3:
		return gputypes.VertexFormatFloat32x3
	case VertexFloat4:
		return gputypes.VertexFormatFloat32x4
	case VertexByte4:
		return gputypes.VertexFormatSint8x4
	case VertexByte4N:
		return gputypes.VertexFormatSnorm8x4
	case VertexUByte4:
		return gputypes.VertexFormatUint8x4
	case VertexUByte4N:
		return gputypes.VertexFormatUnorm8x4
	case VertexShort2:
		return gputypes.VertexFormatSint16x2
	case VertexShort2N:
		return gputypes.VertexFormatSnorm16x2
	case VertexShort4:
		return gputypes.VertexFormatSint16x4
	case VertexShort4N:
		return gputypes.VertexFormatSnorm16x4
	case VertexUInt10N2:
		return gputypes.VertexFormatUnorm1010102
	default:
		return gputypes.VertexFormatUndefined
	}
}

func convertTextureType(t TextureType) sgpu.ImageType {
	switch t {
	case Texture2D:
		return sgpu.ImageType2D
	case TextureCube:
		return sgpu.ImageTypeCube
	case Texture3D:
		return sgpu.ImageType3D
	case TextureArray:
		return sgpu.ImageTypeArray
	default:
		return sgpu.ImageTypeDefault
	}
}

// convertFilter splits a filter into its texel and mipmap components.
func convertFilter(f TextureFilterMode) (texel, mip gputypes.FilterMode) {
	switch f {
	case FilterNearest:
		return gputypes.FilterModeNearest, gputypes.FilterModeNearest
	case FilterLinear:
		return gputypes.FilterModeLinear, gputypes.FilterModeNearest
	case FilterNearestMipmapNearest:
		return gputypes.FilterModeNearest, gputypes.FilterModeNearest
	case FilterNearestMipmapLinear:
		return gputypes.FilterModeNearest, gputypes.FilterModeLinear
	case FilterLinearMipmapNearest:
		return gputypes.FilterModeLinear, gputypes.FilterModeNearest
	case FilterLinearMipmapLinear:
		return gputypes.FilterModeLinear, gputypes.FilterModeLinear
	default:
		return gputypes.FilterModeUndefined, gputypes.FilterModeUndefined
	}
}

func convertWrap(w TextureWrapMode) gputypes.AddressMode {
	switch w {
	case WrapClampToEdge:
		return gputypes.AddressModeClampToEdge
	case WrapRepeat:
		return gputypes.AddressModeRepeat
	case WrapMirroredRepeat:
		return gputypes.AddressModeMirrorRepeat
	default:
		return gputypes.AddressModeUndefined
	}
}

func convertStage(s ShaderStage) sgpu.ShaderStage {
	switch s {
	case StageVS:
		return sgpu.StageVS
	default:
		return sgpu.StageFS
	}
}

func float4Color(c [4]float32) gputypes.Color {
	return gputypes.Color{R: float64(c[0]), G: float64(c[1]), B: float64(c[2]), A: float64(c[3])}
}

// convertPassAction picks Clear over Load per attachment; an attachment with
// neither flag is DontCare.
func convertPassAction(src *PassAction) sgpu.PassAction {
	var dst sgpu.PassAction
	for i := range dst.Colors {
		dst.Colors[i].Value = float4Color(src.Color[i])
		switch {
		case src.Flags&(ClearC0<<i) != 0:
			dst.Colors[i].Action = sgpu.ActionClear
		case src.Flags&(LoadC0<<i) != 0:
			dst.Colors[i].Action = sgpu.ActionLoad
		default:
			dst.Colors[i].Action = sgpu.ActionDontCare
		}
	}
	dst.Depth.Value = src.Depth
	dst.Stencil.Value = uint32(src.Stencil)
	switch {
	case src.Flags&ClearDS != 0:
		dst.Depth.Action = sgpu.ActionClear
	case src.Flags&LoadDS != 0:
		dst.Depth.Action = sgpu.ActionLoad
	default:
		dst.Depth.Action = sgpu.ActionDontCare
	}
	dst.Stencil.Action = dst.Depth.Action
	return dst
}

// hasFeature reports whether the adapter features and the WebGPU baseline
// provide f. Everything but block compression is part of the baseline,
// and the framebuffer origin is always top-left.
func hasFeature(features gputypes.Features, f Feature) bool {
	switch f {
	case FeatureTextureCompressionDXT:
		return features.Contains(gputypes.FeatureTextureCompressionBC)
	case FeatureTextureCompressionETC2:
		return features.Contains(gputypes.FeatureTextureCompressionETC2)
	case FeatureTextureCompressionPVRTC, FeatureOriginBottomLeft:
		return false
	case FeatureTextureFloat, FeatureTextureHalfFloat, FeatureInstancing, FeatureOriginTopLeft,
		FeatureMSAARenderTargets, FeaturePackedVertexFormat10_2, FeatureMultipleRenderTarget,
		FeatureTexture3D, FeatureTextureArray:
		return true
	default:
		return false
	}
}

func convertBufferDesc(desc *BufferDesc) (sgpu.BufferDesc, error) {
	size := desc.Size
	var content []byte
	if desc.Content != nil {
		if size == 0 {
			size = len(desc.Content) - desc.Offset
		}
		end := desc.Offset + size
		if desc.Offset < 0 || size < 0 || end > len(desc.Content) {
			return sgpu.BufferDesc{}, fmt.Errorf("%w: [%d:%d] of %d bytes", ErrContentRange, desc.Offset, end, len(desc.Content))
		}
		content = desc.Content[desc.Offset:end]
	}
	return sgpu.BufferDesc{
		Size:    size,
		Type:    convertBufferType(desc.Type),
		Usage:   convertUsage(desc.Usage),
		Content: content,
		Label:   desc.Locator.Name,
	}, nil
}

func convertTextureDesc(desc *TextureDesc) (sgpu.ImageDesc, error) {
	format := convertPixelFormat(desc.Format)
	if format == gputypes.TextureFormatUndefined {
		return sgpu.ImageDesc{}, fmt.Errorf("%w: texture %s", ErrUnsupportedFormat, desc.Format)
	}
	minFilter, mipFilter := convertFilter(desc.MinFilter)
	magFilter, _ := convertFilter(desc.MagFilter)
	dst := sgpu.ImageDesc{
		Type:         convertTextureType(desc.Type),
		RenderTarget: desc.RenderTarget,
		Width:        desc.Width,
		Height:       desc.Height,
		Depth:        desc.Depth,
		NumMipmaps:   desc.NumMipMaps,
		Usage:        convertUsage(desc.Usage),
		PixelFormat:  format,
		SampleCount:  desc.SampleCount,
		MinFilter:    minFilter,
		MagFilter:    magFilter,
		MipmapFilter: mipFilter,
		WrapU:        convertWrap(desc.WrapU),
		WrapV:        convertWrap(desc.WrapV),
		WrapW:        convertWrap(desc.WrapW),
		Label:        desc.Locator.Name,
	}
	for f := 0; f < MaxNumTextureFaces; f++ {
		for m := 0; m < MaxNumTextureMipMaps; m++ {
			off, size := desc.ImageData.Offsets[f][m], desc.ImageData.Sizes[f][m]
			if size <= 0 {
				continue
			}
			if off < 0 || off+size > len(desc.Content) {
				return sgpu.ImageDesc{}, fmt.Errorf("%w: face %d mip %d [%d:%d] of %d bytes",
					ErrContentRange, f, m, off, off+size, len(desc.Content))
			}
			dst.Content.SubImage[f][m] = desc.Content[off : off+size]
		}
	}
	return dst, nil
}

func convertShaderDesc(desc *ShaderDesc) sgpu.ShaderDesc {
	dst := sgpu.ShaderDesc{
		Source: desc.Source,
		SPIRV:  desc.SPIRV,
		VS:     sgpu.ShaderStageDesc{Entry: desc.VSEntry},
		FS:     sgpu.ShaderStageDesc{Entry: desc.FSEntry},
		Label:  desc.Label,
	}
	if dst.Label == "" {
		dst.Label = desc.Locator.Name
	}
	for _, ub := range desc.UniformBlocks {
		block := sgpu.UniformBlockDesc{Name: ub.Name, Size: ub.ByteSize}
		if convertStage(ub.Stage) == sgpu.StageVS {
			dst.VS.UniformBlocks = append(dst.VS.UniformBlocks, block)
		} else {
			dst.FS.UniformBlocks = append(dst.FS.UniformBlocks, block)
		}
	}
	for _, tex := range desc.Textures {
		img := sgpu.ShaderImageDesc{Name: tex.Name, Type: convertTextureType(tex.Type)}
		if convertStage(tex.Stage) == sgpu.StageVS {
			dst.VS.Images = append(dst.VS.Images, img)
		} else {
			dst.FS.Images = append(dst.FS.Images, img)
		}
	}
	return dst
}

// convertVertexLayouts assigns shader locations in component order across
// all layouts.
func convertVertexLayouts(layouts []VertexLayout) ([]gputypes.VertexBufferLayout, error) {
	if len(layouts) > MaxNumVertexBuffers {
		return nil, fmt.Errorf("%w: %d vertex layouts", ErrNotSupported, len(layouts))
	}
	out := make([]gputypes.VertexBufferLayout, 0, len(layouts))
	location := uint32(0)
	for i, l := range layouts {
		if l.StepRate > 1 {
			return nil, fmt.Errorf("%w: layout %d step rate %d", ErrNotSupported, i, l.StepRate)
		}
		if len(l.Components) > MaxNumVertexLayoutComponents {
			return nil, fmt.Errorf("%w: layout %d has %d components", ErrNotSupported, i, len(l.Components))
		}
		attrs := make([]gputypes.VertexAttribute, len(l.Components))
		offset := 0
		for j, c := range l.Components {
			format := convertVertexFormat(c.Format)
			if format == gputypes.VertexFormatUndefined {
				return nil, fmt.Errorf("%w: component %q format %s", ErrUnsupportedFormat, c.Name, c.Format)
			}
			attrs[j] = gputypes.VertexAttribute{
				Format:         format,
				Offset:         uint64(offset), //nolint:gosec // sum of small sizes
				ShaderLocation: location,
			}
			offset += c.Format.ByteSize()
			location++
		}
		out = append(out, gputypes.VertexBufferLayout{
			ArrayStride: uint64(offset), //nolint:gosec // sum of small sizes
			StepMode:    convertStepFunc(l.StepFunction),
			Attributes:  attrs,
		})
	}
	return out, nil
}

func convertStencilState(fail, depthFail, pass StencilOp, cmp CompareFunc) sgpu.StencilState {
	return sgpu.StencilState{
		FailOp:      convertStencilOp(fail),
		DepthFailOp: convertStencilOp(depthFail),
		PassOp:      convertStencilOp(pass),
		Compare:     convertCompareFunc(cmp),
	}
}

// convertPipelineDesc converts desc for a pipeline built from shd.
func convertPipelineDesc(desc *PipelineDesc, shd sgpu.Shader) (sgpu.PipelineDesc, error) {
	layouts, err := convertVertexLayouts(desc.Layouts)
	if err != nil {
		return sgpu.PipelineDesc{}, err
	}
	colorFormat := convertPixelFormat(desc.ColorFormat)
	if desc.ColorFormat.IsDepth() || colorFormat == gputypes.TextureFormatUndefined {
		return sgpu.PipelineDesc{}, fmt.Errorf("%w: color format %s", ErrUnsupportedFormat, desc.ColorFormat)
	}
	depthFormat := gputypes.TextureFormatUndefined
	if desc.DepthFormat.IsDepth() {
		depthFormat = convertPixelFormat(desc.DepthFormat)
	}
	label := desc.Label
	if label == "" {
		label = desc.Locator.Name
	}
	return sgpu.PipelineDesc{
		Shader:        shd,
		Layouts:       layouts,
		PrimitiveType: convertPrimitiveType(desc.PrimType),
		IndexType:     convertIndexType(desc.IndexType),
		DepthStencil: sgpu.DepthStencilState{
			StencilFront: convertStencilState(desc.StencilFrontFailOp, desc.StencilFrontDepthFailOp,
				desc.StencilFrontPassOp, desc.StencilFrontCmpFunc),
			StencilBack: convertStencilState(desc.StencilBackFailOp, desc.StencilBackDepthFailOp,
				desc.StencilBackPassOp, desc.StencilBackCmpFunc),
			DepthCompare:      convertCompareFunc(desc.DepthCmpFunc),
			DepthWriteEnabled: desc.DepthWriteEnabled,
			StencilEnabled:    desc.StencilEnabled,
			StencilReadMask:   desc.StencilReadMask,
			StencilWriteMask:  desc.StencilWriteMask,
			StencilRef:        desc.StencilRef,
		},
		Blend: sgpu.BlendState{
			Enabled:              desc.BlendEnabled,
			SrcFactorRGB:         convertBlendFactor(desc.BlendSrcFactorRGB),
			DstFactorRGB:         convertBlendFactor(desc.BlendDstFactorRGB),
			OpRGB:                convertBlendOp(desc.BlendOpRGB),
			SrcFactorAlpha:       convertBlendFactor(desc.BlendSrcFactorAlpha),
			DstFactorAlpha:       convertBlendFactor(desc.BlendDstFactorAlpha),
			OpAlpha:              convertBlendOp(desc.BlendOpAlpha),
			ColorWriteMask:       convertColorMask(desc.ColorWriteMask),
			ColorAttachmentCount: desc.MRTCount,
			ColorFormat:          colorFormat,
			DepthFormat:          depthFormat,
			BlendColor:           float4Color(desc.BlendColor),
		},
		Rasterizer: sgpu.RasterizerState{
			AlphaToCoverageEnabled: desc.AlphaToCoverageEnabled,
			CullMode:               convertCullMode(desc.CullFaceEnabled, desc.CullFace),
			FaceWinding:            gputypes.FrontFaceCCW,
			SampleCount:            desc.SampleCount,
		},
		Label: label,
	}, nil
}
