package sgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

func defaultFactor(f, fallback gputypes.BlendFactor) gputypes.BlendFactor {
	if f == gputypes.BlendFactorUndefined {
		return fallback
	}
	return f
}

func defaultOp(op gputypes.BlendOperation) gputypes.BlendOperation {
	if op == gputypes.BlendOperationUndefined {
		return gputypes.BlendOperationAdd
	}
	return op
}

func defaultCompare(f gputypes.CompareFunction) gputypes.CompareFunction {
	if f == gputypes.CompareFunctionUndefined {
		return gputypes.CompareFunctionAlways
	}
	return f
}

func writeMask(m ColorMask) gputypes.ColorWriteMask {
	switch {
	case m == 0:
		return gputypes.ColorWriteMaskAll
	case m&ColorMaskNone != 0:
		return gputypes.ColorWriteMaskNone
	}
	var out gputypes.ColorWriteMask
	if m&ColorMaskR != 0 {
		out |= gputypes.ColorWriteMaskRed
	}
	if m&ColorMaskG != 0 {
		out |= gputypes.ColorWriteMaskGreen
	}
	if m&ColorMaskB != 0 {
		out |= gputypes.ColorWriteMaskBlue
	}
	if m&ColorMaskA != 0 {
		out |= gputypes.ColorWriteMaskAlpha
	}
	return out
}

func stencilFace(s StencilState) hal.StencilFaceState {
	return hal.StencilFaceState{
		Compare:     defaultCompare(s.Compare),
		FailOp:      s.FailOp,
		DepthFailOp: s.DepthFailOp,
		PassOp:      s.PassOp,
	}
}

func isStrip(t gputypes.PrimitiveTopology) bool {
	return t == gputypes.PrimitiveTopologyLineStrip || t == gputypes.PrimitiveTopologyTriangleStrip
}

// buildPipelineDescriptor fills in defaults from the context and returns the
// hal descriptor for desc.
func (c *Context) buildPipelineDescriptor(desc *PipelineDesc, shd *shader) (*hal.RenderPipelineDescriptor, error) {
	if len(desc.Layouts) > MaxVertexBuffers {
		return nil, fmt.Errorf("%w: %d vertex buffers", ErrInvalidDesc, len(desc.Layouts))
	}
	colorCount := desc.Blend.ColorAttachmentCount
	if colorCount == 0 {
		colorCount = 1
	}
	if colorCount > MaxColorAttachments {
		return nil, fmt.Errorf("%w: %d color attachments", ErrInvalidDesc, colorCount)
	}
	colorFormat := desc.Blend.ColorFormat
	if colorFormat == gputypes.TextureFormatUndefined {
		colorFormat = c.desc.ColorFormat
	}
	depthFormat := desc.Blend.DepthFormat
	if depthFormat == gputypes.TextureFormatUndefined {
		depthFormat = c.desc.DepthFormat
	}
	samples := desc.Rasterizer.SampleCount
	if samples == 0 {
		samples = c.desc.SampleCount
	}

	layouts := make([]gputypes.VertexBufferLayout, len(desc.Layouts))
	for i, l := range desc.Layouts {
		if l.StepMode == gputypes.VertexStepModeUndefined {
			l.StepMode = gputypes.VertexStepModeVertex
		}
		layouts[i] = l
	}

	var blend *gputypes.BlendState
	if desc.Blend.Enabled {
		b := desc.Blend
		blend = &gputypes.BlendState{
			Color: gputypes.BlendComponent{
				SrcFactor: defaultFactor(b.SrcFactorRGB, gputypes.BlendFactorOne),
				DstFactor: defaultFactor(b.DstFactorRGB, gputypes.BlendFactorZero),
				Operation: defaultOp(b.OpRGB),
			},
			Alpha: gputypes.BlendComponent{
				SrcFactor: defaultFactor(b.SrcFactorAlpha, gputypes.BlendFactorOne),
				DstFactor: defaultFactor(b.DstFactorAlpha, gputypes.BlendFactorZero),
				Operation: defaultOp(b.OpAlpha),
			},
		}
	}
	targets := make([]gputypes.ColorTargetState, colorCount)
	for i := range targets {
		targets[i] = gputypes.ColorTargetState{
			Format:    colorFormat,
			Blend:     blend,
			WriteMask: writeMask(desc.Blend.ColorWriteMask),
		}
	}

	ds := desc.DepthStencil
	depthStencil := &hal.DepthStencilState{
		Format:              depthFormat,
		DepthWriteEnabled:   ds.DepthWriteEnabled,
		DepthCompare:        defaultCompare(ds.DepthCompare),
		StencilFront:        hal.StencilFaceState{Compare: gputypes.CompareFunctionAlways},
		StencilBack:         hal.StencilFaceState{Compare: gputypes.CompareFunctionAlways},
		DepthBias:           desc.Rasterizer.DepthBias,
		DepthBiasSlopeScale: desc.Rasterizer.DepthBiasSlopeScale,
		DepthBiasClamp:      desc.Rasterizer.DepthBiasClamp,
	}
	if ds.StencilEnabled {
		depthStencil.StencilFront = stencilFace(ds.StencilFront)
		depthStencil.StencilBack = stencilFace(ds.StencilBack)
		depthStencil.StencilReadMask = uint32(ds.StencilReadMask)
		depthStencil.StencilWriteMask = uint32(ds.StencilWriteMask)
	}

	primitive := gputypes.PrimitiveState{
		Topology:  desc.PrimitiveType,
		FrontFace: desc.Rasterizer.FaceWinding,
		CullMode:  desc.Rasterizer.CullMode,
	}
	if isStrip(desc.PrimitiveType) && desc.IndexType != gputypes.IndexFormatUndefined {
		format := desc.IndexType
		primitive.StripIndexFormat = &format
	}

	return &hal.RenderPipelineDescriptor{
		Label:  desc.Label,
		Layout: shd.pipeLayout,
		Vertex: hal.VertexState{
			Module:     shd.module,
			EntryPoint: shd.stages[StageVS].entry,
			Buffers:    layouts,
		},
		Primitive:    primitive,
		DepthStencil: depthStencil,
		Multisample: gputypes.MultisampleState{
			Count:                  uint32(samples), //nolint:gosec // small positive
			Mask:                   0xFFFFFFFF,
			AlphaToCoverageEnabled: desc.Rasterizer.AlphaToCoverageEnabled,
		},
		Fragment: &hal.FragmentState{
			Module:     shd.module,
			EntryPoint: shd.stages[StageFS].entry,
			Targets:    targets,
		},
	}, nil
}

// MakePipeline creates a render pipeline from a shader and fixed-function state.
func (c *Context) MakePipeline(desc PipelineDesc) (Pipeline, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.valid {
		return Pipeline{}, ErrShutdown
	}
	shd, ok := c.shaders.Lookup(desc.Shader.ID)
	if !ok {
		return Pipeline{}, fmt.Errorf("pipeline shader: %w", ErrInvalidHandle)
	}

	halDesc, err := c.buildPipelineDescriptor(&desc, shd)
	if err != nil {
		return Pipeline{}, err
	}

	pip := pipeline{
		shader:      desc.Shader,
		numBuffers:  len(desc.Layouts),
		indexFormat: desc.IndexType,
		blendColor:  desc.Blend.BlendColor,
		stencilRef:  uint32(desc.DepthStencil.StencilRef),
		label:       desc.Label,
	}
	for stage := range shd.stages {
		pip.ubSizes[stage] = shd.stages[stage].ubSizes
		pip.numImages[stage] = len(shd.stages[stage].images)
	}
	pip.ubOffsets = make([]uint32, shd.numUBs)

	pip.raw, err = c.device.CreateRenderPipeline(halDesc)
	if err != nil {
		return Pipeline{}, fmt.Errorf("create render pipeline: %w", err)
	}

	var entries []gputypes.BindGroupEntry
	for _, st := range shd.stages {
		for j, size := range st.ubSizes {
			entries = append(entries, gputypes.BindGroupEntry{
				Binding: st.ubOffset + uint32(j), //nolint:gosec // < MaxShaderStageUBs
				Resource: gputypes.BufferBinding{
					Buffer: c.uniformBuf.NativeHandle(),
					Size:   uint64(size), //nolint:gosec // checked positive
				},
			})
		}
	}
	pip.ubGroup, err = c.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:   desc.Label + "_uniforms",
		Layout:  shd.ubLayout,
		Entries: entries,
	})
	if err != nil {
		c.destroyPipeline(&pip)
		return Pipeline{}, fmt.Errorf("create uniform bind group: %w", err)
	}

	id, err := c.pipelines.Alloc(pip)
	if err != nil {
		c.destroyPipeline(&pip)
		return Pipeline{}, err
	}
	slogger().Debug("sgpu: pipeline created", "id", id, "shader", desc.Shader.ID, "label", desc.Label)
	return Pipeline{ID: id}, nil
}

// DestroyPipeline releases pip. Stale handles are ignored.
func (c *Context) DestroyPipeline(pip Pipeline) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.valid {
		return
	}
	if p, ok := c.pipelines.Free(pip.ID); ok {
		c.destroyPipeline(&p)
		if c.curPipeline == pip {
			c.curPipeline = Pipeline{}
			c.nextDrawValid = false
		}
	}
}

func (c *Context) destroyPipeline(p *pipeline) {
	if p.ubGroup != nil {
		c.device.DestroyBindGroup(p.ubGroup)
	}
	if p.raw != nil {
		c.device.DestroyRenderPipeline(p.raw)
	}
}
