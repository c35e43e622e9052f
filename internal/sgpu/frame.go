package sgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// DefaultClearColor is used for color attachments with ActionDefault.
var DefaultClearColor = gputypes.Color{R: 0.5, G: 0.5, B: 0.5, A: 1}

func colorOps(a ColorAttachmentAction) (gputypes.LoadOp, gputypes.Color) {
	switch a.Action {
	case ActionLoad:
		return gputypes.LoadOpLoad, gputypes.Color{}
	case ActionClear:
		return gputypes.LoadOpClear, a.Value
	default:
		return gputypes.LoadOpClear, DefaultClearColor
	}
}

func depthOps(a DepthAttachmentAction) (gputypes.LoadOp, float32) {
	switch a.Action {
	case ActionLoad:
		return gputypes.LoadOpLoad, 0
	case ActionClear:
		return gputypes.LoadOpClear, a.Value
	default:
		return gputypes.LoadOpClear, 1
	}
}

func stencilOps(a StencilAttachmentAction) (gputypes.LoadOp, uint32) {
	switch a.Action {
	case ActionLoad:
		return gputypes.LoadOpLoad, 0
	case ActionClear:
		return gputypes.LoadOpClear, a.Value
	default:
		return gputypes.LoadOpClear, 0
	}
}

// BeginDefaultPass starts a pass on the default framebuffer, resizing it to
// width x height first when those are positive and differ.
func (c *Context) BeginDefaultPass(action *PassAction, width, height int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.valid {
		return ErrShutdown
	}
	if c.pass != nil {
		return ErrPassActive
	}
	if action == nil {
		action = &PassAction{}
	}
	if width <= 0 || height <= 0 {
		width, height = c.fb.width, c.fb.height
	}
	if err := c.fb.ensure(c.device, width, height, c.desc.SampleCount, c.desc.ColorFormat, c.desc.DepthFormat); err != nil {
		return err
	}

	if c.encoder == nil {
		enc, err := c.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "sgpu_frame"})
		if err != nil {
			return fmt.Errorf("create command encoder: %w", err)
		}
		if err := enc.BeginEncoding("sgpu_frame"); err != nil {
			return fmt.Errorf("begin encoding: %w", err)
		}
		c.encoder = enc
	}

	view, resolve := c.fb.renderView()
	loadOp, clearColor := colorOps(action.Colors[0])
	depthLoad, depthClear := depthOps(action.Depth)
	ds := &hal.RenderPassDepthStencilAttachment{
		View:            c.fb.depthView,
		DepthLoadOp:     depthLoad,
		DepthStoreOp:    gputypes.StoreOpStore,
		DepthClearValue: depthClear,
	}
	if c.fb.depthFormat.HasStencil() {
		ds.StencilLoadOp, ds.StencilClearValue = stencilOps(action.Stencil)
		ds.StencilStoreOp = gputypes.StoreOpStore
	}

	c.pass = c.encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "sgpu_default_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:          view,
			ResolveTarget: resolve,
			LoadOp:        loadOp,
			StoreOp:       gputypes.StoreOpStore,
			ClearValue:    clearColor,
		}},
		DepthStencilAttachment: ds,
	})
	c.passWidth, c.passHeight = width, height
	c.curPipeline = Pipeline{}
	c.nextDrawValid = false
	return nil
}

// ApplyViewport sets the viewport. With originTopLeft false, y is measured
// from the bottom of the framebuffer.
func (c *Context) ApplyViewport(x, y, width, height int, originTopLeft bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pass == nil {
		return ErrNoPass
	}
	if !originTopLeft {
		y = c.passHeight - (y + height)
	}
	c.pass.SetViewport(float32(x), float32(y), float32(width), float32(height), 0, 1)
	return nil
}

// ApplyScissorRect sets the scissor rectangle, clipped to the framebuffer.
// Negative sizes are treated as zero.
func (c *Context) ApplyScissorRect(x, y, width, height int, originTopLeft bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pass == nil {
		return ErrNoPass
	}
	width, height = max(width, 0), max(height, 0)
	if !originTopLeft {
		y = c.passHeight - (y + height)
	}
	x0, y0 := clamp(x, 0, c.passWidth), clamp(y, 0, c.passHeight)
	x1, y1 := clamp(x+width, x0, c.passWidth), clamp(y+height, y0, c.passHeight)
	c.pass.SetScissorRect(uint32(x0), uint32(y0), uint32(x1-x0), uint32(y1-y0)) //nolint:gosec // clamped
	return nil
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

// ApplyPipeline makes pip current. An invalid pipeline disables draws until
// the next successful ApplyPipeline.
func (c *Context) ApplyPipeline(pip Pipeline) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pass == nil {
		return ErrNoPass
	}
	p, ok := c.pipelines.Lookup(pip.ID)
	if !ok {
		c.nextDrawValid = false
		slogger().Warn("sgpu: apply invalid pipeline", "id", pip.ID)
		return ErrInvalidHandle
	}
	c.curPipeline = pip
	c.nextDrawValid = true

	for i := range p.ubOffsets {
		p.ubOffsets[i] = 0
	}
	c.pass.SetPipeline(p.raw)
	c.pass.SetBlendConstant(&p.blendColor)
	c.pass.SetStencilReference(p.stencilRef)
	c.pass.SetBindGroup(uniformGroup, p.ubGroup, p.ubOffsets)
	return nil
}

// currentPipeline returns the applied pipeline, or nil with the reason.
func (c *Context) currentPipeline() (*pipeline, error) {
	if c.pass == nil {
		return nil, ErrNoPass
	}
	if !c.nextDrawValid {
		return nil, ErrNoPipeline
	}
	p, ok := c.pipelines.Lookup(c.curPipeline.ID)
	if !ok {
		c.nextDrawValid = false
		return nil, ErrNoPipeline
	}
	return p, nil
}

// ApplyBindings binds vertex buffers, the index buffer and images for the
// current pipeline. A stale handle disables draws until the next ApplyPipeline.
func (c *Context) ApplyBindings(b *Bindings) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, err := c.currentPipeline()
	if err != nil {
		return err
	}

	for i := 0; i < p.numBuffers; i++ {
		buf, ok := c.buffers.Lookup(b.VertexBuffers[i].ID)
		if !ok {
			return c.invalidBinding("vertex buffer", i, b.VertexBuffers[i].ID)
		}
		c.pass.SetVertexBuffer(uint32(i), buf.raw, uint64(b.VertexBufferOffsets[i])) //nolint:gosec // small index, caller offset
	}
	if p.indexFormat != gputypes.IndexFormatUndefined {
		buf, ok := c.buffers.Lookup(b.IndexBuffer.ID)
		if !ok {
			return c.invalidBinding("index buffer", 0, b.IndexBuffer.ID)
		}
		c.pass.SetIndexBuffer(buf.raw, p.indexFormat, uint64(b.IndexBufferOffset)) //nolint:gosec // caller offset
	}

	if p.numImages[StageVS]+p.numImages[StageFS] == 0 {
		return nil
	}
	shd, ok := c.shaders.Lookup(p.shader.ID)
	if !ok {
		return c.invalidBinding("shader", 0, p.shader.ID)
	}
	var entries []gputypes.BindGroupEntry
	stageImages := [2][]Image{b.VSImages[:p.numImages[StageVS]], b.FSImages[:p.numImages[StageFS]]}
	base := [2]uint32{0, fsImageBase}
	for stage, imgs := range stageImages {
		for i, h := range imgs {
			img, ok := c.images.Lookup(h.ID)
			if !ok {
				return c.invalidBinding("image", i, h.ID)
			}
			binding := base[stage] + 2*uint32(i) //nolint:gosec // < MaxShaderStageImages
			entries = append(entries,
				gputypes.BindGroupEntry{
					Binding:  binding,
					Resource: gputypes.TextureViewBinding{TextureView: img.view.NativeHandle()},
				},
				gputypes.BindGroupEntry{
					Binding:  binding + 1,
					Resource: gputypes.SamplerBinding{Sampler: img.sampler.NativeHandle()},
				})
		}
	}
	group, err := c.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:   p.label + "_images",
		Layout:  shd.imgLayout,
		Entries: entries,
	})
	if err != nil {
		c.nextDrawValid = false
		return fmt.Errorf("create image bind group: %w", err)
	}
	c.frameGroups = append(c.frameGroups, group)
	c.pass.SetBindGroup(imageGroup, group, nil)
	return nil
}

func (c *Context) invalidBinding(kind string, slot int, id uint32) error {
	c.nextDrawValid = false
	slogger().Warn("sgpu: invalid binding, skipping draws", "kind", kind, "slot", slot, "id", id)
	return fmt.Errorf("%s %d: %w", kind, slot, ErrInvalidHandle)
}

// ApplyUniforms copies data into the frame's uniform buffer and points uniform
// block ubIndex of stage at it. len(data) must equal the declared block size.
func (c *Context) ApplyUniforms(stage ShaderStage, ubIndex int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, err := c.currentPipeline()
	if err != nil {
		return err
	}
	if stage > StageFS {
		return fmt.Errorf("%w: stage %d", ErrUniformMismatch, stage)
	}
	sizes := p.ubSizes[stage]
	if ubIndex < 0 || ubIndex >= len(sizes) {
		return fmt.Errorf("%w: stage %d has %d blocks, got index %d", ErrUniformMismatch, stage, len(sizes), ubIndex)
	}
	if len(data) != sizes[ubIndex] {
		return fmt.Errorf("%w: block %d is %d bytes, got %d", ErrUniformMismatch, ubIndex, sizes[ubIndex], len(data))
	}

	offset := (c.uniformOffset + uniformAlignment - 1) &^ (uniformAlignment - 1)
	if offset+len(data) > c.desc.UniformBufferSize {
		return ErrUniformBufferFull
	}
	if err := c.queue.WriteBuffer(c.uniformBuf, uint64(offset), data); err != nil { //nolint:gosec // bounded by buffer size
		return fmt.Errorf("write uniforms: %w", err)
	}
	c.uniformOffset = offset + len(data)

	slot := ubIndex
	if stage == StageFS {
		slot += len(p.ubSizes[StageVS])
	}
	p.ubOffsets[slot] = uint32(offset) //nolint:gosec // bounded by buffer size
	c.pass.SetBindGroup(uniformGroup, p.ubGroup, p.ubOffsets)
	return nil
}

// Draw issues an indexed or non-indexed draw, depending on the current
// pipeline's index type. Draws are skipped while bindings are invalid.
func (c *Context) Draw(base, count, instances int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pass == nil {
		return ErrNoPass
	}
	if !c.nextDrawValid {
		slogger().Debug("sgpu: draw skipped", "pipeline", c.curPipeline.ID)
		return nil
	}
	p, ok := c.pipelines.Lookup(c.curPipeline.ID)
	if !ok {
		c.nextDrawValid = false
		return nil
	}
	if count <= 0 || instances <= 0 {
		return nil
	}
	if p.indexFormat != gputypes.IndexFormatUndefined {
		c.pass.DrawIndexed(uint32(count), uint32(instances), uint32(base), 0, 0) //nolint:gosec // checked positive
	} else {
		c.pass.Draw(uint32(count), uint32(instances), uint32(base), 0) //nolint:gosec // checked positive
	}
	return nil
}

// EndPass finishes the current pass.
func (c *Context) EndPass() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pass == nil {
		return ErrNoPass
	}
	c.pass.End()
	c.pass = nil
	c.curPipeline = Pipeline{}
	c.nextDrawValid = false
	return nil
}

// Commit submits the frame's commands, releases resources of frames the GPU
// has finished and starts a new frame.
func (c *Context) Commit() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.valid {
		return ErrShutdown
	}
	if c.pass != nil {
		return ErrPassActive
	}

	var err error
	if c.encoder != nil {
		err = c.submit()
	}
	c.releasePending(false)
	c.uniformOffset = 0
	c.frameIndex++
	return err
}

func (c *Context) submit() error {
	enc := c.encoder
	c.encoder = nil
	groups := c.frameGroups
	c.frameGroups = nil

	cmdBuf, err := enc.EndEncoding()
	if err != nil {
		c.releaseGroups(groups)
		return fmt.Errorf("end encoding: %w", err)
	}
	idx, err := c.queue.Submit([]hal.CommandBuffer{cmdBuf})
	if err != nil {
		c.device.FreeCommandBuffer(cmdBuf)
		c.releaseGroups(groups)
		return fmt.Errorf("submit: %w", err)
	}
	c.pending = append(c.pending, pendingFrame{submission: idx, cmdBuf: cmdBuf, bindGroups: groups})
	return nil
}

// ResetStateCache forgets the applied pipeline; draws are skipped until the
// next ApplyPipeline.
func (c *Context) ResetStateCache() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.curPipeline = Pipeline{}
	c.nextDrawValid = false
}
