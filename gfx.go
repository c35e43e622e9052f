package gfx

import (
	"fmt"
	"sync/atomic"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/gfx/backend"
	"github.com/gogpu/gfx/handle"
	"github.com/gogpu/gfx/internal/sgpu"
	"github.com/gogpu/gfx/resource"
)

// Gfx is the rendering engine facade. It owns the GPU context, the resource
// registry with its label stack, and the display.
//
// Resources are referred to by resource.ID. IDs are produced by the Create
// methods and are only meaningful to the Gfx that created them.
type Gfx struct {
	valid atomic.Bool

	ctx      *sgpu.Context
	dev      *backend.Device // nil when the device is external
	features gputypes.Features

	registry *resource.Registry
	labels   *resource.LabelStack
	display  *displayManager
}

// Setup creates a Gfx. Without WithDevice or WithDeviceProvider it opens a
// device on the selected backend and releases it in Discard.
func Setup(opts ...Option) (*Gfx, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	g := &Gfx{}
	device, queue, err := g.resolveDevice(&o)
	if err != nil {
		return nil, err
	}

	colorFormat := convertPixelFormat(o.colorFormat)
	if colorFormat == gputypes.TextureFormatUndefined || o.colorFormat.IsDepth() {
		g.closeDevice()
		return nil, fmt.Errorf("%w: framebuffer color %s", ErrUnsupportedFormat, o.colorFormat)
	}
	depthFormat := convertPixelFormat(o.depthFormat)
	if !o.depthFormat.IsDepth() {
		depthFormat = gputypes.TextureFormatUndefined
	}

	g.ctx, err = sgpu.New(device, queue, sgpu.Desc{
		BufferPoolSize:   o.poolSizes[resource.Buffer],
		ImagePoolSize:    o.poolSizes[resource.Texture],
		ShaderPoolSize:   o.poolSizes[resource.Shader],
		PipelinePoolSize: o.poolSizes[resource.Pipeline],
		Width:            o.width,
		Height:           o.height,
		SampleCount:      o.sampleCount,
		ColorFormat:      colorFormat,
		DepthFormat:      depthFormat,
	})
	if err != nil {
		g.closeDevice()
		return nil, fmt.Errorf("gfx: setup: %w", err)
	}

	g.registry = resource.NewRegistry(o.registryCapacity)
	g.labels = resource.NewLabelStack(o.labelStackCapacity)
	g.display = newDisplayManager(&o)
	g.valid.Store(true)

	attrs := g.display.displayAttrs()
	Logger().Info("gfx: setup",
		"width", attrs.FramebufferWidth,
		"height", attrs.FramebufferHeight,
		"samples", o.sampleCount,
		"color", o.colorFormat,
		"depth", o.depthFormat,
		"external", g.dev == nil)
	return g, nil
}

// resolveDevice picks the device from WithDevice, then WithDeviceProvider,
// then the backend registry.
func (g *Gfx) resolveDevice(o *options) (hal.Device, hal.Queue, error) {
	g.features = o.features
	switch {
	case o.device != nil || o.queue != nil:
		if o.device == nil || o.queue == nil {
			return nil, nil, fmt.Errorf("%w: WithDevice needs both device and queue", ErrNoDevice)
		}
		return o.device, o.queue, nil

	case o.provider != nil:
		type halProvider interface {
			HalDevice() any
			HalQueue() any
		}
		hp, ok := o.provider.(halProvider)
		if !ok {
			return nil, nil, ErrInvalidProvider
		}
		device, ok := hp.HalDevice().(hal.Device)
		if !ok || device == nil {
			return nil, nil, fmt.Errorf("%w: HalDevice is not hal.Device", ErrInvalidProvider)
		}
		queue, ok := hp.HalQueue().(hal.Queue)
		if !ok || queue == nil {
			return nil, nil, fmt.Errorf("%w: HalQueue is not hal.Queue", ErrInvalidProvider)
		}
		return device, queue, nil
	}

	dev, err := backend.OpenDevice(o.backend)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrNoDevice, err)
	}
	g.dev = dev
	g.features = g.features.Union(dev.Features)
	return dev.Device, dev.Queue, nil
}

func (g *Gfx) closeDevice() {
	if g.dev != nil {
		g.dev.Close()
		g.dev = nil
	}
}

// Discard releases every GPU resource and, if Setup opened it, the device.
// The Gfx cannot be used afterwards.
func (g *Gfx) Discard() {
	if !g.valid.CompareAndSwap(true, false) {
		return
	}
	g.registry.Discard()
	g.ctx.Shutdown()
	g.display.discard()
	g.closeDevice()
	Logger().Info("gfx: discarded")
}

// IsValid reports whether g is set up and not discarded.
func (g *Gfx) IsValid() bool {
	return g.valid.Load()
}

func (g *Gfx) check() error {
	if !g.valid.Load() {
		return ErrNotValid
	}
	return nil
}

// QuitRequested reports whether the user asked to close the application.
func (g *Gfx) QuitRequested() bool {
	return g.valid.Load() && g.display.quitRequested()
}

// QueryFeature reports whether f is available on the device. For devices
// passed in with WithDevice or WithDeviceProvider, texture compression is
// reported only as declared with WithFeatures.
func (g *Gfx) QueryFeature(f Feature) bool {
	if !g.valid.Load() {
		return false
	}
	return hasFeature(g.features, f)
}

// Subscribe registers h for display events.
func (g *Gfx) Subscribe(h EventHandler) HandlerID {
	if !g.valid.Load() {
		return 0
	}
	return g.display.subscribe(h)
}

// Unsubscribe removes a handler registered with Subscribe.
func (g *Gfx) Unsubscribe(id HandlerID) {
	if g.valid.Load() {
		g.display.unsubscribe(id)
	}
}

// DisplayAttrs returns the current window and framebuffer attributes.
func (g *Gfx) DisplayAttrs() DisplayAttrs {
	if !g.valid.Load() {
		return DisplayAttrs{}
	}
	return g.display.displayAttrs()
}

// Width returns the framebuffer width in pixels.
func (g *Gfx) Width() int { return g.DisplayAttrs().FramebufferWidth }

// Height returns the framebuffer height in pixels.
func (g *Gfx) Height() int { return g.DisplayAttrs().FramebufferHeight }

// ProcessSystemEvents polls the display and dispatches pending events to
// subscribers. Call it once per frame.
func (g *Gfx) ProcessSystemEvents() error {
	if err := g.check(); err != nil {
		return err
	}
	if g.display.processEvents() {
		a := g.display.displayAttrs()
		Logger().Debug("gfx: display modified", "width", a.FramebufferWidth, "height", a.FramebufferHeight)
	}
	return nil
}

// PushResourceLabel pushes a new label. Resources created until the
// matching PopResourceLabel are tagged with it.
func (g *Gfx) PushResourceLabel() (resource.Label, error) {
	if err := g.check(); err != nil {
		return resource.InvalidLabel, err
	}
	return g.labels.PushLabel()
}

// PushExistingResourceLabel pushes a label returned by an earlier push.
func (g *Gfx) PushExistingResourceLabel(l resource.Label) error {
	if err := g.check(); err != nil {
		return err
	}
	return g.labels.PushExistingLabel(l)
}

// PopResourceLabel pops the current label and returns it.
func (g *Gfx) PopResourceLabel() (resource.Label, error) {
	if err := g.check(); err != nil {
		return resource.InvalidLabel, err
	}
	return g.labels.PopLabel()
}

// register records id under loc and the current label. On failure the
// resource is destroyed so that it cannot leak.
func (g *Gfx) register(loc resource.Locator, id resource.ID) (resource.ID, error) {
	label := g.labels.PeekLabel()
	if err := g.registry.Add(loc, id, label); err != nil {
		destroy(g.ctx, id)
		return resource.InvalidID(), fmt.Errorf("gfx: register %s: %w", id, err)
	}
	Logger().Debug("gfx: resource created", "id", id, "locator", loc.Name, "label", label)
	return id, nil
}

// CreateBuffer creates a vertex or index buffer.
func (g *Gfx) CreateBuffer(desc *BufferDesc) (resource.ID, error) {
	if err := g.check(); err != nil {
		return resource.InvalidID(), err
	}
	sd, err := convertBufferDesc(desc)
	if err != nil {
		return resource.InvalidID(), err
	}
	buf, err := g.ctx.MakeBuffer(sd)
	if err != nil {
		return resource.InvalidID(), fmt.Errorf("gfx: create buffer %q: %w", desc.Locator.Name, err)
	}
	return g.register(desc.Locator, decodeID[handle.Buffer](buf.ID))
}

// CreateTexture creates a texture. Block-compressed formats need the
// matching compression feature.
func (g *Gfx) CreateTexture(desc *TextureDesc) (resource.ID, error) {
	if err := g.check(); err != nil {
		return resource.InvalidID(), err
	}
	if f, ok := compressionFeature(desc.Format); ok && !hasFeature(g.features, f) {
		return resource.InvalidID(), fmt.Errorf("%w: %s needs %s", ErrNotSupported, desc.Format, f)
	}
	sd, err := convertTextureDesc(desc)
	if err != nil {
		return resource.InvalidID(), err
	}
	img, err := g.ctx.MakeImage(sd)
	if err != nil {
		return resource.InvalidID(), fmt.Errorf("gfx: create texture %q: %w", desc.Locator.Name, err)
	}
	return g.register(desc.Locator, decodeID[handle.Texture](img.ID))
}

// CreateShader compiles a shader.
func (g *Gfx) CreateShader(desc *ShaderDesc) (resource.ID, error) {
	if err := g.check(); err != nil {
		return resource.InvalidID(), err
	}
	shd, err := g.ctx.MakeShader(convertShaderDesc(desc))
	if err != nil {
		return resource.InvalidID(), fmt.Errorf("gfx: create shader %q: %w", desc.Locator.Name, err)
	}
	return g.register(desc.Locator, decodeID[handle.Shader](shd.ID))
}

// CreatePipeline creates a render pipeline. desc.Shader must be a shader ID.
func (g *Gfx) CreatePipeline(desc *PipelineDesc) (resource.ID, error) {
	if err := g.check(); err != nil {
		return resource.InvalidID(), err
	}
	shd, err := shaderOf(desc.Shader)
	if err != nil {
		return resource.InvalidID(), fmt.Errorf("gfx: create pipeline %q: %w", desc.Locator.Name, err)
	}
	sd, err := convertPipelineDesc(desc, shd)
	if err != nil {
		return resource.InvalidID(), err
	}
	pip, err := g.ctx.MakePipeline(sd)
	if err != nil {
		return resource.InvalidID(), fmt.Errorf("gfx: create pipeline %q: %w", desc.Locator.Name, err)
	}
	return g.register(desc.Locator, decodeID[handle.Pipeline](pip.ID))
}

// CreatePass is not supported; only the default framebuffer can be rendered to.
func (g *Gfx) CreatePass(_ *PassDesc) (resource.ID, error) {
	if err := g.check(); err != nil {
		return resource.InvalidID(), err
	}
	return resource.InvalidID(), fmt.Errorf("%w: offscreen passes", ErrNotSupported)
}

// LookupResource returns the ID registered under a shared locator, or
// resource.InvalidID.
func (g *Gfx) LookupResource(loc resource.Locator) resource.ID {
	if !g.valid.Load() {
		return resource.InvalidID()
	}
	return g.registry.Lookup(loc)
}

// AddResource registers an existing ID under loc and the current label.
func (g *Gfx) AddResource(loc resource.Locator, id resource.ID) error {
	if err := g.check(); err != nil {
		return err
	}
	return g.registry.Add(loc, id, g.labels.PeekLabel())
}

// DestroyResources destroys every resource created under label.
func (g *Gfx) DestroyResources(label resource.Label) error {
	if err := g.check(); err != nil {
		return err
	}
	if label == resource.InvalidLabel {
		return resource.ErrInvalidLabel
	}
	ids := g.registry.Remove(label)
	for _, id := range ids {
		destroy(g.ctx, id)
	}
	Logger().Debug("gfx: resources destroyed", "label", label, "count", len(ids))
	return nil
}

// UpdateBuffer replaces the content of a dynamic or stream buffer.
func (g *Gfx) UpdateBuffer(id resource.ID, data []byte) error {
	if err := g.check(); err != nil {
		return err
	}
	buf, err := bufferOf(id)
	if err != nil {
		return err
	}
	return g.ctx.UpdateBuffer(buf, data)
}

// UpdateTexture is not supported.
func (g *Gfx) UpdateTexture(_ resource.ID, _ []byte, _ *ImageDataAttrs) error {
	if err := g.check(); err != nil {
		return err
	}
	return fmt.Errorf("%w: texture updates", ErrNotSupported)
}

// BeginPass begins a pass on the default framebuffer.
func (g *Gfx) BeginPass(action *PassAction) error {
	if err := g.check(); err != nil {
		return err
	}
	a := g.display.displayAttrs()
	pa := convertPassAction(action)
	return g.ctx.BeginDefaultPass(&pa, a.FramebufferWidth, a.FramebufferHeight)
}

// BeginPassTo begins a pass on an offscreen pass resource. Passing
// resource.InvalidID selects the default framebuffer.
func (g *Gfx) BeginPassTo(pass resource.ID, action *PassAction) error {
	if pass.IsValid() {
		if err := g.check(); err != nil {
			return err
		}
		return fmt.Errorf("%w: offscreen passes", ErrNotSupported)
	}
	return g.BeginPass(action)
}

// EndPass ends the current pass.
func (g *Gfx) EndPass() error {
	if err := g.check(); err != nil {
		return err
	}
	return g.ctx.EndPass()
}

// ApplyViewport sets the viewport of the current pass.
func (g *Gfx) ApplyViewport(x, y, width, height int, originTopLeft bool) error {
	if err := g.check(); err != nil {
		return err
	}
	return g.ctx.ApplyViewport(x, y, width, height, originTopLeft)
}

// ApplyScissorRect sets the scissor rectangle of the current pass.
func (g *Gfx) ApplyScissorRect(x, y, width, height int, originTopLeft bool) error {
	if err := g.check(); err != nil {
		return err
	}
	return g.ctx.ApplyScissorRect(x, y, width, height, originTopLeft)
}

// ApplyPipeline makes a pipeline current.
func (g *Gfx) ApplyPipeline(id resource.ID) error {
	if err := g.check(); err != nil {
		return err
	}
	pip, err := pipelineOf(id)
	if err != nil {
		return err
	}
	return g.ctx.ApplyPipeline(pip)
}

// ApplyBindings binds buffers and textures for the current pipeline.
func (g *Gfx) ApplyBindings(b *Bindings) error {
	if err := g.check(); err != nil {
		return err
	}
	sb, err := convertBindings(b)
	if err != nil {
		return err
	}
	return g.ctx.ApplyBindings(&sb)
}

// convertBindings encodes every bound ID. Lists end at their first invalid ID.
func convertBindings(b *Bindings) (sgpu.Bindings, error) {
	var sb sgpu.Bindings
	for i, id := range b.VertexBuffers {
		if !id.IsValid() {
			break
		}
		buf, err := bufferOf(id)
		if err != nil {
			return sb, fmt.Errorf("vertex buffer %d: %w", i, err)
		}
		sb.VertexBuffers[i] = buf
	}
	if b.IndexBuffer.IsValid() {
		buf, err := bufferOf(b.IndexBuffer)
		if err != nil {
			return sb, fmt.Errorf("index buffer: %w", err)
		}
		sb.IndexBuffer = buf
	}
	for i, id := range b.VSTexture {
		if !id.IsValid() {
			break
		}
		img, err := imageOf(id)
		if err != nil {
			return sb, fmt.Errorf("vertex texture %d: %w", i, err)
		}
		sb.VSImages[i] = img
	}
	for i, id := range b.FSTexture {
		if !id.IsValid() {
			break
		}
		img, err := imageOf(id)
		if err != nil {
			return sb, fmt.Errorf("fragment texture %d: %w", i, err)
		}
		sb.FSImages[i] = img
	}
	return sb, nil
}

// ApplyUniforms uploads data for uniform block ubIndex of stage.
func (g *Gfx) ApplyUniforms(stage ShaderStage, ubIndex int, data []byte) error {
	if err := g.check(); err != nil {
		return err
	}
	return g.ctx.ApplyUniforms(convertStage(stage), ubIndex, data)
}

// Draw draws num elements starting at base.
func (g *Gfx) Draw(base, num, instances int) error {
	if err := g.check(); err != nil {
		return err
	}
	return g.ctx.Draw(base, num, instances)
}

// DrawGroup draws one instance of a primitive group.
func (g *Gfx) DrawGroup(pg PrimitiveGroup) error {
	return g.Draw(pg.BaseElement, pg.NumElements, 1)
}

// CommitFrame submits the frame and presents it.
func (g *Gfx) CommitFrame() error {
	if err := g.check(); err != nil {
		return err
	}
	if err := g.ctx.Commit(); err != nil {
		return err
	}
	g.display.present()
	return nil
}

// ResetStateCache forgets the currently applied pipeline and bindings.
func (g *Gfx) ResetStateCache() error {
	if err := g.check(); err != nil {
		return err
	}
	g.ctx.ResetStateCache()
	return nil
}

// ResourceInfo describes a registered resource.
type ResourceInfo struct {
	ID    resource.ID
	Label resource.Label
	// Alive reports whether the GPU object behind ID still exists.
	Alive bool
}

// QueryResourceInfo returns the label of a registered resource and whether
// its GPU object is alive.
func (g *Gfx) QueryResourceInfo(id resource.ID) (ResourceInfo, error) {
	if err := g.check(); err != nil {
		return ResourceInfo{}, err
	}
	label, ok := g.registry.LabelOf(id)
	if !ok {
		return ResourceInfo{}, fmt.Errorf("%w: %s", resource.ErrInvalidID, id)
	}
	info := ResourceInfo{ID: id, Label: label}
	var err error
	switch id.Type {
	case resource.Buffer:
		var buf sgpu.Buffer
		if buf, err = bufferOf(id); err == nil {
			info.Alive = g.ctx.QueryBufferState(buf) == sgpu.StateValid
		}
	case resource.Texture:
		var img sgpu.Image
		if img, err = imageOf(id); err == nil {
			info.Alive = g.ctx.QueryImageState(img) == sgpu.StateValid
		}
	case resource.Shader:
		var shd sgpu.Shader
		if shd, err = shaderOf(id); err == nil {
			info.Alive = g.ctx.QueryShaderState(shd) == sgpu.StateValid
		}
	case resource.Pipeline:
		var pip sgpu.Pipeline
		if pip, err = pipelineOf(id); err == nil {
			info.Alive = g.ctx.QueryPipelineState(pip) == sgpu.StateValid
		}
	default:
		err = ErrNotSupported
	}
	return info, err
}

// compressionFeature returns the feature a compressed format depends on.
func compressionFeature(f PixelFormat) (Feature, bool) {
	switch f {
	case PixelFormatDXT1, PixelFormatDXT3, PixelFormatDXT5:
		return FeatureTextureCompressionDXT, true
	case PixelFormatETC2RGB8, PixelFormatETC2SRGB8:
		return FeatureTextureCompressionETC2, true
	case PixelFormatPVRTC2RGB, PixelFormatPVRTC4RGB, PixelFormatPVRTC2RGBA, PixelFormatPVRTC4RGBA:
		return FeatureTextureCompressionPVRTC, true
	default:
		return 0, false
	}
}
