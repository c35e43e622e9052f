// Package sgpu is a small immediate-mode graphics library on top of
// gogpu/wgpu/hal. Resources live in fixed-size pools and are named by
// untagged 32-bit handles: the low 16 bits select a pool slot, the high 16
// bits carry the slot's generation. Stale handles are detected on use.
//
// A frame is recorded as BeginDefaultPass, ApplyPipeline, ApplyBindings,
// ApplyUniforms, Draw, EndPass, and Commit.
package sgpu

import (
	"fmt"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/gfx/internal/cache"
)

type buffer struct {
	raw         hal.Buffer
	size        int
	allocSize   uint64
	typ         BufferType
	usage       Usage
	updateFrame uint64
	updated     bool
	label       string
}

type image struct {
	tex         hal.Texture
	view        hal.TextureView
	sampler     hal.Sampler
	desc        ImageDesc
	layers      int
	updateFrame uint64
	updated     bool
}

type shaderStage struct {
	entry    string
	ubSizes  []int
	images   []ImageType
	ubOffset uint32 // first uniform binding of the stage
}

type shader struct {
	module     hal.ShaderModule
	stages     [2]shaderStage
	ubLayout   hal.BindGroupLayout
	imgLayout  hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	numUBs     int
	numImages  int
	label      string
}

type pipeline struct {
	raw         hal.RenderPipeline
	shader      Shader
	ubGroup     hal.BindGroup
	ubSizes     [2][]int
	ubOffsets   []uint32 // dynamic offsets, VS blocks first
	numImages   [2]int
	numBuffers  int
	indexFormat gputypes.IndexFormat
	blendColor  gputypes.Color
	stencilRef  uint32
	label       string
}

type pendingFrame struct {
	submission uint64
	cmdBuf     hal.CommandBuffer
	bindGroups []hal.BindGroup
}

// Context owns the resource pools and the per-frame command recording state.
//
// Thread Safety: all methods lock an internal mutex. Frame recording is
// expected to happen from a single goroutine.
type Context struct {
	mu     sync.Mutex
	device hal.Device
	queue  hal.Queue
	desc   Desc
	valid  bool

	buffers   *Pool[buffer]
	images    *Pool[image]
	shaders   *Pool[shader]
	pipelines *Pool[pipeline]

	// spirv maps WGSL source to its compiled module.
	spirv *cache.LRU[string, []uint32]

	fb framebuffer

	uniformBuf    hal.Buffer
	uniformOffset int

	// Frame recording state.
	frameIndex    uint64
	encoder       hal.CommandEncoder
	pass          hal.RenderPassEncoder
	passWidth     int
	passHeight    int
	curPipeline   Pipeline
	nextDrawValid bool
	frameGroups   []hal.BindGroup
	pending       []pendingFrame
}

// New creates a Context on device and queue.
func New(device hal.Device, queue hal.Queue, desc Desc) (*Context, error) {
	if device == nil || queue == nil {
		return nil, ErrNilDevice
	}
	desc = desc.withDefaults()

	c := &Context{
		device:    device,
		queue:     queue,
		desc:      desc,
		buffers:   NewPool[buffer](desc.BufferPoolSize),
		images:    NewPool[image](desc.ImagePoolSize),
		shaders:   NewPool[shader](desc.ShaderPoolSize),
		pipelines: NewPool[pipeline](desc.PipelinePoolSize),
		spirv:     cache.NewLRU[string, []uint32](desc.ShaderCacheSize),
	}

	ub, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: "sgpu_uniforms",
		Size:  uint64(desc.UniformBufferSize),
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create uniform buffer: %w", err)
	}
	c.uniformBuf = ub

	if err := c.fb.ensure(device, desc.Width, desc.Height, desc.SampleCount, desc.ColorFormat, desc.DepthFormat); err != nil {
		device.DestroyBuffer(ub)
		return nil, err
	}

	c.valid = true
	slogger().Info("sgpu: context created",
		"width", desc.Width, "height", desc.Height, "samples", desc.SampleCount,
		"buffers", desc.BufferPoolSize, "images", desc.ImagePoolSize,
		"shaders", desc.ShaderPoolSize, "pipelines", desc.PipelinePoolSize)
	return c, nil
}

// Desc returns the effective configuration, with defaults applied.
func (c *Context) Desc() Desc {
	return c.desc
}

// Valid reports whether the context has not been shut down.
func (c *Context) Valid() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.valid
}

// FrameIndex returns the number of committed frames.
func (c *Context) FrameIndex() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frameIndex
}

// FramebufferSize returns the current default framebuffer size.
func (c *Context) FramebufferSize() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fb.width, c.fb.height
}

// ColorTexture returns the single-sampled color texture the default pass
// renders into, for readback or presentation by the caller.
func (c *Context) ColorTexture() hal.Texture {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fb.color
}

// Shutdown waits for the GPU and destroys every live resource.
func (c *Context) Shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.valid {
		return
	}
	c.valid = false

	if c.pass != nil {
		c.pass.End()
		c.pass = nil
	}
	if c.encoder != nil {
		c.encoder.DiscardEncoding()
		c.encoder = nil
	}
	if err := c.device.WaitIdle(); err != nil {
		slogger().Warn("sgpu: wait idle failed", "error", err)
	}
	c.releasePending(true)
	c.releaseGroups(c.frameGroups)
	c.frameGroups = nil

	c.spirv.Clear()
	c.pipelines.Each(func(_ uint32, p *pipeline) { c.destroyPipeline(p) })
	c.shaders.Each(func(_ uint32, s *shader) { c.destroyShader(s) })
	c.images.Each(func(_ uint32, img *image) { c.destroyImage(img) })
	c.buffers.Each(func(_ uint32, b *buffer) { c.device.DestroyBuffer(b.raw) })
	c.pipelines = NewPool[pipeline](c.desc.PipelinePoolSize)
	c.shaders = NewPool[shader](c.desc.ShaderPoolSize)
	c.images = NewPool[image](c.desc.ImagePoolSize)
	c.buffers = NewPool[buffer](c.desc.BufferPoolSize)

	c.fb.destroy(c.device)
	if c.uniformBuf != nil {
		c.device.DestroyBuffer(c.uniformBuf)
		c.uniformBuf = nil
	}
	slogger().Info("sgpu: context shut down", "frames", c.frameIndex)
}

// QueryBufferState reports whether buf names a live buffer.
func (c *Context) QueryBufferState(buf Buffer) ResourceState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return stateOf(c.buffers.Lookup(buf.ID))
}

// QueryImageState reports whether img names a live image.
func (c *Context) QueryImageState(img Image) ResourceState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return stateOf(c.images.Lookup(img.ID))
}

// QueryShaderState reports whether shd names a live shader.
func (c *Context) QueryShaderState(shd Shader) ResourceState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return stateOf(c.shaders.Lookup(shd.ID))
}

// QueryPipelineState reports whether pip names a live pipeline.
func (c *Context) QueryPipelineState(pip Pipeline) ResourceState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return stateOf(c.pipelines.Lookup(pip.ID))
}

func stateOf[T any](_ *T, ok bool) ResourceState {
	if ok {
		return StateValid
	}
	return StateInvalid
}

// PoolUsage returns live and total slots for buffers, images, shaders and pipelines.
func (c *Context) PoolUsage() (used, capacity [4]int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	used = [4]int{c.buffers.Len(), c.images.Len(), c.shaders.Len(), c.pipelines.Len()}
	capacity = [4]int{c.buffers.Cap(), c.images.Cap(), c.shaders.Cap(), c.pipelines.Cap()}
	return used, capacity
}

// releasePending frees command buffers and bind groups of completed frames.
// With all set, everything is released regardless of completion.
func (c *Context) releasePending(all bool) {
	done := c.queue.PollCompleted()
	kept := c.pending[:0]
	for _, p := range c.pending {
		if all || p.submission <= done {
			c.device.FreeCommandBuffer(p.cmdBuf)
			c.releaseGroups(p.bindGroups)
			continue
		}
		kept = append(kept, p)
	}
	c.pending = kept
}

func (c *Context) releaseGroups(groups []hal.BindGroup) {
	for _, g := range groups {
		c.device.DestroyBindGroup(g)
	}
}
