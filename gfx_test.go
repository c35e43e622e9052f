package gfx

import (
	"errors"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
	"golang.org/x/image/colornames"

	"github.com/gogpu/gfx/backend"
	"github.com/gogpu/gfx/handle"
	"github.com/gogpu/gfx/internal/sgpu"
	"github.com/gogpu/gfx/resource"
)

// fakeSPIRV is accepted by the noop device; it only carries the magic word.
var fakeSPIRV = []uint32{0x07230203}

// createNoopDevice creates a noop device and queue for testing.
// Returns the device, queue, and a cleanup function.
func createNoopDevice(t *testing.T) (hal.Device, hal.Queue, func()) {
	t.Helper()
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	cleanup := func() {
		openDev.Device.Destroy()
		instance.Destroy()
	}
	return openDev.Device, openDev.Queue, cleanup
}

func newTestGfx(t *testing.T, opts ...Option) *Gfx {
	t.Helper()
	device, queue, cleanup := createNoopDevice(t)
	g, err := Setup(append([]Option{WithDevice(device, queue)}, opts...)...)
	if err != nil {
		cleanup()
		t.Fatalf("Setup: %v", err)
	}
	t.Cleanup(func() {
		g.Discard()
		cleanup()
	})
	return g
}

func testShaderDesc(name string) *ShaderDesc {
	return &ShaderDesc{
		Locator:       resource.NewLocator(name),
		SPIRV:         fakeSPIRV,
		UniformBlocks: []UniformBlockDesc{{Name: "mvp", Stage: StageVS, ByteSize: 64}},
	}
}

func testLayout() VertexLayout {
	var l VertexLayout
	l.Add("position", VertexFloat4).Add("color0", VertexFloat4)
	return l
}

type testScene struct {
	shader, pipeline, vbuf, ibuf resource.ID
}

func newTestScene(t *testing.T, g *Gfx) testScene {
	t.Helper()
	var s testScene
	var err error
	if s.shader, err = g.CreateShader(testShaderDesc("shader")); err != nil {
		t.Fatalf("CreateShader: %v", err)
	}
	pd := NewPipelineDesc(s.shader)
	pd.Layouts = []VertexLayout{testLayout()}
	pd.IndexType = IndexUInt16
	if s.pipeline, err = g.CreatePipeline(&pd); err != nil {
		t.Fatalf("CreatePipeline: %v", err)
	}
	if s.vbuf, err = g.CreateBuffer(&BufferDesc{Content: make([]byte, 3*32)}); err != nil {
		t.Fatalf("CreateBuffer vertex: %v", err)
	}
	ib := &BufferDesc{Type: IndexBuffer, Content: []byte{0, 0, 1, 0, 2, 0}}
	if s.ibuf, err = g.CreateBuffer(ib); err != nil {
		t.Fatalf("CreateBuffer index: %v", err)
	}
	return s
}

type halProviderStub struct {
	device, queue any
}

func (p halProviderStub) HalDevice() any { return p.device }
func (p halProviderStub) HalQueue() any  { return p.queue }

func TestSetupDefaults(t *testing.T) {
	g := newTestGfx(t)
	if !g.IsValid() {
		t.Fatal("IsValid() = false after Setup")
	}
	if g.Width() != DefaultWidth || g.Height() != DefaultHeight {
		t.Errorf("size = %dx%d, want %dx%d", g.Width(), g.Height(), DefaultWidth, DefaultHeight)
	}
	a := g.DisplayAttrs()
	if a.SampleCount != 1 || a.ColorFormat != PixelFormatRGBA8 || a.DepthFormat != PixelFormatDepthStencil {
		t.Errorf("DisplayAttrs = %+v", a)
	}
	if a.ScaleFactor != 1 {
		t.Errorf("ScaleFactor = %v, want 1", a.ScaleFactor)
	}
	if g.dev != nil {
		t.Error("external device must not be owned")
	}
}

func TestSetupDeviceSources(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	tests := []struct {
		name    string
		opts    []Option
		wantErr error
	}{
		{"device without queue", []Option{WithDevice(device, nil)}, ErrNoDevice},
		{"provider", []Option{WithDeviceProvider(halProviderStub{device, queue})}, nil},
		{"provider without hal", []Option{WithDeviceProvider(struct{}{})}, ErrInvalidProvider},
		{"provider wrong types", []Option{WithDeviceProvider(halProviderStub{"dev", "queue"})}, ErrInvalidProvider},
		{"backend", []Option{WithBackend(backend.Noop)}, nil},
		{"unknown backend", []Option{WithBackend("nonexistent")}, ErrNoDevice},
		{"depth color format", []Option{WithDevice(device, queue), WithPixelFormats(PixelFormatDepth, PixelFormatDepth)}, ErrUnsupportedFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := Setup(tt.opts...)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Setup error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Setup: %v", err)
			}
			g.Discard()
		})
	}
}

func TestSetupBackendOwnsDevice(t *testing.T) {
	g, err := Setup(WithBackend("empty"), WithSize(320, 200))
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if g.dev == nil {
		t.Fatal("device opened by Setup is not owned")
	}
	if g.Width() != 320 || g.Height() != 200 {
		t.Errorf("size = %dx%d, want 320x200", g.Width(), g.Height())
	}
	g.Discard()
	if g.dev != nil {
		t.Error("Discard did not close the owned device")
	}
	g.Discard() // second call is a no-op
}

func TestDiscardedGfx(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()
	g, err := Setup(WithDevice(device, queue))
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	g.Discard()

	if g.IsValid() {
		t.Error("IsValid() = true after Discard")
	}
	if _, err := g.CreateBuffer(&BufferDesc{Content: make([]byte, 4)}); !errors.Is(err, ErrNotValid) {
		t.Errorf("CreateBuffer error = %v, want ErrNotValid", err)
	}
	action := Load()
	if err := g.BeginPass(&action); !errors.Is(err, ErrNotValid) {
		t.Errorf("BeginPass error = %v, want ErrNotValid", err)
	}
	if err := g.CommitFrame(); !errors.Is(err, ErrNotValid) {
		t.Errorf("CommitFrame error = %v, want ErrNotValid", err)
	}
	if _, err := g.PushResourceLabel(); !errors.Is(err, ErrNotValid) {
		t.Errorf("PushResourceLabel error = %v, want ErrNotValid", err)
	}
	if id := g.LookupResource(resource.NewLocator("x")); id.IsValid() {
		t.Errorf("LookupResource = %v, want invalid", id)
	}
	if g.QuitRequested() || g.QueryFeature(FeatureInstancing) {
		t.Error("discarded Gfx reports quit or features")
	}
}

func TestCreateResources(t *testing.T) {
	g := newTestGfx(t)
	s := newTestScene(t, g)

	tests := []struct {
		name string
		id   resource.ID
		want resource.Type
	}{
		{"shader", s.shader, resource.Shader},
		{"pipeline", s.pipeline, resource.Pipeline},
		{"vertex buffer", s.vbuf, resource.Buffer},
		{"index buffer", s.ibuf, resource.Buffer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.id.Type != tt.want {
				t.Errorf("Type = %v, want %v", tt.id.Type, tt.want)
			}
			info, err := g.QueryResourceInfo(tt.id)
			if err != nil {
				t.Fatalf("QueryResourceInfo: %v", err)
			}
			if !info.Alive {
				t.Error("resource not alive")
			}
			if info.Label != resource.DefaultLabel {
				t.Errorf("Label = %v, want DefaultLabel", info.Label)
			}
		})
	}

	if got := g.LookupResource(resource.NewLocator("shader")); got != s.shader {
		t.Errorf("LookupResource(shader) = %v, want %v", got, s.shader)
	}
}

func TestCreateTexture(t *testing.T) {
	g := newTestGfx(t)
	desc := &TextureDesc{
		Locator: resource.NewLocator("checker"),
		Width:   2,
		Height:  2,
		Format:  PixelFormatRGBA8,
		Content: make([]byte, 16),
	}
	desc.ImageData.NumFaces = 1
	desc.ImageData.NumMipMaps = 1
	desc.ImageData.Sizes[0][0] = 16

	id, err := g.CreateTexture(desc)
	if err != nil {
		t.Fatalf("CreateTexture: %v", err)
	}
	if id.Type != resource.Texture {
		t.Errorf("Type = %v, want Texture", id.Type)
	}

	desc.Locator = resource.NonShared()
	desc.Format = PixelFormatDXT1
	if _, err := g.CreateTexture(desc); !errors.Is(err, ErrNotSupported) {
		t.Errorf("DXT1 texture error = %v, want ErrNotSupported", err)
	}
}

func TestCreatePipelineCategoryMismatch(t *testing.T) {
	g := newTestGfx(t)
	s := newTestScene(t, g)

	pd := NewPipelineDesc(s.vbuf)
	pd.Layouts = []VertexLayout{testLayout()}
	_, err := g.CreatePipeline(&pd)
	if !errors.Is(err, handle.ErrCategoryMismatch) {
		t.Fatalf("CreatePipeline with buffer as shader: error = %v, want ErrCategoryMismatch", err)
	}
	var mismatch *handle.CategoryMismatchError
	if !errors.As(err, &mismatch) || mismatch.Want != resource.Shader || mismatch.Got != resource.Buffer {
		t.Errorf("mismatch = %+v, want Shader/Buffer", mismatch)
	}
}

func TestDuplicateLocatorReleasesResource(t *testing.T) {
	g := newTestGfx(t)
	desc := &BufferDesc{Locator: resource.NewLocator("quad"), Content: make([]byte, 32)}
	if _, err := g.CreateBuffer(desc); err != nil {
		t.Fatalf("CreateBuffer: %v", err)
	}
	if _, err := g.CreateBuffer(desc); !errors.Is(err, resource.ErrDuplicateLocator) {
		t.Fatalf("duplicate CreateBuffer error = %v, want ErrDuplicateLocator", err)
	}
	used, _ := g.ctx.PoolUsage()
	if used[0] != 1 {
		t.Errorf("buffers in use = %d, want 1", used[0])
	}
}

func TestDestroyResourcesByLabel(t *testing.T) {
	g := newTestGfx(t)

	label, err := g.PushResourceLabel()
	if err != nil {
		t.Fatalf("PushResourceLabel: %v", err)
	}
	s := newTestScene(t, g)
	if popped, err := g.PopResourceLabel(); err != nil || popped != label {
		t.Fatalf("PopResourceLabel = %v, %v; want %v", popped, err, label)
	}
	keep, err := g.CreateBuffer(&BufferDesc{Content: make([]byte, 8)})
	if err != nil {
		t.Fatalf("CreateBuffer: %v", err)
	}

	if err := g.DestroyResources(label); err != nil {
		t.Fatalf("DestroyResources: %v", err)
	}

	for _, id := range []resource.ID{s.shader, s.pipeline, s.vbuf, s.ibuf} {
		if _, err := g.QueryResourceInfo(id); !errors.Is(err, resource.ErrInvalidID) {
			t.Errorf("QueryResourceInfo(%v) error = %v, want ErrInvalidID", id, err)
		}
	}
	if st := g.ctx.QueryBufferState(sgpu.Buffer{ID: handle.MustEncode[handle.Buffer](s.vbuf).Raw()}); st != sgpu.StateInvalid {
		t.Errorf("destroyed buffer state = %v, want invalid", st)
	}
	if st := g.ctx.QueryPipelineState(sgpu.Pipeline{ID: handle.MustEncode[handle.Pipeline](s.pipeline).Raw()}); st != sgpu.StateInvalid {
		t.Errorf("destroyed pipeline state = %v, want invalid", st)
	}
	if info, err := g.QueryResourceInfo(keep); err != nil || !info.Alive {
		t.Errorf("resource under default label: info = %+v, err = %v", info, err)
	}
	if got := g.LookupResource(resource.NewLocator("shader")); got.IsValid() {
		t.Errorf("LookupResource after destroy = %v, want invalid", got)
	}

	if err := g.DestroyResources(resource.InvalidLabel); !errors.Is(err, resource.ErrInvalidLabel) {
		t.Errorf("DestroyResources(InvalidLabel) error = %v, want ErrInvalidLabel", err)
	}
}

func TestPushExistingResourceLabel(t *testing.T) {
	g := newTestGfx(t)
	label, _ := g.PushResourceLabel()
	if _, err := g.PopResourceLabel(); err != nil {
		t.Fatalf("PopResourceLabel: %v", err)
	}
	if err := g.PushExistingResourceLabel(label); err != nil {
		t.Fatalf("PushExistingResourceLabel: %v", err)
	}
	id, err := g.CreateBuffer(&BufferDesc{Content: make([]byte, 4)})
	if err != nil {
		t.Fatalf("CreateBuffer: %v", err)
	}
	if info, _ := g.QueryResourceInfo(id); info.Label != label {
		t.Errorf("Label = %v, want %v", info.Label, label)
	}
	if _, err := g.PopResourceLabel(); err != nil {
		t.Fatalf("PopResourceLabel: %v", err)
	}
	if _, err := g.PopResourceLabel(); !errors.Is(err, resource.ErrLabelStackUnderflow) {
		t.Errorf("PopResourceLabel on empty stack error = %v, want ErrLabelStackUnderflow", err)
	}
}

func TestAddResource(t *testing.T) {
	g := newTestGfx(t)
	id, err := g.CreateBuffer(&BufferDesc{Content: make([]byte, 4)})
	if err != nil {
		t.Fatalf("CreateBuffer: %v", err)
	}
	if err := g.AddResource(resource.NewLocator("alias"), id); !errors.Is(err, resource.ErrDuplicateID) {
		t.Errorf("AddResource of registered id error = %v, want ErrDuplicateID", err)
	}
	if err := g.AddResource(resource.NewLocator("bad"), resource.InvalidID()); !errors.Is(err, resource.ErrInvalidID) {
		t.Errorf("AddResource(InvalidID) error = %v, want ErrInvalidID", err)
	}
}

func TestUnsupportedOperations(t *testing.T) {
	g := newTestGfx(t)

	if id, err := g.CreatePass(&PassDesc{}); !errors.Is(err, ErrNotSupported) || id.IsValid() {
		t.Errorf("CreatePass = %v, %v; want InvalidID, ErrNotSupported", id, err)
	}
	if err := g.UpdateTexture(resource.InvalidID(), nil, &ImageDataAttrs{}); !errors.Is(err, ErrNotSupported) {
		t.Errorf("UpdateTexture error = %v, want ErrNotSupported", err)
	}
	action := DontCare()
	pass := handle.Decode(handle.FromRaw[handle.RenderPass](handle.Pack(0, 1)))
	if err := g.BeginPassTo(pass, &action); !errors.Is(err, ErrNotSupported) {
		t.Errorf("BeginPassTo(offscreen) error = %v, want ErrNotSupported", err)
	}
}

func TestUpdateBuffer(t *testing.T) {
	g := newTestGfx(t)
	s := newTestScene(t, g)
	dyn, err := g.CreateBuffer(&BufferDesc{Usage: UsageDynamic, Size: 64})
	if err != nil {
		t.Fatalf("CreateBuffer: %v", err)
	}

	if err := g.UpdateBuffer(dyn, make([]byte, 64)); err != nil {
		t.Errorf("UpdateBuffer: %v", err)
	}
	if err := g.UpdateBuffer(s.pipeline, make([]byte, 4)); !errors.Is(err, handle.ErrCategoryMismatch) {
		t.Errorf("UpdateBuffer(pipeline) error = %v, want ErrCategoryMismatch", err)
	}
	if err := g.UpdateBuffer(s.vbuf, make([]byte, 4)); !errors.Is(err, sgpu.ErrImmutable) {
		t.Errorf("UpdateBuffer(immutable) error = %v, want ErrImmutable", err)
	}
}

func TestFrame(t *testing.T) {
	g := newTestGfx(t)
	s := newTestScene(t, g)

	if err := g.ApplyViewport(0, 0, g.Width(), g.Height(), true); !errors.Is(err, sgpu.ErrNoPass) {
		t.Errorf("ApplyViewport outside pass error = %v, want ErrNoPass", err)
	}
	if err := g.ApplyScissorRect(0, 0, g.Width(), g.Height(), false); !errors.Is(err, sgpu.ErrNoPass) {
		t.Errorf("ApplyScissorRect outside pass error = %v, want ErrNoPass", err)
	}

	action := Clear(colornames.Cornflowerblue, 1, 0)
	if err := g.BeginPassTo(resource.InvalidID(), &action); err != nil {
		t.Fatalf("BeginPassTo: %v", err)
	}
	if err := g.ApplyViewport(0, 0, g.Width(), g.Height(), true); err != nil {
		t.Fatalf("ApplyViewport: %v", err)
	}
	if err := g.ApplyViewport(0, 0, g.Width()/2, g.Height()/2, false); err != nil {
		t.Fatalf("ApplyViewport bottom left: %v", err)
	}
	if err := g.ApplyScissorRect(10, 10, -5, -5, false); err != nil {
		t.Fatalf("ApplyScissorRect negative size: %v", err)
	}
	if err := g.ApplyScissorRect(0, 0, g.Width(), g.Height(), true); err != nil {
		t.Fatalf("ApplyScissorRect: %v", err)
	}
	if err := g.ApplyPipeline(s.pipeline); err != nil {
		t.Fatalf("ApplyPipeline: %v", err)
	}
	b := NewBindings()
	b.VertexBuffers[0] = s.vbuf
	b.IndexBuffer = s.ibuf
	if err := g.ApplyBindings(&b); err != nil {
		t.Fatalf("ApplyBindings: %v", err)
	}
	for i := 0; i < 5; i++ {
		if err := g.ApplyUniforms(StageVS, 0, make([]byte, 64)); err != nil {
			t.Fatalf("ApplyUniforms %d: %v", i, err)
		}
		if err := g.DrawGroup(PrimitiveGroup{NumElements: 3}); err != nil {
			t.Fatalf("DrawGroup %d: %v", i, err)
		}
	}
	if err := g.EndPass(); err != nil {
		t.Fatalf("EndPass: %v", err)
	}
	if err := g.CommitFrame(); err != nil {
		t.Fatalf("CommitFrame: %v", err)
	}
	if got := g.ctx.FrameIndex(); got != 1 {
		t.Errorf("FrameIndex = %d, want 1", got)
	}
	if got := g.display.presented.Load(); got != 1 {
		t.Errorf("presented = %d, want 1", got)
	}
	if err := g.ResetStateCache(); err != nil {
		t.Errorf("ResetStateCache: %v", err)
	}
}

func TestApplyPipelineMismatch(t *testing.T) {
	g := newTestGfx(t)
	s := newTestScene(t, g)
	action := Load()
	if err := g.BeginPass(&action); err != nil {
		t.Fatalf("BeginPass: %v", err)
	}
	defer func() { _ = g.EndPass() }()

	if err := g.ApplyPipeline(s.shader); !errors.Is(err, handle.ErrCategoryMismatch) {
		t.Errorf("ApplyPipeline(shader) error = %v, want ErrCategoryMismatch", err)
	}
}

func TestConvertBindings(t *testing.T) {
	buf := handle.Decode(handle.FromRaw[handle.Buffer](handle.Pack(3, 7)))
	tex := handle.Decode(handle.FromRaw[handle.Texture](handle.Pack(5, 1)))

	t.Run("stops at first invalid", func(t *testing.T) {
		b := NewBindings()
		b.VertexBuffers[0] = buf
		b.VertexBuffers[2] = tex // past the terminator, ignored
		b.FSTexture[0] = tex
		sb, err := convertBindings(&b)
		if err != nil {
			t.Fatalf("convertBindings: %v", err)
		}
		if got, want := sb.VertexBuffers[0].ID, handle.Pack(3, 7); got != want {
			t.Errorf("VertexBuffers[0] = %#x, want %#x", got, want)
		}
		if sb.VertexBuffers[2].ID != 0 {
			t.Errorf("VertexBuffers[2] = %#x, want 0", sb.VertexBuffers[2].ID)
		}
		if got, want := sb.FSImages[0].ID, handle.Pack(5, 1); got != want {
			t.Errorf("FSImages[0] = %#x, want %#x", got, want)
		}
		if sb.IndexBuffer.ID != 0 {
			t.Errorf("IndexBuffer = %#x, want 0", sb.IndexBuffer.ID)
		}
	})

	tests := []struct {
		name string
		set  func(*Bindings)
	}{
		{"texture as vertex buffer", func(b *Bindings) { b.VertexBuffers[0] = tex }},
		{"texture as index buffer", func(b *Bindings) { b.IndexBuffer = tex }},
		{"buffer as vertex texture", func(b *Bindings) { b.VSTexture[0] = buf }},
		{"buffer as fragment texture", func(b *Bindings) { b.FSTexture[0] = buf }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBindings()
			tt.set(&b)
			if _, err := convertBindings(&b); !errors.Is(err, handle.ErrCategoryMismatch) {
				t.Errorf("convertBindings error = %v, want ErrCategoryMismatch", err)
			}
		})
	}
}

func TestQueryFeature(t *testing.T) {
	g := newTestGfx(t)
	tests := []struct {
		f    Feature
		want bool
	}{
		{FeatureTextureCompressionDXT, false},
		{FeatureTextureCompressionPVRTC, false},
		{FeatureTextureCompressionETC2, false},
		{FeatureInstancing, true},
		{FeatureOriginTopLeft, true},
		{FeatureOriginBottomLeft, false},
		{FeatureTexture3D, true},
	}
	for _, tt := range tests {
		if got := g.QueryFeature(tt.f); got != tt.want {
			t.Errorf("QueryFeature(%v) = %v, want %v", tt.f, got, tt.want)
		}
	}
}

func TestWithFeatures(t *testing.T) {
	var features gputypes.Features
	features.Insert(gputypes.FeatureTextureCompressionBC)
	g := newTestGfx(t, WithFeatures(features))

	if !g.QueryFeature(FeatureTextureCompressionDXT) {
		t.Error("QueryFeature(DXT) = false, want true")
	}
	if g.QueryFeature(FeatureTextureCompressionETC2) {
		t.Error("QueryFeature(ETC2) = true, want false")
	}

	desc := &TextureDesc{
		Locator: resource.NonShared(),
		Width:   8,
		Height:  8,
		Format:  PixelFormatDXT1,
		Content: make([]byte, 2*2*8),
	}
	desc.ImageData.NumFaces = 1
	desc.ImageData.NumMipMaps = 1
	desc.ImageData.Sizes[0][0] = len(desc.Content)
	if _, err := g.CreateTexture(desc); err != nil {
		t.Errorf("CreateTexture(DXT1) error = %v, want nil", err)
	}

	desc.Format = PixelFormatETC2RGB8
	if _, err := g.CreateTexture(desc); !errors.Is(err, ErrNotSupported) {
		t.Errorf("CreateTexture(ETC2) error = %v, want ErrNotSupported", err)
	}
}
