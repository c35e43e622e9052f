package gfx

import (
	"image/color"
	"testing"

	"golang.org/x/image/colornames"

	"github.com/gogpu/gfx/resource"
)

func TestVertexLayout(t *testing.T) {
	var l VertexLayout
	if !l.Empty() {
		t.Error("zero layout not empty")
	}
	l.Add("position", VertexFloat3).Add("normal", VertexByte4N).Add("texcoord0", VertexFloat2)

	if l.Empty() {
		t.Error("layout with components reports empty")
	}
	if got := l.ByteSize(); got != 24 {
		t.Errorf("ByteSize() = %d, want 24", got)
	}
	offsets := []int{0, 12, 16}
	for i, want := range offsets {
		if got := l.ComponentByteOffset(i); got != want {
			t.Errorf("ComponentByteOffset(%d) = %d, want %d", i, got, want)
		}
	}
	if got := l.ComponentIndexByName("normal"); got != 1 {
		t.Errorf("ComponentIndexByName(normal) = %d, want 1", got)
	}
	if got := l.ComponentIndexByName("color0"); got != -1 {
		t.Errorf("ComponentIndexByName(color0) = %d, want -1", got)
	}
}

func TestNewPipelineDesc(t *testing.T) {
	shd := resource.ID{Type: resource.Shader, SlotIndex: 1, UniqueStamp: 2}
	pd := NewPipelineDesc(shd)
	if pd.Shader != shd {
		t.Errorf("Shader = %v, want %v", pd.Shader, shd)
	}
	if pd.Locator.IsShared() {
		t.Error("default locator is shared")
	}
	if pd.ColorWriteMask != ChannelRGBA {
		t.Errorf("ColorWriteMask = %v, want RGBA", pd.ColorWriteMask)
	}
	if pd.DepthCmpFunc != CompareAlways || pd.StencilFrontCmpFunc != CompareAlways {
		t.Errorf("compare funcs = %v/%v, want Always", pd.DepthCmpFunc, pd.StencilFrontCmpFunc)
	}
	if pd.BlendSrcFactorRGB != BlendOne || pd.BlendDstFactorRGB != BlendZero {
		t.Errorf("blend factors = %v/%v, want One/Zero", pd.BlendSrcFactorRGB, pd.BlendDstFactorRGB)
	}
	if pd.MRTCount != 1 || pd.SampleCount != 1 {
		t.Errorf("MRTCount/SampleCount = %d/%d, want 1/1", pd.MRTCount, pd.SampleCount)
	}
}

func TestFloat4(t *testing.T) {
	tests := []struct {
		name string
		c    color.Color
		want [4]float32
	}{
		{"black", colornames.Black, [4]float32{0, 0, 0, 1}},
		{"white", colornames.White, [4]float32{1, 1, 1, 1}},
		{"blue", colornames.Blue, [4]float32{0, 0, 1, 1}},
		{"transparent", color.Transparent, [4]float32{0, 0, 0, 0}},
	}
	for _, tt := range tests {
		if got := Float4(tt.c); got != tt.want {
			t.Errorf("Float4(%s) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestPassActions(t *testing.T) {
	c := Clear(colornames.Lime, 0.25, 7)
	if c.Flags != ClearAll {
		t.Errorf("Clear flags = %#x, want %#x", c.Flags, ClearAll)
	}
	for i, col := range c.Color {
		if col != [4]float32{0, 1, 0, 1} {
			t.Errorf("Clear color %d = %v, want lime", i, col)
		}
	}
	if c.Depth != 0.25 || c.Stencil != 7 {
		t.Errorf("Clear depth/stencil = %v/%d, want 0.25/7", c.Depth, c.Stencil)
	}
	if l := Load(); l.Flags != LoadAll || l.Depth != 1 {
		t.Errorf("Load() = %+v", l)
	}
	if d := DontCare(); d.Flags != 0 {
		t.Errorf("DontCare flags = %#x, want 0", d.Flags)
	}
}

func TestNewBindings(t *testing.T) {
	b := NewBindings()
	for i, id := range b.VertexBuffers {
		if id.IsValid() {
			t.Errorf("VertexBuffers[%d] = %v, want invalid", i, id)
		}
	}
	if b.IndexBuffer.IsValid() {
		t.Errorf("IndexBuffer = %v, want invalid", b.IndexBuffer)
	}
	for i, id := range b.FSTexture {
		if id.IsValid() {
			t.Errorf("FSTexture[%d] = %v, want invalid", i, id)
		}
	}
	for i, id := range b.VSTexture {
		if id.IsValid() {
			t.Errorf("VSTexture[%d] = %v, want invalid", i, id)
		}
	}
}

func TestEnumStrings(t *testing.T) {
	tests := []struct {
		got  string
		want string
	}{
		{VertexBuffer.String(), "VertexBuffer"},
		{BufferType(9).String(), "Unknown"},
		{UsageStream.String(), "Stream"},
		{StencilIncrWrap.String(), "IncrWrap"},
		{StencilOp(99).String(), "Unknown"},
		{PixelFormatDepthStencil.String(), "DEPTHSTENCIL"},
		{PixelFormatETC2SRGB8.String(), "ETC2_SRGB8"},
		{PixelFormat(99).String(), "Unknown"},
		{VertexUInt10N2.String(), "UInt10_2N"},
		{ChannelRGB.String(), "RGB"},
		{(ChannelRed | ChannelAlpha).String(), "RA"},
		{PixelChannel(0).String(), "None"},
		{FeatureTextureArray.String(), "TextureArray"},
		{Feature(99).String(), "Unknown"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("String() = %q, want %q", tt.got, tt.want)
		}
	}
}

func TestPixelFormatPredicates(t *testing.T) {
	tests := []struct {
		f          PixelFormat
		depth      bool
		compressed bool
	}{
		{PixelFormatRGBA8, false, false},
		{PixelFormatDepth, true, false},
		{PixelFormatDepthStencil, true, false},
		{PixelFormatDXT5, false, true},
		{PixelFormatPVRTC4RGBA, false, true},
		{PixelFormatETC2RGB8, false, true},
	}
	for _, tt := range tests {
		if got := tt.f.IsDepth(); got != tt.depth {
			t.Errorf("%v.IsDepth() = %v, want %v", tt.f, got, tt.depth)
		}
		if got := tt.f.IsCompressed(); got != tt.compressed {
			t.Errorf("%v.IsCompressed() = %v, want %v", tt.f, got, tt.compressed)
		}
	}
}

func TestIndexTypeByteSize(t *testing.T) {
	tests := []struct {
		t    IndexType
		want int
	}{
		{IndexNone, 0},
		{IndexUInt16, 2},
		{IndexUInt32, 4},
	}
	for _, tt := range tests {
		if got := tt.t.ByteSize(); got != tt.want {
			t.Errorf("%v.ByteSize() = %d, want %d", tt.t, got, tt.want)
		}
	}
}
