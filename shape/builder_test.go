package shape

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"cogentcore.org/core/math32"
	"golang.org/x/image/colornames"

	"github.com/gogpu/gfx"
)

func TestShapeCounts(t *testing.T) {
	boxV, boxI := BoxN(4)
	sphereV, sphereI := SphereN(36, 20)
	cylV, cylI := CylinderN(36, 10)
	torusV, torusI := TorusN(20, 36)
	planeV, planeI := PlaneN(10)

	tests := []struct {
		name         string
		build        func(*Builder) *Builder
		wantVertices int
		wantIndices  int
	}{
		{"box", func(b *Builder) *Builder { return b.Box(1, 1, 1, 4) }, boxV, boxI},
		{"sphere", func(b *Builder) *Builder { return b.Sphere(0.75, 36, 20) }, sphereV, sphereI},
		{"cylinder", func(b *Builder) *Builder { return b.Cylinder(0.5, 1.5, 36, 10) }, cylV, cylI},
		{"torus", func(b *Builder) *Builder { return b.Torus(0.3, 0.5, 20, 36) }, torusV, torusI},
		{"plane", func(b *Builder) *Builder { return b.Plane(1.5, 1.5, 10) }, planeV, planeI},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := tt.build(New().Positions("position", gfx.VertexFloat3)).Build()
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			if got := res.VertexBufferDesc.Size / 12; got != tt.wantVertices {
				t.Errorf("vertices = %d, want %d", got, tt.wantVertices)
			}
			if got := res.IndexBufferDesc.Size / 2; got != tt.wantIndices {
				t.Errorf("indices = %d, want %d", got, tt.wantIndices)
			}
			if len(res.PrimitiveGroups) != 1 || res.PrimitiveGroups[0].NumElements != tt.wantIndices {
				t.Errorf("groups = %+v, want one of %d elements", res.PrimitiveGroups, tt.wantIndices)
			}
		})
	}
}

func TestCountFormulas(t *testing.T) {
	tests := []struct {
		name       string
		gotV, gotI int
		wantV      int
		wantI      int
	}{
		{"box tiles 4", first(BoxN(4)), second(BoxN(4)), 6 * 25, 6 * 16 * 6},
		{"sphere 36x20", first(SphereN(36, 20)), second(SphereN(36, 20)), 37 * 21, 36 * 19 * 6},
		{"torus 20x36", first(TorusN(20, 36)), second(TorusN(20, 36)), 21 * 37, 20 * 36 * 6},
		{"plane tiles 10", first(PlaneN(10)), second(PlaneN(10)), 121, 600},
	}
	for _, tt := range tests {
		if tt.gotV != tt.wantV || tt.gotI != tt.wantI {
			t.Errorf("%s: got %d/%d, want %d/%d", tt.name, tt.gotV, tt.gotI, tt.wantV, tt.wantI)
		}
	}
}

func first(a, _ int) int  { return a }
func second(_, b int) int { return b }

func TestBuildSample(t *testing.T) {
	res, err := New().
		RandomColors(true).
		Positions("position", gfx.VertexFloat3).
		Colors("color0", gfx.VertexUByte4N).
		Box(1, 1, 1, 4).
		Sphere(0.75, 36, 20).
		Cylinder(0.5, 1.5, 36, 10).
		Torus(0.3, 0.5, 20, 36).
		Plane(1.5, 1.5, 10).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if got := res.Layout.ByteSize(); got != 16 {
		t.Errorf("stride = %d, want 16", got)
	}
	if got := res.Layout.ComponentIndexByName("color0"); got != 1 {
		t.Errorf("color0 index = %d, want 1", got)
	}
	if res.PipelineDesc.IndexType != gfx.IndexUInt16 {
		t.Errorf("IndexType = %v, want UInt16", res.PipelineDesc.IndexType)
	}
	if len(res.PipelineDesc.Layouts) != 1 || res.PipelineDesc.Layouts[0].ByteSize() != 16 {
		t.Errorf("pipeline layouts = %+v", res.PipelineDesc.Layouts)
	}
	if res.PipelineDesc.Shader.IsValid() {
		t.Error("pipeline shader is set")
	}
	if res.VertexBufferDesc.Type != gfx.VertexBuffer || res.IndexBufferDesc.Type != gfx.IndexBuffer {
		t.Errorf("buffer types = %v/%v", res.VertexBufferDesc.Type, res.IndexBufferDesc.Type)
	}

	if len(res.PrimitiveGroups) != 5 {
		t.Fatalf("groups = %d, want 5", len(res.PrimitiveGroups))
	}
	next := 0
	for i, pg := range res.PrimitiveGroups {
		if pg.BaseElement != next {
			t.Errorf("group %d base = %d, want %d", i, pg.BaseElement, next)
		}
		next += pg.NumElements
	}
	if next*2 != len(res.IndexBufferDesc.Content) {
		t.Errorf("groups cover %d indices, buffer holds %d", next, len(res.IndexBufferDesc.Content)/2)
	}

	numVertices := len(res.VertexBufferDesc.Content) / 16
	for i := 0; i < len(res.IndexBufferDesc.Content); i += 2 {
		if idx := int(binary.LittleEndian.Uint16(res.IndexBufferDesc.Content[i:])); idx >= numVertices {
			t.Fatalf("index %d = %d, out of %d vertices", i/2, idx, numVertices)
		}
	}
}

func TestRandomColorsDeterministic(t *testing.T) {
	build := func() []byte {
		res, err := New().RandomColors(true).
			Positions("position", gfx.VertexFloat3).
			Colors("color0", gfx.VertexUByte4N).
			Sphere(1, 8, 4).
			Build()
		if err != nil {
			t.Fatalf("Build: %v", err)
		}
		return res.VertexBufferDesc.Content
	}
	a, b := build(), build()
	if string(a) != string(b) {
		t.Error("random colors differ between builds")
	}
}

func TestColorAndTransform(t *testing.T) {
	var m math32.Matrix4
	m.SetTranslation(10, 0, 0)
	res, err := New().
		Positions("position", gfx.VertexFloat4).
		Colors("color0", gfx.VertexUByte4N).
		Color(colornames.Red).
		Transform(m).
		Plane(2, 2, 1).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	stride := 20
	data := res.VertexBufferDesc.Content
	for v := 0; v < len(data)/stride; v++ {
		out := data[v*stride:]
		x := math.Float32frombits(binary.LittleEndian.Uint32(out))
		w := math.Float32frombits(binary.LittleEndian.Uint32(out[12:]))
		if x < 9 || x > 11 {
			t.Errorf("vertex %d x = %v, want within [9, 11]", v, x)
		}
		if w != 1 {
			t.Errorf("vertex %d w = %v, want 1", v, w)
		}
		if got := [4]byte(out[16:20]); got != [4]byte{255, 0, 0, 255} {
			t.Errorf("vertex %d color = %v, want red", v, got)
		}
	}
	if res.Bounds.Min.X != 9 || res.Bounds.Max.X != 11 {
		t.Errorf("bounds x = [%v, %v], want [9, 11]", res.Bounds.Min.X, res.Bounds.Max.X)
	}
}

func TestNormals(t *testing.T) {
	res, err := New().
		Positions("position", gfx.VertexFloat3).
		Normals("normal", gfx.VertexByte4N).
		Plane(1, 1, 1).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	data := res.VertexBufferDesc.Content
	for v := 0; v < len(data)/16; v++ {
		n := data[v*16+12 : v*16+16]
		if int8(n[0]) != 0 || int8(n[1]) != 127 || int8(n[2]) != 0 {
			t.Errorf("vertex %d normal = %v, want +Y", v, n)
		}
	}
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name string
		b    *Builder
		want error
	}{
		{"no shapes", New().Positions("position", gfx.VertexFloat3), ErrNoShapes},
		{"no positions", New().Box(1, 1, 1, 1), ErrNoPositions},
		{"position format", New().Positions("position", gfx.VertexUByte4N).Box(1, 1, 1, 1), ErrUnsupportedFormat},
		{"color format", New().Positions("position", gfx.VertexFloat3).Colors("color0", gfx.VertexShort2).Box(1, 1, 1, 1), ErrUnsupportedFormat},
		{"zero tiles", New().Positions("position", gfx.VertexFloat3).Box(1, 1, 1, 0), ErrInvalidShape},
		{"sphere stacks", New().Positions("position", gfx.VertexFloat3).Sphere(1, 8, 1), ErrInvalidShape},
		{"negative size", New().Positions("position", gfx.VertexFloat3).Plane(-1, 1, 1), ErrInvalidShape},
		{"too many vertices", New().Positions("position", gfx.VertexFloat3).Plane(1, 1, 300), ErrTooManyVertices},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.b.Build(); !errors.Is(err, tt.want) {
				t.Errorf("Build() error = %v, want %v", err, tt.want)
			}
		})
	}
}
