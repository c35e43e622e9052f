// Package shape generates simple meshes (box, sphere, cylinder, torus and
// plane) into a single vertex and index buffer ready for gfx.CreateBuffer.
//
// Shapes are queued on a [Builder] and encoded by [Builder.Build]:
//
//	res, err := shape.New().
//		RandomColors(true).
//		Positions("position", gfx.VertexFloat3).
//		Colors("color0", gfx.VertexUByte4N).
//		Box(1, 1, 1, 4).
//		Sphere(0.75, 36, 20).
//		Build()
//
// Each queued shape becomes one [gfx.PrimitiveGroup] of the result.
package shape

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image/color"
	"math"
	"math/rand/v2"
	"slices"

	"cogentcore.org/core/math32"
	"golang.org/x/image/colornames"

	"github.com/gogpu/gfx"
	"github.com/gogpu/gfx/resource"
)

// MaxVertices is the largest vertex count addressable by 16-bit indices.
const MaxVertices = math.MaxUint16 + 1

// Builder errors.
var (
	// ErrNoShapes is returned by Build when no shape was queued.
	ErrNoShapes = errors.New("shape: no shapes")

	// ErrNoPositions is returned by Build when no position component was declared.
	ErrNoPositions = errors.New("shape: no position component")

	// ErrTooManyVertices is returned when the shapes do not fit 16-bit indices.
	ErrTooManyVertices = errors.New("shape: too many vertices for 16-bit indices")

	// ErrInvalidShape is returned for negative sizes or too few subdivisions.
	ErrInvalidShape = errors.New("shape: invalid shape parameters")

	// ErrUnsupportedFormat is returned for a vertex format a component cannot be encoded in.
	ErrUnsupportedFormat = errors.New("shape: unsupported vertex format")
)

// randomSeed keeps random colors identical across runs.
const randomSeed = 0x5eed

type kind uint8

const (
	kindBox kind = iota
	kindSphere
	kindCylinder
	kindTorus
	kindPlane
)

func (k kind) String() string {
	switch k {
	case kindBox:
		return "box"
	case kindSphere:
		return "sphere"
	case kindCylinder:
		return "cylinder"
	case kindTorus:
		return "torus"
	case kindPlane:
		return "plane"
	default:
		return "unknown"
	}
}

// item is a queued shape with the transform and color active when it was
// added.
type item struct {
	kind      kind
	size      [3]float32
	divs      [2]int
	transform math32.Matrix4
	color     [4]float32
}

// component is a declared vertex attribute.
type component struct {
	name   string
	format gfx.VertexFormat
}

// Builder queues shapes and encodes them into vertex and index data.
// The zero value is not usable; create one with New.
type Builder struct {
	positions    *component
	normals      *component
	colors       *component
	randomColors bool
	color        [4]float32
	transform    math32.Matrix4
	items        []item
}

// New returns a Builder with an identity transform and white vertex color.
func New() *Builder {
	b := &Builder{color: gfx.Float4(colornames.White)}
	b.transform.SetIdentity()
	return b
}

// Positions declares the position component. Float3 and Float4 are supported.
func (b *Builder) Positions(name string, format gfx.VertexFormat) *Builder {
	b.positions = &component{name, format}
	return b
}

// Normals declares the normal component. Float3, Float4, Byte4N and UByte4N
// are supported.
func (b *Builder) Normals(name string, format gfx.VertexFormat) *Builder {
	b.normals = &component{name, format}
	return b
}

// Colors declares the vertex color component. Float3, Float4 and UByte4N
// are supported.
func (b *Builder) Colors(name string, format gfx.VertexFormat) *Builder {
	b.colors = &component{name, format}
	return b
}

// RandomColors makes Build write a random color per vertex instead of the
// current shape color.
func (b *Builder) RandomColors(on bool) *Builder {
	b.randomColors = on
	return b
}

// Color sets the vertex color of shapes added after this call.
func (b *Builder) Color(c color.Color) *Builder {
	b.color = gfx.Float4(c)
	return b
}

// Transform sets the transform applied to shapes added after this call.
func (b *Builder) Transform(m math32.Matrix4) *Builder {
	b.transform = m
	return b
}

func (b *Builder) add(k kind, x, y, z float32, d0, d1 int) *Builder {
	b.items = append(b.items, item{
		kind:      k,
		size:      [3]float32{x, y, z},
		divs:      [2]int{d0, d1},
		transform: b.transform,
		color:     b.color,
	})
	return b
}

// Box queues a box of the given extents with tiles subdivisions per face edge.
func (b *Builder) Box(w, h, d float32, tiles int) *Builder {
	return b.add(kindBox, w, h, d, tiles, 0)
}

// Sphere queues a sphere with slices around the Y axis and stacks from
// pole to pole.
func (b *Builder) Sphere(radius float32, slices, stacks int) *Builder {
	return b.add(kindSphere, radius, 0, 0, slices, stacks)
}

// Cylinder queues a capped cylinder along the Y axis.
func (b *Builder) Cylinder(radius, length float32, slices, stacks int) *Builder {
	return b.add(kindCylinder, radius, length, 0, slices, stacks)
}

// Torus queues a torus in the XZ plane. ringRadius is the tube radius and
// radius the distance from the center to the middle of the tube.
func (b *Builder) Torus(ringRadius, radius float32, sides, rings int) *Builder {
	return b.add(kindTorus, ringRadius, radius, 0, sides, rings)
}

// Plane queues a plane in the XZ plane facing +Y.
func (b *Builder) Plane(w, d float32, tiles int) *Builder {
	return b.add(kindPlane, w, d, 0, tiles, 0)
}

// Result is the encoded geometry of all queued shapes.
type Result struct {
	Layout           gfx.VertexLayout
	VertexBufferDesc gfx.BufferDesc
	IndexBufferDesc  gfx.BufferDesc

	// PipelineDesc carries the layout and index type. Shader must be set
	// before it is passed to CreatePipeline.
	PipelineDesc    gfx.PipelineDesc
	PrimitiveGroups []gfx.PrimitiveGroup

	// Bounds encloses every transformed vertex.
	Bounds math32.Box3
}

func (it *item) mesh() (*mesh, error) {
	for _, s := range it.size {
		if s < 0 {
			return nil, fmt.Errorf("%w: %s size %v", ErrInvalidShape, it.kind, it.size)
		}
	}
	switch it.kind {
	case kindBox:
		if it.divs[0] < 1 {
			break
		}
		return newBox(it.size[0], it.size[1], it.size[2], it.divs[0]), nil
	case kindPlane:
		if it.divs[0] < 1 {
			break
		}
		return newPlane(it.size[0], it.size[1], it.divs[0]), nil
	case kindSphere:
		if it.divs[0] < 3 || it.divs[1] < 2 {
			break
		}
		return newSphere(it.size[0], it.divs[0], it.divs[1]), nil
	case kindCylinder:
		if it.divs[0] < 3 || it.divs[1] < 1 {
			break
		}
		return newCylinder(it.size[0], it.size[1], it.divs[0], it.divs[1]), nil
	case kindTorus:
		if it.divs[0] < 3 || it.divs[1] < 3 {
			break
		}
		return newTorus(it.size[0], it.size[1], it.divs[0], it.divs[1]), nil
	}
	return nil, fmt.Errorf("%w: %s subdivisions %v", ErrInvalidShape, it.kind, it.divs)
}

// layout returns the vertex layout and per-component offsets, -1 for
// undeclared components.
func (b *Builder) layout() (gfx.VertexLayout, [3]int, error) {
	var l gfx.VertexLayout
	offsets := [3]int{-1, -1, -1}
	supported := [3][]gfx.VertexFormat{
		{gfx.VertexFloat3, gfx.VertexFloat4},
		{gfx.VertexFloat3, gfx.VertexFloat4, gfx.VertexByte4N, gfx.VertexUByte4N},
		{gfx.VertexFloat3, gfx.VertexFloat4, gfx.VertexUByte4N},
	}
	for i, c := range []*component{b.positions, b.normals, b.colors} {
		if c == nil {
			continue
		}
		if !slices.Contains(supported[i], c.format) {
			return l, offsets, fmt.Errorf("%w: %v for %q", ErrUnsupportedFormat, c.format, c.name)
		}
		offsets[i] = l.ByteSize()
		l.Add(c.name, c.format)
	}
	return l, offsets, nil
}

// Build encodes all queued shapes. Vertices are interleaved in the order
// positions, normals, colors; indices are 16 bit and absolute, so each
// primitive group can be drawn with a zero base vertex.
func (b *Builder) Build() (*Result, error) {
	if len(b.items) == 0 {
		return nil, ErrNoShapes
	}
	if b.positions == nil {
		return nil, ErrNoPositions
	}
	layout, offsets, err := b.layout()
	if err != nil {
		return nil, err
	}

	meshes := make([]*mesh, len(b.items))
	numVertices, numIndices := 0, 0
	for i := range b.items {
		m, err := b.items[i].mesh()
		if err != nil {
			return nil, err
		}
		meshes[i] = m
		numVertices += len(m.positions)
		numIndices += len(m.indices)
	}
	if numVertices > MaxVertices {
		return nil, fmt.Errorf("%w: %d", ErrTooManyVertices, numVertices)
	}

	stride := layout.ByteSize()
	vertices := make([]byte, numVertices*stride)
	indices := make([]byte, 0, numIndices*2)
	groups := make([]gfx.PrimitiveGroup, 0, len(meshes))
	rng := rand.New(rand.NewPCG(randomSeed, randomSeed)) //nolint:gosec // colors only

	var bounds math32.Box3
	bounds.SetEmpty()
	base := 0
	for i, m := range meshes {
		it := &b.items[i]
		groups = append(groups, gfx.PrimitiveGroup{
			BaseElement: len(indices) / 2,
			NumElements: len(m.indices),
		})
		for _, idx := range m.indices {
			indices = binary.LittleEndian.AppendUint16(indices, uint16(base+int(idx))) //nolint:gosec // bounded by MaxVertices
		}
		for v := range m.positions {
			out := vertices[(base+v)*stride:]
			p := math32.Vector4FromVector3(m.positions[v], 1).MulMatrix4(&it.transform)
			pos := math32.Vec3(p.X, p.Y, p.Z)
			bounds.ExpandByPoint(pos)
			putFloats(out[offsets[0]:], b.positions.format, pos.X, pos.Y, pos.Z, 1)

			if offsets[1] >= 0 {
				n := math32.Vector4FromVector3(m.normals[v], 0).MulMatrix4(&it.transform)
				nrm := math32.Vec3(n.X, n.Y, n.Z).Normal()
				putNormal(out[offsets[1]:], b.normals.format, nrm)
			}
			if offsets[2] >= 0 {
				c := it.color
				if b.randomColors {
					c = [4]float32{rng.Float32(), rng.Float32(), rng.Float32(), 1}
				}
				putColor(out[offsets[2]:], b.colors.format, c)
			}
		}
		base += len(m.positions)
	}

	pip := gfx.NewPipelineDesc(resource.InvalidID())
	pip.Layouts = []gfx.VertexLayout{layout}
	pip.IndexType = gfx.IndexUInt16

	return &Result{
		Layout: layout,
		VertexBufferDesc: gfx.BufferDesc{
			Locator: resource.NonShared(),
			Type:    gfx.VertexBuffer,
			Usage:   gfx.UsageImmutable,
			Size:    len(vertices),
			Content: vertices,
		},
		IndexBufferDesc: gfx.BufferDesc{
			Locator: resource.NonShared(),
			Type:    gfx.IndexBuffer,
			Usage:   gfx.UsageImmutable,
			Size:    len(indices),
			Content: indices,
		},
		PipelineDesc:    pip,
		PrimitiveGroups: groups,
		Bounds:          bounds,
	}, nil
}

func putFloats(dst []byte, format gfx.VertexFormat, v ...float32) {
	n := 3
	if format == gfx.VertexFloat4 {
		n = 4
	}
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(v[i]))
	}
}

func putNormal(dst []byte, format gfx.VertexFormat, n math32.Vector3) {
	switch format {
	case gfx.VertexByte4N:
		dst[0], dst[1], dst[2], dst[3] = snorm8(n.X), snorm8(n.Y), snorm8(n.Z), 0
	case gfx.VertexUByte4N:
		dst[0], dst[1], dst[2], dst[3] = unorm8(n.X*0.5+0.5), unorm8(n.Y*0.5+0.5), unorm8(n.Z*0.5+0.5), 0
	default:
		putFloats(dst, format, n.X, n.Y, n.Z, 0)
	}
}

func putColor(dst []byte, format gfx.VertexFormat, c [4]float32) {
	if format == gfx.VertexUByte4N {
		dst[0], dst[1], dst[2], dst[3] = unorm8(c[0]), unorm8(c[1]), unorm8(c[2]), unorm8(c[3])
		return
	}
	putFloats(dst, format, c[0], c[1], c[2], c[3])
}

func unorm8(f float32) byte {
	return byte(math32.Round(math32.Clamp(f, 0, 1) * 255))
}

func snorm8(f float32) byte {
	return byte(int8(math32.Round(math32.Clamp(f, -1, 1) * 127)))
}
