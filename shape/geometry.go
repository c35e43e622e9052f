package shape

import (
	"math"

	"cogentcore.org/core/math32"
)

// mesh is the untransformed geometry of one shape. Indices are local to
// the mesh and rebased when the shape is appended to a vertex stream.
type mesh struct {
	positions []math32.Vector3
	normals   []math32.Vector3
	indices   []uint32
}

func (m *mesh) vertex(p, n math32.Vector3) {
	m.positions = append(m.positions, p)
	m.normals = append(m.normals, n)
}

func (m *mesh) quad(a, b, c, d uint32) {
	m.indices = append(m.indices, a, b, d, b, c, d)
}

// gridN returns the vertex and index counts of a tiled rectangle.
func gridN(tiles int) (numVertex, nIndex int) {
	return (tiles + 1) * (tiles + 1), tiles * tiles * 6
}

// grid appends a tiled rectangle spanned by u and v around center, facing
// normal. u cross v must point along normal for counter-clockwise winding.
func (m *mesh) grid(center, u, v, normal math32.Vector3, tiles int) {
	base := uint32(len(m.positions)) //nolint:gosec // vertex count is checked in Build
	step := 1 / float32(tiles)
	for j := 0; j <= tiles; j++ {
		fv := float32(j)*step - 0.5
		for i := 0; i <= tiles; i++ {
			fu := float32(i)*step - 0.5
			p := center.Add(u.MulScalar(fu)).Add(v.MulScalar(fv))
			m.vertex(p, normal)
		}
	}
	row := uint32(tiles + 1) //nolint:gosec // tiles is positive
	for j := uint32(0); j < uint32(tiles); j++ { //nolint:gosec // tiles is positive
		for i := uint32(0); i < uint32(tiles); i++ { //nolint:gosec // tiles is positive
			a := base + j*row + i
			m.quad(a, a+1, a+row+1, a+row)
		}
	}
}

// BoxN returns the vertex and index counts of a box with tiles
// subdivisions per face edge.
func BoxN(tiles int) (numVertex, nIndex int) {
	v, i := gridN(tiles)
	return 6 * v, 6 * i
}

func newBox(w, h, d float32, tiles int) *mesh {
	m := &mesh{}
	x, y, z := math32.Vec3(w, 0, 0), math32.Vec3(0, h, 0), math32.Vec3(0, 0, d)
	faces := []struct {
		center, u, v, normal math32.Vector3
	}{
		{math32.Vec3(0, 0, d/2), x, y, math32.Vec3(0, 0, 1)},
		{math32.Vec3(0, 0, -d/2), x.Negate(), y, math32.Vec3(0, 0, -1)},
		{math32.Vec3(w/2, 0, 0), z.Negate(), y, math32.Vec3(1, 0, 0)},
		{math32.Vec3(-w/2, 0, 0), z, y, math32.Vec3(-1, 0, 0)},
		{math32.Vec3(0, h/2, 0), x, z.Negate(), math32.Vec3(0, 1, 0)},
		{math32.Vec3(0, -h/2, 0), x, z, math32.Vec3(0, -1, 0)},
	}
	for _, f := range faces {
		m.grid(f.center, f.u, f.v, f.normal, tiles)
	}
	return m
}

// PlaneN returns the vertex and index counts of a plane with tiles
// subdivisions per edge.
func PlaneN(tiles int) (numVertex, nIndex int) {
	return gridN(tiles)
}

func newPlane(w, d float32, tiles int) *mesh {
	m := &mesh{}
	m.grid(math32.Vector3{}, math32.Vec3(w, 0, 0), math32.Vec3(0, 0, -d), math32.Vec3(0, 1, 0), tiles)
	return m
}

// SphereN returns the vertex and index counts of a UV sphere. The first
// and last stack are closed with single triangles.
func SphereN(slices, stacks int) (numVertex, nIndex int) {
	return (slices + 1) * (stacks + 1), slices * (stacks - 1) * 6
}

func newSphere(radius float32, slices, stacks int) *mesh {
	m := &mesh{}
	for j := 0; j <= stacks; j++ {
		theta := float32(j) / float32(stacks) * math.Pi
		st, ct := math32.Sin(theta), math32.Cos(theta)
		for i := 0; i <= slices; i++ {
			phi := float32(i) / float32(slices) * 2 * math.Pi
			n := math32.Vec3(st*math32.Cos(phi), ct, -st*math32.Sin(phi))
			m.vertex(n.MulScalar(radius), n)
		}
	}
	row := uint32(slices + 1) //nolint:gosec // slices is positive
	for j := 0; j < stacks; j++ {
		for i := uint32(0); i < uint32(slices); i++ { //nolint:gosec // slices is positive
			a := uint32(j)*row + i //nolint:gosec // stacks is positive
			b, c, d := a+row, a+row+1, a+1
			switch j {
			case 0:
				m.indices = append(m.indices, a, b, c)
			case stacks - 1:
				m.indices = append(m.indices, a, b, d)
			default:
				m.quad(a, b, c, d)
			}
		}
	}
	return m
}

// CylinderN returns the vertex and index counts of a capped cylinder:
// the side wall plus a center vertex and a ring per cap.
func CylinderN(slices, stacks int) (numVertex, nIndex int) {
	numVertex = (slices+1)*(stacks+1) + 2*(slices+2)
	nIndex = slices*stacks*6 + 2*slices*3
	return
}

func newCylinder(radius, length float32, slices, stacks int) *mesh {
	m := &mesh{}
	half := length / 2
	ring := func(i int) (float32, float32) {
		phi := float32(i) / float32(slices) * 2 * math.Pi
		return math32.Cos(phi), -math32.Sin(phi)
	}

	// side wall, top to bottom
	for j := 0; j <= stacks; j++ {
		y := half - float32(j)/float32(stacks)*length
		for i := 0; i <= slices; i++ {
			cx, cz := ring(i)
			m.vertex(math32.Vec3(cx*radius, y, cz*radius), math32.Vec3(cx, 0, cz))
		}
	}
	row := uint32(slices + 1) //nolint:gosec // slices is positive
	for j := uint32(0); j < uint32(stacks); j++ { //nolint:gosec // stacks is positive
		for i := uint32(0); i < uint32(slices); i++ { //nolint:gosec // slices is positive
			a := j*row + i
			m.quad(a, a+row, a+row+1, a+1)
		}
	}

	disc := func(y, ny float32) {
		center := uint32(len(m.positions)) //nolint:gosec // vertex count is checked in Build
		normal := math32.Vec3(0, ny, 0)
		m.vertex(math32.Vec3(0, y, 0), normal)
		for i := 0; i <= slices; i++ {
			cx, cz := ring(i)
			m.vertex(math32.Vec3(cx*radius, y, cz*radius), normal)
		}
		for i := uint32(1); i <= uint32(slices); i++ { //nolint:gosec // slices is positive
			if ny > 0 {
				m.indices = append(m.indices, center, center+i, center+i+1)
			} else {
				m.indices = append(m.indices, center, center+i+1, center+i)
			}
		}
	}
	disc(half, 1)
	disc(-half, -1)
	return m
}

// TorusN returns the vertex and index counts of a torus.
func TorusN(sides, rings int) (numVertex, nIndex int) {
	return (sides + 1) * (rings + 1), sides * rings * 6
}

// newTorus builds a torus lying in the XZ plane. ringRadius is the radius
// of the tube and radius the distance from the center to the tube center.
func newTorus(ringRadius, radius float32, sides, rings int) *mesh {
	m := &mesh{}
	for j := 0; j <= rings; j++ {
		u := float32(j) / float32(rings) * 2 * math.Pi
		cu, su := math32.Cos(u), -math32.Sin(u)
		center := math32.Vec3(radius*cu, 0, radius*su)
		for i := 0; i <= sides; i++ {
			v := float32(i) / float32(sides) * 2 * math.Pi
			r := radius + ringRadius*math32.Cos(v)
			p := math32.Vec3(r*cu, ringRadius*math32.Sin(v), r*su)
			m.vertex(p, p.Sub(center).Normal())
		}
	}
	row := uint32(sides + 1) //nolint:gosec // sides is positive
	for j := uint32(0); j < uint32(rings); j++ { //nolint:gosec // rings is positive
		for i := uint32(0); i < uint32(sides); i++ { //nolint:gosec // sides is positive
			a := j*row + i
			m.quad(a, a+1, a+row+1, a+row)
		}
	}
	return m
}
