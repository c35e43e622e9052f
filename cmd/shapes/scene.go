package main

import (
	_ "embed"
	"encoding/binary"
	"fmt"
	"image/color"
	"log/slog"

	"cogentcore.org/core/math32"

	"github.com/gogpu/gfx"
	"github.com/gogpu/gfx/resource"
	"github.com/gogpu/gfx/shape"
)

//go:embed shader.wgsl
var shaderSource string

// positions of the five shapes, in build order.
var positions = [...]math32.Vector3{
	{X: -1, Y: 1, Z: -6},
	{X: 1, Y: 1, Z: -6},
	{X: -2, Y: -1, Z: -6},
	{X: 2, Y: -1, Z: -6},
	{X: 0, Y: -1, Z: -6},
}

const (
	fovDegrees = 45
	zNear      = 0.01
	zFar       = 100
)

func shaderDesc() *gfx.ShaderDesc {
	return &gfx.ShaderDesc{
		Locator:       resource.NewLocator("shapes.shader"),
		Source:        shaderSource,
		UniformBlocks: []gfx.UniformBlockDesc{{Name: "mvp", Stage: gfx.StageVS, ByteSize: 64}},
		Label:         "shapes",
	}
}

// scene owns the shape geometry and the per-frame rotation state.
type scene struct {
	g        *gfx.Gfx
	label    resource.Label
	pipeline resource.ID
	bindings gfx.Bindings
	groups   []gfx.PrimitiveGroup
	action   gfx.PassAction

	angleX, angleY float32
	uniform        []byte
}

func newScene(g *gfx.Gfx, shd *gfx.ShaderDesc, bg color.Color) (*scene, error) {
	s := &scene{
		g:       g,
		action:  gfx.Clear(bg, 1, 0),
		uniform: make([]byte, 0, 64),
	}
	label, err := g.PushResourceLabel()
	if err != nil {
		return nil, err
	}
	s.label = label
	defer func() { _, _ = g.PopResourceLabel() }()

	shapes, err := shape.New().
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
		return nil, err
	}
	s.groups = shapes.PrimitiveGroups
	slog.Debug("shapes: geometry built",
		"vertices", shapes.VertexBufferDesc.Size/shapes.Layout.ByteSize(),
		"indices", shapes.IndexBufferDesc.Size/2,
		"bounds", shapes.Bounds)

	s.bindings = gfx.NewBindings()
	if s.bindings.VertexBuffers[0], err = g.CreateBuffer(&shapes.VertexBufferDesc); err != nil {
		return nil, fmt.Errorf("vertex buffer: %w", err)
	}
	if s.bindings.IndexBuffer, err = g.CreateBuffer(&shapes.IndexBufferDesc); err != nil {
		return nil, fmt.Errorf("index buffer: %w", err)
	}

	shader, err := g.CreateShader(shd)
	if err != nil {
		return nil, fmt.Errorf("shader: %w", err)
	}
	pip := shapes.PipelineDesc
	pip.Shader = shader
	pip.DepthWriteEnabled = true
	pip.DepthCmpFunc = gfx.CompareLessEqual
	pip.SampleCount = g.DisplayAttrs().SampleCount
	if s.pipeline, err = g.CreatePipeline(&pip); err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	return s, nil
}

// frame advances the rotation and renders one frame.
func (s *scene) frame() error {
	s.angleY += 0.01
	s.angleX += 0.02

	if err := s.g.BeginPass(&s.action); err != nil {
		return err
	}
	if err := s.g.ApplyPipeline(s.pipeline); err != nil {
		return err
	}
	if err := s.g.ApplyBindings(&s.bindings); err != nil {
		return err
	}
	proj := projection(s.g.Width(), s.g.Height())
	for i, pg := range s.groups {
		mvp := modelViewProj(&proj, positions[i%len(positions)], s.angleX, s.angleY)
		var err error
		if s.uniform, err = binary.Append(s.uniform[:0], binary.LittleEndian, mvp[:]); err != nil {
			return err
		}
		if err := s.g.ApplyUniforms(gfx.StageVS, 0, s.uniform); err != nil {
			return err
		}
		if err := s.g.DrawGroup(pg); err != nil {
			return err
		}
	}
	if err := s.g.EndPass(); err != nil {
		return err
	}
	return s.g.CommitFrame()
}

// release destroys every resource the scene created.
func (s *scene) release() error {
	return s.g.DestroyResources(s.label)
}

func projection(w, h int) math32.Matrix4 {
	var proj math32.Matrix4
	aspect := float32(1)
	if h > 0 {
		aspect = float32(w) / float32(h)
	}
	proj.SetPerspective(fovDegrees, aspect, zNear, zFar)
	return proj
}

// modelViewProj returns proj * translate(pos) * rotX(ax) * rotY(ay).
func modelViewProj(proj *math32.Matrix4, pos math32.Vector3, ax, ay float32) math32.Matrix4 {
	var translate, rx, ry, rot, model, mvp math32.Matrix4
	translate.SetTranslation(pos.X, pos.Y, pos.Z)
	rx.SetRotationX(ax)
	ry.SetRotationY(ay)
	rot.MulMatrices(&rx, &ry)
	model.MulMatrices(&translate, &rot)
	mvp.MulMatrices(proj, &model)
	return mvp
}
