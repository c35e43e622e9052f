// Package gfx is a small rendering engine layer over a WebGPU-style HAL.
//
// A Gfx owns a GPU context, a registry of named resources and a display.
// Resources are identified by resource.ID values that carry their type, a
// pool slot and a stamp that detects stale references:
//
//	g, err := gfx.Setup(gfx.WithSize(800, 600))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer g.Discard()
//
//	label, _ := g.PushResourceLabel()
//	vbuf, _ := g.CreateBuffer(&gfx.BufferDesc{Content: vertices})
//	shd, _ := g.CreateShader(&gfx.ShaderDesc{Source: wgsl})
//	pd := gfx.NewPipelineDesc(shd)
//	pd.Layouts = []gfx.VertexLayout{layout}
//	pip, _ := g.CreatePipeline(&pd)
//	g.PopResourceLabel()
//
//	for !g.QuitRequested() {
//	    g.ProcessSystemEvents()
//	    action := gfx.Clear(colornames.Black, 1, 0)
//	    g.BeginPass(&action)
//	    g.ApplyPipeline(pip)
//	    ...
//	    g.EndPass()
//	    g.CommitFrame()
//	}
//	g.DestroyResources(label)
//
// # Devices
//
// Setup renders on a device passed with WithDevice or shared through
// WithDeviceProvider. Otherwise it opens one through package backend,
// choosing the best linked HAL backend or the one named by WithBackend.
//
// # Resource labels
//
// Every created resource is tagged with the label on top of the label
// stack. DestroyResources releases all resources of one label at once.
//
// # Handles
//
// Internally each ID maps to a 32-bit GPU-layer handle through package
// handle. Passing an ID of the wrong type, such as a buffer ID to
// ApplyPipeline, fails with an error wrapping handle.ErrCategoryMismatch.
package gfx
