package gfx

import (
	"github.com/gogpu/gfx/handle"
	"github.com/gogpu/gfx/internal/sgpu"
	"github.com/gogpu/gfx/resource"
)

// decodeID tags a raw sgpu handle with category C.
func decodeID[C handle.Category](raw uint32) resource.ID {
	return handle.Decode(handle.FromRaw[C](raw))
}

// encodeID returns the raw sgpu handle for id, or an error wrapping
// handle.ErrCategoryMismatch if id is not of category C.
func encodeID[C handle.Category](id resource.ID) (uint32, error) {
	h, err := handle.Encode[C](id)
	if err != nil {
		return 0, err
	}
	return h.Raw(), nil
}

func bufferOf(id resource.ID) (sgpu.Buffer, error) {
	raw, err := encodeID[handle.Buffer](id)
	return sgpu.Buffer{ID: raw}, err
}

func imageOf(id resource.ID) (sgpu.Image, error) {
	raw, err := encodeID[handle.Texture](id)
	return sgpu.Image{ID: raw}, err
}

func shaderOf(id resource.ID) (sgpu.Shader, error) {
	raw, err := encodeID[handle.Shader](id)
	return sgpu.Shader{ID: raw}, err
}

func pipelineOf(id resource.ID) (sgpu.Pipeline, error) {
	raw, err := encodeID[handle.Pipeline](id)
	return sgpu.Pipeline{ID: raw}, err
}

// destroy releases id in sgpu. The category switch makes the encode
// infallible, so MustEncode cannot panic here.
func destroy(ctx *sgpu.Context, id resource.ID) {
	switch id.Type {
	case resource.Buffer:
		ctx.DestroyBuffer(sgpu.Buffer{ID: handle.MustEncode[handle.Buffer](id).Raw()})
	case resource.Texture:
		ctx.DestroyImage(sgpu.Image{ID: handle.MustEncode[handle.Texture](id).Raw()})
	case resource.Shader:
		ctx.DestroyShader(sgpu.Shader{ID: handle.MustEncode[handle.Shader](id).Raw()})
	case resource.Pipeline:
		ctx.DestroyPipeline(sgpu.Pipeline{ID: handle.MustEncode[handle.Pipeline](id).Raw()})
	default:
		Logger().Warn("gfx: cannot destroy resource", "id", id)
	}
}
