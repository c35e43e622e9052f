package sgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/gfx/internal/cache"
)

// Bind group slots used by every shader.
const (
	uniformGroup = 0
	imageGroup   = 1

	fsUniformBase = MaxShaderStageUBs
	fsImageBase   = 2 * MaxShaderStageImages
)

// Default entry points when a stage does not name one.
const (
	DefaultVSEntry = "vs_main"
	DefaultFSEntry = "fs_main"
)

// compileWGSL compiles WGSL source to little-endian SPIR-V words.
func compileWGSL(source string) ([]uint32, error) {
	spirvBytes, err := naga.CompileWithOptions(source, naga.DefaultOptions())
	if err != nil {
		return nil, fmt.Errorf("compile shader: %w", err)
	}
	code := make([]uint32, len(spirvBytes)/4)
	for i := range code {
		code[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return code, nil
}

func validateStage(name string, s ShaderStageDesc) error {
	if len(s.UniformBlocks) > MaxShaderStageUBs {
		return fmt.Errorf("%w: %s has %d uniform blocks", ErrInvalidDesc, name, len(s.UniformBlocks))
	}
	if len(s.Images) > MaxShaderStageImages {
		return fmt.Errorf("%w: %s has %d images", ErrInvalidDesc, name, len(s.Images))
	}
	for i, ub := range s.UniformBlocks {
		if ub.Size <= 0 || ub.Size%16 != 0 {
			return fmt.Errorf("%w: %s block %d (%q) is %d bytes", ErrUniformBlockSize, name, i, ub.Name, ub.Size)
		}
	}
	return nil
}

func imageViewDimension(t ImageType) gputypes.TextureViewDimension {
	_, view := imageDimensions(t)
	return view
}

// ShaderCacheStats returns the counters of the WGSL compile cache.
func (c *Context) ShaderCacheStats() cache.Stats {
	return c.spirv.Stats()
}

// MakeShader compiles the shader and creates its bind group and pipeline layouts.
func (c *Context) MakeShader(desc ShaderDesc) (Shader, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.valid {
		return Shader{}, ErrShutdown
	}
	if err := validateStage("vertex stage", desc.VS); err != nil {
		return Shader{}, err
	}
	if err := validateStage("fragment stage", desc.FS); err != nil {
		return Shader{}, err
	}

	code := desc.SPIRV
	if len(code) == 0 {
		if desc.Source == "" {
			return Shader{}, fmt.Errorf("%w: shader has no source", ErrInvalidDesc)
		}
		var err error
		source := desc.Source
		if code, err = c.spirv.GetOrCreate(source, func() ([]uint32, error) { return compileWGSL(source) }); err != nil {
			return Shader{}, err
		}
	}

	shd := shader{label: desc.Label}
	stages := [2]ShaderStageDesc{desc.VS, desc.FS}
	entries := [2]string{DefaultVSEntry, DefaultFSEntry}
	visibility := [2]gputypes.ShaderStages{gputypes.ShaderStageVertex, gputypes.ShaderStageFragment}
	ubBase := [2]uint32{0, fsUniformBase}
	imgBase := [2]uint32{0, fsImageBase}

	var ubEntries, imgEntries []gputypes.BindGroupLayoutEntry
	for i, s := range stages {
		st := shaderStage{entry: s.Entry, ubOffset: ubBase[i]}
		if st.entry == "" {
			st.entry = entries[i]
		}
		for j, ub := range s.UniformBlocks {
			st.ubSizes = append(st.ubSizes, ub.Size)
			ubEntries = append(ubEntries, gputypes.BindGroupLayoutEntry{
				Binding:    ubBase[i] + uint32(j), //nolint:gosec // < MaxShaderStageUBs
				Visibility: visibility[i],
				Buffer: &gputypes.BufferBindingLayout{
					Type:             gputypes.BufferBindingTypeUniform,
					HasDynamicOffset: true,
					MinBindingSize:   uint64(ub.Size), //nolint:gosec // checked positive
				},
			})
		}
		for j, img := range s.Images {
			st.images = append(st.images, img.Type)
			binding := imgBase[i] + 2*uint32(j) //nolint:gosec // < MaxShaderStageImages
			imgEntries = append(imgEntries,
				gputypes.BindGroupLayoutEntry{
					Binding:    binding,
					Visibility: visibility[i],
					Texture: &gputypes.TextureBindingLayout{
						SampleType:    gputypes.TextureSampleTypeFloat,
						ViewDimension: imageViewDimension(img.Type),
					},
				},
				gputypes.BindGroupLayoutEntry{
					Binding:    binding + 1,
					Visibility: visibility[i],
					Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
				})
		}
		shd.stages[i] = st
	}
	shd.numUBs = len(ubEntries)
	shd.numImages = len(imgEntries) / 2

	var err error
	shd.module, err = c.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  desc.Label,
		Source: hal.ShaderSource{SPIRV: code},
	})
	if err != nil {
		return Shader{}, fmt.Errorf("create shader module: %w", err)
	}

	shd.ubLayout, err = c.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   desc.Label + "_uniforms",
		Entries: ubEntries,
	})
	if err != nil {
		c.destroyShader(&shd)
		return Shader{}, fmt.Errorf("create uniform bind layout: %w", err)
	}
	layouts := []hal.BindGroupLayout{shd.ubLayout}

	if len(imgEntries) > 0 {
		shd.imgLayout, err = c.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
			Label:   desc.Label + "_images",
			Entries: imgEntries,
		})
		if err != nil {
			c.destroyShader(&shd)
			return Shader{}, fmt.Errorf("create image bind layout: %w", err)
		}
		layouts = append(layouts, shd.imgLayout)
	}

	shd.pipeLayout, err = c.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            desc.Label,
		BindGroupLayouts: layouts,
	})
	if err != nil {
		c.destroyShader(&shd)
		return Shader{}, fmt.Errorf("create pipeline layout: %w", err)
	}

	id, err := c.shaders.Alloc(shd)
	if err != nil {
		c.destroyShader(&shd)
		return Shader{}, err
	}
	slogger().Debug("sgpu: shader created", "id", id,
		"uniform_blocks", shd.numUBs, "images", shd.numImages, "label", desc.Label)
	return Shader{ID: id}, nil
}

// DestroyShader releases shd. Pipelines created from it should be destroyed
// first; their image bindings fail once the shader is gone.
func (c *Context) DestroyShader(shd Shader) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.valid {
		return
	}
	if s, ok := c.shaders.Free(shd.ID); ok {
		c.destroyShader(&s)
	}
}

func (c *Context) destroyShader(s *shader) {
	if s.pipeLayout != nil {
		c.device.DestroyPipelineLayout(s.pipeLayout)
	}
	if s.imgLayout != nil {
		c.device.DestroyBindGroupLayout(s.imgLayout)
	}
	if s.ubLayout != nil {
		c.device.DestroyBindGroupLayout(s.ubLayout)
	}
	if s.module != nil {
		c.device.DestroyShaderModule(s.module)
	}
}
