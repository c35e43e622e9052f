package sgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// formatBlock describes the memory layout of a pixel format: texels per
// block in each direction and bytes per block.
type formatBlock struct {
	w, h  int
	bytes int
}

func blockOf(f gputypes.TextureFormat) (formatBlock, bool) {
	switch f {
	case gputypes.TextureFormatR8Unorm:
		return formatBlock{1, 1, 1}, true
	case gputypes.TextureFormatRGBA8Unorm, gputypes.TextureFormatRGBA8UnormSrgb,
		gputypes.TextureFormatBGRA8Unorm, gputypes.TextureFormatBGRA8UnormSrgb,
		gputypes.TextureFormatRGB10A2Unorm, gputypes.TextureFormatR32Float,
		gputypes.TextureFormatDepth24Plus, gputypes.TextureFormatDepth24PlusStencil8,
		gputypes.TextureFormatDepth32Float:
		return formatBlock{1, 1, 4}, true
	case gputypes.TextureFormatRGBA16Float:
		return formatBlock{1, 1, 8}, true
	case gputypes.TextureFormatRGBA32Float:
		return formatBlock{1, 1, 16}, true
	case gputypes.TextureFormatBC1RGBAUnorm, gputypes.TextureFormatBC1RGBAUnormSrgb,
		gputypes.TextureFormatETC2RGB8Unorm, gputypes.TextureFormatETC2RGB8UnormSrgb:
		return formatBlock{4, 4, 8}, true
	case gputypes.TextureFormatBC2RGBAUnorm, gputypes.TextureFormatBC2RGBAUnormSrgb,
		gputypes.TextureFormatBC3RGBAUnorm, gputypes.TextureFormatBC3RGBAUnormSrgb:
		return formatBlock{4, 4, 16}, true
	default:
		return formatBlock{}, false
	}
}

// rowPitch returns bytes per row of blocks and the number of block rows for
// a width x height surface.
func (b formatBlock) rowPitch(width, height int) (int, int) {
	cols := (width + b.w - 1) / b.w
	rows := (height + b.h - 1) / b.h
	return cols * b.bytes, rows
}

func mipExtent(v, level int) int {
	v >>= level
	if v < 1 {
		return 1
	}
	return v
}

func imageDimensions(t ImageType) (gputypes.TextureDimension, gputypes.TextureViewDimension) {
	switch t {
	case ImageTypeCube:
		return gputypes.TextureDimension2D, gputypes.TextureViewDimensionCube
	case ImageType3D:
		return gputypes.TextureDimension3D, gputypes.TextureViewDimension3D
	case ImageTypeArray:
		return gputypes.TextureDimension2D, gputypes.TextureViewDimension2DArray
	default:
		return gputypes.TextureDimension2D, gputypes.TextureViewDimension2D
	}
}

func (d ImageDesc) withDefaults() ImageDesc {
	if d.Type == ImageTypeDefault {
		d.Type = ImageType2D
	}
	if d.Depth < 1 {
		d.Depth = 1
	}
	if d.NumMipmaps < 1 {
		d.NumMipmaps = 1
	}
	if d.SampleCount < 1 {
		d.SampleCount = 1
	}
	d.Usage = resolveUsage(d.Usage)
	if d.MinFilter == gputypes.FilterModeUndefined {
		d.MinFilter = gputypes.FilterModeNearest
	}
	if d.MagFilter == gputypes.FilterModeUndefined {
		d.MagFilter = gputypes.FilterModeNearest
	}
	if d.MipmapFilter == gputypes.FilterModeUndefined {
		d.MipmapFilter = gputypes.FilterModeNearest
	}
	if d.WrapU == gputypes.AddressModeUndefined {
		d.WrapU = gputypes.AddressModeRepeat
	}
	if d.WrapV == gputypes.AddressModeUndefined {
		d.WrapV = gputypes.AddressModeRepeat
	}
	if d.WrapW == gputypes.AddressModeUndefined {
		d.WrapW = gputypes.AddressModeRepeat
	}
	return d
}

// layerCount is the depth-or-array-layers extent of the texture.
func (d ImageDesc) layerCount() int {
	switch d.Type {
	case ImageTypeCube:
		return CubeFaces
	case ImageType3D, ImageTypeArray:
		return d.Depth
	default:
		return 1
	}
}

// MakeImage creates a texture with its view and sampler, uploading any
// initial content.
func (c *Context) MakeImage(desc ImageDesc) (Image, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.valid {
		return Image{}, ErrShutdown
	}

	desc = desc.withDefaults()
	if desc.Width <= 0 || desc.Height <= 0 {
		return Image{}, fmt.Errorf("%w: image size %dx%d", ErrInvalidDesc, desc.Width, desc.Height)
	}
	if desc.NumMipmaps > MaxMipmaps {
		return Image{}, fmt.Errorf("%w: %d mipmaps", ErrInvalidDesc, desc.NumMipmaps)
	}
	if _, ok := blockOf(desc.PixelFormat); !ok {
		return Image{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, desc.PixelFormat)
	}
	if desc.Usage == UsageImmutable && !desc.RenderTarget && !desc.Content.present() {
		return Image{}, fmt.Errorf("%w: immutable image without content", ErrInvalidDesc)
	}

	dim, viewDim := imageDimensions(desc.Type)
	layers := desc.layerCount()
	usage := gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst
	if desc.RenderTarget {
		usage |= gputypes.TextureUsageRenderAttachment
	}

	tex, err := c.device.CreateTexture(&hal.TextureDescriptor{
		Label: desc.Label,
		Size: hal.Extent3D{
			Width:              uint32(desc.Width),  //nolint:gosec // checked positive
			Height:             uint32(desc.Height), //nolint:gosec // checked positive
			DepthOrArrayLayers: uint32(layers),      //nolint:gosec // checked positive
		},
		MipLevelCount: uint32(desc.NumMipmaps),  //nolint:gosec // <= MaxMipmaps
		SampleCount:   uint32(desc.SampleCount), //nolint:gosec // small positive
		Dimension:     dim,
		Format:        desc.PixelFormat,
		Usage:         usage,
	})
	if err != nil {
		return Image{}, fmt.Errorf("create texture: %w", err)
	}
	img := image{tex: tex, desc: desc, layers: layers}

	img.view, err = c.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:           desc.Label,
		Format:          desc.PixelFormat,
		Dimension:       viewDim,
		Aspect:          gputypes.TextureAspectAll,
		MipLevelCount:   uint32(desc.NumMipmaps), //nolint:gosec // <= MaxMipmaps
		ArrayLayerCount: arrayLayers(desc.Type, layers),
	})
	if err != nil {
		c.destroyImage(&img)
		return Image{}, fmt.Errorf("create texture view: %w", err)
	}

	img.sampler, err = c.device.CreateSampler(&hal.SamplerDescriptor{
		Label:        desc.Label,
		AddressModeU: desc.WrapU,
		AddressModeV: desc.WrapV,
		AddressModeW: desc.WrapW,
		MagFilter:    desc.MagFilter,
		MinFilter:    desc.MinFilter,
		MipmapFilter: desc.MipmapFilter,
		LodMaxClamp:  32,
		Anisotropy:   1,
	})
	if err != nil {
		c.destroyImage(&img)
		return Image{}, fmt.Errorf("create sampler: %w", err)
	}

	if desc.Content.present() {
		if err := c.writeImage(&img, &desc.Content); err != nil {
			c.destroyImage(&img)
			return Image{}, err
		}
	}

	id, err := c.images.Alloc(img)
	if err != nil {
		c.destroyImage(&img)
		return Image{}, err
	}
	slogger().Debug("sgpu: image created", "id", id,
		"width", desc.Width, "height", desc.Height, "format", desc.PixelFormat, "label", desc.Label)
	return Image{ID: id}, nil
}

// UpdateImage replaces the content of a dynamic or stream image. An image
// may be updated at most once per frame.
func (c *Context) UpdateImage(img Image, content *ImageContent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.valid {
		return ErrShutdown
	}
	im, ok := c.images.Lookup(img.ID)
	if !ok {
		return ErrInvalidHandle
	}
	if im.desc.Usage == UsageImmutable {
		return ErrImmutable
	}
	if im.updated && im.updateFrame == c.frameIndex {
		return ErrAlreadyUpdated
	}
	if err := c.writeImage(im, content); err != nil {
		return err
	}
	im.updated = true
	im.updateFrame = c.frameIndex
	return nil
}

// DestroyImage releases img. Stale handles are ignored.
func (c *Context) DestroyImage(img Image) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.valid {
		return
	}
	if im, ok := c.images.Free(img.ID); ok {
		c.destroyImage(&im)
	}
}

func (c *Context) destroyImage(img *image) {
	if img.sampler != nil {
		c.device.DestroySampler(img.sampler)
	}
	if img.view != nil {
		c.device.DestroyTextureView(img.view)
	}
	if img.tex != nil {
		c.device.DestroyTexture(img.tex)
	}
}

// writeImage uploads every non-empty sub-image. Cube faces are written one
// layer at a time; 3D and array images take all slices from face 0.
func (c *Context) writeImage(img *image, content *ImageContent) error {
	block, _ := blockOf(img.desc.PixelFormat)
	faces, depth := 1, img.layers
	if img.desc.Type == ImageTypeCube {
		faces, depth = CubeFaces, 1
	}
	for face := 0; face < faces; face++ {
		for mip := 0; mip < img.desc.NumMipmaps; mip++ {
			data := content.SubImage[face][mip]
			if len(data) == 0 {
				continue
			}
			w := mipExtent(img.desc.Width, mip)
			h := mipExtent(img.desc.Height, mip)
			d := depth
			if img.desc.Type == ImageType3D {
				d = mipExtent(depth, mip)
			}
			pitch, rows := block.rowPitch(w, h)
			if want := pitch * rows * d; len(data) != want {
				return fmt.Errorf("%w: face %d mip %d has %d bytes, want %d",
					ErrInvalidDesc, face, mip, len(data), want)
			}
			err := c.queue.WriteTexture(
				&hal.ImageCopyTexture{
					Texture:  img.tex,
					MipLevel: uint32(mip),                  //nolint:gosec // < MaxMipmaps
					Origin:   hal.Origin3D{Z: uint32(face)}, //nolint:gosec // < CubeFaces
					Aspect:   gputypes.TextureAspectAll,
				},
				data,
				&hal.ImageDataLayout{
					BytesPerRow:  uint32(pitch), //nolint:gosec // bounded by texture size
					RowsPerImage: uint32(rows),  //nolint:gosec // bounded by texture size
				},
				&hal.Extent3D{
					Width:              uint32(w), //nolint:gosec // positive
					Height:             uint32(h), //nolint:gosec // positive
					DepthOrArrayLayers: uint32(d), //nolint:gosec // positive
				},
			)
			if err != nil {
				return fmt.Errorf("write texture face %d mip %d: %w", face, mip, err)
			}
		}
	}
	return nil
}

func arrayLayers(t ImageType, layers int) uint32 {
	if t == ImageType3D {
		return 1
	}
	return uint32(layers) //nolint:gosec // small positive
}

func (ic *ImageContent) present() bool {
	for face := range ic.SubImage {
		for mip := range ic.SubImage[face] {
			if len(ic.SubImage[face][mip]) > 0 {
				return true
			}
		}
	}
	return false
}
