package sgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// framebuffer holds the default pass attachments. With more than one sample
// the pass renders into msaa and resolves into color.
type framebuffer struct {
	width, height int
	samples       int
	colorFormat   gputypes.TextureFormat
	depthFormat   gputypes.TextureFormat

	color     hal.Texture
	colorView hal.TextureView
	msaa      hal.Texture
	msaaView  hal.TextureView
	depth     hal.Texture
	depthView hal.TextureView
}

// ensure (re)creates the attachments when the size or format changed.
func (fb *framebuffer) ensure(device hal.Device, width, height, samples int, colorFormat, depthFormat gputypes.TextureFormat) error {
	if fb.color != nil && fb.width == width && fb.height == height &&
		fb.samples == samples && fb.colorFormat == colorFormat && fb.depthFormat == depthFormat {
		return nil
	}
	fb.destroy(device)

	fb.width, fb.height = width, height
	fb.samples = samples
	fb.colorFormat, fb.depthFormat = colorFormat, depthFormat

	var err error
	fb.color, fb.colorView, err = createAttachment(device, "sgpu_color", width, height, 1, colorFormat,
		gputypes.TextureUsageRenderAttachment|gputypes.TextureUsageCopySrc|gputypes.TextureUsageTextureBinding)
	if err != nil {
		fb.destroy(device)
		return err
	}
	if samples > 1 {
		fb.msaa, fb.msaaView, err = createAttachment(device, "sgpu_color_msaa", width, height, samples, colorFormat,
			gputypes.TextureUsageRenderAttachment)
		if err != nil {
			fb.destroy(device)
			return err
		}
	}
	fb.depth, fb.depthView, err = createAttachment(device, "sgpu_depth", width, height, samples, depthFormat,
		gputypes.TextureUsageRenderAttachment)
	if err != nil {
		fb.destroy(device)
		return err
	}

	slogger().Debug("sgpu: default framebuffer created",
		"width", width, "height", height, "samples", samples)
	return nil
}

func createAttachment(device hal.Device, label string, width, height, samples int,
	format gputypes.TextureFormat, usage gputypes.TextureUsage) (hal.Texture, hal.TextureView, error) {
	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label: label,
		Size: hal.Extent3D{
			Width:              uint32(width),  //nolint:gosec // bounded by caller
			Height:             uint32(height), //nolint:gosec // bounded by caller
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   uint32(samples), //nolint:gosec // small positive
		Dimension:     gputypes.TextureDimension2D,
		Format:        format,
		Usage:         usage,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create %s texture: %w", label, err)
	}
	view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         label + "_view",
		Format:        format,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		device.DestroyTexture(tex)
		return nil, nil, fmt.Errorf("create %s view: %w", label, err)
	}
	return tex, view, nil
}

// renderView returns the view draws go to and the resolve target, if any.
func (fb *framebuffer) renderView() (view, resolve hal.TextureView) {
	if fb.msaaView != nil {
		return fb.msaaView, fb.colorView
	}
	return fb.colorView, nil
}

func (fb *framebuffer) destroy(device hal.Device) {
	if fb.depthView != nil {
		device.DestroyTextureView(fb.depthView)
		fb.depthView = nil
	}
	if fb.depth != nil {
		device.DestroyTexture(fb.depth)
		fb.depth = nil
	}
	if fb.msaaView != nil {
		device.DestroyTextureView(fb.msaaView)
		fb.msaaView = nil
	}
	if fb.msaa != nil {
		device.DestroyTexture(fb.msaa)
		fb.msaa = nil
	}
	if fb.colorView != nil {
		device.DestroyTextureView(fb.colorView)
		fb.colorView = nil
	}
	if fb.color != nil {
		device.DestroyTexture(fb.color)
		fb.color = nil
	}
}
