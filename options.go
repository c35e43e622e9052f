package gfx

import (
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/gfx/resource"
)

// Option configures a Gfx during Setup.
//
// Example:
//
//	// Headless, best available backend
//	g, err := gfx.Setup(gfx.WithSize(800, 600))
//
//	// Share a device owned by the host application
//	g, err := gfx.Setup(gfx.WithDeviceProvider(app))
type Option func(*options)

// options holds the configuration collected from Option values.
type options struct {
	device   hal.Device
	queue    hal.Queue
	provider any
	backend  string
	features gputypes.Features

	window gpucontext.WindowProvider
	events gpucontext.EventSource

	width, height int
	sampleCount   int
	colorFormat   PixelFormat
	depthFormat   PixelFormat

	poolSizes          [resource.NumTypes]int
	registryCapacity   int
	labelStackCapacity int
}

// Default sizes used when no option overrides them.
const (
	DefaultWidth              = 600
	DefaultHeight             = 400
	DefaultRegistryCapacity   = 256
	DefaultLabelStackCapacity = 256
)

// defaultOptions returns the default setup options.
func defaultOptions() options {
	o := options{
		width:              DefaultWidth,
		height:             DefaultHeight,
		sampleCount:        1,
		colorFormat:        PixelFormatRGBA8,
		depthFormat:        PixelFormatDepthStencil,
		registryCapacity:   DefaultRegistryCapacity,
		labelStackCapacity: DefaultLabelStackCapacity,
	}
	o.poolSizes[resource.Buffer] = 128
	o.poolSizes[resource.Texture] = 128
	o.poolSizes[resource.Shader] = 32
	o.poolSizes[resource.Pipeline] = 64
	o.poolSizes[resource.RenderPass] = 16
	return o
}

// WithDevice renders on an existing hal device and queue.
// The caller keeps ownership; Discard does not destroy them.
func WithDevice(device hal.Device, queue hal.Queue) Option {
	return func(o *options) {
		o.device = device
		o.queue = queue
	}
}

// WithDeviceProvider shares a GPU device from an external provider.
// The provider must implement HalDevice() any and HalQueue() any returning
// hal.Device and hal.Queue; Setup fails otherwise.
func WithDeviceProvider(provider any) Option {
	return func(o *options) {
		o.provider = provider
	}
}

// WithFeatures declares the optional features enabled on a device passed with
// WithDevice or WithDeviceProvider. hal devices do not report them, so without
// this option QueryFeature reports every texture compression feature as
// unavailable. Devices opened by Setup report their own features; these are
// added to them.
func WithFeatures(features gputypes.Features) Option {
	return func(o *options) {
		o.features = features
	}
}

// WithBackend selects a registered backend by name ("Vulkan", "Metal", ...)
// when Setup opens its own device. Empty selects the best available.
func WithBackend(name string) Option {
	return func(o *options) {
		o.backend = name
	}
}

// WithWindow sets the window the display manager tracks and presents to.
// Without it, Setup uses a gpucontext.NullWindowProvider of the configured size.
func WithWindow(w gpucontext.WindowProvider) Option {
	return func(o *options) {
		o.window = w
	}
}

// WithEventSource subscribes the display manager to host input events.
// Escape and Ctrl+Q request quit; resize marks the display modified.
func WithEventSource(src gpucontext.EventSource) Option {
	return func(o *options) {
		o.events = src
	}
}

// WithSize sets the initial framebuffer size in pixels.
func WithSize(width, height int) Option {
	return func(o *options) {
		if width > 0 {
			o.width = width
		}
		if height > 0 {
			o.height = height
		}
	}
}

// WithSampleCount sets the MSAA sample count of the default framebuffer.
func WithSampleCount(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.sampleCount = n
		}
	}
}

// WithPixelFormats sets the color and depth formats of the default framebuffer.
func WithPixelFormats(color, depth PixelFormat) Option {
	return func(o *options) {
		o.colorFormat = color
		o.depthFormat = depth
	}
}

// WithPoolSize sets the number of pool slots for one resource type.
func WithPoolSize(t resource.Type, n int) Option {
	return func(o *options) {
		if t.Valid() && n > 0 {
			o.poolSizes[t] = n
		}
	}
}

// WithRegistryCapacity sets how many resources the registry can track.
func WithRegistryCapacity(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.registryCapacity = n
		}
	}
}

// WithLabelStackCapacity sets the depth of the resource label stack.
func WithLabelStackCapacity(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.labelStackCapacity = n
		}
	}
}
