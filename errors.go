package gfx

import "errors"

var (
	// ErrNotValid is returned when a Gfx is used after Discard.
	ErrNotValid = errors.New("gfx: not set up")

	// ErrNotSupported is returned by operations this backend does not implement.
	ErrNotSupported = errors.New("gfx: operation not supported")

	// ErrNoDevice is returned when Setup cannot obtain a GPU device.
	ErrNoDevice = errors.New("gfx: no GPU device available")

	// ErrInvalidProvider is returned when a device provider does not expose hal types.
	ErrInvalidProvider = errors.New("gfx: provider does not expose HAL device and queue")

	// ErrUnsupportedFormat is returned when a pixel or vertex format has no GPU equivalent.
	ErrUnsupportedFormat = errors.New("gfx: unsupported format")

	// ErrContentRange is returned when a data range lies outside the supplied content.
	ErrContentRange = errors.New("gfx: data range outside content")
)
