package sgpu

import "errors"

// Package errors.
var (
	// ErrPoolExhausted is returned when a resource pool has no free slot.
	ErrPoolExhausted = errors.New("sgpu: resource pool exhausted")

	// ErrInvalidHandle is returned for a handle that does not name a live resource.
	ErrInvalidHandle = errors.New("sgpu: invalid or stale handle")

	// ErrNilDevice is returned by New when device or queue is nil.
	ErrNilDevice = errors.New("sgpu: nil device or queue")

	// ErrShutdown is returned for calls after Shutdown.
	ErrShutdown = errors.New("sgpu: context shut down")

	// ErrInvalidDesc is returned for a descriptor missing required fields.
	ErrInvalidDesc = errors.New("sgpu: invalid descriptor")

	// ErrUnsupportedFormat is returned for pixel formats with no GPU equivalent.
	ErrUnsupportedFormat = errors.New("sgpu: unsupported pixel format")

	// ErrUniformBlockSize is returned when a uniform block size is not a multiple of 16.
	ErrUniformBlockSize = errors.New("sgpu: uniform block size must be a multiple of 16")

	// ErrImmutable is returned when updating an immutable buffer or image.
	ErrImmutable = errors.New("sgpu: cannot update immutable resource")

	// ErrAlreadyUpdated is returned when a resource is updated twice in one frame.
	ErrAlreadyUpdated = errors.New("sgpu: resource already updated this frame")

	// ErrDataTooLarge is returned when update data exceeds the resource size.
	ErrDataTooLarge = errors.New("sgpu: data exceeds resource size")

	// ErrNoPass is returned for draw-state calls outside a pass.
	ErrNoPass = errors.New("sgpu: no active pass")

	// ErrPassActive is returned when beginning a pass inside another pass.
	ErrPassActive = errors.New("sgpu: pass already active")

	// ErrNoPipeline is returned for bindings or uniforms without an applied pipeline.
	ErrNoPipeline = errors.New("sgpu: no valid pipeline applied")

	// ErrUniformMismatch is returned when uniform data does not match the declared block.
	ErrUniformMismatch = errors.New("sgpu: uniform data does not match block")

	// ErrUniformBufferFull is returned when the per-frame uniform buffer overflows.
	ErrUniformBufferFull = errors.New("sgpu: uniform buffer full")
)
