package sgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// MakeBuffer creates a vertex or index buffer. Immutable buffers must carry
// their content.
func (c *Context) MakeBuffer(desc BufferDesc) (Buffer, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.valid {
		return Buffer{}, ErrShutdown
	}

	usage := resolveUsage(desc.Usage)
	size := desc.Size
	if size == 0 {
		size = len(desc.Content)
	}
	if size <= 0 {
		return Buffer{}, fmt.Errorf("%w: buffer size is zero", ErrInvalidDesc)
	}
	if usage == UsageImmutable && len(desc.Content) == 0 {
		return Buffer{}, fmt.Errorf("%w: immutable buffer without content", ErrInvalidDesc)
	}
	if len(desc.Content) > size {
		return Buffer{}, fmt.Errorf("%w: content %d bytes, buffer %d bytes", ErrDataTooLarge, len(desc.Content), size)
	}

	bufUsage := gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst
	if desc.Type == BufferTypeIndex {
		bufUsage = gputypes.BufferUsageIndex | gputypes.BufferUsageCopyDst
	}
	allocSize := align4(uint64(size)) //nolint:gosec // size checked positive

	raw, err := c.device.CreateBuffer(&hal.BufferDescriptor{
		Label: desc.Label,
		Size:  allocSize,
		Usage: bufUsage,
	})
	if err != nil {
		return Buffer{}, fmt.Errorf("create buffer: %w", err)
	}
	if len(desc.Content) > 0 {
		if err := c.queue.WriteBuffer(raw, 0, padded(desc.Content)); err != nil {
			c.device.DestroyBuffer(raw)
			return Buffer{}, fmt.Errorf("write buffer: %w", err)
		}
	}

	id, err := c.buffers.Alloc(buffer{
		raw:       raw,
		size:      size,
		allocSize: allocSize,
		typ:       desc.Type,
		usage:     usage,
		label:     desc.Label,
	})
	if err != nil {
		c.device.DestroyBuffer(raw)
		return Buffer{}, err
	}
	slogger().Debug("sgpu: buffer created", "id", id, "size", size, "label", desc.Label)
	return Buffer{ID: id}, nil
}

// UpdateBuffer replaces the content of a dynamic or stream buffer. A buffer
// may be updated at most once per frame.
func (c *Context) UpdateBuffer(buf Buffer, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.valid {
		return ErrShutdown
	}
	b, ok := c.buffers.Lookup(buf.ID)
	if !ok {
		return ErrInvalidHandle
	}
	if b.usage == UsageImmutable {
		return ErrImmutable
	}
	if b.updated && b.updateFrame == c.frameIndex {
		return ErrAlreadyUpdated
	}
	if len(data) > b.size {
		return fmt.Errorf("%w: %d bytes into %d byte buffer", ErrDataTooLarge, len(data), b.size)
	}
	if len(data) > 0 {
		if err := c.queue.WriteBuffer(b.raw, 0, padded(data)); err != nil {
			return fmt.Errorf("write buffer: %w", err)
		}
	}
	b.updated = true
	b.updateFrame = c.frameIndex
	return nil
}

// DestroyBuffer releases buf. Stale handles are ignored.
func (c *Context) DestroyBuffer(buf Buffer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.valid {
		return
	}
	if b, ok := c.buffers.Free(buf.ID); ok {
		c.device.DestroyBuffer(b.raw)
	}
}

func resolveUsage(u Usage) Usage {
	if u == UsageDefault {
		return UsageImmutable
	}
	return u
}

func align4(n uint64) uint64 {
	return (n + 3) &^ 3
}

// padded returns data extended with zeros to a multiple of 4 bytes.
func padded(data []byte) []byte {
	n := align4(uint64(len(data)))
	if n == uint64(len(data)) {
		return data
	}
	out := make([]byte, n)
	copy(out, data)
	return out
}
