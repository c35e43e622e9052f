// Package handle converts between engine resource ids and the untagged
// 32-bit handles issued by the pooled GPU library.
//
// An external handle packs a pool slot into its low 16 bits and the slot's
// generation stamp into its high 16 bits. The handle carries no category;
// Handle[C] restores it at compile time, so a buffer handle cannot be passed
// where a texture handle is expected.
//
// Decoding never fails. Encoding checks that the id's category matches C and
// reports a mismatch as ErrCategoryMismatch; nothing else is validated, since
// only the GPU library can tell a live handle from a stale one.
//
// All functions are pure and safe for concurrent use.
package handle

import (
	"fmt"

	"github.com/gogpu/gfx/resource"
)

// Category is satisfied by the marker types naming a resource category.
type Category interface {
	Buffer | Texture | Shader | Pipeline | RenderPass
	resourceType() resource.Type
}

// Category markers.
type (
	Buffer     struct{}
	Texture    struct{}
	Shader     struct{}
	Pipeline   struct{}
	RenderPass struct{}
)

func (Buffer) resourceType() resource.Type     { return resource.Buffer }
func (Texture) resourceType() resource.Type    { return resource.Texture }
func (Shader) resourceType() resource.Type     { return resource.Shader }
func (Pipeline) resourceType() resource.Type   { return resource.Pipeline }
func (RenderPass) resourceType() resource.Type { return resource.RenderPass }

// CategoryOf returns the resource type named by C.
func CategoryOf[C Category]() resource.Type {
	var c C
	return c.resourceType()
}

// Handle is an external handle of category C.
// The zero Handle is slot 0, stamp 0.
type Handle[C Category] struct {
	raw uint32
}

// FromRaw wraps a raw handle returned by the GPU library for category C.
func FromRaw[C Category](raw uint32) Handle[C] {
	return Handle[C]{raw: raw}
}

// Raw returns the packed 32-bit value.
func (h Handle[C]) Raw() uint32 { return h.raw }

// Slot returns the pool slot index.
func (h Handle[C]) Slot() uint16 { return uint16(h.raw) }

// Stamp returns the generation stamp.
func (h Handle[C]) Stamp() uint16 { return uint16(h.raw >> 16) }

// String formats the handle with its category.
func (h Handle[C]) String() string {
	return fmt.Sprintf("%s#%08x", CategoryOf[C](), h.raw)
}

// Pack combines a slot and stamp: stamp in the high 16 bits, slot in the low.
func Pack(slot, stamp uint16) uint32 {
	return uint32(stamp)<<16 | uint32(slot)
}

// Unpack splits a raw handle into slot and stamp.
func Unpack(raw uint32) (slot, stamp uint16) {
	return uint16(raw & 0xFFFF), uint16((raw >> 16) & 0xFFFF)
}

// Decode converts h into an engine id tagged with C. It never fails.
func Decode[C Category](h Handle[C]) resource.ID {
	return DecodeRaw(CategoryOf[C](), h.raw)
}

// DecodeRaw converts a raw handle into an engine id of type t.
// Any bit pattern decodes, including 0.
func DecodeRaw(t resource.Type, raw uint32) resource.ID {
	slot, stamp := Unpack(raw)
	return resource.ID{Type: t, SlotIndex: slot, UniqueStamp: stamp}
}

// Encode packs id into a handle of category C. If id.Type is not C's
// category, Encode returns the zero Handle and a *CategoryMismatchError.
func Encode[C Category](id resource.ID) (Handle[C], error) {
	want := CategoryOf[C]()
	if id.Type != want {
		return Handle[C]{}, &CategoryMismatchError{Want: want, Got: id.Type}
	}
	return Handle[C]{raw: Pack(id.SlotIndex, id.UniqueStamp)}, nil
}

// MustEncode is like Encode but panics on a category mismatch.
// Engine call paths use it: a mismatch there is a programming error.
func MustEncode[C Category](id resource.ID) Handle[C] {
	h, err := Encode[C](id)
	if err != nil {
		panic(err)
	}
	return h
}
