// Package resource defines the engine-side resource model: typed resource
// identifiers, locators for sharing resources by name, and the label-scoped
// registry that groups resources for bulk destruction.
package resource

import "fmt"

// Type is the category of a GPU resource.
type Type uint16

// Resource categories.
const (
	Buffer Type = iota
	Texture
	Shader
	Pipeline
	RenderPass

	// NumTypes is the number of valid resource categories.
	NumTypes

	// InvalidType marks an ID that refers to no resource.
	InvalidType Type = 0xFFFF
)

// String returns the category name.
func (t Type) String() string {
	switch t {
	case Buffer:
		return "Buffer"
	case Texture:
		return "Texture"
	case Shader:
		return "Shader"
	case Pipeline:
		return "Pipeline"
	case RenderPass:
		return "RenderPass"
	case InvalidType:
		return "Invalid"
	default:
		return fmt.Sprintf("Type(%d)", uint16(t))
	}
}

// Valid reports whether t is one of the defined categories.
func (t Type) Valid() bool {
	return t < NumTypes
}

// ID identifies a resource by category, pool slot and generation stamp.
//
// ID is a plain value type and is comparable with ==.
type ID struct {
	Type        Type
	SlotIndex   uint16
	UniqueStamp uint16
}

// InvalidID returns the sentinel ID that refers to no resource.
//
// Note that an ID with SlotIndex 0 and UniqueStamp 0 is NOT invalid; only
// the Type field decides validity.
func InvalidID() ID {
	return ID{Type: InvalidType, SlotIndex: 0xFFFF, UniqueStamp: 0xFFFF}
}

// IsValid reports whether id refers to a resource category.
func (id ID) IsValid() bool {
	return id.Type != InvalidType
}

// String formats the ID as Type(slot:stamp).
func (id ID) String() string {
	if !id.IsValid() {
		return "Invalid"
	}
	return fmt.Sprintf("%s(%d:%d)", id.Type, id.SlotIndex, id.UniqueStamp)
}
