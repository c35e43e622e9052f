// Package backend selects a GPU backend and opens a device on it.
//
// Backends are the HAL implementations linked into the program. Each one
// registers itself with hal from an init function; this package mirrors
// them into a registry keyed by backend name and ordered by priority:
// Vulkan, Metal, DX12, GL and finally the noop backend.
//
//	import _ "github.com/gogpu/wgpu/hal/noop"
//
//	dev, err := backend.OpenDevice("") // best available
//	if err != nil {
//	    return err
//	}
//	defer dev.Close()
//
// Names passed to Get, IsRegistered and OpenDevice are matched
// case-insensitively, so "vulkan" and "Vulkan" select the same backend.
package backend
