package backend

import (
	"slices"
	"strings"
	"sync"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/wgpu/hal"
)

// Backend names, as reported by gputypes.Backend.String.
const (
	Vulkan = "Vulkan"
	Metal  = "Metal"
	DX12   = "DX12"
	GL     = "GL"
	Noop   = "Empty"
)

var (
	// registry holds the selectable HAL backends. Native APIs win over GL;
	// the noop backend is the last resort.
	registry = gpucontext.NewRegistry[hal.Backend](
		gpucontext.WithPriority(Vulkan, Metal, DX12, GL, Noop),
	)
	scanOnce sync.Once
)

// scan imports every backend registered with hal at the time of the first
// registry access. Backends linked in later must be added with Register.
func scan() {
	scanOnce.Do(func() {
		for _, v := range hal.AvailableBackends() {
			if b, ok := hal.GetBackend(v); ok {
				registry.Register(v.String(), func() hal.Backend { return b })
			}
		}
	})
}

// Register adds b under its variant name, replacing any backend already
// registered under that name.
func Register(b hal.Backend) {
	scan()
	registry.Register(b.Variant().String(), func() hal.Backend { return b })
}

// Unregister removes a backend from the registry.
// This is useful for testing.
func Unregister(name string) {
	scan()
	registry.Unregister(canonical(name))
}

// Available returns the registered backend names in sorted order.
func Available() []string {
	scan()
	names := registry.Available()
	slices.Sort(names)
	return names
}

// IsRegistered reports whether a backend is registered under name.
// Names are matched case-insensitively.
func IsRegistered(name string) bool {
	scan()
	return registry.Has(canonical(name))
}

// Get returns the backend registered under name, or nil.
func Get(name string) hal.Backend {
	scan()
	return registry.Get(canonical(name))
}

// Default returns the highest-priority registered backend, or nil.
func Default() hal.Backend {
	scan()
	return registry.Best()
}

// DefaultName returns the name of the backend Default would return.
func DefaultName() string {
	scan()
	return registry.BestName()
}

// canonical maps name to the registered spelling, ignoring case.
func canonical(name string) string {
	for _, n := range registry.Available() {
		if strings.EqualFold(n, name) {
			return n
		}
	}
	return name
}
