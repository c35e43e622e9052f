package resource

// Signature values with special meaning.
const (
	// NonSharedSignature marks a locator whose resource is never shared.
	NonSharedSignature uint32 = 0xFFFFFFFF

	// DefaultSignature is used by NewLocator.
	DefaultSignature uint32 = 0xFFFFFFFE
)

// Locator names a resource so it can be looked up and shared.
// Two creations with the same shared Locator should resolve to the same
// resource through Registry.Lookup.
type Locator struct {
	Name      string
	Signature uint32
}

// NewLocator returns a shared locator with the default signature.
func NewLocator(name string) Locator {
	return Locator{Name: name, Signature: DefaultSignature}
}

// NewLocatorWithSignature returns a shared locator with an explicit signature.
func NewLocatorWithSignature(name string, sig uint32) Locator {
	return Locator{Name: name, Signature: sig}
}

// NonShared returns a locator that never matches a lookup.
func NonShared() Locator {
	return Locator{Signature: NonSharedSignature}
}

// HasValidName reports whether the locator carries a name.
func (l Locator) HasValidName() bool {
	return l.Name != ""
}

// IsShared reports whether lookups can find a resource by this locator.
func (l Locator) IsShared() bool {
	return l.HasValidName() && l.Signature != NonSharedSignature
}
