package resource

import (
	"fmt"
	"sync"
)

type entry struct {
	loc   Locator
	id    ID
	label Label
}

// Registry maps locators to resource ids and remembers which label each
// resource was created under.
//
// Registry is safe for concurrent use.
type Registry struct {
	mu       sync.Mutex
	capacity int
	entries  []entry
	byLoc    map[Locator]ID
	byID     map[ID]int
}

// NewRegistry creates a registry that tracks up to capacity resources.
func NewRegistry(capacity int) *Registry {
	if capacity < 1 {
		capacity = 1
	}
	return &Registry{
		capacity: capacity,
		entries:  make([]entry, 0, capacity),
		byLoc:    make(map[Locator]ID),
		byID:     make(map[ID]int),
	}
}

// Add registers id under loc and label.
// Non-shared locators are accepted but never returned by Lookup.
func (r *Registry) Add(loc Locator, id ID, label Label) error {
	if !id.IsValid() {
		return ErrInvalidID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.entries) >= r.capacity {
		return ErrRegistryFull
	}
	if _, ok := r.byID[id]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateID, id)
	}
	if loc.IsShared() {
		if _, ok := r.byLoc[loc]; ok {
			return fmt.Errorf("%w: %q", ErrDuplicateLocator, loc.Name)
		}
		r.byLoc[loc] = id
	}
	r.byID[id] = len(r.entries)
	r.entries = append(r.entries, entry{loc: loc, id: id, label: label})
	return nil
}

// Lookup returns the id registered under a shared locator, or InvalidID.
func (r *Registry) Lookup(loc Locator) ID {
	if !loc.IsShared() {
		return InvalidID()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.byLoc[loc]; ok {
		return id
	}
	return InvalidID()
}

// Contains reports whether id is registered.
func (r *Registry) Contains(id ID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.byID[id]
	return ok
}

// LabelOf returns the label id was registered under.
func (r *Registry) LabelOf(id ID) (Label, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.byID[id]
	if !ok {
		return InvalidLabel, false
	}
	return r.entries[i].label, true
}

// Remove forgets every resource registered under label and returns their
// ids in registration order. The caller is responsible for destroying them.
func (r *Registry) Remove(label Label) []ID {
	r.mu.Lock()
	defer r.mu.Unlock()

	var removed []ID
	kept := r.entries[:0]
	for _, e := range r.entries {
		if e.label == label {
			removed = append(removed, e.id)
			delete(r.byID, e.id)
			if e.loc.IsShared() {
				delete(r.byLoc, e.loc)
			}
			continue
		}
		kept = append(kept, e)
	}
	r.entries = kept
	for i, e := range r.entries {
		r.byID[e.id] = i
	}
	return removed
}

// NumResources returns the number of registered resources.
func (r *Registry) NumResources() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Discard forgets all registered resources.
func (r *Registry) Discard() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = r.entries[:0]
	clear(r.byLoc)
	clear(r.byID)
}
