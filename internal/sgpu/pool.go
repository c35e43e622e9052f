package sgpu

// Handles issued by this package pack the pool slot into the low 16 bits and
// the slot's generation into the high 16 bits. Slot 0 is reserved in every
// pool, so the raw value 0 never names a live resource.

const (
	slotMask  = 0xFFFF
	slotShift = 16

	// MaxPoolSize is the largest usable pool, excluding the reserved slot.
	MaxPoolSize = slotMask - 1
)

func packID(slot, gen uint16) uint32 {
	return uint32(gen)<<slotShift | uint32(slot)
}

func unpackID(id uint32) (slot, gen uint16) {
	return uint16(id & slotMask), uint16(id >> slotShift)
}

// Pool is a fixed-capacity slot allocator with per-slot generation counters.
// A freed slot's generation is bumped on its next allocation, so handles to
// the previous occupant stop resolving.
//
// Pool is not safe for concurrent use; Context serializes access.
type Pool[T any] struct {
	items []T
	gens  []uint16
	live  []bool
	free  []uint16
	used  int
}

// NewPool creates a pool with size usable slots.
func NewPool[T any](size int) *Pool[T] {
	if size < 1 {
		size = 1
	}
	if size > MaxPoolSize {
		size = MaxPoolSize
	}
	p := &Pool[T]{
		items: make([]T, size+1),
		gens:  make([]uint16, size+1),
		live:  make([]bool, size+1),
		free:  make([]uint16, 0, size),
	}
	// Hand out low slots first.
	for slot := size; slot >= 1; slot-- {
		p.free = append(p.free, uint16(slot))
	}
	return p
}

// Alloc stores v in a free slot and returns its handle.
func (p *Pool[T]) Alloc(v T) (uint32, error) {
	if len(p.free) == 0 {
		return 0, ErrPoolExhausted
	}
	slot := p.free[len(p.free)-1]
	p.free = p.free[:len(p.free)-1]

	p.gens[slot]++
	p.items[slot] = v
	p.live[slot] = true
	p.used++
	return packID(slot, p.gens[slot]), nil
}

// Lookup returns the item for id if the slot is live and the generation matches.
func (p *Pool[T]) Lookup(id uint32) (*T, bool) {
	slot, gen := unpackID(id)
	if slot == 0 || int(slot) >= len(p.items) {
		return nil, false
	}
	if !p.live[slot] || p.gens[slot] != gen {
		return nil, false
	}
	return &p.items[slot], true
}

// Free releases the slot named by id and returns the stored item.
func (p *Pool[T]) Free(id uint32) (T, bool) {
	var zero T
	if _, ok := p.Lookup(id); !ok {
		return zero, false
	}
	slot, _ := unpackID(id)
	v := p.items[slot]
	p.items[slot] = zero
	p.live[slot] = false
	p.free = append(p.free, slot)
	p.used--
	return v, true
}

// Each calls fn for every live item in slot order.
func (p *Pool[T]) Each(fn func(id uint32, v *T)) {
	for slot := 1; slot < len(p.items); slot++ {
		if p.live[slot] {
			fn(packID(uint16(slot), p.gens[slot]), &p.items[slot])
		}
	}
}

// Len returns the number of live items.
func (p *Pool[T]) Len() int { return p.used }

// Cap returns the number of usable slots.
func (p *Pool[T]) Cap() int { return len(p.items) - 1 }
