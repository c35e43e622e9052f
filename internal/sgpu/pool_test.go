package sgpu

import (
	"errors"
	"testing"
)

func TestPoolAllocLookupFree(t *testing.T) {
	p := NewPool[string](4)
	if p.Cap() != 4 {
		t.Fatalf("Cap() = %d, want 4", p.Cap())
	}

	id, err := p.Alloc("a")
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	slot, gen := unpackID(id)
	if slot != 1 || gen != 1 {
		t.Errorf("first handle = slot %d gen %d, want slot 1 gen 1", slot, gen)
	}

	v, ok := p.Lookup(id)
	if !ok || *v != "a" {
		t.Fatalf("Lookup(%#x) = %v, %v; want a, true", id, v, ok)
	}
	if p.Len() != 1 {
		t.Errorf("Len() = %d, want 1", p.Len())
	}

	got, ok := p.Free(id)
	if !ok || got != "a" {
		t.Errorf("Free = %q, %v; want a, true", got, ok)
	}
	if _, ok := p.Lookup(id); ok {
		t.Error("Lookup succeeded after Free")
	}
	if _, ok := p.Free(id); ok {
		t.Error("double Free succeeded")
	}
}

func TestPoolStaleHandle(t *testing.T) {
	p := NewPool[int](1)
	first, _ := p.Alloc(1)
	p.Free(first)
	second, err := p.Alloc(2)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}

	s1, g1 := unpackID(first)
	s2, g2 := unpackID(second)
	if s1 != s2 {
		t.Fatalf("slot reuse: got %d and %d, want equal", s1, s2)
	}
	if g2 != g1+1 {
		t.Errorf("generation = %d, want %d", g2, g1+1)
	}
	if _, ok := p.Lookup(first); ok {
		t.Error("stale handle resolved")
	}
	if v, ok := p.Lookup(second); !ok || *v != 2 {
		t.Errorf("Lookup(second) = %v, %v; want 2, true", v, ok)
	}
}

func TestPoolExhausted(t *testing.T) {
	p := NewPool[int](2)
	for i := 0; i < 2; i++ {
		if _, err := p.Alloc(i); err != nil {
			t.Fatalf("Alloc %d: %v", i, err)
		}
	}
	if _, err := p.Alloc(3); !errors.Is(err, ErrPoolExhausted) {
		t.Errorf("Alloc on full pool: got %v, want ErrPoolExhausted", err)
	}
}

func TestPoolRejectsReservedAndOutOfRange(t *testing.T) {
	p := NewPool[int](2)
	tests := []struct {
		name string
		id   uint32
	}{
		{"zero", 0},
		{"reserved slot with generation", packID(0, 1)},
		{"out of range", packID(3, 1)},
		{"never allocated", packID(2, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := p.Lookup(tt.id); ok {
				t.Errorf("Lookup(%#x) succeeded", tt.id)
			}
		})
	}
}

func TestPoolEach(t *testing.T) {
	p := NewPool[int](3)
	a, _ := p.Alloc(10)
	b, _ := p.Alloc(20)
	c, _ := p.Alloc(30)
	p.Free(b)

	var ids []uint32
	sum := 0
	p.Each(func(id uint32, v *int) {
		ids = append(ids, id)
		sum += *v
	})
	if len(ids) != 2 || ids[0] != a || ids[1] != c {
		t.Errorf("Each ids = %#x, want [%#x %#x]", ids, a, c)
	}
	if sum != 40 {
		t.Errorf("sum = %d, want 40", sum)
	}
}

func TestNewPoolClampsSize(t *testing.T) {
	if got := NewPool[int](0).Cap(); got != 1 {
		t.Errorf("NewPool(0).Cap() = %d, want 1", got)
	}
	if got := NewPool[byte](MaxPoolSize + 10).Cap(); got != MaxPoolSize {
		t.Errorf("oversized Cap() = %d, want %d", got, MaxPoolSize)
	}
}
