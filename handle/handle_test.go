package handle

import (
	"errors"
	"fmt"
	"testing"
	"testing/quick"

	"github.com/gogpu/gfx/resource"
)

func TestPackLayout(t *testing.T) {
	tests := []struct {
		slot, stamp uint16
		want        uint32
	}{
		{0, 0, 0x00000000},
		{5, 1, 0x00010005},
		{0x00A0, 0x00FF, 0x00FF00A0},
		{0xFFFF, 0, 0x0000FFFF},
		{0, 0xFFFF, 0xFFFF0000},
		{0xFFFF, 0xFFFF, 0xFFFFFFFF},
		{0x1234, 0xABCD, 0xABCD1234},
	}
	for _, tt := range tests {
		if got := Pack(tt.slot, tt.stamp); got != tt.want {
			t.Errorf("Pack(%#x, %#x) = %#08x, want %#08x", tt.slot, tt.stamp, got, tt.want)
		}
		slot, stamp := Unpack(tt.want)
		if slot != tt.slot || stamp != tt.stamp {
			t.Errorf("Unpack(%#08x) = (%#x, %#x), want (%#x, %#x)", tt.want, slot, stamp, tt.slot, tt.stamp)
		}
	}
}

func TestEncodeBufferScenario(t *testing.T) {
	h, err := Encode[Buffer](resource.ID{Type: resource.Buffer, SlotIndex: 5, UniqueStamp: 1})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if got := h.Raw(); got != 0x00010005 {
		t.Errorf("Raw() = %#08x, want 0x00010005", got)
	}
	if h.Slot() != 5 || h.Stamp() != 1 {
		t.Errorf("Slot/Stamp = %d/%d, want 5/1", h.Slot(), h.Stamp())
	}
}

func TestDecodeTextureScenario(t *testing.T) {
	got := Decode(FromRaw[Texture](0x00FF00A0))
	want := resource.ID{Type: resource.Texture, SlotIndex: 0x00A0, UniqueStamp: 0x00FF}
	if got != want {
		t.Errorf("Decode = %v, want %v", got, want)
	}
}

func TestDecodeZeroHandle(t *testing.T) {
	got := Decode(FromRaw[Buffer](0))
	if got.SlotIndex != 0 || got.UniqueStamp != 0 {
		t.Errorf("Decode(0) = %v, want slot 0 stamp 0", got)
	}
	if !got.IsValid() {
		t.Error("Decode(0) produced an invalid id")
	}
	if got == resource.InvalidID() {
		t.Error("Decode(0) equals InvalidID")
	}

	// Encoding it back yields the zero handle without error.
	h, err := Encode[Buffer](got)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if h.Raw() != 0 {
		t.Errorf("Encode(Decode(0)) = %#08x, want 0", h.Raw())
	}
}

func TestEncodeCategoryMismatch(t *testing.T) {
	id := resource.ID{Type: resource.Shader, SlotIndex: 3, UniqueStamp: 7}

	h, err := Encode[Pipeline](id)
	if err == nil {
		t.Fatal("Encode[Pipeline](shader id) succeeded, want error")
	}
	if h != (Handle[Pipeline]{}) {
		t.Errorf("Encode returned handle %v on mismatch, want zero", h)
	}
	if !errors.Is(err, ErrCategoryMismatch) {
		t.Errorf("errors.Is(err, ErrCategoryMismatch) = false for %v", err)
	}
	var mm *CategoryMismatchError
	if !errors.As(err, &mm) {
		t.Fatalf("errors.As(*CategoryMismatchError) failed for %T", err)
	}
	if mm.Want != resource.Pipeline || mm.Got != resource.Shader {
		t.Errorf("mismatch = {Want %v, Got %v}, want {Pipeline, Shader}", mm.Want, mm.Got)
	}
}

func TestEncodeGuardAllPairs(t *testing.T) {
	types := []resource.Type{
		resource.Buffer, resource.Texture, resource.Shader,
		resource.Pipeline, resource.RenderPass, resource.InvalidType,
	}
	encoders := map[resource.Type]func(resource.ID) error{
		resource.Buffer:     func(id resource.ID) error { _, err := Encode[Buffer](id); return err },
		resource.Texture:    func(id resource.ID) error { _, err := Encode[Texture](id); return err },
		resource.Shader:     func(id resource.ID) error { _, err := Encode[Shader](id); return err },
		resource.Pipeline:   func(id resource.ID) error { _, err := Encode[Pipeline](id); return err },
		resource.RenderPass: func(id resource.ID) error { _, err := Encode[RenderPass](id); return err },
	}
	for want, enc := range encoders {
		for _, got := range types {
			err := enc(resource.ID{Type: got, SlotIndex: 1, UniqueStamp: 1})
			if got == want && err != nil {
				t.Errorf("encode %v as %v: unexpected error %v", got, want, err)
			}
			if got != want && !errors.Is(err, ErrCategoryMismatch) {
				t.Errorf("encode %v as %v: got %v, want ErrCategoryMismatch", got, want, err)
			}
		}
	}
}

func TestMustEncodePanics(t *testing.T) {
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("MustEncode did not panic on mismatch")
		}
		err, ok := r.(error)
		if !ok || !errors.Is(err, ErrCategoryMismatch) {
			t.Errorf("panic value = %v, want ErrCategoryMismatch", r)
		}
	}()
	MustEncode[Buffer](resource.ID{Type: resource.Texture})
}

func TestCategoryOf(t *testing.T) {
	if got := CategoryOf[Buffer](); got != resource.Buffer {
		t.Errorf("CategoryOf[Buffer]() = %v", got)
	}
	if got := CategoryOf[Texture](); got != resource.Texture {
		t.Errorf("CategoryOf[Texture]() = %v", got)
	}
	if got := CategoryOf[Shader](); got != resource.Shader {
		t.Errorf("CategoryOf[Shader]() = %v", got)
	}
	if got := CategoryOf[Pipeline](); got != resource.Pipeline {
		t.Errorf("CategoryOf[Pipeline]() = %v", got)
	}
	if got := CategoryOf[RenderPass](); got != resource.RenderPass {
		t.Errorf("CategoryOf[RenderPass]() = %v", got)
	}
}

func TestHandleString(t *testing.T) {
	if got, want := FromRaw[Shader](0x00010002).String(), "Shader#00010002"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

// roundTrip encodes and decodes {C, slot, stamp} and checks both the result
// and the bit layout.
func roundTrip[C Category](slot, stamp uint16) error {
	id := resource.ID{Type: CategoryOf[C](), SlotIndex: slot, UniqueStamp: stamp}
	h, err := Encode[C](id)
	if err != nil {
		return fmt.Errorf("Encode(%v): %w", id, err)
	}
	if want := uint32(stamp)<<16 | uint32(slot); h.Raw() != want {
		return fmt.Errorf("Encode(%v) = %#08x, want %#08x", id, h.Raw(), want)
	}
	if got := Decode(h); got != id {
		return fmt.Errorf("Decode(Encode(%v)) = %v", id, got)
	}
	return nil
}

func sweep[C Category](t *testing.T) {
	t.Helper()
	edges := []uint16{0, 1, 2, 0x7FFF, 0x8000, 0xFFFE, 0xFFFF}

	// Full slot axis and full stamp axis against edge values.
	for v := 0; v <= 0xFFFF; v++ {
		for _, e := range edges {
			if err := roundTrip[C](uint16(v), e); err != nil {
				t.Fatal(err)
			}
			if err := roundTrip[C](e, uint16(v)); err != nil {
				t.Fatal(err)
			}
		}
	}
	// Strided grid across the interior.
	for s := 0; s <= 0xFFFF; s += 251 {
		for u := 0; u <= 0xFFFF; u += 257 {
			if err := roundTrip[C](uint16(s), uint16(u)); err != nil {
				t.Fatal(err)
			}
		}
	}
}

func TestRoundTripSweep(t *testing.T) {
	t.Run("Buffer", func(t *testing.T) { sweep[Buffer](t) })
	t.Run("Texture", func(t *testing.T) { sweep[Texture](t) })
	t.Run("Shader", func(t *testing.T) { sweep[Shader](t) })
	t.Run("Pipeline", func(t *testing.T) { sweep[Pipeline](t) })
	t.Run("RenderPass", func(t *testing.T) { sweep[RenderPass](t) })
}

func TestRoundTripQuick(t *testing.T) {
	f := func(slot, stamp uint16) bool {
		id := resource.ID{Type: resource.Pipeline, SlotIndex: slot, UniqueStamp: stamp}
		h, err := Encode[Pipeline](id)
		return err == nil && Decode(h) == id
	}
	if err := quick.Check(f, &quick.Config{MaxCount: 100000}); err != nil {
		t.Error(err)
	}

	// Every raw value decodes and re-encodes to itself.
	g := func(raw uint32) bool {
		h, err := Encode[Texture](Decode(FromRaw[Texture](raw)))
		return err == nil && h.Raw() == raw
	}
	if err := quick.Check(g, &quick.Config{MaxCount: 100000}); err != nil {
		t.Error(err)
	}
}

func TestNonAliasing(t *testing.T) {
	seen := make(map[uint32][2]uint16)
	for s := 0; s <= 0xFFFF; s += 97 {
		for u := 0; u <= 0xFFFF; u += 101 {
			raw := Pack(uint16(s), uint16(u))
			if prev, ok := seen[raw]; ok {
				t.Fatalf("(%d,%d) and (%d,%d) both encode to %#08x", prev[0], prev[1], s, u, raw)
			}
			seen[raw] = [2]uint16{uint16(s), uint16(u)}
		}
	}

	f := func(s1, u1, s2, u2 uint16) bool {
		if s1 == s2 && u1 == u2 {
			return Pack(s1, u1) == Pack(s2, u2)
		}
		return Pack(s1, u1) != Pack(s2, u2)
	}
	if err := quick.Check(f, &quick.Config{MaxCount: 100000}); err != nil {
		t.Error(err)
	}
}

func TestDecodeRaw(t *testing.T) {
	got := DecodeRaw(resource.RenderPass, 0xDEADBEEF)
	want := resource.ID{Type: resource.RenderPass, SlotIndex: 0xBEEF, UniqueStamp: 0xDEAD}
	if got != want {
		t.Errorf("DecodeRaw = %v, want %v", got, want)
	}
}

func BenchmarkEncode(b *testing.B) {
	id := resource.ID{Type: resource.Buffer, SlotIndex: 42, UniqueStamp: 7}
	for i := 0; i < b.N; i++ {
		_, _ = Encode[Buffer](id)
	}
}

func BenchmarkDecode(b *testing.B) {
	h := FromRaw[Buffer](0x0007002A)
	for i := 0; i < b.N; i++ {
		_ = Decode(h)
	}
}
