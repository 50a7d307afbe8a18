package spectrum

import "testing"

func TestBus_ROMIsReadOnly(t *testing.T) {
	rom := make([]byte, 0x4000)
	rom[0] = 0xAA
	v := NewVideo()
	b := NewBus(rom, v)

	b.Write(0, 0xFF)
	if b.Read(0) != 0xAA {
		t.Fatalf("expected ROM write to be dropped, got %#x", b.Read(0))
	}
}

func TestBus_VideoRegionDelegates(t *testing.T) {
	rom := make([]byte, 0x4000)
	v := NewVideo()
	b := NewBus(rom, v)

	b.Write(0x4000, 0x42)
	if b.Read(0x4000) != 0x42 {
		t.Fatalf("expected video region round trip, got %#x", b.Read(0x4000))
	}
}

func TestBus_RAMRoundTrip(t *testing.T) {
	rom := make([]byte, 0x4000)
	v := NewVideo()
	b := NewBus(rom, v)

	b.Write(0x8000, 0x99)
	if b.Read(0x8000) != 0x99 {
		t.Fatalf("expected RAM round trip, got %#x", b.Read(0x8000))
	}
	b.Write(0xFFFF, 0x11)
	if b.Read(0xFFFF) != 0x11 {
		t.Fatalf("expected top-of-RAM round trip, got %#x", b.Read(0xFFFF))
	}
}

func TestVideo_DirtyFlagGatesRepaint(t *testing.T) {
	v := NewVideo()
	before := make([]byte, len(v.Framebuffer))
	copy(before, v.Framebuffer)

	v.VSync() // nothing written yet, should be a no-op
	for i := range v.Framebuffer {
		if v.Framebuffer[i] != before[i] {
			t.Fatalf("expected framebuffer unchanged without a write, index %d", i)
		}
	}

	v.WriteMem(0x4000, 0xFF) // top-left 8x1 pixel run, all set
	v.VSync()
	off := 0
	if v.Framebuffer[off+3] != 0xFF {
		t.Fatalf("expected alpha channel always opaque")
	}
}

func TestVideo_KeyboardMatrix_SingleKey(t *testing.T) {
	v := NewVideo()
	v.SetKeyDown(KeyA, true) // row 1 (A..G), column 0

	// Row selector byte for "A..G" row is 0xFD (bit1=0 selects that row
	// via the high byte of the port address, active-low).
	result := v.In(0xFDFE)
	if result&0x01 != 0 {
		t.Fatalf("expected bit 0 clear (A held down), got %#08b", result)
	}
	if result&0x1E != 0x1E {
		t.Fatalf("expected other bits in the row set (not pressed), got %#08b", result)
	}
}

func TestVideo_KeyboardMatrix_ReleaseRestoresBit(t *testing.T) {
	v := NewVideo()
	v.SetKeyDown(KeyA, true)
	v.SetKeyDown(KeyA, false)

	result := v.In(0xFDFE)
	if result&0x01 == 0 {
		t.Fatalf("expected bit 0 set after release, got %#08b", result)
	}
}

func TestVideo_IE0AlwaysAsserts(t *testing.T) {
	v := NewVideo()
	if !v.IE0() {
		t.Fatalf("expected IE0 to always report true")
	}
}
